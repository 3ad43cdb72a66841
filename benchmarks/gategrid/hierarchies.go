package gategrid

import (
	"fmt"
	"strings"

	"github.com/zeu5/gategrid/benchmarks/common"
	"github.com/zeu5/gategrid/policies"
)

// returns a set of hierarchies for the given name.
// If the set name is a single hierarchy then it returns its suffixes, shortest first
func getHierarchySet(hSet string) []common.HierarchySet {
	if !strings.Contains(strings.ToLower(hSet), "set") {
		hierarchy := GetHierarchy(hSet)
		out := make([]common.HierarchySet, 0)
		for i := len(hierarchy) - 1; i >= 0; i-- {
			out = append(out, common.HierarchySet{
				Name:       fmt.Sprintf("%s[%d]", hSet, len(hierarchy)-i),
				Predicates: hierarchy[i:],
			})
		}
		return out
	}
	var hierarchies []string
	switch hSet {
	case "set1":
		hierarchies = []string{"ToolToOven", "GateToOven"}
	default:
		return []common.HierarchySet{}
	}
	out := make([]common.HierarchySet, len(hierarchies))
	for i, h := range hierarchies {
		out[i] = common.HierarchySet{
			Name:       h,
			Predicates: GetHierarchy(h),
		}
	}
	return out
}

func GetHierarchy(name string) []policies.Predicate {
	switch name {
	case "ToolToOven":
		return []policies.Predicate{
			{Name: "HasTool", Check: HasTool()},
			{Name: "InOvenRoom", Check: InOvenRoom()},
			{Name: "AtOven", Check: AtOven()},
		}
	case "GateToOven":
		return []policies.Predicate{
			{Name: "HasTool", Check: HasTool()},
			{Name: "ToolOnGate", Check: ToolOnGate()},
			{Name: "AtOven", Check: AtOven()},
		}
	}
	return []policies.Predicate{}
}
