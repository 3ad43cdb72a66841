package grid

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	. "github.com/smartystreets/goconvey/convey"
)

// csvTable builds a table with the given number of rows and columns where
// every row has a 1 in its first column when legal returns true.
func csvTable(rows, cols int, legal func(int) bool) string {
	var b strings.Builder
	b.WriteString("state")
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&b, ",s%d", c)
	}
	b.WriteString("\n")
	for r := 0; r < rows; r++ {
		fmt.Fprintf(&b, "%d", r)
		for c := 0; c < cols; c++ {
			v := 0
			if c == 0 && legal(r) {
				v = 1
			}
			fmt.Fprintf(&b, ",%d", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func mapSource(tables map[string]string) *FSSource {
	fs := fstest.MapFS{}
	for name, content := range tables {
		fs["tables/"+name+".csv"] = &fstest.MapFile{Data: []byte(content)}
	}
	return &FSSource{FS: fs, Dir: "tables"}
}

func allTables(content string) map[string]string {
	return map[string]string{
		"up":    content,
		"down":  content,
		"left":  content,
		"right": content,
	}
}

func TestLoadTables(t *testing.T) {
	Convey("When loading the embedded tables", t, func() {
		tables, err := DefaultTables()
		So(err, ShouldBeNil)

		Convey("Every table has a row per enumerated state", func() {
			for _, a := range Actions {
				rows, cols := tables.Table(a).Dims()
				So(rows, ShouldEqual, NumIndices)
				So(cols, ShouldEqual, NumIndices)
			}
		})

		Convey("The gates make right legal on both gate cells", func() {
			So(tables.HasLegalMove(Right, Enumerate(GateA)), ShouldBeTrue)
			So(tables.HasLegalMove(Right, Enumerate(GateB)), ShouldBeTrue)
			So(tables.Table(Right).At(Enumerate(GateA), Enumerate(GateB)), ShouldEqual, 1)
		})

		Convey("The wall blocks moves between columns 4 and 5", func() {
			So(tables.HasLegalMove(Right, Enumerate(Position{1, 4})), ShouldBeFalse)
			So(tables.HasLegalMove(Left, Enumerate(Position{4, 5})), ShouldBeFalse)
		})
	})

	Convey("When a table uses several legality columns", t, func() {
		content := "state,a,b\n"
		for r := 0; r < NumIndices; r++ {
			switch r % 3 {
			case 0:
				content += fmt.Sprintf("%d,0,0\n", r)
			case 1:
				content += fmt.Sprintf("%d,0,1\n", r)
			default:
				content += fmt.Sprintf("%d,1,0\n", r)
			}
		}
		tables, err := LoadTables(mapSource(allTables(content)))
		So(err, ShouldBeNil)

		Convey("A row is legal if any column holds a 1", func() {
			So(tables.HasLegalMove(Up, 0), ShouldBeFalse)
			So(tables.HasLegalMove(Up, 1), ShouldBeTrue)
			So(tables.HasLegalMove(Up, 2), ShouldBeTrue)
		})

		Convey("Out of range indices are never legal", func() {
			So(tables.HasLegalMove(Up, -1), ShouldBeFalse)
			So(tables.HasLegalMove(Up, NumIndices), ShouldBeFalse)
		})
	})

	Convey("When the source is malformed", t, func() {
		var dsErr *DataSourceError
		good := csvTable(NumIndices, 2, func(int) bool { return true })

		Convey("A missing table fails", func() {
			tables := allTables(good)
			delete(tables, "left")
			_, err := LoadTables(mapSource(tables))
			So(errors.As(err, &dsErr), ShouldBeTrue)
			So(dsErr.Table, ShouldEqual, "left")
		})

		Convey("A wrong row count fails", func() {
			tables := allTables(good)
			tables["down"] = csvTable(31, 2, func(int) bool { return true })
			_, err := LoadTables(mapSource(tables))
			So(errors.As(err, &dsErr), ShouldBeTrue)
			So(dsErr.Table, ShouldEqual, "down")
		})

		Convey("A table without legality columns fails", func() {
			_, err := LoadTables(mapSource(allTables(csvTable(NumIndices, 0, func(int) bool { return false }))))
			So(errors.As(err, &dsErr), ShouldBeTrue)
		})

		Convey("A non numeric cell fails", func() {
			bad := strings.Replace(good, "0,1,0", "0,x,0", 1)
			_, err := LoadTables(mapSource(allTables(bad)))
			So(errors.As(err, &dsErr), ShouldBeTrue)
		})

		Convey("Ragged rows fail", func() {
			bad := strings.Replace(good, "\n3,1,0\n", "\n3,1\n", 1)
			_, err := LoadTables(mapSource(allTables(bad)))
			So(errors.As(err, &dsErr), ShouldBeTrue)
			So(dsErr.Reason, ShouldEqual, "ragged rows")
		})
	})
}

func TestLegalActions(t *testing.T) {
	Convey("Given the embedded tables", t, func() {
		tables, err := DefaultTables()
		So(err, ShouldBeNil)

		Convey("The oven with the tool is terminal", func() {
			actions, terminal := tables.LegalActions(Oven, true)
			So(terminal, ShouldBeTrue)
			So(actions, ShouldBeNil)
		})

		Convey("The oven without the tool is not terminal", func() {
			actions, terminal := tables.LegalActions(Oven, false)
			So(terminal, ShouldBeFalse)
			So(actions, ShouldResemble, []Action{Down, Left, Right})
		})

		Convey("Actions come in canonical order", func() {
			actions, _ := tables.LegalActions(Position{3, 6}, false)
			So(actions, ShouldResemble, []Action{Up, Down, Left, Right})

			actions, _ = tables.LegalActions(Position{1, 1}, false)
			So(actions, ShouldResemble, []Action{Down, Right})
		})

		Convey("Gate cells allow right", func() {
			actions, _ := tables.LegalActions(GateA, false)
			So(actions, ShouldResemble, []Action{Up, Down, Left, Right})
			actions, _ = tables.LegalActions(GateB, true)
			So(actions, ShouldResemble, []Action{Up, Down, Left, Right})
		})

		Convey("The wall removes right on column 4 and left on column 5", func() {
			actions, _ := tables.LegalActions(Position{2, 4}, false)
			So(actions, ShouldResemble, []Action{Up, Down, Left})
			actions, _ = tables.LegalActions(Position{1, 5}, true)
			So(actions, ShouldResemble, []Action{Down, Right})
		})
	})
}
