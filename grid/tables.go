package grid

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//go:embed data/*.csv
var defaultTables embed.FS

// TableSource provides the raw transition table for a direction name
// ("up", "down", "left", "right").
type TableSource interface {
	Table(name string) (io.ReadCloser, error)
}

// FSSource reads <Dir>/<name>.csv from a file system.
type FSSource struct {
	FS  fs.FS
	Dir string
}

var _ TableSource = &FSSource{}

func (s *FSSource) Table(name string) (io.ReadCloser, error) {
	return s.FS.Open(path.Join(s.Dir, name+".csv"))
}

// DefaultSource returns the tables compiled into the binary.
func DefaultSource() *FSSource {
	return &FSSource{FS: defaultTables, Dir: "data"}
}

// Table is the legality table for one direction. Row r has a 1 in some
// column iff the direction can be taken from enumerated state r.
type Table struct {
	Name  string
	cells *mat.Dense
	legal [NumIndices]bool
}

// Dims returns the number of rows and legality columns.
func (t *Table) Dims() (int, int) {
	return t.cells.Dims()
}

func (t *Table) At(row, col int) float64 {
	return t.cells.At(row, col)
}

func (t *Table) Legal(index int) bool {
	if index < 0 || index >= NumIndices {
		return false
	}
	return t.legal[index]
}

// ReadTable parses a table. The first row is a header and the first column
// of every row is a label; both are ignored.
func ReadTable(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, &DataSourceError{Table: name, Reason: "ragged rows", Err: err}
		}
		return nil, &DataSourceError{Table: name, Reason: "malformed csv", Err: err}
	}
	if len(records) == 0 {
		return nil, &DataSourceError{Table: name, Reason: "empty table"}
	}
	rows := records[1:]
	if len(rows) != NumIndices {
		return nil, &DataSourceError{Table: name, Reason: fmt.Sprintf("expected %d rows, found %d", NumIndices, len(rows))}
	}
	cols := len(records[0]) - 1
	if cols < 1 {
		return nil, &DataSourceError{Table: name, Reason: "no legality columns"}
	}

	data := make([]float64, 0, NumIndices*cols)
	for i, row := range rows {
		for _, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, &DataSourceError{Table: name, Reason: fmt.Sprintf("row %d", i), Err: err}
			}
			data = append(data, v)
		}
	}

	t := &Table{
		Name:  name,
		cells: mat.NewDense(NumIndices, cols, data),
	}
	for i := 0; i < NumIndices; i++ {
		for _, v := range t.cells.RawRowView(i) {
			if v == 1 {
				t.legal[i] = true
				break
			}
		}
	}
	return t, nil
}

// Tables holds one Table per direction. It is never modified after loading
// and can be shared between environments.
type Tables struct {
	tables map[Action]*Table
}

// LoadTables reads the four direction tables from the source.
func LoadTables(src TableSource) (*Tables, error) {
	t := &Tables{tables: make(map[Action]*Table)}
	for _, a := range Actions {
		name := string(a)
		rc, err := src.Table(name)
		if err != nil {
			return nil, &DataSourceError{Table: name, Reason: "missing", Err: err}
		}
		table, err := ReadTable(name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		t.tables[a] = table
	}
	return t, nil
}

// DefaultTables loads the embedded tables.
func DefaultTables() (*Tables, error) {
	return LoadTables(DefaultSource())
}

func (t *Tables) Table(a Action) *Table {
	return t.tables[a]
}

// HasLegalMove reports whether the direction is legal from the enumerated state.
func (t *Tables) HasLegalMove(a Action, index int) bool {
	table, ok := t.tables[a]
	if !ok {
		return false
	}
	return table.Legal(index)
}

// LegalActions returns the legal actions from (pos, tool) in canonical
// order. The second return value is true for the terminal state, in which
// case there are no actions.
func (t *Tables) LegalActions(pos Position, tool bool) ([]Action, bool) {
	if tool && pos == Oven {
		return nil, true
	}
	index := Enumerate(pos)

	actions := make([]Action, 0, len(Actions))
	for _, a := range Actions {
		if t.HasLegalMove(a, index) {
			actions = append(actions, a)
		}
	}
	return actions, false
}
