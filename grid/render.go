package grid

import (
	"strings"

	"github.com/logrusorgru/aurora"
)

const renderCols = Cols + 1

// cells lays out the map. Column 4 is the wall; agent columns from 4 on
// are shifted right by one, so the agent is never drawn in column 3.
func (e *Environment) cells() [Rows][renderCols]byte {
	var rep [Rows][renderCols]byte
	for i := range rep {
		for j := range rep[i] {
			rep[i][j] = '.'
		}
		rep[i][4] = '|'
	}
	rep[1][0] = 't'
	rep[1][7] = 't'
	rep[0][7] = 'o'
	rep[2][3] = 'G'
	rep[1][8] = 'G'

	i, j := e.position.I-1, e.position.J
	if e.position.J < 4 {
		j = e.position.J - 1
	}
	if i >= 0 && i < Rows && j >= 0 && j < renderCols {
		rep[i][j] = '*'
	}
	return rep
}

// Render returns a debug snapshot of the grid, one list-formatted row per line.
func (e *Environment) Render() string {
	rep := e.cells()
	var b strings.Builder
	for i := range rep {
		b.WriteByte('[')
		for j, c := range rep[i] {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('\'')
			b.WriteByte(c)
			b.WriteByte('\'')
		}
		b.WriteString("]\n")
	}
	return b.String()
}

// RenderColor draws the same cells compactly, colouring the markers.
func (e *Environment) RenderColor(au aurora.Aurora) string {
	rep := e.cells()
	var b strings.Builder
	for i := range rep {
		for _, c := range rep[i] {
			s := string(c)
			switch c {
			case '*':
				if e.tool {
					b.WriteString(au.Bold(au.Green(s)).String())
				} else {
					b.WriteString(au.Bold(au.Yellow(s)).String())
				}
			case 't':
				b.WriteString(au.Cyan(s).String())
			case 'o':
				b.WriteString(au.Red(s).String())
			case 'G':
				b.WriteString(au.Magenta(s).String())
			case '|':
				b.WriteString(au.White(s).String())
			default:
				b.WriteString(au.Blue(s).String())
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
