package util

import (
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uilive"
)

// TerminalPrinter redraws a frame in place, pausing between frames so the
// sequence can be followed.
type TerminalPrinter struct {
	delay  time.Duration
	writer *uilive.Writer
}

func NewTerminalPrinter(out io.Writer, delay time.Duration) *TerminalPrinter {
	writer := uilive.New()
	writer.Out = out
	return &TerminalPrinter{
		delay:  delay,
		writer: writer,
	}
}

// Write replaces the previous frame with out.
func (p *TerminalPrinter) Write(out string) {
	fmt.Fprint(p.writer, out)
	p.writer.Flush()
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
}
