package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/zeu5/gategrid/core"
)

// ErrorAnalyzer writes the trace of every failed episode to
// <savePath>/errors.
type ErrorAnalyzer struct {
	savePath string
	exp      string
	render   StateRenderer
	count    int
}

var _ core.Analyzer = &ErrorAnalyzer{}

func NewErrorAnalyzer(savePath string, render StateRenderer) *ErrorAnalyzer {
	if _, err := os.Stat(path.Join(savePath, "errors")); os.IsNotExist(err) {
		os.MkdirAll(path.Join(savePath, "errors"), 0755)
	}
	return &ErrorAnalyzer{
		savePath: path.Join(savePath, "errors"),
		render:   render,
	}
}

func (a *ErrorAnalyzer) Analyze(ctx *core.EpisodeContext, trace *core.Trace) {
	err := trace.Error()
	if err == nil {
		return
	}
	a.count++
	buf := new(bytes.Buffer)
	buf.WriteString(fmt.Sprintf("Error: %s\n", err))
	buf.WriteString(traceToString(trace, a.render))

	fileName := fmt.Sprintf("%d_error_%d.txt", ctx.Run, ctx.Episode)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_error_%d.txt", ctx.Run, a.exp, ctx.Episode)
	}
	os.WriteFile(path.Join(a.savePath, fileName), buf.Bytes(), 0644)
}

// DataSet is the number of failed episodes seen.
func (a *ErrorAnalyzer) DataSet() core.DataSet {
	return a.count
}

func (a *ErrorAnalyzer) Reset() {
	a.count = 0
}

type ErrorAnalyzerConstructor struct {
	SavePath string
	Render   StateRenderer
}

var _ core.AnalyzerConstructor = &ErrorAnalyzerConstructor{}

func NewErrorAnalyzerConstructor(savePath string, render StateRenderer) *ErrorAnalyzerConstructor {
	return &ErrorAnalyzerConstructor{
		SavePath: savePath,
		Render:   render,
	}
}

func (e *ErrorAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewErrorAnalyzer(e.SavePath, e.Render)
	a.exp = exp
	return a
}
