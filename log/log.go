package log

import (
	"fmt"
	"os"
	"strings"
)

var tracingLoaded = false

// Tags enabled. Value ignored
var TraceSetting = map[string]bool{}

// Supply the TRACE environment variable with a comma-separated list of
// trace tags to enable (eg. TRACE=values,extract).
func LoadTraceSetting() {
	tracingLoaded = true
	traceVar := os.Getenv("TRACE")
	if traceVar != "" {
		for _, tag := range strings.Split(traceVar, ",") {
			TraceSetting[tag] = true
		}
	}
}

func MaybeLoadTraceSetting() {
	if !tracingLoaded {
		LoadTraceSetting()
	}
}

func Tracef(tag string, format string, v ...interface{}) {
	MaybeLoadTraceSetting()
	if _, ok := TraceSetting[tag]; ok {
		fmt.Fprintf(os.Stderr, "TR "+tag+" "+format+"\n", v...)
	}
}

// ErrorPrinter receives non-fatal warnings emitted while folding a
// transaction sequence. The engine never writes to stderr directly, so
// embedders (and tests) can capture or discard warnings.
type ErrorPrinter interface {
	Ln(v ...interface{})
	F(format string, v ...interface{})
}

// The default ErrorPrinter
type StderrErrorPrinter struct{}

func (p *StderrErrorPrinter) Ln(v ...interface{}) {
	fmt.Fprintln(os.Stderr, v...)
}

func (p *StderrErrorPrinter) F(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
}

// NullErrorPrinter drops everything. Used by tests that intentionally
// provoke warnings.
type NullErrorPrinter struct{}

func (p *NullErrorPrinter) Ln(v ...interface{})               {}
func (p *NullErrorPrinter) F(format string, v ...interface{}) {}

// RecordingErrorPrinter keeps each printed line, for assertions.
type RecordingErrorPrinter struct {
	Lines []string
}

func (p *RecordingErrorPrinter) Ln(v ...interface{}) {
	p.Lines = append(p.Lines, fmt.Sprintln(v...))
}

func (p *RecordingErrorPrinter) F(format string, v ...interface{}) {
	p.Lines = append(p.Lines, fmt.Sprintf(format, v...))
}
