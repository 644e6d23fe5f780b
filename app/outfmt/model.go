package outfmt

import (
	"github.com/invext/invext/perf"
)

type OutputType int

const (
	Values OutputType = iota
	Metrics
	AggregateGains
)

type ReportWriter interface {
	PrintRenderTable(outType OutputType, name string, tableModel *perf.RenderTable) error
}
