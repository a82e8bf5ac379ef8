// Package engine turns a scan into a report: six rule evaluators produce
// bottleneck findings, the recommendation builder maps findings to actions
// and the scorer grades the machine. Everything here is a pure function of
// the scan and the hardware catalogs. Nothing logs, blocks or keeps state.
package engine

import (
	"errors"
	"fmt"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// ErrInvalidScan is returned when a scan is missing a section the engine
// cannot work without. Shape validation belongs to internal/scan; this is
// the last line that keeps out-of-contract input from producing garbage.
var ErrInvalidScan = errors.New("invalid scan")

// Hardware is the catalog context of one analysis. CPU and GPU are nil when
// the scanned part is not in the catalog.
type Hardware struct {
	CPU  *catalog.Entry
	GPU  *catalog.Entry
	CPUs *catalog.Catalog
	GPUs *catalog.Catalog
}

type options struct {
	cpus     *catalog.Catalog
	gpus     *catalog.Catalog
	parallel bool
}

// Option configures Analyze.
type Option func(*options)

// WithCatalogs replaces the built-in catalogs. Nil arguments keep the
// built-in table for that kind.
func WithCatalogs(cpus, gpus *catalog.Catalog) Option {
	return func(o *options) {
		if cpus != nil {
			o.cpus = cpus
		}
		if gpus != nil {
			o.gpus = gpus
		}
	}
}

// WithParallel runs the rule evaluators on separate goroutines. The report
// is identical to a sequential run.
func WithParallel() Option {
	return func(o *options) { o.parallel = true }
}

// Analyze produces the report for one scan. The scan is not modified and
// AnalyzedAt is left for the caller to stamp.
func Analyze(s *model.Scan, opts ...Option) (*model.Report, error) {
	if err := checkScan(s); err != nil {
		return nil, err
	}
	o := options{cpus: catalog.DefaultCPUs(), gpus: catalog.DefaultGPUs()}
	for _, opt := range opts {
		opt(&o)
	}

	hw := Resolve(s, o.cpus, o.gpus)
	found := Detect(s, hw.CPU, hw.GPU, o.parallel)

	return &model.Report{
		ScanID:          s.ScanID,
		SchemaVersion:   model.SchemaVersion,
		Score:           Score(s, hw.CPU, hw.GPU),
		Bottlenecks:     found,
		Recommendations: Recommend(s, found, hw),
	}, nil
}

// Resolve looks up the scanned CPU and GPU in the given catalogs.
func Resolve(s *model.Scan, cpus, gpus *catalog.Catalog) Hardware {
	hw := Hardware{CPUs: cpus, GPUs: gpus}
	if s.CPU != nil {
		if e, ok := cpus.Lookup(s.CPU.ModelName); ok {
			hw.CPU = &e
		}
	}
	if s.GPU != nil {
		if e, ok := gpus.Lookup(s.GPU.ModelName); ok {
			hw.GPU = &e
		}
	}
	return hw
}

func checkScan(s *model.Scan) error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: scan is nil", ErrInvalidScan)
	case s.CPU == nil:
		return fmt.Errorf("%w: cpu section is missing", ErrInvalidScan)
	case s.GPU == nil:
		return fmt.Errorf("%w: gpu section is missing", ErrInvalidScan)
	case s.RAM == nil:
		return fmt.Errorf("%w: ram section is missing", ErrInvalidScan)
	case s.OS == nil:
		return fmt.Errorf("%w: os section is missing", ErrInvalidScan)
	case len(s.Storage) == 0:
		return fmt.Errorf("%w: storage list is empty", ErrInvalidScan)
	}
	return nil
}
