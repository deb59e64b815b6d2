package scanner

import (
	"context"
	"fmt"
	"reflect"

	"github.com/KOMKZ/go-yogan-ioc/bean"
	"github.com/KOMKZ/go-yogan-ioc/errcode"
	"github.com/KOMKZ/go-yogan-ioc/logger"
	"go.uber.org/zap"
)

// ErrScan a unit could not be loaded; scanning continues
var ErrScan = errcode.Register(errcode.New(
	20, 102, "ioc", "error.ioc.scan", "component scan failed"))

// Result 扫描结果
type Result struct {
	Descriptors []*bean.Descriptor
	Failures    []error
}

// Scanner 组件扫描器
type Scanner struct {
	catalog   *Catalog
	recursive bool
	log       logger.Logger
}

// Option configures a Scanner
type Option func(*Scanner)

// WithRecursive toggles descent into sub-namespaces (default true)
func WithRecursive(recursive bool) Option {
	return func(s *Scanner) {
		s.recursive = recursive
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scanner) {
		s.log = l
	}
}

// New creates a scanner over catalog
func New(catalog *Catalog, opts ...Option) *Scanner {
	s := &Scanner{catalog: catalog, recursive: true}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrNop(s.log)
	if s.catalog == nil {
		s.catalog = NewCatalog()
	}
	return s
}

// Scan collects the descriptors of every type unit under root.
// An empty root scans the whole catalog. Each type appears once; the first
// occurrence wins.
func (s *Scanner) Scan(ctx context.Context, root string) *Result {
	root = normalize(root)
	result := &Result{Descriptors: make([]*bean.Descriptor, 0)}
	seen := make(map[reflect.Type]struct{})

	matched := 0
	for _, ns := range s.catalog.Namespaces() {
		if !under(ns, root, s.recursive) {
			continue
		}
		matched++

		for _, unit := range s.catalog.namespaces[ns] {
			if unit.Kind != UnitType {
				continue
			}

			d, err := s.load(ns, unit)
			if err != nil {
				s.log.WarnCtx(ctx, "skip unloadable unit",
					zap.String("namespace", ns),
					zap.String("unit", unit.Name),
					zap.Error(err))
				result.Failures = append(result.Failures, err)
				continue
			}

			if _, dup := seen[d.Type]; dup {
				continue
			}
			seen[d.Type] = struct{}{}
			result.Descriptors = append(result.Descriptors, d)
		}
	}

	if matched == 0 {
		s.log.WarnCtx(ctx, "scan root not found", zap.String("root", root))
		return result
	}

	s.log.DebugCtx(ctx, "component scan finished",
		zap.String("root", root),
		zap.Int("namespaces", matched),
		zap.Int("descriptors", len(result.Descriptors)),
		zap.Int("failures", len(result.Failures)))
	return result
}

// load runs the unit loader, turning errors and panics into ErrScan
func (s *Scanner) load(ns string, unit Unit) (d *bean.Descriptor, err error) {
	scanErr := ErrScan.WithData("namespace", ns).WithData("unit", unit.Name)

	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = scanErr.Wrap(fmt.Errorf("loader panicked: %v", r))
		}
	}()

	if unit.Load == nil {
		return nil, scanErr.WithMsg("type unit has no loader")
	}

	d, err = unit.Load()
	if err != nil {
		return nil, scanErr.Wrap(err)
	}
	if err := d.Validate(); err != nil {
		return nil, scanErr.Wrap(err)
	}
	return d, nil
}
