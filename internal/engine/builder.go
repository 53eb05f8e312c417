package engine

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/atlaspack/internal/compose"
	"github.com/piwi3910/atlaspack/internal/intake"
	"github.com/piwi3910/atlaspack/internal/model"
)

// Builder turns a set of source images into a paged atlas.
type Builder struct {
	Settings model.Settings
	solver   Solver
	logger   *log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithSolver replaces the default MaxRectsSolver.
func WithSolver(s Solver) Option {
	return func(b *Builder) {
		if s != nil {
			b.solver = s
		}
	}
}

// WithLogger sets the logger used for warnings and progress.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

func New(settings model.Settings, opts ...Option) *Builder {
	b := &Builder{
		Settings: settings,
		solver:   NewSolver(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build filters out oversize images, allocates the rest to pages and draws
// every page. Either all pages are returned or none are.
func (b *Builder) Build(images []model.SourceImage) (model.BuildResult, error) {
	if err := b.Settings.Validate(); err != nil {
		return model.BuildResult{}, err
	}
	if b.Settings.ExceedsRecommended() {
		b.logger.Warn("max size is larger than many devices support",
			"max_size", b.Settings.MaxSize,
			"recommended", model.RecommendedMaxSize)
	}

	admitted, rejected := intake.Filter(images, b.Settings.MaxSize, b.logger)

	alloc := NewAllocator(b.solver, b.Settings, b.logger)
	assignments, stats, err := alloc.Allocate(admitted)
	if err != nil {
		return model.BuildResult{}, fmt.Errorf("failed to allocate pages: %w", err)
	}

	pages := make([]model.Page, 0, len(assignments))
	for i, a := range assignments {
		page, err := compose.Compose(i, a.Images, a.Result)
		if err != nil {
			return model.BuildResult{}, fmt.Errorf("failed to compose page %d: %w", i, err)
		}
		pages = append(pages, page)
	}

	result := model.BuildResult{
		Pages:    pages,
		Rejected: rejected,
		Stats:    stats,
	}
	b.logger.Info("atlas built",
		"images", result.ImageCount(),
		"rejected", len(rejected),
		"pages", len(pages),
		"solver_calls", stats.SolverCalls,
		"efficiency", fmt.Sprintf("%.1f%%", result.TotalEfficiency()))
	return result, nil
}
