// Package manager ties the snippet engine to its collaborators: it loads
// snippet directories into the store, persists edits, imports and exports
// gists, fills templates and plans insertions into buffers.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/AntoineGS/tidysnips/internal/config"
	"github.com/AntoineGS/tidysnips/internal/loader"
	"github.com/AntoineGS/tidysnips/internal/platform"
	"github.com/AntoineGS/tidysnips/internal/snippet"
	"github.com/AntoineGS/tidysnips/internal/state"
	"github.com/AntoineGS/tidysnips/internal/store"
	tmpl "github.com/AntoineGS/tidysnips/internal/template"
)

// Manager handles snippet operations: loading, searching, editing, gist
// import/export and insertion. It owns the store and serializes every
// mutation of it.
type Manager struct {
	ctx            context.Context
	Config         *config.AppConfig
	Platform       *platform.Platform
	logger         *slog.Logger
	templateEngine *tmpl.Engine
	store          *store.Store
	userSink       loader.Sink
	gistSink       loader.Sink
	stateStore     *state.Store
	DryRun         bool
	Verbose        bool
}

// LoadReport summarizes a Load.
type LoadReport struct {
	Errors []error
	Loaded int
}

// New creates a Manager for cfg. Paths in cfg are expected to be expanded.
func New(cfg *config.AppConfig, plat *platform.Platform) *Manager {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	return &Manager{
		Config:         cfg,
		Platform:       plat,
		ctx:            context.Background(),
		logger:         logger,
		templateEngine: tmpl.NewEngine(tmpl.NewContextFromPlatform(plat)),
		store:          store.New().WithLogger(logger),
		userSink:       loader.NewFileSink(cfg.DefaultDir),
		gistSink:       loader.NewFileSink(cfg.GistDir),
	}
}

// InitStateStore opens the usage history database.
func (m *Manager) InitStateStore() error {
	st, err := state.Open(m.Config.StateDB)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}

	m.stateStore = st
	return nil
}

// Close releases resources held by the Manager, including the state store.
func (m *Manager) Close() error {
	if m.stateStore != nil {
		return m.stateStore.Close()
	}
	return nil
}

// WithContext returns a new Manager with the given context
func (m *Manager) WithContext(ctx context.Context) *Manager {
	m2 := *m
	m2.ctx = ctx

	return &m2
}

// WithLogger returns a new Manager with the given logger and its own copy of
// the snippet store.
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m2 := *m
	m2.logger = logger
	m2.store = m.store.WithLogger(logger)

	return &m2
}

// WithVerbose returns a new Manager with adjusted log level based on verbose flag.
func (m *Manager) WithVerbose(verbose bool) *Manager {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	m2 := m.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	m2.Verbose = verbose

	return m2
}

// checkContext checks if context is canceled and returns error
func (m *Manager) checkContext() error {
	select {
	case <-m.ctx.Done():
		return m.ctx.Err()
	default:
		return nil
	}
}

// dirSpecs lists the configured directories in merge order. Automatically
// discovered directories come first so the more deliberate sources replace
// them instead of being rejected.
func (m *Manager) dirSpecs() []loader.DirSpec {
	specs := make([]loader.DirSpec, 0, len(m.Config.SnippetDirs)+2)
	for _, d := range m.Config.SnippetDirs {
		specs = append(specs, loader.DirSpec{Path: d, Kind: snippet.SourceDirectory})
	}
	specs = append(specs,
		loader.DirSpec{Path: m.Config.GistDir, Kind: snippet.SourceGist},
		loader.DirSpec{Path: m.Config.DefaultDir, Kind: snippet.SourceUser},
	)
	return specs
}

// Load replaces the store content with the snippets found in the configured
// directories. Directories are scanned concurrently; the results are merged
// one snippet at a time once every scan has finished. A bad file is reported
// in the LoadReport and never stops the load.
func (m *Manager) Load() (*LoadReport, error) {
	if err := m.checkContext(); err != nil {
		return nil, err
	}

	res, err := loader.NewDirLoader(m.logger).Load(m.ctx, m.dirSpecs())
	if err != nil {
		return nil, fmt.Errorf("loading snippets: %w", err)
	}

	m.store = store.New().WithLogger(m.logger)
	report := &LoadReport{Errors: res.Errors}
	report.Errors = append(report.Errors, m.merge(res.Sources)...)
	report.Loaded = m.store.Len()

	m.logger.Debug("snippets loaded",
		slog.Int("count", report.Loaded),
		slog.Int("errors", len(report.Errors)))

	return report, nil
}

// merge decodes sources and inserts them in order. Snippets shadowed by an
// earlier source are logged by the store, not reported.
func (m *Manager) merge(sources []loader.Source) []error {
	var errs []error
	snippets := make([]snippet.Snippet, 0, len(sources))
	for _, src := range sources {
		sn, err := src.Snippet()
		if err != nil {
			if !errors.Is(err, snippet.ErrParseAmbiguous) {
				m.logger.Warn("skipping snippet",
					slog.String("path", src.OriginPath),
					slog.String("error", err.Error()))
				errs = append(errs, &loader.FileError{Op: "decode", Path: src.OriginPath, Err: err})
				continue
			}
			m.logger.Warn("ambiguous snippet header",
				slog.String("path", src.OriginPath),
				slog.String("error", err.Error()))
		}
		snippets = append(snippets, sn)
	}

	for _, err := range m.store.InsertAll(snippets) {
		if !errors.Is(err, store.ErrDuplicateName) {
			errs = append(errs, err)
		}
	}
	return errs
}

// Search returns the snippets matching query and lang, in name order.
func (m *Manager) Search(query, lang string) []snippet.Snippet {
	return m.store.Search(query, lang)
}

// Get returns the snippet called name.
func (m *Manager) Get(name string) (snippet.Snippet, error) {
	sn, ok := m.store.Get(name)
	if !ok {
		return snippet.Snippet{}, &store.NotFoundError{Name: name}
	}
	return sn, nil
}

// Recent lists the most recently used snippets.
func (m *Manager) Recent(limit int) ([]state.RecentSnippet, error) {
	if m.stateStore == nil {
		return nil, nil
	}
	return m.stateStore.Recent(limit)
}

// recordUsage remembers the values a snippet was filled with. History is a
// convenience; failures are logged and otherwise ignored.
func (m *Manager) recordUsage(name string, values map[int]string) {
	if m.stateStore == nil || m.DryRun {
		return
	}

	if err := m.stateStore.RecordUsage(name, values); err != nil {
		m.logger.Warn("failed to record usage", slog.String("snippet", name), slog.String("error", err.Error()))
		return
	}
	if err := m.stateStore.PruneHistory(name, m.Config.HistoryLimit); err != nil {
		m.logger.Warn("failed to prune history", slog.String("snippet", name), slog.String("error", err.Error()))
	}
}

// lastValues returns the values of the last usage of name, or nil.
func (m *Manager) lastValues(name string) map[int]string {
	if m.stateStore == nil {
		return nil
	}

	vals, err := m.stateStore.LastValues(name)
	if err != nil {
		m.logger.Warn("failed to read usage history", slog.String("snippet", name), slog.String("error", err.Error()))
		return nil
	}
	return vals
}
