// Package demo provides the demo entry point joining sources, front ends and
// presenters.
package demo

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/app/frontend"
	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/app/source"
)

// StopIdentifier aborts the running demo instead of starting one.
const StopIdentifier = "STOP"

// User facing messages
const (
	MessageNotRunning     = "Not in a demo, nothing to stop!"
	MessageAlreadyRunning = "Already in a running demo, abort with 'STOP'"
)

// Fetcher resolves identifiers into demo content.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) (source.Result, error)
}

// Status is a snapshot of the runner.
type Status struct {
	Running    bool
	Remaining  int
	Presented  int
	Identifier string // Last demo started
	Frontend   string
}

// Runner runs demos by identifier.
type Runner struct {
	mu sync.Mutex

	sources   Fetcher
	frontend  frontend.Frontend
	kind      frontend.Kind
	presenter player.Presenter

	current string
}

// NewRunner creates a new Runner.
func NewRunner(sources Fetcher, fe frontend.Frontend, kind frontend.Kind, presenter player.Presenter) *Runner {
	return &Runner{
		sources:   sources,
		frontend:  fe,
		kind:      kind,
		presenter: presenter,
	}
}

// Run shows the demo or table of contents named by identifier.
// The identifier STOP aborts the running demo.
func (r *Runner) Run(ctx context.Context, identifier string) error {
	if identifier == StopIdentifier {
		return r.Abort()
	}

	// Refuse before fetching anything.
	if r.frontend.IsRunning() {
		r.presenter.RenderMessage(MessageAlreadyRunning)
		return player.ErrAlreadyRunning
	}

	result, err := r.sources.Fetch(ctx, identifier)
	if err != nil {
		zlog.Warn().Msgf("failed to fetch demo: identifier=%s error=%v", identifier, err)
		r.presenter.RenderMessage(err.Error())
		return err
	}

	switch result.Kind {
	case source.KindTableOfContents:
		r.presenter.RenderTableOfContents(result.TOC.Name, result.TOC.Entries)
		return nil

	case source.KindCells:
		r.mu.Lock()
		defer r.mu.Unlock()

		if err := frontend.Insert(r.frontend, result.Segments); err != nil {
			if errors.Is(err, player.ErrAlreadyRunning) {
				r.presenter.RenderMessage(MessageAlreadyRunning)
			}
			return err
		}
		r.current = identifier
		zlog.Info().Msgf("demo inserted: identifier=%s frontend=%s segments=%d", identifier, r.kind, len(result.Segments))
		return nil

	default:
		return errors.Newf("unexpected result kind: %s", result.Kind)
	}
}

// Abort stops the running demo.
func (r *Runner) Abort() error {
	err := r.frontend.Abort()
	if errors.Is(err, player.ErrNotRunning) {
		r.presenter.RenderMessage(MessageNotRunning)
	}
	return err
}

// IsRunning reports whether a demo is in flight.
func (r *Runner) IsRunning() bool {
	return r.frontend.IsRunning()
}

// Status returns a snapshot of the runner.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Status{
		Running:    r.frontend.IsRunning(),
		Identifier: r.current,
		Frontend:   r.kind.String(),
	}
	if sw, ok := r.frontend.(*frontend.Stepwise); ok {
		st.Remaining = sw.Player().Remaining()
		st.Presented = sw.Player().Presented()
	}
	return st
}
