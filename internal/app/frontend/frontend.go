// Package frontend provides the demo front ends that turn segments into
// presented steps.
package frontend

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/segment"
)

// Frontend is the capability set every front-end variant offers.
type Frontend interface {
	// Build prepares the segments for publishing.
	Build(segments []segment.Segment) error
	// Publish hands the built content to the host.
	Publish() error
	// IsRunning reports whether published content is still being stepped through.
	IsRunning() bool
	// Abort stops a demo that is not yet published in full.
	Abort() error
}

// Insert builds and publishes a demo.
func Insert(f Frontend, segments []segment.Segment) error {
	if err := f.Build(segments); err != nil {
		return err
	}
	return f.Publish()
}

// Kind selects a front-end variant.
type Kind int

const (
	KindStepwise  Kind = iota // One segment per step signal
	KindBatchAll              // Everything at once
	KindCollector             // Record for verification
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindStepwise:
		return "stepwise"
	case KindBatchAll:
		return "batch"
	case KindCollector:
		return "collector"
	default:
		return "unknown"
	}
}

// Kinds returns the names of all variants.
func Kinds() []string {
	return []string{KindStepwise.String(), KindBatchAll.String(), KindCollector.String()}
}

// ParseKind parses a variant name.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stepwise", "step", "":
		return KindStepwise, nil
	case "batch", "batchall", "all":
		return KindBatchAll, nil
	case "collector", "collect":
		return KindCollector, nil
	default:
		return 0, errors.Newf("unknown frontend: %s (expected one of %s)", name, strings.Join(Kinds(), ", "))
	}
}

// Deps carries what the variants need.
type Deps struct {
	Presenter player.Presenter
	Signal    player.StepSignal
	Verify    VerifyFunc // Collector only, optional
}

// New creates the front end for the given kind.
func New(kind Kind, deps Deps) (Frontend, error) {
	switch kind {
	case KindStepwise:
		if deps.Presenter == nil || deps.Signal == nil {
			return nil, errors.New("stepwise frontend requires a presenter and a step signal")
		}
		return NewStepwise(player.New(deps.Presenter, deps.Signal)), nil
	case KindBatchAll:
		if deps.Presenter == nil {
			return nil, errors.New("batch frontend requires a presenter")
		}
		return NewBatchAll(deps.Presenter), nil
	case KindCollector:
		return NewCollector(deps.Verify), nil
	default:
		return nil, errors.Newf("unsupported frontend kind: %d", kind)
	}
}
