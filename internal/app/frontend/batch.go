package frontend

import (
	"strings"

	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/segment"
)

// BatchAll renders a whole demo in a single publish. It never holds
// step-wise state, so it is never running.
type BatchAll struct {
	presenter player.Presenter
	segments  []segment.Segment
}

// NewBatchAll creates a batch front end.
func NewBatchAll(presenter player.Presenter) *BatchAll {
	return &BatchAll{presenter: presenter}
}

// Build stores the segments with surrounding whitespace trimmed.
func (b *BatchAll) Build(segments []segment.Segment) error {
	b.segments = make([]segment.Segment, 0, len(segments))
	for _, s := range segments {
		b.segments = append(b.segments, segment.Segment{
			Kind: s.Kind,
			Text: strings.TrimSpace(s.Text),
		})
	}
	return nil
}

// Publish renders every segment at once.
func (b *BatchAll) Publish() error {
	segments := b.segments
	b.segments = nil

	b.presenter.NotifyStarted()
	for _, s := range segments {
		b.presenter.RenderStep(s)
	}
	b.presenter.NotifyStopped(player.ReasonFinished)
	return nil
}

// IsRunning always returns false.
func (b *BatchAll) IsRunning() bool {
	return false
}

// Abort has nothing to stop; the full demo is already visible.
func (b *BatchAll) Abort() error {
	b.presenter.RenderMessage("Full demo already visible, please just delete all cells")
	return nil
}
