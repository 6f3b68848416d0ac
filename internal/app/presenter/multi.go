package presenter

import (
	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

// Multi fans every call out to several presenters in order.
type Multi []player.Presenter

func (m Multi) RenderTableOfContents(name string, entries []catalog.Entry) {
	for _, p := range m {
		p.RenderTableOfContents(name, entries)
	}
}

func (m Multi) RenderStep(s segment.Segment) {
	for _, p := range m {
		p.RenderStep(s)
	}
}

func (m Multi) NotifyStarted() {
	for _, p := range m {
		p.NotifyStarted()
	}
}

func (m Multi) NotifyStopped(reason player.StopReason) {
	for _, p := range m {
		p.NotifyStopped(reason)
	}
}

func (m Multi) RenderMessage(msg string) {
	for _, p := range m {
		p.RenderMessage(msg)
	}
}
