package player

import (
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

// Presenter renders demo content in some host UI.
type Presenter interface {
	// RenderTableOfContents shows the demos available from a source.
	RenderTableOfContents(name string, entries []catalog.Entry)
	// RenderStep shows one presentable unit.
	RenderStep(s segment.Segment)
	// NotifyStarted is called before the first step of a demo.
	NotifyStarted()
	// NotifyStopped is called once when a demo finishes or is aborted.
	NotifyStopped(reason StopReason)
	// RenderMessage shows an informational or error message to the user.
	RenderMessage(msg string)
}
