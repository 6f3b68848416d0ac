// Package presenter provides the host UIs demos are presented in.
package presenter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

// Console messages
const (
	MessageStopped  = "Demo stopped!"
	MessageFinished = "Demo finished."
)

// ConsoleConfig represents console presenter configuration.
type ConsoleConfig struct {
	Style    string // glamour style: auto, dark, light, notty, ascii
	WordWrap int
}

type consoleStyles struct {
	title   lipgloss.Style
	step    lipgloss.Style
	code    lipgloss.Style
	entry   lipgloss.Style
	muted   lipgloss.Style
	message lipgloss.Style
}

// Console renders demos on a terminal.
// Prose is rendered as markdown, code in a bordered block.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	markdown *glamour.TermRenderer
	styles   consoleStyles
	step     int
}

// NewConsole creates a new Console writing to w.
func NewConsole(w io.Writer, cfg ConsoleConfig) (*Console, error) {
	wrap := cfg.WordWrap
	if wrap <= 0 {
		wrap = 80
	}

	var styleOpt glamour.TermRendererOption
	switch cfg.Style {
	case "", "auto":
		styleOpt = glamour.WithAutoStyle()
	default:
		styleOpt = glamour.WithStylePath(cfg.Style)
	}

	md, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create markdown renderer")
	}

	r := lipgloss.NewRenderer(w)
	styles := consoleStyles{
		title: r.NewStyle().
			Bold(true),
		step: r.NewStyle().
			Foreground(lipgloss.Color("#7c3aed")).
			Bold(true),
		code: r.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6b7280")),
		entry: r.NewStyle().
			PaddingLeft(2),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("#6b7280")).
			Italic(true),
		message: r.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")),
	}

	return &Console{
		w:        w,
		markdown: md,
		styles:   styles,
	}, nil
}

// RenderTableOfContents lists the demos of a source.
func (c *Console) RenderTableOfContents(name string, entries []catalog.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString(c.styles.title.Render(fmt.Sprintf(`"%s" has the following demo(s) available:`, name)))
	b.WriteString("\n\n")
	for _, e := range entries {
		b.WriteString(c.styles.entry.Render(fmt.Sprintf("* %s: %s", e.Name, e.Description)))
		b.WriteString("\n")
	}
	c.write(b.String())
}

// RenderStep shows one step of a demo.
func (c *Console) RenderStep(s segment.Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.step++
	header := c.styles.step.Render(fmt.Sprintf("[step %d] %s", c.step, s.Kind))

	var body string
	switch s.Kind {
	case segment.KindProse:
		out, err := c.markdown.Render(s.Text)
		if err != nil {
			zlog.Warn().Msgf("failed to render markdown, printing raw text: %v", err)
			out = s.Text + "\n"
		}
		body = out
	default:
		body = c.styles.code.Render(strings.TrimRight(s.Text, "\n")) + "\n"
	}

	c.write(header + "\n" + body)
}

// NotifyStarted resets the step counter.
func (c *Console) NotifyStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = 0
}

// NotifyStopped reports how the demo ended.
func (c *Console) NotifyStopped(reason player.StopReason) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch reason {
	case player.ReasonAborted:
		c.write(c.styles.message.Render(MessageStopped) + "\n")
	default:
		c.write(c.styles.muted.Render(MessageFinished) + "\n")
	}
}

// RenderMessage prints a message.
func (c *Console) RenderMessage(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(c.styles.message.Render(msg) + "\n")
}

// write must be called with lock held.
func (c *Console) write(s string) {
	if _, err := io.WriteString(c.w, s); err != nil {
		zlog.Error().Msgf("failed to write to console: %v", err)
	}
}
