package presenter

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

// Notebook cell types
const (
	CellMarkdown = "markdown"
	CellCode     = "code"
)

// NotebookCell is an nbformat 4 cell.
type NotebookCell struct {
	ID       string         `json:"id"`
	CellType string         `json:"cell_type"`
	Metadata map[string]any `json:"metadata"`
	Source   []string       `json:"source"`
}

// MarshalJSON adds the fields code cells must carry.
func (c NotebookCell) MarshalJSON() ([]byte, error) {
	type plain NotebookCell
	if c.CellType != CellCode {
		return json.Marshal(plain(c))
	}
	return json.Marshal(struct {
		plain
		ExecutionCount *int  `json:"execution_count"`
		Outputs        []any `json:"outputs"`
	}{plain: plain(c), Outputs: []any{}})
}

// NotebookDocument is an nbformat 4 document.
type NotebookDocument struct {
	Cells         []NotebookCell `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// Notebook collects presented steps as notebook cells and writes the
// document when the demo stops or a table of contents is shown.
type Notebook struct {
	mu      sync.Mutex
	path    string
	cells   []NotebookCell
	newID   func() string
	lastErr error
}

// NewNotebook creates a Notebook that writes to path on every stop and
// every table of contents.
func NewNotebook(path string) *Notebook {
	return &Notebook{
		path:  path,
		newID: func() string { return uuid.New().String() },
	}
}

// RenderTableOfContents writes the listing as a markdown cell. A listing
// ends the run without a stop, so the document is written here.
func (n *Notebook) RenderTableOfContents(name string, entries []catalog.Entry) {
	n.mu.Lock()
	defer n.mu.Unlock()

	lines := []string{`"` + name + `" has the following demo(s) available:`, ""}
	for _, e := range entries {
		lines = append(lines, "* "+e.Name+": "+e.Description)
	}
	n.cells = append(n.cells, n.cell(CellMarkdown, strings.Join(lines, "\n")))
	n.flushLocked("table of contents")
}

// RenderStep appends a cell for the step.
func (n *Notebook) RenderStep(s segment.Segment) {
	n.mu.Lock()
	defer n.mu.Unlock()

	cellType := CellCode
	if s.IsProse() {
		cellType = CellMarkdown
	}
	n.cells = append(n.cells, n.cell(cellType, strings.TrimSpace(s.Text)))
}

// NotifyStarted starts a fresh document.
func (n *Notebook) NotifyStarted() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cells = nil
}

// NotifyStopped writes the document.
func (n *Notebook) NotifyStopped(reason player.StopReason) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.flushLocked(reason.String())
}

// RenderMessage is a no-op; notebooks have no place for messages.
func (n *Notebook) RenderMessage(msg string) {
	zlog.Debug().Msgf("notebook: message not recorded: %s", msg)
}

// Err returns the last write error, if any. A write error stays until the
// Notebook is discarded.
func (n *Notebook) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastErr
}

// Document returns the notebook built so far.
func (n *Notebook) Document() NotebookDocument {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.documentLocked()
}

// WriteTo encodes the notebook as JSON.
func (n *Notebook) WriteTo(w io.Writer) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.writeToLocked(w)
}

func (n *Notebook) documentLocked() NotebookDocument {
	cells := make([]NotebookCell, len(n.cells))
	copy(cells, n.cells)
	return NotebookDocument{
		Cells: cells,
		Metadata: map[string]any{
			"kernelspec": map[string]any{
				"display_name": "Python 3",
				"language":     "python",
				"name":         "python3",
			},
			"language_info": map[string]any{"name": "python"},
		},
		NBFormat:      4,
		NBFormatMinor: 5,
	}
}

func (n *Notebook) writeToLocked(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(n.documentLocked(), "", " ")
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode notebook")
	}
	data = append(data, '\n')
	written, err := w.Write(data)
	return int64(written), err
}

// flushLocked writes the file and keeps the error for Err.
func (n *Notebook) flushLocked(trigger string) {
	if err := n.writeFileLocked(); err != nil {
		n.lastErr = err
		zlog.Error().Msgf("failed to write notebook: path=%s error=%v", n.path, err)
		return
	}
	if n.path != "" {
		zlog.Info().Msgf("notebook written: path=%s cells=%d trigger=%s", n.path, len(n.cells), trigger)
	}
}

func (n *Notebook) writeFileLocked() error {
	if n.path == "" {
		return nil
	}
	f, err := os.Create(n.path)
	if err != nil {
		return errors.Wrap(err, "failed to create notebook file")
	}
	if _, err := n.writeToLocked(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (n *Notebook) cell(cellType, text string) NotebookCell {
	return NotebookCell{
		ID:       n.newID(),
		CellType: cellType,
		Metadata: map[string]any{},
		Source:   strings.SplitAfter(text, "\n"),
	}
}
