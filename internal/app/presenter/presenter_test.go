package presenter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c, err := NewConsole(&buf, ConsoleConfig{Style: "notty", WordWrap: 60})
	require.NoError(t, err)
	return c, &buf
}

func TestConsole_TableOfContents(t *testing.T) {
	c, buf := newTestConsole(t)

	c.RenderTableOfContents("demos.py", []catalog.Entry{
		{Name: "demo_example", Description: "An example how to write a demo."},
		{Name: "animation", Description: catalog.DirectoryDescription},
	})

	out := buf.String()
	assert.Contains(t, out, `"demos.py" has the following demo(s) available:`)
	assert.Contains(t, out, "* demo_example: An example how to write a demo.")
	assert.Contains(t, out, "* animation: [directory]")
}

func TestConsole_Steps(t *testing.T) {
	c, buf := newTestConsole(t)

	c.NotifyStarted()
	c.RenderStep(segment.Prose("## Comments"))
	c.RenderStep(segment.Code("name = \"Jan\"\nprint(name)\n"))
	c.NotifyStopped(player.ReasonFinished)

	out := buf.String()
	assert.Contains(t, out, "[step 1] prose")
	assert.Contains(t, out, "Comments")
	assert.Contains(t, out, "[step 2] code")
	assert.Contains(t, out, `name = "Jan"`)
	assert.Contains(t, out, "print(name)")
	assert.Contains(t, out, MessageFinished)

	// Counter restarts with the next demo
	buf.Reset()
	c.NotifyStarted()
	c.RenderStep(segment.Code("x"))
	c.NotifyStopped(player.ReasonAborted)
	assert.Contains(t, buf.String(), "[step 1] code")
	assert.Contains(t, buf.String(), MessageStopped)
}

func TestConsole_Message(t *testing.T) {
	c, buf := newTestConsole(t)
	c.RenderMessage("Not in a demo, nothing to stop!")
	assert.Contains(t, buf.String(), "Not in a demo, nothing to stop!")
}

func TestNewConsole_UnknownStyle(t *testing.T) {
	_, err := NewConsole(&bytes.Buffer{}, ConsoleConfig{Style: "does-not-exist.json"})
	assert.Error(t, err)
}

func newTestNotebook(path string) *Notebook {
	n := NewNotebook(path)
	seq := 0
	n.newID = func() string {
		seq++
		return "cell-" + strconv.Itoa(seq)
	}
	return n
}

func TestNotebook_Document(t *testing.T) {
	n := newTestNotebook("")

	n.NotifyStarted()
	n.RenderStep(segment.Prose("## Title\nSome text"))
	n.RenderStep(segment.Code("x = 1\nprint(x)\n"))

	doc := n.Document()
	assert.Equal(t, 4, doc.NBFormat)
	require.Len(t, doc.Cells, 2)
	assert.Equal(t, NotebookCell{
		ID:       "cell-1",
		CellType: CellMarkdown,
		Metadata: map[string]any{},
		Source:   []string{"## Title\n", "Some text"},
	}, doc.Cells[0])
	assert.Equal(t, CellCode, doc.Cells[1].CellType)
	assert.Equal(t, []string{"x = 1\n", "print(x)"}, doc.Cells[1].Source)
}

func TestNotebook_JSON(t *testing.T) {
	n := newTestNotebook("")
	n.NotifyStarted()
	n.RenderStep(segment.Prose("Intro"))
	n.RenderStep(segment.Code("pass"))

	var buf bytes.Buffer
	_, err := n.WriteTo(&buf)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.EqualValues(t, 4, raw["nbformat"])
	assert.EqualValues(t, 5, raw["nbformat_minor"])

	cells := raw["cells"].([]any)
	require.Len(t, cells, 2)

	markdown := cells[0].(map[string]any)
	assert.Equal(t, "markdown", markdown["cell_type"])
	assert.NotContains(t, markdown, "outputs")

	code := cells[1].(map[string]any)
	assert.Equal(t, "code", code["cell_type"])
	assert.Contains(t, code, "execution_count")
	assert.Nil(t, code["execution_count"])
	assert.Equal(t, []any{}, code["outputs"])
}

func TestNotebook_WritesFileOnStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.ipynb")
	n := newTestNotebook(path)

	n.NotifyStarted()
	n.RenderStep(segment.Code("print(1)"))
	n.NotifyStopped(player.ReasonFinished)
	require.NoError(t, n.Err())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"print(1)"`)

	// A new demo starts an empty document
	n.NotifyStarted()
	assert.Empty(t, n.Document().Cells)
}

func TestNotebook_WriteError(t *testing.T) {
	n := newTestNotebook(filepath.Join(t.TempDir(), "missing", "demo.ipynb"))
	n.NotifyStopped(player.ReasonAborted)
	assert.Error(t, n.Err())
}

func TestNotebook_WritesFileOnTableOfContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ipynb")
	n := newTestNotebook(path)

	n.RenderTableOfContents("demos.py", []catalog.Entry{
		{Name: "demo_example", Description: "An example how to write a demo."},
	})
	require.NoError(t, n.Err())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc NotebookDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Cells, 1)
	assert.Equal(t, CellMarkdown, doc.Cells[0].CellType)
	assert.Equal(t, []string{
		"\"demos.py\" has the following demo(s) available:\n",
		"\n",
		"* demo_example: An example how to write a demo.",
	}, doc.Cells[0].Source)
}

func TestNotebook_TableOfContentsWriteError(t *testing.T) {
	n := newTestNotebook(filepath.Join(t.TempDir(), "missing", "out.ipynb"))
	n.RenderTableOfContents("demos.py", nil)
	assert.Error(t, n.Err())

	// Messages do not reach the document
	n.RenderMessage("hello")
	assert.Len(t, n.Document().Cells, 1)
}

func TestMulti(t *testing.T) {
	c, buf := newTestConsole(t)
	n := newTestNotebook("")
	m := Multi{c, n}

	m.NotifyStarted()
	m.RenderStep(segment.Code("x = 1"))
	m.RenderMessage("note")
	m.RenderTableOfContents("t", nil)
	m.NotifyStopped(player.ReasonFinished)

	assert.Contains(t, buf.String(), "x = 1")
	assert.Contains(t, buf.String(), "note")
	assert.Len(t, n.Document().Cells, 2)
}
