package demo

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/demobox/internal/app/frontend"
	"github.com/osa030/demobox/internal/app/hook"
	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/app/source"
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

type recordingPresenter struct {
	mu       sync.Mutex
	toc      []catalog.Entry
	tocName  string
	steps    []segment.Segment
	stopped  []player.StopReason
	messages []string
}

func (r *recordingPresenter) RenderTableOfContents(name string, entries []catalog.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tocName = name
	r.toc = entries
}

func (r *recordingPresenter) RenderStep(s segment.Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
}

func (r *recordingPresenter) NotifyStarted() {}

func (r *recordingPresenter) NotifyStopped(reason player.StopReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = append(r.stopped, reason)
}

func (r *recordingPresenter) RenderMessage(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

type fakeFetcher struct {
	results map[string]source.Result
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, identifier string) (source.Result, error) {
	f.calls++
	r, ok := f.results[identifier]
	if !ok {
		return source.Result{}, errors.Mark(errors.Newf("Unknown github demo source: %s", identifier), source.ErrUnknownSource)
	}
	return r, nil
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		results: map[string]source.Result{
			"demos.py": source.TableOfContentsResult(catalog.TableOfContents{
				Name:    "demos.py",
				Entries: []catalog.Entry{{Name: "demo_example", Description: "An example how to write a demo."}},
			}),
			"demos.py:demo_example": source.CellsResult([]segment.Segment{
				segment.Prose("Intro"),
				segment.Code("x = 1"),
				segment.Code("%%time\ny = 2"),
			}),
		},
	}
}

func newStepwiseRunner(t *testing.T) (*Runner, *recordingPresenter, *hook.Registry, *fakeFetcher) {
	t.Helper()
	pres := &recordingPresenter{}
	reg := hook.NewRegistry()
	fe, err := frontend.New(frontend.KindStepwise, frontend.Deps{Presenter: pres, Signal: reg})
	require.NoError(t, err)
	fetcher := newFetcher()
	return NewRunner(fetcher, fe, frontend.KindStepwise, pres), pres, reg, fetcher
}

func TestRunner_TableOfContents(t *testing.T) {
	r, pres, _, _ := newStepwiseRunner(t)

	require.NoError(t, r.Run(context.Background(), "demos.py"))
	assert.Equal(t, "demos.py", pres.tocName)
	assert.Len(t, pres.toc, 1)
	assert.False(t, r.IsRunning())
}

func TestRunner_StepwiseDemo(t *testing.T) {
	r, pres, reg, _ := newStepwiseRunner(t)
	ctx := context.Background()

	require.NoError(t, r.Run(ctx, "demos.py:demo_example"))
	assert.True(t, r.IsRunning())
	assert.Len(t, pres.steps, 1)

	st := r.Status()
	assert.True(t, st.Running)
	assert.Equal(t, "demos.py:demo_example", st.Identifier)
	assert.Equal(t, "stepwise", st.Frontend)
	assert.Equal(t, 1, st.Presented)
	assert.Positive(t, st.Remaining)

	for r.IsRunning() {
		require.Positive(t, reg.Fire())
	}
	assert.Equal(t, []player.StopReason{player.ReasonFinished}, pres.stopped)
	assert.Equal(t, 0, reg.Count())
	assert.Equal(t, 0, r.Status().Remaining)
}

func TestRunner_AlreadyRunning(t *testing.T) {
	r, pres, _, fetcher := newStepwiseRunner(t)
	ctx := context.Background()

	require.NoError(t, r.Run(ctx, "demos.py:demo_example"))
	calls := fetcher.calls

	err := r.Run(ctx, "demos.py:demo_example")
	assert.True(t, errors.Is(err, player.ErrAlreadyRunning))
	assert.Equal(t, []string{MessageAlreadyRunning}, pres.messages)
	assert.Equal(t, calls, fetcher.calls, "nothing should be fetched while running")
	assert.Len(t, pres.steps, 1, "running demo must be untouched")
}

func TestRunner_Stop(t *testing.T) {
	r, pres, reg, _ := newStepwiseRunner(t)
	ctx := context.Background()

	// Nothing running
	err := r.Run(ctx, StopIdentifier)
	assert.True(t, errors.Is(err, player.ErrNotRunning))
	assert.Equal(t, []string{MessageNotRunning}, pres.messages)

	require.NoError(t, r.Run(ctx, "demos.py:demo_example"))
	require.NoError(t, r.Run(ctx, StopIdentifier))
	assert.False(t, r.IsRunning())
	assert.Equal(t, []player.StopReason{player.ReasonAborted}, pres.stopped)
	assert.Equal(t, 0, reg.Count())

	// A new demo may start after abort
	require.NoError(t, r.Run(ctx, "demos.py:demo_example"))
	assert.True(t, r.IsRunning())
}

func TestRunner_FetchError(t *testing.T) {
	r, pres, _, _ := newStepwiseRunner(t)

	err := r.Run(context.Background(), "<gh_nope>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrUnknownSource))
	assert.Equal(t, []string{"Unknown github demo source: <gh_nope>"}, pres.messages)
	assert.False(t, r.IsRunning())
}

func TestRunner_BatchAll(t *testing.T) {
	pres := &recordingPresenter{}
	fe, err := frontend.New(frontend.KindBatchAll, frontend.Deps{Presenter: pres})
	require.NoError(t, err)
	r := NewRunner(newFetcher(), fe, frontend.KindBatchAll, pres)

	require.NoError(t, r.Run(context.Background(), "demos.py:demo_example"))
	assert.Len(t, pres.steps, 3)
	assert.False(t, r.IsRunning())

	// Batch demos can always be restarted
	require.NoError(t, r.Run(context.Background(), "demos.py:demo_example"))
	assert.Len(t, pres.steps, 6)

	require.NoError(t, r.Run(context.Background(), StopIdentifier))
	assert.Equal(t, []string{"Full demo already visible, please just delete all cells"}, pres.messages)
}

func TestRunner_Collector(t *testing.T) {
	var verified [][]segment.Segment
	fe, err := frontend.New(frontend.KindCollector, frontend.Deps{
		Verify: func(got []segment.Segment) error {
			verified = append(verified, got)
			return nil
		},
	})
	require.NoError(t, err)
	pres := &recordingPresenter{}
	r := NewRunner(newFetcher(), fe, frontend.KindCollector, pres)

	require.NoError(t, r.Run(context.Background(), "demos.py:demo_example"))
	require.Len(t, verified, 1)
	assert.Len(t, verified[0], 3)
	assert.Equal(t, "collector", r.Status().Frontend)
}
