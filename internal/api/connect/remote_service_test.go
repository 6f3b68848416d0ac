package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/demobox/internal/app/demo"
	"github.com/osa030/demobox/internal/app/frontend"
	"github.com/osa030/demobox/internal/app/hook"
	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/app/source"
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
)

type nopPresenter struct{}

func (nopPresenter) RenderTableOfContents(string, []catalog.Entry) {}
func (nopPresenter) RenderStep(segment.Segment)                    {}
func (nopPresenter) NotifyStarted()                                {}
func (nopPresenter) NotifyStopped(player.StopReason)               {}
func (nopPresenter) RenderMessage(string)                          {}

type staticFetcher struct{}

func (staticFetcher) Fetch(ctx context.Context, identifier string) (source.Result, error) {
	return source.CellsResult([]segment.Segment{
		segment.Code("a = 1"),
		segment.Code("b = 2"),
		segment.Code("c = 3"),
	}), nil
}

func newTestServer(t *testing.T, token string) (*demo.Runner, *hook.Registry, string) {
	t.Helper()

	reg := hook.NewRegistry()
	fe, err := frontend.New(frontend.KindStepwise, frontend.Deps{Presenter: nopPresenter{}, Signal: reg})
	require.NoError(t, err)
	runner := demo.NewRunner(staticFetcher{}, fe, frontend.KindStepwise, nopPresenter{})

	mux := http.NewServeMux()
	path, handler := NewRemoteServiceHandler(
		NewRemoteService(runner, reg),
		connect.WithInterceptors(NewRemoteAuthInterceptor(token)),
	)
	mux.Handle(path, handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return runner, reg, server.URL
}

func TestRemoteService_AdvanceAndStatus(t *testing.T) {
	runner, _, url := newTestServer(t, "")
	client := NewRemoteClient(http.DefaultClient, url, "")
	ctx := context.Background()

	require.NoError(t, runner.Run(ctx, "x"))

	st, err := client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Fields["running"].GetBoolValue())
	assert.Equal(t, float64(2), st.Fields["remaining"].GetNumberValue())
	assert.Equal(t, "stepwise", st.Fields["frontend"].GetStringValue())
	assert.Equal(t, float64(0), st.Fields["signals"].GetNumberValue())

	resp, err := client.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(1), resp.Fields["fired"].GetNumberValue())
	assert.Equal(t, float64(1), resp.Fields["remaining"].GetNumberValue())

	st, err = client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(1), st.Fields["signals"].GetNumberValue())

	resp, err = client.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, resp.Fields["running"].GetBoolValue())
	assert.False(t, runner.IsRunning())

	// Nothing left to advance
	_, err = client.Advance(ctx)
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestRemoteService_Abort(t *testing.T) {
	runner, reg, url := newTestServer(t, "")
	client := NewRemoteClient(http.DefaultClient, url, "")
	ctx := context.Background()

	_, err := client.Abort(ctx)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	require.NoError(t, runner.Run(ctx, "x"))
	resp, err := client.Abort(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo stopped!", resp.Fields["message"].GetStringValue())
	assert.False(t, runner.IsRunning())
	assert.Equal(t, 0, reg.Count())
}

func TestRemoteAuthInterceptor(t *testing.T) {
	_, _, url := newTestServer(t, "secret")
	ctx := context.Background()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "missing token", token: "", wantErr: true},
		{name: "wrong token", token: "nope", wantErr: true},
		{name: "valid token", token: "secret", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewRemoteClient(http.DefaultClient, url, tt.token)
			_, err := client.Status(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRemoteServiceHandler_UnknownProcedure(t *testing.T) {
	_, _, url := newTestServer(t, "")

	resp, err := http.Post(url+"/"+RemoteServiceName+"/Nope", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
