package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/demobox/internal/app/demo"
	"github.com/osa030/demobox/internal/app/player"
)

// RemoteServiceName is the fully-qualified name of the RemoteService service.
const RemoteServiceName = "demobox.v1.RemoteService"

// Procedure paths of the RemoteService RPCs.
const (
	RemoteServiceAdvanceProcedure = "/" + RemoteServiceName + "/Advance"
	RemoteServiceAbortProcedure   = "/" + RemoteServiceName + "/Abort"
	RemoteServiceStatusProcedure  = "/" + RemoteServiceName + "/Status"
)

// Controller is the part of the demo runner the remote service drives.
type Controller interface {
	IsRunning() bool
	Abort() error
	Status() demo.Status
}

// StepSignal delivers step signals to the installed listeners.
type StepSignal interface {
	Fire() int
	Fired() uint64
}

// RemoteService implements the RemoteService RPC.
type RemoteService struct {
	runner Controller
	signal StepSignal
}

// NewRemoteService creates a new RemoteService.
func NewRemoteService(runner Controller, signal StepSignal) *RemoteService {
	return &RemoteService{
		runner: runner,
		signal: signal,
	}
}

// Advance fires the step signal of the running demo.
func (s *RemoteService) Advance(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	if !s.runner.IsRunning() {
		return nil, connect.NewError(connect.CodeFailedPrecondition, player.ErrNotRunning)
	}

	fired := s.signal.Fire()
	zlog.Debug().Msgf("remote: advance: fired=%d", fired)

	st := s.runner.Status()
	return newStructResponse(map[string]any{
		"fired":     fired,
		"running":   st.Running,
		"remaining": st.Remaining,
	})
}

// Abort stops the running demo.
func (s *RemoteService) Abort(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	if err := s.runner.Abort(); err != nil {
		if errors.Is(err, player.ErrNotRunning) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	zlog.Info().Msg("remote: demo aborted")
	return newStructResponse(map[string]any{
		"running": false,
		"message": "Demo stopped!",
	})
}

// Status returns the current runner status.
func (s *RemoteService) Status(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	st := s.runner.Status()
	return newStructResponse(map[string]any{
		"running":    st.Running,
		"remaining":  st.Remaining,
		"presented":  st.Presented,
		"identifier": st.Identifier,
		"frontend":   st.Frontend,
		"signals":    s.signal.Fired(),
	})
}

// NewRemoteServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewRemoteServiceHandler(svc *RemoteService, opts ...connect.HandlerOption) (string, http.Handler) {
	advance := connect.NewUnaryHandler(RemoteServiceAdvanceProcedure, svc.Advance, opts...)
	abort := connect.NewUnaryHandler(RemoteServiceAbortProcedure, svc.Abort, opts...)
	status := connect.NewUnaryHandler(RemoteServiceStatusProcedure, svc.Status, opts...)

	return "/" + RemoteServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RemoteServiceAdvanceProcedure:
			advance.ServeHTTP(w, r)
		case RemoteServiceAbortProcedure:
			abort.ServeHTTP(w, r)
		case RemoteServiceStatusProcedure:
			status.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func newStructResponse(fields map[string]any) (*connect.Response[structpb.Struct], error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}
