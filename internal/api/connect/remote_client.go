package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// RemoteClient is a client for the RemoteService.
type RemoteClient struct {
	token   string
	advance *connect.Client[emptypb.Empty, structpb.Struct]
	abort   *connect.Client[emptypb.Empty, structpb.Struct]
	status  *connect.Client[emptypb.Empty, structpb.Struct]
}

// NewRemoteClient constructs a client for the RemoteService at baseURL.
func NewRemoteClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *RemoteClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &RemoteClient{
		token:   token,
		advance: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+RemoteServiceAdvanceProcedure, opts...),
		abort:   connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+RemoteServiceAbortProcedure, opts...),
		status:  connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+RemoteServiceStatusProcedure, opts...),
	}
}

// Advance asks the server to present the next step.
func (c *RemoteClient) Advance(ctx context.Context) (*structpb.Struct, error) {
	return c.call(ctx, c.advance)
}

// Abort stops the demo running on the server.
func (c *RemoteClient) Abort(ctx context.Context) (*structpb.Struct, error) {
	return c.call(ctx, c.abort)
}

// Status returns the server status.
func (c *RemoteClient) Status(ctx context.Context) (*structpb.Struct, error) {
	return c.call(ctx, c.status)
}

func (c *RemoteClient) call(ctx context.Context, client *connect.Client[emptypb.Empty, structpb.Struct]) (*structpb.Struct, error) {
	req := connect.NewRequest(&emptypb.Empty{})
	if c.token != "" {
		req.Header().Set(RemoteTokenHeader, c.token)
	}

	resp, err := client.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
