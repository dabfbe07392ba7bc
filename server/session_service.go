package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/chazu/nalm/vm"
)

// SessionServiceName is the fully-qualified name of the session service.
const SessionServiceName = "nalm.v1.SessionService"

// Procedure paths of the session service.
const (
	CreateProcedure  = "/" + SessionServiceName + "/Create"
	ExecuteProcedure = "/" + SessionServiceName + "/Execute"
	CompileProcedure = "/" + SessionServiceName + "/Compile"
	ResetProcedure   = "/" + SessionServiceName + "/Reset"
	DestroyProcedure = "/" + SessionServiceName + "/Destroy"
)

// SessionService implements the session procedures. VM failures are
// reported in-band in the response; malformed requests and unknown
// sessions are connect errors.
type SessionService struct {
	sessions *SessionStore
	timeout  time.Duration
}

// NewSessionService creates a SessionService. A positive timeout bounds
// every Execute call.
func NewSessionService(sessions *SessionStore, timeout time.Duration) *SessionService {
	return &SessionService{
		sessions: sessions,
		timeout:  timeout,
	}
}

// NewSessionServiceHandler returns the path prefix and handler serving svc
// with both the JSON and the CBOR codec.
func NewSessionServiceHandler(svc *SessionService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(JSONCodec()),
		connect.WithCodec(CBORCodec()),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateProcedure, connect.NewUnaryHandler(CreateProcedure, svc.Create, opts...))
	mux.Handle(ExecuteProcedure, connect.NewUnaryHandler(ExecuteProcedure, svc.Execute, opts...))
	mux.Handle(CompileProcedure, connect.NewUnaryHandler(CompileProcedure, svc.Compile, opts...))
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, svc.Reset, opts...))
	mux.Handle(DestroyProcedure, connect.NewUnaryHandler(DestroyProcedure, svc.Destroy, opts...))
	return "/" + SessionServiceName + "/", mux
}

// Create starts a new session.
func (s *SessionService) Create(
	ctx context.Context,
	req *connect.Request[CreateSessionRequest],
) (*connect.Response[CreateSessionResponse], error) {
	session := s.sessions.Create(req.Msg.Name)
	return connect.NewResponse(&CreateSessionResponse{
		SessionID: session.ID,
	}), nil
}

// Execute appends lines to the session's program and runs it from the
// current index. A failed instruction is reported and skipped so the next
// call resumes after it.
func (s *SessionService) Execute(
	ctx context.Context,
	req *connect.Request[ExecuteRequest],
) (*connect.Response[ExecuteResponse], error) {
	session, err := s.session(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := session.worker.Do(ctx, func(e *vm.Executor) interface{} {
		return s.execute(ctx, e, req.Msg)
	})
	if err != nil {
		return nil, workerError(err)
	}
	return connect.NewResponse(result.(*ExecuteResponse)), nil
}

// execute must be called on the session's worker goroutine.
func (s *SessionService) execute(ctx context.Context, e *vm.Executor, msg *ExecuteRequest) *ExecuteResponse {
	var out bytes.Buffer
	e.SetOutput(&out)
	defer e.SetOutput(io.Discard)
	e.SetInput(strings.NewReader(joinInput(msg.Input)))

	for _, line := range msg.Lines {
		e.AddInstruction(line)
	}

	resp := &ExecuteResponse{}
	if err := e.ExecuteContext(ctx); err != nil {
		var stepErr *vm.StepError
		switch {
		case errors.As(err, &stepErr):
			resp.Error = err.Error()
			e.Skip()
		case errors.Is(err, context.DeadlineExceeded):
			resp.Error = fmt.Sprintf("execution stopped at instruction %d: timed out", e.Index())
		default:
			resp.Error = fmt.Sprintf("execution stopped at instruction %d: %v", e.Index(), err)
		}
	}

	resp.Output = out.String()
	resp.Index = e.Index()
	resp.Terminated = e.Terminated()
	for _, v := range e.Stack() {
		resp.Stack = append(resp.Stack, wireValue(v))
	}
	resp.Variables = make(map[string]Value)
	for k, v := range e.Variables() {
		resp.Variables[k] = wireValue(v)
	}
	return resp
}

// Compile returns the session's program as Go source.
func (s *SessionService) Compile(
	ctx context.Context,
	req *connect.Request[CompileRequest],
) (*connect.Response[CompileResponse], error) {
	session, err := s.session(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	result, err := session.worker.Do(ctx, func(e *vm.Executor) interface{} {
		src, err := e.Compile()
		if err != nil {
			return &CompileResponse{Error: err.Error()}
		}
		return &CompileResponse{Source: string(src)}
	})
	if err != nil {
		return nil, workerError(err)
	}
	return connect.NewResponse(result.(*CompileResponse)), nil
}

// Reset clears the session's program and state.
func (s *SessionService) Reset(
	ctx context.Context,
	req *connect.Request[ResetRequest],
) (*connect.Response[ResetResponse], error) {
	session, err := s.session(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	if _, err := session.worker.Do(ctx, func(e *vm.Executor) interface{} {
		e.Reset()
		return nil
	}); err != nil {
		return nil, workerError(err)
	}
	return connect.NewResponse(&ResetResponse{}), nil
}

// Destroy ends a session.
func (s *SessionService) Destroy(
	ctx context.Context,
	req *connect.Request[DestroySessionRequest],
) (*connect.Response[DestroySessionResponse], error) {
	if req.Msg.SessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	if !s.sessions.Destroy(req.Msg.SessionID) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", req.Msg.SessionID))
	}
	return connect.NewResponse(&DestroySessionResponse{}), nil
}

func (s *SessionService) session(id string) (*Session, error) {
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", id))
	}
	return session, nil
}

// workerError maps a failure to reach or run on a session worker.
func workerError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, errWorkerStopped):
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func joinInput(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// SessionServiceClient calls a session service. It speaks JSON unless
// another codec is passed with connect.WithCodec.
type SessionServiceClient struct {
	create  *connect.Client[CreateSessionRequest, CreateSessionResponse]
	execute *connect.Client[ExecuteRequest, ExecuteResponse]
	compile *connect.Client[CompileRequest, CompileResponse]
	reset   *connect.Client[ResetRequest, ResetResponse]
	destroy *connect.Client[DestroySessionRequest, DestroySessionResponse]
}

// NewSessionServiceClient creates a client for the service at baseURL.
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec())}, opts...)
	return &SessionServiceClient{
		create:  connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+CreateProcedure, opts...),
		execute: connect.NewClient[ExecuteRequest, ExecuteResponse](httpClient, baseURL+ExecuteProcedure, opts...),
		compile: connect.NewClient[CompileRequest, CompileResponse](httpClient, baseURL+CompileProcedure, opts...),
		reset:   connect.NewClient[ResetRequest, ResetResponse](httpClient, baseURL+ResetProcedure, opts...),
		destroy: connect.NewClient[DestroySessionRequest, DestroySessionResponse](httpClient, baseURL+DestroyProcedure, opts...),
	}
}

// Create calls Create.
func (c *SessionServiceClient) Create(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	resp, err := c.create.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Execute calls Execute.
func (c *SessionServiceClient) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	resp, err := c.execute.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Compile calls Compile.
func (c *SessionServiceClient) Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error) {
	resp, err := c.compile.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Reset calls Reset.
func (c *SessionServiceClient) Reset(ctx context.Context, req *ResetRequest) error {
	_, err := c.reset.CallUnary(ctx, connect.NewRequest(req))
	return err
}

// Destroy calls Destroy.
func (c *SessionServiceClient) Destroy(ctx context.Context, req *DestroySessionRequest) error {
	_, err := c.destroy.CallUnary(ctx, connect.NewRequest(req))
	return err
}
