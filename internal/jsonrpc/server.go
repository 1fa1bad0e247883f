package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const version = "2.0"

var nullID = json.RawMessage("null")

// Server dispatches newline-delimited JSON-RPC 2.0 requests to a registry.
type Server struct {
	registry *MethodRegistry
	logger   *slog.Logger
}

func NewServer(registry *MethodRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, logger: logger}
}

// ServeTransport answers requests until the reader hits EOF, a line fails
// to parse, a write fails, or ctx is cancelled between requests.
func (s *Server) ServeTransport(ctx context.Context, t *Transport) {
	for ctx.Err() == nil {
		req, raw, err := t.ReadRequest()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			s.logger.Debug("rpc read failed", "error", err)
			s.write(t, &Response{JSONRPC: version, Error: ErrParseError(err.Error()), ID: nullID})
			return
		}
		resp := s.dispatch(ctx, req, hasIDField(raw))
		if resp == nil {
			continue
		}
		if !s.write(t, resp) {
			return
		}
	}
}

// ServeStdio runs the server on a stdin/stdout pair.
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) {
	s.ServeTransport(ctx, NewTransport(stdin, stdout))
}

// dispatch returns nil for notifications, which never get a response.
func (s *Server) dispatch(ctx context.Context, req *Request, hasID bool) *Response {
	resp := &Response{JSONRPC: version, ID: req.ID}
	switch handler := s.registry.Lookup(req.Method); {
	case req.JSONRPC != version:
		resp.Error = ErrInvalidRequest(`jsonrpc field must be "2.0"`)
	case handler == nil:
		resp.Error = ErrMethodNotFound(req.Method)
	default:
		s.logger.Debug("rpc call", "method", req.Method, "notification", !hasID)
		resp.Result, resp.Error = s.call(ctx, handler, req)
		if resp.Error != nil {
			s.logger.Debug("rpc call failed", "method", req.Method, "code", resp.Error.Code, "error", resp.Error.Message)
		}
	}
	if !hasID {
		return nil
	}
	if resp.Error != nil {
		resp.Result = nil
	}
	return resp
}

func (s *Server) call(ctx context.Context, h Handler, req *Request) (result any, rpcErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("rpc handler panicked", "method", req.Method, "panic", r)
			result, rpcErr = nil, ErrInternalError(fmt.Sprint(r))
		}
	}()
	return h(ctx, req.Params)
}

func (s *Server) write(t *Transport, resp *Response) bool {
	if err := t.WriteResponse(resp); err != nil {
		s.logger.Debug("rpc write failed", "error", err)
		return false
	}
	return true
}

// hasIDField distinguishes {"id": null}, a request, from a missing id, a
// notification.
func hasIDField(raw []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	_, ok := obj["id"]
	return ok
}
