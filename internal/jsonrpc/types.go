package jsonrpc

import "encoding/json"

// Request is one call. ID is absent for notifications and may be null.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Response carries either Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Notification is a server-initiated message. It has no id and gets no reply.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Protocol error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Selection error codes, in the range reserved for servers.
const (
	CodeFrameworkNotFound = -32000
	CodeValidationFailed  = -32001
	CodeInvalidInput      = -32002
)

func ErrParseError(data any) *Error {
	return &Error{Code: CodeParseError, Message: "Parse error", Data: data}
}

func ErrInvalidRequest(data any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: "Invalid request", Data: data}
}

func ErrMethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found", Data: method}
}

func ErrInvalidParams(data any) *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid params", Data: data}
}

func ErrInternalError(data any) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error", Data: data}
}

func ErrFrameworkNotFound(id string) *Error {
	return &Error{Code: CodeFrameworkNotFound, Message: "Framework not found", Data: id}
}

func ErrValidationFailed(data any) *Error {
	return &Error{Code: CodeValidationFailed, Message: "Validation failed", Data: data}
}

// ErrInvalidInput carries the rejected selection result as data.
func ErrInvalidInput(data any) *Error {
	return &Error{Code: CodeInvalidInput, Message: "Invalid input", Data: data}
}

// MethodCatalogReloaded is sent to stdio clients after a watched catalog
// directory is reloaded or a reload is rejected.
const MethodCatalogReloaded = "catalog.reloaded"

// CatalogReloadedParams reports the snapshot in force after a reload attempt.
type CatalogReloadedParams struct {
	Source     string `json:"source"`
	Version    string `json:"version,omitempty"`
	Frameworks int    `json:"frameworks"`
	// Error is set when the reload was rejected and the previous snapshot
	// is still serving.
	Error string `json:"error,omitempty"`
}
