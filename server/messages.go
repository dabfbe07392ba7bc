package server

import "github.com/chazu/nalm/vm"

// Wire messages of the session service. Field names are shared by the JSON
// and CBOR codecs.

// Value is a tagged stack or variable value.
type Value struct {
	Kind string `json:"kind" cbor:"kind"`
	Text string `json:"text" cbor:"text"`
}

func wireValue(v vm.Value) Value {
	return Value{Kind: v.Kind().String(), Text: v.String()}
}

type CreateSessionRequest struct {
	Name string `json:"name,omitempty" cbor:"name,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id" cbor:"session_id"`
}

type ExecuteRequest struct {
	SessionID string   `json:"session_id" cbor:"session_id"`
	Lines     []string `json:"lines,omitempty" cbor:"lines,omitempty"`
	Input     []string `json:"input,omitempty" cbor:"input,omitempty"`
}

type ExecuteResponse struct {
	Output     string           `json:"output" cbor:"output"`
	Stack      []Value          `json:"stack" cbor:"stack"`
	Variables  map[string]Value `json:"variables" cbor:"variables"`
	Index      int              `json:"index" cbor:"index"`
	Terminated bool             `json:"terminated" cbor:"terminated"`
	Error      string           `json:"error,omitempty" cbor:"error,omitempty"`
}

type CompileRequest struct {
	SessionID string `json:"session_id" cbor:"session_id"`
}

type CompileResponse struct {
	Source string `json:"source" cbor:"source"`
	Error  string `json:"error,omitempty" cbor:"error,omitempty"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" cbor:"session_id"`
}

type ResetResponse struct{}

type DestroySessionRequest struct {
	SessionID string `json:"session_id" cbor:"session_id"`
}

type DestroySessionResponse struct{}
