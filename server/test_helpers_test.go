package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/chazu/nalm/compiler"
)

// newTestClient starts a Server behind httptest and returns a client for it.
// Both are torn down when the test ends.
func newTestClient(t *testing.T, opts ...connect.ClientOption) (*SessionServiceClient, *Server) {
	t.Helper()
	srv := New(WithCompiler(compiler.Compile), WithTimeout(2*time.Second))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Stop()
	})
	return NewSessionServiceClient(ts.Client(), ts.URL, opts...), srv
}
