package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/domain"
)

const dialog = `<nodes>
  <node name="welcome"><condition>welcome</condition><output>Hi</output></node>
  <node name="fallback"><condition>anything_else</condition><output>Sorry</output></node>
</nodes>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(arborhttp.NewHandler(arbor.New(), arborhttp.WithBaseDir(t.TempDir())))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompile(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/compile", "application/xml", strings.NewReader(dialog))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body arborhttp.CompileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Records, 2)
	assert.Equal(t, "welcome", body.Records[0].DialogNode)
	assert.Equal(t, "fallback", body.Records[1].DialogNode)
	assert.Empty(t, body.Diagnostics)
}

func TestCompile_Errors(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty body", "  ", http.StatusBadRequest},
		{"malformed xml", "<nodes><node name=></nodes>", http.StatusBadRequest},
		{"duplicate names", `<nodes><node name="a"/><node name="a"/></nodes>`, http.StatusUnprocessableEntity},
		{"illegal name", `<nodes><node name="bad name"/></nodes>`, http.StatusUnprocessableEntity},
		{"missing import", `<nodes><import>missing.xml</import></nodes>`, http.StatusUnprocessableEntity},
		{"import outside the base directory", `<nodes><import>../../etc/passwd</import></nodes>`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/compile", "application/xml", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body arborhttp.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGraph(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/graph", "application/xml", strings.NewReader(dialog))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "graph TD"))
	assert.Contains(t, string(data), "welcome -.-> fallback")
}

func TestHealthAndInfo(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "arbor-http", info["app"])
}

func TestMetrics(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/compile", "application/xml", strings.NewReader(dialog))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(data), `arbor_compile_requests_total{endpoint="compile",outcome="ok"} 1`)
	assert.Contains(t, string(data), "arbor_compile_duration_seconds")
}

type stubCompiler struct {
	err error
}

func (s stubCompiler) CompileBytes(ctx context.Context, data []byte, baseDir string) (*domain.Result, error) {
	return nil, s.err
}

func TestCompile_Cancelled(t *testing.T) {
	srv := httptest.NewServer(arborhttp.NewHandler(stubCompiler{err: fmt.Errorf("stage: %w", context.Canceled)}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/compile", "application/xml", strings.NewReader(dialog))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
