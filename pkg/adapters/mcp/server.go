package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
)

// CompileResponse is the structured result of the compile_dialog tool.
type CompileResponse struct {
	Records     []domain.Record     `json:"records" jsonschema_description:"Flat dialog records in pre-order"`
	Diagnostics []domain.Diagnostic `json:"diagnostics" jsonschema_description:"Non-fatal warnings collected during compilation"`
}

// Compiler is the subset of arbor.Compiler the MCP server needs.
type Compiler interface {
	CompileBytes(ctx context.Context, data []byte, baseDir string) (*domain.Result, error)
}

// Server exposes the compiler as an MCP server.
type Server struct {
	compiler  Compiler
	baseDir   string
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. Imports of submitted dialogs
// resolve under baseDir.
func NewServer(compiler Compiler, baseDir string) *Server {
	s := &Server{
		compiler:  compiler,
		baseDir:   baseDir,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: compile_dialog
	compileTool := mcp.NewTool("compile_dialog",
		mcp.WithDescription("Compile an XML dialog tree into flat JSON dialog records."),
		mcp.WithString("xml", mcp.Required(), mcp.Description("The XML dialog document")),
		mcp.WithOutputSchema[CompileResponse](),
	)
	s.mcpServer.AddTool(compileTool, mcp.NewStructuredToolHandler(s.handleCompile))

	// TOOL: graph_dialog
	s.mcpServer.AddTool(mcp.NewTool("graph_dialog",
		mcp.WithDescription("Compile an XML dialog and render it as a Mermaid flowchart."),
		mcp.WithString("xml", mcp.Required(), mcp.Description("The XML dialog document")),
	), s.handleGraph)
}

func (s *Server) compile(ctx context.Context, args map[string]interface{}) (*domain.Result, error) {
	doc, _ := args["xml"].(string)
	if strings.TrimSpace(doc) == "" {
		return nil, fmt.Errorf("xml is required")
	}
	return s.compiler.CompileBytes(ctx, []byte(doc), s.baseDir)
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CompileResponse, error) {
	res, err := s.compile(ctx, args)
	if err != nil {
		return CompileResponse{}, fmt.Errorf("compile failed: %w", err)
	}
	resp := CompileResponse{Records: res.Records, Diagnostics: res.Diagnostics}
	if resp.Records == nil {
		resp.Records = []domain.Record{}
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []domain.Diagnostic{}
	}
	return resp, nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.compile(ctx, request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compile failed: %v", err)), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(res.Records, graph.OverlayFromDiagnostics(res.Diagnostics))), nil
}
