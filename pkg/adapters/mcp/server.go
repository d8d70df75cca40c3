package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// HistoryURI is the resource listing recent evaluations.
const HistoryURI = "abacus://history"

// OperandArgs are the arguments of the add, subtract, multiply and divide tools.
type OperandArgs struct {
	A string `json:"a"`
	B string `json:"b"`
}

// EvaluateArgs are the arguments of the evaluate tool.
type EvaluateArgs struct {
	Expression string `json:"expression"`
}

// HistoryArgs are the arguments of the history tool.
type HistoryArgs struct {
	Limit int `json:"limit"`
}

// HistoryResponse wraps the evaluation list, structured tool output must be an object.
type HistoryResponse struct {
	Evaluations []domain.Evaluation `json:"evaluations" jsonschema_description:"Recorded evaluations, newest first"`
}

// Server wraps a Calculator and exposes it as an MCP Server.
type Server struct {
	calc         ports.Calculator
	mcpServer    *server.MCPServer
	logger       *slog.Logger
	historyLimit int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistoryLimit sets the size of the history resource and the default of the history tool.
func WithHistoryLimit(n int) Option {
	return func(s *Server) {
		s.historyLimit = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(calc ports.Calculator, opts ...Option) *Server {
	s := &Server{
		calc:         calc,
		mcpServer:    server.NewMCPServer("abacus-mcp", abacus.Version),
		logger:       slog.Default(),
		historyLimit: 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
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

var opDescriptions = map[arith.Op]string{
	arith.OpAdd:      "Add two numbers exactly. Integers never overflow.",
	arith.OpSubtract: "Subtract b from a.",
	arith.OpMultiply: "Multiply two numbers exactly.",
	arith.OpDivide:   "Divide a by b. Exact operands give an exact (possibly rational) result; dividing by exact zero fails.",
}

func (s *Server) registerTools() {
	// TOOLS: add, subtract, multiply, divide
	for _, op := range arith.Ops {
		tool := mcp.NewTool(op.String(),
			mcp.WithDescription(opDescriptions[op]),
			mcp.WithString("a", mcp.Required(), mcp.Description("Left operand: integer, decimal, exponent or rational (\"1/3\") literal")),
			mcp.WithString("b", mcp.Required(), mcp.Description("Right operand, same syntax as a")),
			mcp.WithOutputSchema[domain.Evaluation](),
		)
		s.mcpServer.AddTool(tool, mcp.NewStructuredToolHandler(s.handleApply(op)))
	}

	// TOOL: evaluate
	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a literal arithmetic expression such as \"(1 + 2) * 3\" or \"10 / 4\"."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression using + - * / and parentheses")),
		mcp.WithOutputSchema[domain.Evaluation](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	// TOOL: history
	historyTool := mcp.NewTool("history",
		mcp.WithDescription("List recorded evaluations, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries, 0 for the configured default")),
		mcp.WithOutputSchema[HistoryResponse](),
	)
	s.mcpServer.AddTool(historyTool, mcp.NewStructuredToolHandler(s.handleHistory))
}

// Handler methods for structured tools

func (s *Server) handleApply(op arith.Op) func(context.Context, mcp.CallToolRequest, OperandArgs) (*domain.Evaluation, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args OperandArgs) (*domain.Evaluation, error) {
		rec, err := s.calc.Apply(ctx, op, args.A, args.B)
		if err != nil {
			s.logger.Debug("MCP Apply failed", "op", op, "error", err)
			return nil, err
		}
		return rec, nil
	}
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args EvaluateArgs) (*domain.Evaluation, error) {
	rec, err := s.calc.Evaluate(ctx, args.Expression)
	if err != nil {
		s.logger.Debug("MCP Evaluate failed", "error", err)
		return nil, err
	}
	return rec, nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest, args HistoryArgs) (HistoryResponse, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = s.historyLimit
	}
	list, err := s.calc.History(ctx, limit)
	if err != nil {
		return HistoryResponse{}, err
	}
	if list == nil {
		list = []domain.Evaluation{}
	}
	return HistoryResponse{Evaluations: list}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: abacus://history
	s.mcpServer.AddResource(mcp.NewResource(HistoryURI, "Evaluation History",
		mcp.WithResourceDescription("Most recent evaluations, newest first"),
		mcp.WithMIMEType("application/json"),
	), s.readHistory)
}

func (s *Server) readHistory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.calc.History(ctx, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if list == nil {
		list = []domain.Evaluation{}
	}
	jsonBytes, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      HistoryURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
