package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/metrics"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

// maxMessageSize bounds a single JSON-RPC line; tool calls can carry a
// few thousand keyword candidates.
const maxMessageSize = 8 * 1024 * 1024

// Server implements an MCP server over stdio
type Server struct {
	db       *database.DB
	config   *config.Config
	pipeline *research.Pipeline
	metrics  *metrics.Metrics
	log      zerolog.Logger
	version  string
	tools    []Tool
	handlers map[string]ToolHandler
}

// Option configures optional collaborators
type Option func(*Server)

// WithPipeline enables the research_topic tool
func WithPipeline(p *research.Pipeline) Option {
	return func(s *Server) { s.pipeline = p }
}

// WithMetrics records scoring calls made through the tools
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the logger. Logs must never go to stdout, which carries
// the protocol.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l.With().Str("component", "mcp").Logger() }
}

// WithVersion sets the version reported on initialize
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// ToolHandler is a function that handles a tool call
type ToolHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// JSON-RPC 2.0 types
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string `json:"protocolVersion"`
	Capabilities    struct {
		Tools     struct{} `json:"tools"`
		Resources struct{} `json:"resources"`
	} `json:"capabilities"`
	ServerInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
}

type toolsListResult struct {
	Tools []Tool `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type callToolResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// New creates a new MCP server. db may be nil, in which case only the
// scoring tools are offered.
func New(db *database.DB, cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		db:       db,
		config:   cfg,
		log:      zerolog.Nop(),
		version:  "dev",
		handlers: make(map[string]ToolHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerHandlers()
	return s
}

// Start runs the MCP server on stdio
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses to w until r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		response := s.handleMessage(ctx, line)
		if response == nil {
			continue
		}
		output, err := json.Marshal(response)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to encode response")
			continue
		}
		if _, err := fmt.Fprintln(w, string(output)); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	return nil
}

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

func result(id interface{}, v interface{}) *jsonRPCResponse {
	return &jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: v}
}

func fail(id interface{}, code int, message string) *jsonRPCResponse {
	return &jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}}
}

func (s *Server) handleMessage(ctx context.Context, msg []byte) *jsonRPCResponse {
	var req jsonRPCRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return fail(nil, codeParseError, "Parse error")
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return nil
	case "ping":
		return result(req.ID, struct{}{})
	case "tools/list":
		return result(req.ID, toolsListResult{Tools: s.tools})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "resources/list":
		return result(req.ID, resourcesListResult{Resources: s.resources()})
	case "resources/read":
		return s.handleResourcesRead(ctx, req)
	default:
		s.log.Debug().Str("method", req.Method).Msg("unknown method")
		return fail(req.ID, codeMethodNotFound, "Method not found")
	}
}

func (s *Server) handleInitialize(req jsonRPCRequest) *jsonRPCResponse {
	info := initializeResult{ProtocolVersion: "2024-11-05"}
	info.ServerInfo.Name = "seobrief"
	info.ServerInfo.Version = s.version
	return result(req.ID, info)
}

// handleToolsCall runs a tool. Tool failures are reported in the result with
// isError set so the assistant can read them; only protocol problems are
// JSON-RPC errors.
func (s *Server) handleToolsCall(ctx context.Context, req jsonRPCRequest) *jsonRPCResponse {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return fail(req.ID, codeInvalidParams, "Invalid params")
	}

	handler, ok := s.handlers[params.Name]
	if !ok {
		return fail(req.ID, codeInvalidParams, "Unknown tool: "+params.Name)
	}

	out, err := handler(ctx, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool call failed")
		return result(req.ID, callToolResult{
			Content: []contentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}

	text, ok := out.(string)
	if !ok {
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fail(req.ID, codeInvalidParams, "unencodable tool result: "+err.Error())
		}
		text = string(encoded)
	}
	return result(req.ID, callToolResult{Content: []contentItem{{Type: "text", Text: text}}})
}

func (s *Server) handleResourcesRead(ctx context.Context, req jsonRPCRequest) *jsonRPCResponse {
	var params readResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return fail(req.ID, codeInvalidParams, "Invalid params")
	}

	text, err := s.handleReadResource(ctx, params.URI)
	if err != nil {
		return fail(req.ID, codeInvalidParams, err.Error())
	}

	return result(req.ID, readResourceResult{
		Contents: []resourceContent{{URI: params.URI, MimeType: "text/plain", Text: text}},
	})
}
