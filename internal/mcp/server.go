// Package mcp implements the stdio MCP server: a line-delimited JSON-RPC 2.0
// loop on stdin/stdout exposing tools/list and tools/call.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"gemini2mcp/internal/config"
	"gemini2mcp/internal/gemini"
)

const (
	serverName      = "gemini2mcp"
	serverVersion   = "0.1.0"
	protocolVersion = "2024-11-05"

	// requests carry tool names, argument strings and file paths, never file
	// bodies, so a modest line limit is plenty.
	maxRequestLineBytes = 4 * 1024 * 1024
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Generator issues one generation call against the upstream API.
type Generator interface {
	Generate(ctx context.Context, payload gemini.Payload) (*gemini.GenerationResult, error)
}

type Server struct {
	cfg       config.Config
	generator Generator
	tools     map[string]toolDefinition

	in  io.Reader
	out io.Writer
}

// NewServer wires a server against the real Gemini client. The transport
// streams default to the given reader/writer (stdin/stdout in production).
func NewServer(cfg config.Config, in io.Reader, out io.Writer) *Server {
	s := &Server{
		cfg:       cfg,
		generator: gemini.NewClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey),
		in:        in,
		out:       out,
	}
	s.tools = s.buildToolRegistry()
	return s
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Serve reads requests until stdin closes or ctx is cancelled. Requests are
// handled one at a time in arrival order; cancellation is only observed
// between requests, so an in-flight upstream call runs to completion.
func (s *Server) Serve(ctx context.Context) error {
	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxRequestLineBytes)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		errCh <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errCh
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			s.handleMessage(ctx, []byte(line))
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, raw []byte) {
	var req rpcRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(nil, codeParseError, "parse error")
		return
	}

	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	switch req.Method {
	case "initialize":
		s.writeResult(req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": serverVersion,
			},
		})
	case "ping":
		s.writeResult(req.ID, map[string]interface{}{})
	case "tools/list":
		s.handleToolsList(req.ID)
	case "tools/call":
		result, rpcErr := s.processToolsCall(ctx, req.Params)
		if rpcErr != nil {
			s.writeError(req.ID, rpcErr.Code, rpcErr.Message)
			return
		}
		s.writeResult(req.ID, result)
	case "":
		if !isNotification {
			s.writeError(req.ID, codeInvalidRequest, "method is required")
		}
	default:
		// notifications (initialized, cancelled, ...) are absorbed silently
		if !isNotification {
			s.writeError(req.ID, codeMethodNotFound, "method not found: "+req.Method)
		}
	}
}

func (s *Server) writeResult(id json.RawMessage, result interface{}) {
	s.writeResponse(rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id json.RawMessage, code int, message string) {
	s.writeResponse(rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) writeResponse(resp rpcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_, _ = s.out.Write(append(data, '\n'))
}
