package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gemini2mcp/internal/files"
	"gemini2mcp/internal/gemini"
)

const (
	toolNameSearch       = "search"
	toolNameAnalyzeFile  = "analyze_file"
	toolNameAnalyzeFiles = "analyze_files"
)

const (
	defaultAnalyzeFileQuery  = "ファイルを分析して内容を説明してください。"
	defaultAnalyzeFilesQuery = "これらのファイルを分析して、内容の整合性を確認してください。"

	// user-facing literals kept byte-for-byte stable; clients match on them
	toolErrorPrefix   = "エラーが発生しました: "
	searchResultLabel = "\n\n検索結果:\n"
)

var toolOrder = []string{
	toolNameSearch,
	toolNameAnalyzeFile,
	toolNameAnalyzeFiles,
}

type toolHandler func(context.Context, map[string]interface{}) (string, error)

type toolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	validate    func(map[string]interface{}) error
	handler     toolHandler
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content []toolContentItem `json:"content"`
	IsError bool              `json:"isError,omitempty"`
}

type toolContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *Server) buildToolRegistry() map[string]toolDefinition {
	return map[string]toolDefinition{
		toolNameSearch: {
			Name:        toolNameSearch,
			Description: "Answer a question using Gemini with Google Search grounding.",
			InputSchema: searchInputSchema(),
			validate:    validateSearchArgs,
			handler:     s.handleSearchTool,
		},
		toolNameAnalyzeFile: {
			Name:        toolNameAnalyzeFile,
			Description: "Analyze a local PDF or image file with Gemini.",
			InputSchema: analyzeFileInputSchema(),
			validate:    validateAnalyzeFileArgs,
			handler:     s.handleAnalyzeFileTool,
		},
		toolNameAnalyzeFiles: {
			Name:        toolNameAnalyzeFiles,
			Description: "Analyze multiple local files (markdown, PDF, image) together with Gemini.",
			InputSchema: analyzeFilesInputSchema(),
			validate:    validateAnalyzeFilesArgs,
			handler:     s.handleAnalyzeFilesTool,
		},
	}
}

func (s *Server) handleToolsList(id json.RawMessage) {
	tools := make([]toolDefinition, 0, len(s.tools))
	for _, name := range toolOrder {
		if tool, ok := s.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	s.writeResult(id, map[string]interface{}{
		"tools": tools,
	})
}

// processToolsCall is the dispatch boundary. Structural failures (bad params,
// unknown tool, invalid arguments) surface as JSON-RPC errors before any
// handler work begins; failures inside a handler are converted into a tool
// result with isError set and are never re-raised to the transport.
func (s *Server) processToolsCall(ctx context.Context, rawParams json.RawMessage) (toolCallResult, *rpcError) {
	params, err := parseToolsCallParams(rawParams)
	if err != nil {
		return toolCallResult{}, &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return toolCallResult{}, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown tool: %s", params.Name)}
	}

	if err := tool.validate(params.Arguments); err != nil {
		return toolCallResult{}, &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}

	text, handlerErr := tool.handler(ctx, params.Arguments)
	if handlerErr != nil {
		return newToolErrorResult(handlerErr), nil
	}
	return toolCallResult{
		Content: []toolContentItem{
			{Type: "text", Text: text},
		},
	}, nil
}

func parseToolsCallParams(raw json.RawMessage) (toolsCallParams, error) {
	if len(raw) == 0 {
		return toolsCallParams{}, fmt.Errorf("params is required")
	}
	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return toolsCallParams{}, fmt.Errorf("invalid tools/call params")
	}
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return toolsCallParams{}, fmt.Errorf("tools/call params.name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}
	return params, nil
}

func newToolErrorResult(err error) toolCallResult {
	return toolCallResult{
		IsError: true,
		Content: []toolContentItem{
			{Type: "text", Text: toolErrorPrefix + err.Error()},
		},
	}
}

func validateSearchArgs(args map[string]interface{}) error {
	query, ok, err := parseRequiredString(args, "query")
	if err != nil {
		return err
	}
	if !ok || query == "" {
		return fmt.Errorf("query is required")
	}
	return nil
}

func validateAnalyzeFileArgs(args map[string]interface{}) error {
	filePath, ok, err := parseRequiredString(args, "file_path")
	if err != nil {
		return err
	}
	if !ok || filePath == "" {
		return fmt.Errorf("file_path is required")
	}
	if _, err := parseOptionalString(args, "query"); err != nil {
		return err
	}
	return nil
}

func validateAnalyzeFilesArgs(args map[string]interface{}) error {
	paths, ok, err := parseRequiredStringSlice(args, "file_paths")
	if err != nil {
		return err
	}
	if !ok || len(paths) == 0 {
		return fmt.Errorf("file_paths is required and must not be empty")
	}
	if _, err := parseOptionalString(args, "query"); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleSearchTool(ctx context.Context, args map[string]interface{}) (string, error) {
	query, _, err := parseRequiredString(args, "query")
	if err != nil {
		return "", err
	}

	result, err := s.generator.Generate(ctx, gemini.NewSearchPayload(query))
	if err != nil {
		return "", err
	}

	text := result.Text
	if result.SearchResult != "" {
		text += searchResultLabel + result.SearchResult
	}
	return text, nil
}

func (s *Server) handleAnalyzeFileTool(ctx context.Context, args map[string]interface{}) (string, error) {
	filePath, _, err := parseRequiredString(args, "file_path")
	if err != nil {
		return "", err
	}
	query, err := parseOptionalString(args, "query")
	if err != nil {
		return "", err
	}
	if query == "" {
		query = defaultAnalyzeFileQuery
	}

	// single-file analysis always sends inline data, classified pdf or image
	part, err := files.LoadInlinePart(filePath)
	if err != nil {
		return "", err
	}

	result, err := s.generator.Generate(ctx, gemini.NewAnalyzePayload([]gemini.Part{part}, query))
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (s *Server) handleAnalyzeFilesTool(ctx context.Context, args map[string]interface{}) (string, error) {
	paths, _, err := parseRequiredStringSlice(args, "file_paths")
	if err != nil {
		return "", err
	}
	query, err := parseOptionalString(args, "query")
	if err != nil {
		return "", err
	}
	if query == "" {
		query = defaultAnalyzeFilesQuery
	}

	parts, err := files.LoadParts(ctx, paths)
	if err != nil {
		return "", err
	}

	result, err := s.generator.Generate(ctx, gemini.NewAnalyzePayload(parts, query))
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func parseRequiredString(args map[string]interface{}, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true, fmt.Errorf("%s must be a non-empty string", key)
	}
	return value, true, nil
}

func parseOptionalString(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(value), nil
}

func parseRequiredStringSlice(args map[string]interface{}, key string) ([]string, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, false, nil
	}

	switch typed := raw.(type) {
	case []interface{}:
		out := make([]string, 0, len(typed))
		for idx, item := range typed {
			v, ok := item.(string)
			if !ok {
				return nil, true, fmt.Errorf("%s[%d] must be a string", key, idx)
			}
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, true, fmt.Errorf("%s[%d] must be a non-empty string", key, idx)
			}
			out = append(out, v)
		}
		return out, true, nil
	case []string:
		out := make([]string, 0, len(typed))
		for idx, item := range typed {
			item = strings.TrimSpace(item)
			if item == "" {
				return nil, true, fmt.Errorf("%s[%d] must be a non-empty string", key, idx)
			}
			out = append(out, item)
		}
		return out, true, nil
	default:
		return nil, true, fmt.Errorf("%s must be an array of strings", key)
	}
}

func searchInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string", "minLength": 1, "description": "Question to answer with web search"},
		},
		"required": []string{"query"},
	}
}

func analyzeFileInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": map[string]interface{}{"type": "string", "minLength": 1, "description": "Path to the PDF or image file"},
			"query":     map[string]interface{}{"type": "string", "description": "Instruction for the analysis"},
		},
		"required": []string{"file_path"},
	}
}

func analyzeFilesInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_paths": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "minItems": 1, "description": "Paths to the files to analyze together"},
			"query":      map[string]interface{}{"type": "string", "description": "Instruction for the analysis"},
		},
		"required": []string{"file_paths"},
	}
}
