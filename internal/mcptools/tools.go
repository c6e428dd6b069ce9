// Package mcptools exposes the transcription and analysis stages as MCP tools
// so an agent can drive the same backend without the TUI.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwulff/groqscribe/internal/api"
	"github.com/jwulff/groqscribe/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Tool names.
const (
	ToolListModels           = "list_models"
	ToolTranscribeAudio      = "transcribe_audio"
	ToolAnalyzeTranscription = "analyze_transcription"
)

// Backend is the part of the pipeline the tools call.
type Backend interface {
	LoadModels(ctx context.Context) ([]string, error)
	Transcribe(ctx context.Context, sel pipeline.AudioSelection) (string, error)
	Analyze(ctx context.Context, req pipeline.AnalysisRequest) (pipeline.AnalysisResult, error)
}

// Defaults fill in analysis arguments the caller leaves out.
type Defaults struct {
	Model       string
	Instruction string
}

// Handlers implements the tool calls.
type Handlers struct {
	backend  Backend
	defaults Defaults
	log      zerolog.Logger
}

// New returns Handlers backed by b.
func New(b Backend, defaults Defaults, log zerolog.Logger) *Handlers {
	return &Handlers{backend: b, defaults: defaults, log: log}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(name, version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTools(h.Tools()...)
	return s
}

// Tools returns the tool definitions paired with their handlers.
func (h *Handlers) Tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolListModels,
				mcp.WithDescription("List the model identifiers available for analysis. The first entry is the default."),
			),
			Handler: h.ListModels,
		},
		{
			Tool: mcp.NewTool(ToolTranscribeAudio,
				mcp.WithDescription("Transcribe a local audio file and return the text."),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to an audio file on this machine"),
				),
			),
			Handler: h.TranscribeAudio,
		},
		{
			Tool: mcp.NewTool(ToolAnalyzeTranscription,
				mcp.WithDescription("Analyze transcribed lyrics for meaning, sentiment, and themes."),
				mcp.WithString("transcription",
					mcp.Required(),
					mcp.Description("Text to analyze"),
				),
				mcp.WithString("model",
					mcp.Description("Model identifier; defaults to the configured model"),
				),
				mcp.WithString("instruction",
					mcp.Description("Custom analysis instruction; defaults to the configured prompt"),
				),
			),
			Handler: h.AnalyzeTranscription,
		},
	}
}

// ListModels returns {"models": [...]}.
func (h *Handlers) ListModels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	models, err := h.backend.LoadModels(ctx)
	if err != nil {
		return h.toolError(ToolListModels, err), nil
	}
	return jsonResult(api.ModelsResponse{Models: models})
}

// TranscribeAudio returns {"transcription": "..."}.
func (h *Handlers) TranscribeAudio(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sel, err := pipeline.SelectAudio(path)
	if err != nil {
		return h.toolError(ToolTranscribeAudio, err), nil
	}
	text, err := h.backend.Transcribe(ctx, sel)
	if err != nil {
		return h.toolError(ToolTranscribeAudio, err), nil
	}
	h.log.Info().Str("tool", ToolTranscribeAudio).Str("name", sel.Name).Int("chars", len(text)).Msg("transcribed")
	return jsonResult(api.TranscriptionResponse{Transcription: text})
}

// AnalyzeTranscription returns the structured analysis.
func (h *Handlers) AnalyzeTranscription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("transcription")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	areq := pipeline.AnalysisRequest{
		Transcription: text,
		Model:         orDefault(req.GetString("model", ""), h.defaults.Model),
		Instruction:   orDefault(req.GetString("instruction", ""), h.defaults.Instruction),
	}
	res, err := h.backend.Analyze(ctx, areq)
	if err != nil {
		return h.toolError(ToolAnalyzeTranscription, err), nil
	}
	h.log.Info().Str("tool", ToolAnalyzeTranscription).Str("model", areq.Model).Int("themes", len(res.Themes)).Msg("analyzed")
	return jsonResult(res)
}

// toolError reports a classified failure to the caller as a tool error.
func (h *Handlers) toolError(tool string, err error) *mcp.CallToolResult {
	kind := "unclassified"
	if k, ok := api.KindOf(err); ok {
		kind = k.String()
	}
	h.log.Warn().Str("tool", tool).Str("kind", kind).Err(err).Msg("tool call failed")
	return mcp.NewToolResultError(api.Message(err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
