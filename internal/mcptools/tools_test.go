package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwulff/groqscribe/internal/api"
	"github.com/jwulff/groqscribe/internal/logging"
	"github.com/jwulff/groqscribe/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	models        []string
	modelsErr     error
	text          string
	transcribeErr error
	result        pipeline.AnalysisResult
	analyzeErr    error

	transcribeCalls int
	lastAnalyze     pipeline.AnalysisRequest
}

func (f *fakeBackend) LoadModels(ctx context.Context) ([]string, error) {
	if f.modelsErr != nil {
		return []string{}, f.modelsErr
	}
	return f.models, nil
}

func (f *fakeBackend) Transcribe(ctx context.Context, sel pipeline.AudioSelection) (string, error) {
	f.transcribeCalls++
	return f.text, f.transcribeErr
}

func (f *fakeBackend) Analyze(ctx context.Context, req pipeline.AnalysisRequest) (pipeline.AnalysisResult, error) {
	f.lastAnalyze = req
	return f.result, f.analyzeErr
}

func newHandlers(b *fakeBackend) *Handlers {
	return New(b, Defaults{Model: "default-model", Instruction: "default prompt"}, logging.Nop())
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

// writeMP3 writes a file with an ID3 header so it sniffs as audio/mpeg.
func writeMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	data := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestToolsDefinitions(t *testing.T) {
	h := newHandlers(&fakeBackend{})
	tools := h.Tools()

	names := make([]string, 0, len(tools))
	for _, st := range tools {
		names = append(names, st.Tool.Name)
		assert.NotNil(t, st.Handler)
	}
	assert.Equal(t, []string{ToolListModels, ToolTranscribeAudio, ToolAnalyzeTranscription}, names)

	assert.Contains(t, tools[1].Tool.InputSchema.Required, "path")
	assert.Contains(t, tools[2].Tool.InputSchema.Required, "transcription")
	assert.NotContains(t, tools[2].Tool.InputSchema.Required, "model")

	assert.NotNil(t, NewServer("groqscribe", "test", h))
}

func TestListModels(t *testing.T) {
	h := newHandlers(&fakeBackend{models: []string{"model-a", "model-b"}})

	res, err := h.ListModels(context.Background(), callRequest(ToolListModels, nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var out api.ModelsResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, []string{"model-a", "model-b"}, out.Models)
}

func TestListModelsFailure(t *testing.T) {
	h := newHandlers(&fakeBackend{modelsErr: api.NetworkFailure(errors.New("refused"))})

	res, err := h.ListModels(context.Background(), callRequest(ToolListModels, nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, api.MsgNetworkFailure, resultText(t, res))
}

func TestTranscribeAudio(t *testing.T) {
	b := &fakeBackend{text: "hello world"}
	h := newHandlers(b)

	res, err := h.TranscribeAudio(context.Background(), callRequest(ToolTranscribeAudio, map[string]any{
		"path": writeMP3(t),
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError, resultText(t, res))

	var out api.TranscriptionResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "hello world", out.Transcription)
	assert.Equal(t, 1, b.transcribeCalls)
}

func TestTranscribeAudioRejectsNonAudio(t *testing.T) {
	b := &fakeBackend{}
	h := newHandlers(b)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not audio\n"), 0o600))

	res, err := h.TranscribeAudio(context.Background(), callRequest(ToolTranscribeAudio, map[string]any{"path": path}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, pipeline.MsgNotAudio, resultText(t, res))
	assert.Zero(t, b.transcribeCalls)
}

func TestTranscribeAudioMissingPath(t *testing.T) {
	b := &fakeBackend{}
	h := newHandlers(b)

	res, err := h.TranscribeAudio(context.Background(), callRequest(ToolTranscribeAudio, map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Zero(t, b.transcribeCalls)
}

func TestTranscribeAudioBackendDetail(t *testing.T) {
	h := newHandlers(&fakeBackend{transcribeErr: &api.Error{Kind: api.KindAuthRejected, StatusCode: 401, Detail: "Invalid API key"}})

	res, err := h.TranscribeAudio(context.Background(), callRequest(ToolTranscribeAudio, map[string]any{"path": writeMP3(t)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Invalid API key", resultText(t, res))
}

func TestAnalyzeTranscriptionDefaults(t *testing.T) {
	b := &fakeBackend{result: pipeline.AnalysisResult{
		Transcription: "hello",
		Meaning:       "a greeting",
		Themes:        []string{"joy", "nostalgia"},
	}}
	h := newHandlers(b)

	res, err := h.AnalyzeTranscription(context.Background(), callRequest(ToolAnalyzeTranscription, map[string]any{
		"transcription": "hello",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "default-model", b.lastAnalyze.Model)
	assert.Equal(t, "default prompt", b.lastAnalyze.Instruction)

	var out pipeline.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, []string{"joy", "nostalgia"}, out.Themes)
	assert.Equal(t, "a greeting", out.Meaning)
}

func TestAnalyzeTranscriptionOverrides(t *testing.T) {
	b := &fakeBackend{result: pipeline.AnalysisResult{Themes: []string{}}}
	h := newHandlers(b)

	_, err := h.AnalyzeTranscription(context.Background(), callRequest(ToolAnalyzeTranscription, map[string]any{
		"transcription": "hello",
		"model":         "model-b",
		"instruction":   "focus on tone",
	}))
	require.NoError(t, err)
	assert.Equal(t, "model-b", b.lastAnalyze.Model)
	assert.Equal(t, "focus on tone", b.lastAnalyze.Instruction)
}

func TestAnalyzeTranscriptionInvalidInput(t *testing.T) {
	b := &fakeBackend{analyzeErr: api.InvalidInput(pipeline.MsgNothingToAnalyze)}
	h := newHandlers(b)

	res, err := h.AnalyzeTranscription(context.Background(), callRequest(ToolAnalyzeTranscription, map[string]any{
		"transcription": "   ",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, pipeline.MsgNothingToAnalyze, resultText(t, res))
}
