package pipeline

import (
	"context"

	"github.com/jwulff/groqscribe/internal/api"
)

// Pipeline bundles the stages behind one gateway.
type Pipeline struct {
	gw          *api.Gateway
	catalog     *Catalog
	transcriber *Transcriber
	analyzer    *Analyzer
}

// New wires every stage to gw.
func New(gw *api.Gateway) *Pipeline {
	return &Pipeline{
		gw:          gw,
		catalog:     NewCatalog(gw),
		transcriber: NewTranscriber(gw),
		analyzer:    NewAnalyzer(gw),
	}
}

// Verify checks a candidate credential.
func (p *Pipeline) Verify(ctx context.Context, key string) error {
	return p.gw.Verify(ctx, key)
}

// LoadModels returns the model catalog.
func (p *Pipeline) LoadModels(ctx context.Context) ([]string, error) {
	return p.catalog.Load(ctx)
}

// Transcribe uploads sel and returns its text.
func (p *Pipeline) Transcribe(ctx context.Context, sel AudioSelection) (string, error) {
	return p.transcriber.Transcribe(ctx, sel)
}

// Analyze analyzes a transcription.
func (p *Pipeline) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	return p.analyzer.Analyze(ctx, req)
}
