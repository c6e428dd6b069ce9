package pipeline

import (
	"context"
	"strings"

	"github.com/jwulff/groqscribe/internal/api"
)

// MsgNothingToAnalyze is returned for an empty transcription.
const MsgNothingToAnalyze = "There is no transcription to analyze."

// AnalysisSettings is the user's analysis configuration. Visible only
// controls the settings panel.
type AnalysisSettings struct {
	Model       string
	Instruction string
	Visible     bool
}

// AnalysisRequest is one analysis call.
type AnalysisRequest struct {
	Transcription string
	Model         string
	Instruction   string
}

// AnalysisResult is the structured analysis of a transcription. Themes is
// never nil.
type AnalysisResult struct {
	Transcription      string   `json:"transcription"`
	Meaning            string   `json:"meaning"`
	Sentiment          string   `json:"sentiment"`
	Themes             []string `json:"themes"`
	AdditionalInsights string   `json:"additional_insights,omitempty"`
}

// HasInsights reports whether additional insights were returned.
func (r AnalysisResult) HasInsights() bool {
	return strings.TrimSpace(r.AdditionalInsights) != ""
}

// Analyzer submits transcriptions for analysis.
type Analyzer struct {
	gw FormPoster
}

// NewAnalyzer returns an Analyzer posting through gw.
func NewAnalyzer(gw FormPoster) *Analyzer {
	return &Analyzer{gw: gw}
}

// Analyze sends req as form fields. Empty transcriptions are rejected before
// any request is made.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	if strings.TrimSpace(req.Transcription) == "" {
		return AnalysisResult{}, api.InvalidInput(MsgNothingToAnalyze)
	}

	form := api.NewForm().
		Field(api.FieldTranscription, req.Transcription).
		Field(api.FieldModel, req.Model).
		Field(api.FieldCustomPrompt, req.Instruction)

	var resp api.AnalysisResponse
	if err := a.gw.PostForm(ctx, api.PathAnalyze, form, &resp); err != nil {
		return AnalysisResult{}, err
	}

	result := AnalysisResult{
		Transcription: resp.Transcription,
		Meaning:       resp.Meaning,
		Sentiment:     resp.Sentiment,
		Themes:        resp.Themes,
	}
	if result.Themes == nil {
		result.Themes = []string{}
	}
	if result.Transcription == "" {
		result.Transcription = req.Transcription
	}
	if resp.AdditionalInsights != nil {
		result.AdditionalInsights = *resp.AdditionalInsights
	}
	return result, nil
}
