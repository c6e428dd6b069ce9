package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/jwulff/groqscribe/internal/api"
)

// FormPoster is the part of the gateway the stages need.
type FormPoster interface {
	PostForm(ctx context.Context, path string, form *api.Form, out any) error
}

// Transcriber uploads audio and returns its transcription.
type Transcriber struct {
	gw FormPoster
}

// NewTranscriber returns a Transcriber posting through gw.
func NewTranscriber(gw FormPoster) *Transcriber {
	return &Transcriber{gw: gw}
}

// Transcribe uploads sel as the "file" form field. Non-audio selections are
// rejected before any request is made.
func (t *Transcriber) Transcribe(ctx context.Context, sel AudioSelection) (string, error) {
	if !sel.IsAudio() {
		return "", api.InvalidInput(MsgNotAudio)
	}

	f, err := os.Open(sel.Path)
	if err != nil {
		return "", api.InvalidInput(fmt.Sprintf("Cannot open %s.", sel.Name))
	}
	defer f.Close()

	form := api.NewForm().File(api.FieldFile, sel.Name, sel.MediaType, f)

	var resp api.TranscriptionResponse
	if err := t.gw.PostForm(ctx, api.PathTranscribe, form, &resp); err != nil {
		return "", err
	}
	return resp.Transcription, nil
}
