// Package pipeline holds the stateless stages the session controller drives:
// audio intake, the model catalog, transcription and analysis.
package pipeline

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/jwulff/groqscribe/internal/api"
)

// AudioPrefix is the media-type prefix every accepted file must carry.
const AudioPrefix = "audio/"

// MsgNotAudio is shown when a non-audio file is chosen.
const MsgNotAudio = "Please upload an audio file."

// AudioSelection is a user-chosen audio file. ID changes on every selection,
// even of the same path, and is the correlation token for transcription.
type AudioSelection struct {
	ID          string
	Path        string
	Name        string
	MediaType   string
	Size        int64
	PlaybackURL string
}

// IsAudio reports whether the selection carries an audio media type.
func (s AudioSelection) IsAudio() bool {
	return IsAudioType(s.MediaType)
}

// IsAudioType reports whether mediaType begins with AudioPrefix.
func IsAudioType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), AudioPrefix)
}

// SelectAudio inspects path and returns a new AudioSelection. Non-audio files
// are rejected with an InvalidInput error.
func SelectAudio(path string) (AudioSelection, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return AudioSelection{}, api.InvalidInput("Please choose a file.")
	}
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return AudioSelection{}, api.InvalidInput(fmt.Sprintf("Invalid path: %v", err))
	}

	info, err := os.Stat(abs)
	if err != nil {
		return AudioSelection{}, api.InvalidInput(fmt.Sprintf("Cannot open %s.", filepath.Base(abs)))
	}
	if info.IsDir() {
		return AudioSelection{}, api.InvalidInput(MsgNotAudio)
	}

	mediaType, err := DetectMediaType(abs)
	if err != nil {
		return AudioSelection{}, api.InvalidInput(fmt.Sprintf("Cannot read %s.", filepath.Base(abs)))
	}

	sel := AudioSelection{
		ID:          uuid.NewString(),
		Path:        abs,
		Name:        filepath.Base(abs),
		MediaType:   mediaType,
		Size:        info.Size(),
		PlaybackURL: (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
	}
	if !sel.IsAudio() {
		return sel, api.InvalidInput(MsgNotAudio)
	}
	return sel, nil
}

// DetectMediaType sniffs the file content, falling back to the extension
// when the content is not recognized.
func DetectMediaType(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	detected := mt.String()
	if base, _, err := mime.ParseMediaType(detected); err == nil {
		detected = base
	}
	if detected != "application/octet-stream" {
		return detected, nil
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if base, _, err := mime.ParseMediaType(byExt); err == nil {
			return base, nil
		}
	}
	return detected, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
