package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// CredentialSource supplies the credential attached to outbound requests.
type CredentialSource interface {
	Read() (string, bool)
}

// Config configures a Gateway.
type Config struct {
	BaseURL          string
	CredentialHeader string
	Timeout          time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Gateway sends every backend request. Requests other than Verify carry the
// stored credential in the configured header.
type Gateway struct {
	base   *url.URL
	header string
	creds  CredentialSource
	http   *http.Client
	log    zerolog.Logger
}

// NewGateway validates cfg and returns a Gateway.
func NewGateway(cfg Config, creds CredentialSource, log zerolog.Logger) (*Gateway, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if cfg.CredentialHeader == "" {
		return nil, fmt.Errorf("credential header cannot be empty")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Gateway{
		base:   base,
		header: cfg.CredentialHeader,
		creds:  creds,
		http:   hc,
		log:    log,
	}, nil
}

// BaseURL returns the configured backend address.
func (g *Gateway) BaseURL() string {
	return g.base.String()
}

// Verify checks key against the backend. The stored credential is not sent.
func (g *Gateway) Verify(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return InvalidInput(MsgMissingKey)
	}
	body, err := json.Marshal(VerifyRequest{APIKey: key})
	if err != nil {
		return fmt.Errorf("marshal verify request: %w", err)
	}
	var resp VerifyResponse
	return g.do(ctx, http.MethodPost, PathVerify, bytes.NewReader(body), "application/json", false, &resp)
}

// PostJSON sends body as JSON and decodes the response into out.
func (g *Gateway) PostJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return g.do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json", true, out)
}

// PostForm streams form as multipart/form-data and decodes the response into
// out. A file part that cannot be read is reported as InvalidInput rather
// than as whatever the transport made of the truncated body.
func (g *Gateway) PostForm(ctx context.Context, path string, form *Form, out any) error {
	body, contentType, wait := form.stream()
	err := g.do(ctx, http.MethodPost, path, body, contentType, true, out)
	body.Close()
	if ferr := wait(); ferr != nil {
		g.log.Warn().Str("path", path).Err(ferr.Err).Msg("form upload aborted")
		return ferr
	}
	return err
}

// Get fetches path and decodes the response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, path, nil, "", true, out)
}

// resolve joins path onto the base URL. Absolute URLs are refused so the
// credential only ever reaches the configured backend.
func (g *Gateway) resolve(path string) (string, error) {
	if !strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return "", InvalidInput(fmt.Sprintf("invalid request path %q", path))
	}
	return g.base.JoinPath(path).String(), nil
}

// authorize is the single injection point for the credential header.
func (g *Gateway) authorize(req *http.Request) {
	if g.creds == nil {
		return
	}
	if token, ok := g.creds.Read(); ok && token != "" {
		req.Header.Set(g.header, token)
	}
}

func (g *Gateway) do(ctx context.Context, method, path string, body io.Reader, contentType string, withCredential bool, out any) error {
	target, err := g.resolve(path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if withCredential {
		g.authorize(req)
	}

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		g.log.Warn().Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return NetworkFailure(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return NetworkFailure(fmt.Errorf("read response: %w", err))
	}

	g.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if apiErr := ClassifyStatus(resp.StatusCode, data); apiErr != nil {
		g.log.Info().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("kind", apiErr.Kind.String()).
			Msg("backend rejected request")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindBackendError, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
