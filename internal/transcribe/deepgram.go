// Package transcribe converts recorded audio to text through Deepgram.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	prerecorded "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	dginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	dgerrors "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
)

// DefaultURL is Deepgram's prerecorded audio endpoint.
const DefaultURL = "https://api.deepgram.com/v1/listen"

const requestTimeout = 2 * time.Minute

// ErrEmptyTranscript is returned when Deepgram answers without any alternatives.
var ErrEmptyTranscript = errors.New("empty transcript")

// APIError is a non-2xx response from Deepgram.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deepgram API error (status %d): %s", e.StatusCode, e.Body)
}

// Client calls Deepgram's prerecorded transcription API through the
// official SDK.
type Client struct {
	apiKey   string
	endpoint string
	api      *prerecorded.Client
	mc       *metrics.Collector
}

// New creates a Deepgram client. An empty endpoint uses DefaultURL. A missing
// key is reported by Transcribe, not here.
func New(apiKey, endpoint string, mc *metrics.Collector) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	c := &Client{apiKey: apiKey, endpoint: endpoint, mc: mc}
	if apiKey != "" {
		host, path := splitEndpoint(endpoint)
		// NewREST returns nil when the options fail to parse.
		if rest := listen.NewREST(apiKey, &dginterfaces.ClientOptions{Host: host, Path: path}); rest != nil {
			c.api = prerecorded.New(rest)
		}
	}
	return c
}

// splitEndpoint turns a full listen URL into the SDK's host and path
// options. The SDK strips a leading version segment from the path itself.
func splitEndpoint(endpoint string) (host, path string) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/")
}

// Transcribe sends audio to Deepgram and returns the first alternative of the
// first channel exactly as Deepgram produced it.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: DEEPGRAM_API_KEY", config.ErrMissingCredential)
	}
	if c.api == nil {
		return "", fmt.Errorf("deepgram client not initialized for %s", c.endpoint)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("transcribe: no audio")
	}

	start := time.Now()
	text, err := c.listen(ctx, audio, contentType)
	duration := time.Since(start)
	c.mc.RecordResult(metrics.OpTranscribe, duration, err)

	if err != nil {
		slog.Warn("transcription failed", "bytes", len(audio), "duration_ms", duration.Milliseconds(), "error", err)
		return "", err
	}
	slog.Debug("transcription complete", "bytes", len(audio), "chars", len(text), "duration_ms", duration.Milliseconds())
	return text, nil
}

func (c *Client) listen(ctx context.Context, audio []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if contentType == "" {
		contentType = "audio/webm"
	}
	ctx = dginterfaces.WithCustomHeaders(ctx, http.Header{"Content-Type": []string{contentType}})

	res, err := c.api.FromStream(ctx, bytes.NewReader(audio), &dginterfaces.PreRecordedTranscriptionOptions{
		SmartFormat: true,
		Punctuate:   true,
	})
	if err != nil {
		return "", apiError(err)
	}

	if res == nil || res.Results == nil || len(res.Results.Channels) == 0 ||
		len(res.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("invalid response format: %w", ErrEmptyTranscript)
	}
	// Blank transcripts are returned as is; the pipeline rejects them.
	return res.Results.Channels[0].Alternatives[0].Transcript, nil
}

// apiError converts the SDK's status error into an *APIError so callers can
// match on the HTTP status. Transport and decode failures are wrapped as is.
func apiError(err error) error {
	var statusErr *dgerrors.StatusError
	if !errors.As(err, &statusErr) || statusErr.Resp == nil {
		return fmt.Errorf("deepgram request: %w", err)
	}
	body := statusErr.Resp.Status
	if dg := statusErr.DeepgramError; dg != nil && dg.ErrMsg != "" {
		body = dg.ErrMsg
	}
	return &APIError{StatusCode: statusErr.Resp.StatusCode, Body: body}
}
