package transcribe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe(t *testing.T) {
	var gotAuth, gotType, gotPath string
	var gotQuery map[string][]string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":" Went for a run today. ","confidence":0.98}]}]}}`))
	}))
	defer srv.Close()

	mc := metrics.NewCollector(nil)
	c := New("dg-key", srv.URL+"/v1/listen", mc)

	text, err := c.Transcribe(context.Background(), []byte("audio-bytes"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, " Went for a run today. ", text, "transcript is returned verbatim")
	assert.Equal(t, "token dg-key", gotAuth)
	assert.Equal(t, "audio/mpeg", gotType)
	assert.Equal(t, "/v1/listen", gotPath)
	assert.Equal(t, []string{"true"}, gotQuery["smart_format"])
	assert.Equal(t, []string{"true"}, gotQuery["punctuate"])
	assert.Equal(t, []byte("audio-bytes"), gotBody)
	assert.Equal(t, int64(1), mc.Snapshot().Operations[metrics.OpTranscribe].Count)
}

func TestTranscribeDefaultsContentType(t *testing.T) {
	var gotType, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"Hi."}]}]}}`))
	}))
	defer srv.Close()

	_, err := New("dg-key", srv.URL, nil).Transcribe(context.Background(), []byte("a"), "")
	require.NoError(t, err)
	assert.Equal(t, "audio/webm", gotType)
	assert.Equal(t, "/v1/listen", gotPath)
}

func TestTranscribeFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "payment required",
			status: http.StatusPaymentRequired,
			body:   `{"err_msg":"insufficient credits"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
				assert.Contains(t, apiErr.Body, "402")
			},
		},
		{
			name:   "bad request carries deepgram message",
			status: http.StatusBadRequest,
			body:   `{"err_code":"Bad Request","err_msg":"corrupt or unsupported data"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
				assert.Equal(t, "corrupt or unsupported data", apiErr.Body)
			},
		},
		{
			name:   "no channels",
			status: http.StatusOK,
			body:   `{"results":{"channels":[]}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyTranscript)
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "deepgram request")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New("dg-key", srv.URL, nil).Transcribe(context.Background(), []byte("a"), "")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTranscribeReturnsBlankTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"   "}]}]}}`))
	}))
	defer srv.Close()

	text, err := New("dg-key", srv.URL, nil).Transcribe(context.Background(), []byte("a"), "")
	require.NoError(t, err)
	assert.Equal(t, "   ", text)
}

func TestTranscribeMissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New("", srv.URL, nil).Transcribe(context.Background(), []byte("a"), "")
	assert.ErrorIs(t, err, config.ErrMissingCredential)
	assert.False(t, called)
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		host     string
		path     string
	}{
		{DefaultURL, "https://api.deepgram.com", "v1/listen"},
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080", ""},
		{"http://dg.internal:9000/v1/listen", "http://dg.internal:9000", "v1/listen"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, path := splitEndpoint(tt.endpoint)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestNewDefaultsEndpoint(t *testing.T) {
	assert.Equal(t, DefaultURL, New("k", "", nil).endpoint)
}
