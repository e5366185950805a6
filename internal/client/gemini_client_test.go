package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubServer(t *testing.T, status int, body string, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestAnalyzeReturnsCandidateText(t *testing.T) {
	srv := stubServer(t, http.StatusOK, candidateResponse(`{"outcome": "success"}`), nil)
	c := NewGeminiClient("test-key", WithBaseURL(srv.URL))

	got, err := c.Analyze(context.Background(), []byte("video-bytes"), "video/mp4", "analyze this")
	require.NoError(t, err)
	assert.Equal(t, `{"outcome": "success"}`, got)
}

func TestAnalyzeSendsExpectedEnvelope(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(candidateResponse("ok")))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Analyze(context.Background(), []byte("abc"), "video/webm", "the prompt")
	require.NoError(t, err)

	contents := captured["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "the prompt", parts[0].(map[string]any)["text"])

	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "video/webm", inline["mimeType"])
	assert.Equal(t, "YWJj", inline["data"])

	gen := captured["generationConfig"].(map[string]any)
	assert.Equal(t, 0.4, gen["temperature"])
	assert.Equal(t, float64(8192), gen["maxOutputTokens"])
}

func TestAnalyzeRejectsOversizedVideoWithoutCalling(t *testing.T) {
	var requests atomic.Int32
	srv := stubServer(t, http.StatusOK, candidateResponse("ok"), &requests)
	c := NewGeminiClient("test-key", WithBaseURL(srv.URL))

	big := make([]byte, MaxVideoBytes+1)
	_, err := c.Analyze(context.Background(), big, "video/mp4", "prompt")
	assert.ErrorIs(t, err, ErrVideoTooLarge)
	assert.Equal(t, int32(0), requests.Load())
}

func TestAnalyzeAPIError(t *testing.T) {
	srv := stubServer(t, http.StatusTooManyRequests, `{"error": "quota exceeded"}`, nil)
	c := NewGeminiClient("test-key", WithBaseURL(srv.URL))

	_, err := c.Analyze(context.Background(), []byte("x"), "video/mp4", "prompt")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "quota exceeded")
}

func TestAnalyzeNoCandidates(t *testing.T) {
	srv := stubServer(t, http.StatusOK, `{"candidates": []}`, nil)
	c := NewGeminiClient("test-key", WithBaseURL(srv.URL))

	_, err := c.Analyze(context.Background(), []byte("x"), "video/mp4", "prompt")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestMimeTypeForPath(t *testing.T) {
	cases := map[string]string{
		"clip.mp4":       "video/mp4",
		"clip.MOV":       "video/quicktime",
		"clip.avi":       "video/x-msvideo",
		"clip.webm":      "video/webm",
		"clip.mkv":       "video/x-matroska",
		"clip.unknown":   "video/mp4",
		"no-extension":   "video/mp4",
		"dir/nested.mov": "video/quicktime",
	}
	for path, want := range cases {
		assert.Equal(t, want, MimeTypeForPath(path), path)
	}
}
