package embed

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/voicegate/voicegate/pkg/audio"
)

// HTTP implements [Embedder] against a model service that wraps a
// pretrained speaker verification network.
//
// Request:  POST {endpoint} {"sample_rate": 16000, "pcm": "<base64 s16le>"}
// Response: 200  {"embedding": [0.12, -0.05, ...]}
//
// Any non-200 status, transport error, or dimension mismatch fails the
// request with [ErrEmbedding].
type HTTP struct {
	endpoint string
	dim      int
	client   *http.Client
}

// HTTPOption configures an HTTP embedder.
type HTTPOption func(*HTTP)

// WithClient sets the underlying http.Client (timeouts, transport).
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// NewHTTP creates an HTTP embedder for the given endpoint. dim is the
// embedding dimension the model produces (e.g., 192 for ECAPA-TDNN).
func NewHTTP(endpoint string, dim int, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		endpoint: endpoint,
		dim:      dim,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ Embedder = (*HTTP)(nil)

type embedRequest struct {
	SampleRate int    `json:"sample_rate"`
	PCM        string `json:"pcm"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed posts the clip to the model service and returns its vector.
func (h *HTTP) Embed(ctx context.Context, clip *audio.Clip) ([]float32, error) {
	if len(clip.Samples) == 0 {
		return nil, fmt.Errorf("%w: empty clip", ErrEmbedding)
	}

	body, err := json.Marshal(embedRequest{
		SampleRate: clip.SampleRate,
		PCM:        base64.StdEncoding.EncodeToString(clip.Bytes()),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: model service returned %d: %s",
			ErrEmbedding, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEmbedding, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrEmbedding, out.Error)
	}
	if len(out.Embedding) != h.dim {
		return nil, fmt.Errorf("%w: expected %d dims, got %d",
			ErrEmbedding, h.dim, len(out.Embedding))
	}
	return out.Embedding, nil
}

// Dimension returns the configured embedding dimension.
func (h *HTTP) Dimension() int { return h.dim }
