package embed

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voicegate/voicegate/pkg/audio"
)

func testClip() *audio.Clip {
	return &audio.Clip{Samples: []int16{100, -200, 300}, SampleRate: 16000, Channels: 1}
}

func TestHTTPEmbed(t *testing.T) {
	want := []float32{0.5, -0.25, 0.1}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SampleRate != 16000 {
			t.Errorf("sample_rate = %d, want 16000", req.SampleRate)
		}
		pcm, err := base64.StdEncoding.DecodeString(req.PCM)
		if err != nil {
			t.Errorf("pcm not base64: %v", err)
		}
		if len(pcm) != 6 {
			t.Errorf("pcm length = %d, want 6", len(pcm))
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: want})
	}))
	defer srv.Close()

	e := NewHTTP(srv.URL, 3)
	got, err := e.Embed(context.Background(), testClip())
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("embedding = %v, want %v", got, want)
	}
}

func TestHTTPEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewHTTP(srv.URL, 3)
	if _, err := e.Embed(context.Background(), testClip()); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed = %v, want ErrEmbedding", err)
	}
}

func TestHTTPEmbedErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Error: "audio too short"})
	}))
	defer srv.Close()

	e := NewHTTP(srv.URL, 3)
	if _, err := e.Embed(context.Background(), testClip()); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed = %v, want ErrEmbedding", err)
	}
}

func TestHTTPEmbedDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1, 2}})
	}))
	defer srv.Close()

	e := NewHTTP(srv.URL, 192)
	if _, err := e.Embed(context.Background(), testClip()); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed = %v, want ErrEmbedding", err)
	}
}

func TestHTTPEmbedEmptyClip(t *testing.T) {
	e := NewHTTP("http://unused.invalid", 3)
	clip := &audio.Clip{SampleRate: 16000, Channels: 1}
	if _, err := e.Embed(context.Background(), clip); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed(empty) = %v, want ErrEmbedding", err)
	}
}

func TestHTTPEmbedContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewHTTP(srv.URL, 3)
	if _, err := e.Embed(ctx, testClip()); !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed with canceled context = %v, want ErrEmbedding", err)
	}
}
