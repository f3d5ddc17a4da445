package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

func TestAnalyzer_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/annotate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req driven.AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rust", req.Language)

		json.NewEncoder(w).Encode(map[string]any{
			"annotations": []domain.RawAnnotation{
				{Start: 4, End: 5, Identifier: "x", Type: "i32"},
			},
		})
	}))
	defer server.Close()

	a := New(Config{BaseURL: server.URL})
	annotations, err := a.Analyze(context.Background(), driven.AnalysisRequest{Text: "let x = 1;", Language: "rust"})

	require.NoError(t, err)
	require.Len(t, annotations, 1)
	assert.Equal(t, "i32", annotations[0].Type)
}

func TestAnalyzer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "analysis crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	a := New(Config{BaseURL: server.URL})
	_, err := a.Analyze(context.Background(), driven.AnalysisRequest{Text: "x", Language: "go"})

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "analysis crashed")
}

func TestAnalyzer_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	a := New(Config{BaseURL: server.URL})
	_, err := a.Analyze(context.Background(), driven.AnalysisRequest{Text: "x", Language: "go"})

	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
}

func TestAnalyzer_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	a := New(Config{BaseURL: server.URL})
	_, err := a.Analyze(context.Background(), driven.AnalysisRequest{Text: "x", Language: "go"})

	assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
}

func TestAnalyzer_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect;
		// with an unread body the request context is never canceled.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	a := New(Config{BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Analyze(ctx, driven.AnalysisRequest{Text: "x", Language: "go"})

	assert.ErrorIs(t, err, domain.ErrAnalysisTimeout)
}

func TestAnalyzer_Cancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	a := New(Config{BaseURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(50*time.Millisecond, cancel)
	defer timer.Stop()

	_, err := a.Analyze(ctx, driven.AnalysisRequest{Text: "x", Language: "go"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrAnalysisTimeout)
}

func TestAnalyzer_Ping(t *testing.T) {
	t.Run("healthy service", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/healthz", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := New(Config{BaseURL: server.URL}).Ping(context.Background())
		assert.NoError(t, err)
	})

	t.Run("unhealthy service", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		err := New(Config{BaseURL: server.URL}).Ping(context.Background())
		assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
	})
}
