package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/poule-scoring/internal/config"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
	"github.com/riskibarqy/poule-scoring/internal/usecase"
)

func memoryConfig() config.Config {
	return config.Config{
		ServiceName:      "poule-scoring",
		HTTPAddr:         ":0",
		Storage:          config.StorageMemory,
		ScoringRules:     scoring.DefaultRules(),
		StandingsWorkers: 2,
		CacheEnabled:     true,
		MetricsEnabled:   true,
		InternalJobToken: "secret",
	}
}

func TestNew_MemoryStorageRunsAllPasses(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	result, err := a.Scoring.RunAll(context.Background(), usecase.ScoringOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.PoolsRanked)
	assert.Equal(t, 6, result.Matches.Updated)
}

func TestNewHTTPServer(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv, err := NewHTTPServer(a)
	require.NoError(t, err)

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	a.Config.HTTPAddr = ""
	_, err = NewHTTPServer(a)
	assert.Error(t, err)
}

func TestNew_WebhookSinkReceivesEvents(t *testing.T) {
	var events atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		events.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	cfg := memoryConfig()
	cfg.WebhookEnabled = true
	cfg.WebhookURL = hook.URL
	cfg.NotifyTimeout = 2 * time.Second

	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Scoring.ScoreMatches(context.Background(), usecase.ScoringOptions{})
	require.NoError(t, err)
	assert.Positive(t, events.Load())
}

func TestNew_WebhookRejectsInvalidURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.WebhookEnabled = true
	cfg.WebhookURL = "ftp://hooks.example.com"

	_, err := New(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
