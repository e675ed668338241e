package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/cropguard/internal/session"
)

func historyBackend(t *testing.T, status int, seen *[]string) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history", func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.URL.RawQuery+" "+r.Header.Get("Authorization"))
		if status != http.StatusOK {
			writeJSON(w, status, map[string]any{"detail": "Could not validate credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total": 23, "page": 2, "limit": 10,
			"predictions": []map[string]any{{
				"prediction_id": "p1", "crop_name": "Rice", "disease_name": "Brown Spot",
				"confidence": 81, "severity": "Medium", "status": "Diseased",
				"created_at": "2025-01-15T10:30:00Z",
			}},
		})
	})
	return serve(t, mux).URL
}

func TestHistoryRequiresSession(t *testing.T) {
	isolate(t)
	var seen []string
	url := historyBackend(t, http.StatusOK, &seen)

	_, err := executeCommand(rootCmd, "history", "--plain", "--api-url", url)
	require.Error(t, err)
	assert.Equal(t, errNotSignedIn, err)
	assert.Empty(t, seen)
}

func TestHistoryPlainPage(t *testing.T) {
	isolate(t)
	signIn(t, "tok-1")
	var seen []string
	url := historyBackend(t, http.StatusOK, &seen)

	out, err := executeCommand(rootCmd, "history", "--plain", "--page", "2", "--api-url", url)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "limit=10&page=2 Bearer tok-1", seen[0])

	assert.Contains(t, out, "# Prediction History")
	assert.Contains(t, out, "## Brown Spot")
	assert.Contains(t, out, "Page 2 of 3")
}

func TestHistoryJSON(t *testing.T) {
	isolate(t)
	signIn(t, "tok-1")
	var seen []string
	url := historyBackend(t, http.StatusOK, &seen)

	out, err := executeCommand(rootCmd, "history", "--format", "json", "--limit", "10", "--page", "2", "--api-url", url)
	require.NoError(t, err)

	var got struct {
		Total   int  `json:"total"`
		HasPrev bool `json:"has_prev"`
		HasNext bool `json:"has_next"`
	}
	require.NoError(t, json.Unmarshal([]byte(jsonBody(out)), &got))
	assert.Equal(t, 23, got.Total)
	assert.True(t, got.HasPrev)
	assert.True(t, got.HasNext)
}

func TestHistoryUnauthorizedSignsOut(t *testing.T) {
	isolate(t)
	store := signIn(t, "stale")
	var seen []string
	url := historyBackend(t, http.StatusUnauthorized, &seen)

	_, err := executeCommand(rootCmd, "history", "--plain", "--api-url", url)
	require.Error(t, err)
	assert.Equal(t, errNotSignedIn, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
}
