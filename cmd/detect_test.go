package cmd

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/detect"
)

func TestDetectDemoPlain(t *testing.T) {
	tmp := isolate(t)
	noDemoDelay(t)
	img := leafPNG(t, tmp, "leaf.png")

	out, err := executeCommand(rootCmd, "detect", "--demo", "--plain", img)
	require.NoError(t, err)
	assert.Contains(t, out, "# Detection Results")
	assert.Contains(t, out, "Confidence")
}

func TestDetectSendsImageWithToken(t *testing.T) {
	tmp := isolate(t)
	signIn(t, "tok-9")
	img := leafPNG(t, tmp, "leaf.png")

	var auth, filename string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/predict", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if _, fh, err := r.FormFile("file"); err == nil {
			filename = fh.Filename
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"crop_name": "Tomato", "disease_name": "Early Blight", "confidence": 88.5,
			"severity": "Medium", "status": "Diseased", "description": "Dark rings.",
			"organic_treatment": []string{"Neem oil"}, "chemical_treatment": []string{"Mancozeb"},
		})
	})
	srv := serve(t, mux)

	out, err := executeCommand(rootCmd, "detect", "--plain", "--format", "json", "--api-url", srv.URL, img)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", auth)
	assert.Equal(t, "leaf.png", filename)

	var p api.Prediction
	require.NoError(t, json.Unmarshal([]byte(jsonBody(out)), &p))
	assert.Equal(t, "Early Blight", p.DiseaseName)
	assert.InDelta(t, 88.5, p.Confidence, 0.001)
}

func TestDetectRejectsNonImage(t *testing.T) {
	tmp := isolate(t)
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { called = true })
	srv := serve(t, mux)

	notes := filepath.Join(tmp, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))

	_, err := executeCommand(rootCmd, "detect", "--plain", "--api-url", srv.URL, notes)
	require.Error(t, err)
	assert.ErrorIs(t, err, detect.ErrInvalidImage)
	assert.Contains(t, err.Error(), detect.InvalidImageMessage)
	assert.False(t, called, "invalid image reached the backend")
}

func TestDetectServerErrorMessage(t *testing.T) {
	tmp := isolate(t)
	img := leafPNG(t, tmp, "leaf.png")
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/predict", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "Model not loaded"})
	})
	srv := serve(t, mux)

	_, err := executeCommand(rootCmd, "detect", "--plain", "--api-url", srv.URL, img)
	require.Error(t, err)
	assert.Equal(t, "Model not loaded", err.Error())
}

// jsonBody strips anything printed before the first '{' (progress lines
// share the buffer with stdout in tests).
func jsonBody(out string) string {
	for i, r := range out {
		if r == '{' || r == '[' {
			return out[i:]
		}
	}
	return out
}
