package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fakeyudi/cropguard/internal/api"
	"github.com/fakeyudi/cropguard/internal/config"
	"github.com/fakeyudi/cropguard/internal/session"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	return executeCommandContext(context.Background(), root, args...)
}

func executeCommandContext(ctx context.Context, root *cobra.Command, args ...string) (output string, err error) {
	resetFlags(root)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteContextC(ctx)
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs don't leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate points HOME, the data directory and the working directory at a
// fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv(config.EnvAPIURL, "")
	t.Chdir(tmp)
	return tmp
}

// signIn stores a session as a previous login would have.
func signIn(t *testing.T, token string) session.Store {
	t.Helper()
	store, err := session.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := &session.Session{Token: token, User: api.User{ID: "42", Name: "Asha", Email: "asha@farm.in"}}
	if err := store.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return store
}

func serve(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// mockAsk answers prompts by message and fails on unexpected ones.
func mockAsk(t *testing.T, answers map[string]string) {
	t.Helper()
	orig := askOneFunc
	t.Cleanup(func() { askOneFunc = orig })
	askOneFunc = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		var question string
		switch prompt := p.(type) {
		case *survey.Input:
			question = prompt.Message
		case *survey.Password:
			question = prompt.Message
		case *survey.Select:
			question = prompt.Message
		default:
			t.Fatalf("unexpected prompt type %T", p)
		}
		val, ok := answers[question]
		if !ok {
			t.Fatalf("unexpected question: %s", question)
		}
		*(response.(*string)) = val
		return nil
	}
}

// leafPNG writes a small valid PNG into dir.
func leafPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{G: 180, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// noDemoDelay makes --demo answer immediately.
func noDemoDelay(t *testing.T) {
	t.Helper()
	orig := demoDelay
	demoDelay = 0
	t.Cleanup(func() { demoDelay = orig })
}
