package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/Winter-Soldier02/FreQ/config"
	"github.com/Winter-Soldier02/FreQ/core"
)

const snapshot = `[
  {"question": "what is a stack data structure?", "similar_variants": ["what is a stack data structure?"], "frequency": 1},
  {"question": "what is quicksort and how does it work?", "similar_variants": ["what is quicksort and how does it work?", "explain how quicksort works in detail?"], "frequency": 3}
]`

// runApp runs the CLI in an isolated directory and returns its stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{config.EnvEmbeddingHost, config.EnvEmbeddingModel, config.EnvEmbeddingToken, config.EnvDatabaseURL, config.EnvStorePath} {
		t.Setenv(key, "")
	}
	color.NoColor = true

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"freq"}, args...))
	return out.String(), err
}

func findCommand(t *testing.T, name string) *cli.Command {
	t.Helper()
	for _, cmd := range newApp().Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis_results.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))
	return path
}

func TestAnalyzeCommandFlags(t *testing.T) {
	cmd := findCommand(t, "analyze")

	defaults := map[string]any{}
	for _, flag := range cmd.Flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			defaults[f.Name] = f.Value
		case *cli.Float64Flag:
			defaults[f.Name] = f.Value
		case *cli.IntFlag:
			defaults[f.Name] = f.Value
		}
	}

	assert.Equal(t, 0.75, defaults["threshold"])
	assert.Equal(t, "http://localhost:11434/v1", defaults["embedding-host"])
	assert.Equal(t, "all-minilm", defaults["embedding-model"])
	assert.Equal(t, 300, defaults["dpi"])
	assert.Equal(t, "eng", defaults["lang"])
	assert.Equal(t, config.BackendBadger, defaults["store"])
	assert.Equal(t, config.DefaultStorePath, defaults["store-path"])
}

func TestAnalyzeCommand(t *testing.T) {
	t.Run("requires files", func(t *testing.T) {
		_, err := runApp(t, "analyze")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FILE")
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		_, err := runApp(t, "analyze", "--store", "memory", "paper.pdf", "notes.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
		assert.Contains(t, err.Error(), "notes.txt")
	})

	t.Run("rejects invalid threshold", func(t *testing.T) {
		_, err := runApp(t, "analyze", "--store", "memory", "--threshold", "1.5", "paper.pdf")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestReportCommand(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		out, err := runApp(t, "report", "--store", "memory")
		require.NoError(t, err)
		assert.Equal(t, "no analysis results\n", out)
	})

	t.Run("ranked by frequency", func(t *testing.T) {
		path := writeSnapshot(t)
		out, err := runApp(t, "report", "--store", "file", "--store-path", path)
		require.NoError(t, err)

		quicksort := strings.Index(out, "what is quicksort and how does it work? (x3)")
		stack := strings.Index(out, "what is a stack data structure? (x1)")
		require.GreaterOrEqual(t, quicksort, 0, out)
		require.GreaterOrEqual(t, stack, 0, out)
		assert.Less(t, quicksort, stack)
		assert.Contains(t, out, "2 groups, 4 occurrences")
		assert.NotContains(t, out, "explain how quicksort works")
	})

	t.Run("limit and variants", func(t *testing.T) {
		path := writeSnapshot(t)
		out, err := runApp(t, "report", "--store", "file", "--store-path", path, "--limit", "1", "--variants")
		require.NoError(t, err)

		assert.Contains(t, out, "  1. what is quicksort and how does it work? (x3)")
		assert.Contains(t, out, "~ explain how quicksort works in detail?")
		assert.NotContains(t, out, "stack")
	})

	t.Run("json keeps the saved order", func(t *testing.T) {
		path := writeSnapshot(t)
		out, err := runApp(t, "report", "--store", "file", "--store-path", path, "--json")
		require.NoError(t, err)

		assert.Contains(t, out, `"similar_variants"`)
		assert.Less(t, strings.Index(out, "stack"), strings.Index(out, "quicksort"))
	})

	t.Run("json of empty store", func(t *testing.T) {
		out, err := runApp(t, "report", "--store", "memory", "--json")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("negative limit", func(t *testing.T) {
		path := writeSnapshot(t)
		_, err := runApp(t, "report", "--store", "file", "--store-path", path, "--limit", "-1")
		assert.Error(t, err)
	})

	t.Run("postgres needs a url", func(t *testing.T) {
		_, err := runApp(t, "report", "--store", "postgres")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("config file selects the store", func(t *testing.T) {
		path := writeSnapshot(t)
		cfgPath := filepath.Join(t.TempDir(), "freq.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  backend: file\n  path: "+path+"\n"), 0o644))

		out, err := runApp(t, "--config", cfgPath, "report")
		require.NoError(t, err)
		assert.Contains(t, out, "(x3)")
	})
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "INFO"},
		{level: "warn"},
		{level: "error"},
		{level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := runApp(t, "--log-level", tt.level, "report", "--store", "memory")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			assert.NoError(t, err)
		})
	}
}
