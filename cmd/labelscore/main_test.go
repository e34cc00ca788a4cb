package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/labelscore/internal/model"
)

const testTable = `
name: per-100
thresholds:
  - {nutrient: fat, unit: gram, lower: 3, upper: 17.5}
  - {nutrient: saturated_fat, unit: gram, lower: 1.5, upper: 5}
  - {nutrient: sugar, unit: gram, lower: 5, upper: 22.5}
  - {nutrient: salt, unit: gram, lower: 0.3, upper: 1.5}
`

func writeTestConfig(t *testing.T, source string) (cfgPath, dir string) {
	t.Helper()
	dir = t.TempDir()

	tablePath := filepath.Join(dir, "thresholds.yaml")
	require.NoError(t, os.WriteFile(tablePath, []byte(testTable), 0o644))

	cfg := fmt.Sprintf(`
env: test
thresholds:
  source: %s
  table_path: %s
  db_path: %s
server:
  address: 127.0.0.1:0
log:
  level: error
  format: text
`, source, tablePath, filepath.Join(dir, "thresholds.db"))

	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEvaluate_StaticSource(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "static")

	out, err := run(t, "evaluate", "--config", cfgPath,
		"--fat", "20", "--saturated-fat", "1", "--sugar", "5", "--salt", "1.5")
	require.NoError(t, err)

	assert.Regexp(t, `fat\s+20\s+unfavorable\s+red`, out)
	assert.Regexp(t, `saturated_fat\s+1\s+favorable\s+green`, out)
	assert.Regexp(t, `sugar\s+5\s+moderate\s+yellow`, out)
	assert.Regexp(t, `salt\s+1.5\s+moderate\s+yellow`, out)
}

func TestEvaluate_MissingThresholdsFails(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "static")

	out, err := run(t, "evaluate", "--config", cfgPath, "--unit", "milliliter",
		"--fat", "1", "--saturated-fat", "1", "--sugar", "1", "--salt", "1")
	assert.ErrorIs(t, err, model.ErrThresholdsNotFound)
	assert.Empty(t, out)
}

func TestEvaluate_RejectsUnknownUnit(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "static")

	_, err := run(t, "evaluate", "--config", cfgPath, "--unit", "cup",
		"--fat", "1", "--saturated-fat", "1", "--sugar", "1", "--salt", "1")
	assert.ErrorIs(t, err, model.ErrUnknownUnit)
}

func TestEvaluate_RequiresAllNutrients(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "static")

	_, err := run(t, "evaluate", "--config", cfgPath, "--fat", "1")
	assert.ErrorContains(t, err, "required flag(s)")
}

func TestSeedThenEvaluate_SQLiteSource(t *testing.T) {
	cfgPath, dir := writeTestConfig(t, "sqlite")

	out, err := run(t, "seed", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("seeded 4 rules into %s\n", filepath.Join(dir, "thresholds.db")), out)

	out, err = run(t, "evaluate", "--config", cfgPath,
		"--fat", "1", "--saturated-fat", "1", "--sugar", "1", "--salt", "0.1")
	require.NoError(t, err)
	assert.Regexp(t, `fat\s+1\s+favorable\s+green`, out)
	assert.Regexp(t, `salt\s+0.1\s+favorable\s+green`, out)
}

func writeHTTPConfig(t *testing.T, url string) string {
	t.Helper()

	cfg := fmt.Sprintf(`
thresholds:
  source: http
  remote:
    url: %s
    timeout: 1s
    retry:
      max_attempts: 1
log:
  level: error
`, url)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestEvaluate_HTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		fmt.Fprint(w, `{"lower":1,"upper":2}`)
	}))
	defer srv.Close()

	out, err := run(t, "evaluate", "--config", writeHTTPConfig(t, srv.URL),
		"--fat", "0.5", "--saturated-fat", "1.5", "--sugar", "3", "--salt", "2")
	require.NoError(t, err)
	assert.Regexp(t, `fat\s+0.5\s+favorable\s+green`, out)
	assert.Regexp(t, `sugar\s+3\s+unfavorable\s+red`, out)
}

func TestEvaluate_UnreachableHTTPSourceFailsBeforeLookups(t *testing.T) {
	var lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		lookups.Add(1)
	}))
	defer srv.Close()

	out, err := run(t, "evaluate", "--config", writeHTTPConfig(t, srv.URL),
		"--fat", "1", "--saturated-fat", "1", "--sugar", "1", "--salt", "1")
	assert.ErrorContains(t, err, "threshold source http unavailable")
	assert.Empty(t, out)
	assert.Zero(t, lookups.Load())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "static")

	a := &app{cfgPath: cfgPath}
	require.NoError(t, a.load(&bytes.Buffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.serve(ctx))
}

func TestServe_RejectsHTTPSource(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "static")

	a := &app{cfgPath: cfgPath}
	require.NoError(t, a.load(&bytes.Buffer{}))
	a.cfg.Thresholds.Source = "http"

	assert.ErrorContains(t, a.serve(context.Background()), "serve needs")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "labelscore dev (commit none)\n", out)
}
