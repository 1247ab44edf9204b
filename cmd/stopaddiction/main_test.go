package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// projectWithStore writes a config that points the file backend at a temp dir.
func projectWithStore(t *testing.T) (root string, dataDir string) {
	t.Helper()
	root = t.TempDir()
	dataDir = filepath.Join(root, "data")
	conf := fmt.Sprintf(`store:
  backend: file
  key: results
  file:
    dir: %q
logging:
  directory: %q
  level: error
`, dataDir, filepath.Join(root, "logs"))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.yaml"), []byte(conf), 0o644))
	return root, dataDir
}

func seed(t *testing.T, dataDir string, classes ...string) {
	t.Helper()
	backend, err := store.NewFileBackend(dataDir)
	require.NoError(t, err)
	s := store.New(zap.NewNop(), backend, "results")
	for i, class := range classes {
		rec := models.StoredRecord{
			SurveyResponse: models.NewSurveyResponse(),
			ID:             fmt.Sprint(i),
			SubmittedAt:    "18.10.2026, 10:0" + fmt.Sprint(i) + ":00",
		}
		rec.ClassLevel = class
		rec.Gender = "Ер"
		rec.LifestyleImportance = "4"
		require.NoError(t, s.Append(context.Background(), rec))
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResponsesList(t *testing.T) {
	root, dataDir := projectWithStore(t)
	seed(t, dataDir, "9-сынып", "11-сынып")

	out, err := run(t, "--root", root, "responses", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "4/5")
	assert.Contains(t, out, "2 қатысушы жауап берді")
	assert.Less(t, bytes.Index([]byte(out), []byte("11-сынып")), bytes.Index([]byte(out), []byte("9-сынып")),
		"most recent first")
}

func TestResponsesClear_RequiresYes(t *testing.T) {
	root, dataDir := projectWithStore(t)
	seed(t, dataDir, "10-сынып")

	_, err := run(t, "--root", root, "responses", "clear")
	require.ErrorIs(t, err, errNotConfirmed)

	out, err := run(t, "--root", root, "responses", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 қатысушы жауап берді")

	out, err = run(t, "--root", root, "responses", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All responses cleared.")

	out, err = run(t, "--root", root, "responses", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 қатысушы жауап берді")
}
