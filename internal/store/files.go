package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spboyer/arena/internal/models"
)

// FileStore reads exported evaluation JSON files from a directory. Each file
// holds one RawEvaluation with its items.
type FileStore struct {
	dir string

	mu      sync.RWMutex
	evals   map[string]*models.EvaluationRecord
	loaded  bool
	loadErr error
}

// NewFileStore creates a FileStore that reads evaluations from dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:   dir,
		evals: make(map[string]*models.EvaluationRecord),
	}
}

// load reads every evaluation file in the configured directory.
func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.evals = make(map[string]*models.EvaluationRecord)

	if fs.dir == "" {
		fs.loaded = true
		return nil
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			fs.loaded = true
			return nil
		}
		fs.loadErr = err
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(fs.dir, e.Name())
		rec, err := readEvaluationFile(path)
		if err != nil {
			slog.Debug("skipping evaluation file", "path", path, "error", err)
			continue
		}
		if rec.ID == "" {
			rec.ID = strings.TrimSuffix(e.Name(), ".json")
		}
		fs.evals[rec.ID] = rec
	}

	fs.loaded = true
	fs.loadErr = nil
	return nil
}

func readEvaluationFile(path string) (*models.EvaluationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw models.RawEvaluation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.Normalize()
}

func (fs *FileStore) ensureLoaded() error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load()
}

// Reload forces a fresh read of the directory.
func (fs *FileStore) Reload() error {
	return fs.load()
}

// GetEvaluation returns the evaluation with the given ID.
func (fs *FileStore) GetEvaluation(_ context.Context, id string) (*models.EvaluationRecord, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rec, ok := fs.evals[id]
	if !ok {
		return nil, ErrEvaluationNotFound
	}
	return rec, nil
}

// ListEvaluations returns evaluation summaries newest first, optionally
// filtered to one test run.
func (fs *FileStore) ListEvaluations(_ context.Context, testRunID string) ([]models.EvaluationSummary, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	summaries := make([]models.EvaluationSummary, 0, len(fs.evals))
	for _, rec := range fs.evals {
		if testRunID != "" && rec.TestRunID != testRunID {
			continue
		}
		summaries = append(summaries, rec.Summary())
	}
	slices.SortFunc(summaries, func(a, b models.EvaluationSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return summaries, nil
}

var _ EvaluationReader = (*FileStore)(nil)
