package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// Store implements ports.HistoryStore using the local filesystem.
// It stores one evaluation per JSON file in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".abacus/history".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".abacus", "history")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.BasePath, id+".json")
}

// validID rejects IDs that would escape the base directory.
func validID(id string) error {
	if id == "" {
		return domain.ErrEmptyID
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid evaluation id %q", id)
	}
	return nil
}

// Append persists the evaluation to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Append(ctx context.Context, e *domain.Evaluation) error {
	if err := validID(e.ID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+e.ID+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(e.ID)
	if _, err := os.Stat(destPath); err == nil {
		// os.Rename fails on Windows when the destination exists.
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing evaluation file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Get reads one evaluation file.
func (s *Store) Get(ctx context.Context, id string) (*domain.Evaluation, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.read(s.path(id))
}

func (s *Store) read(path string) (*domain.Evaluation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("failed to read evaluation file: %w", err)
	}

	var e domain.Evaluation
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation %s: %w", filepath.Base(path), err)
	}
	return &e, nil
}

// List loads every evaluation file and orders them newest first.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Evaluation{}, nil
		}
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	out := make([]domain.Evaluation, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := s.read(filepath.Join(s.BasePath, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}

	slices.SortFunc(out, domain.NewestFirst)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear removes every evaluation file, leaving unrelated files alone.
func (s *Store) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list history: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		err := os.Remove(filepath.Join(s.BasePath, entry.Name()))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete evaluation file: %w", err)
		}
	}
	return nil
}
