package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// exportFilePrefix names export files math-flashcards-YYYY-MM-DD.json
const exportFilePrefix = "math-flashcards-"

// BackupService moves the flashcard collection to and from JSON files
type BackupService struct {
	store  *CardStore
	logger *zap.Logger
	now    func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(store *CardStore, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{store: store, logger: logger, now: time.Now}
}

// ExportFileName returns the export file name for the UTC date of t
func ExportFileName(t time.Time) string {
	return exportFilePrefix + t.UTC().Format("2006-01-02") + ".json"
}

// ExportToFile writes the whole collection to a dated file in dir, creating
// dir if needed, and returns the file path
func (s *BackupService) ExportToFile(dir string) (string, error) {
	data, err := s.store.ExportAll()
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, ExportFileName(s.now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	s.logger.Info("flashcards exported", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// ExportToWriter writes the whole collection to w
func (s *BackupService) ExportToWriter(w io.Writer) error {
	data, err := s.store.ExportAll()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ImportFromFile merges the cards in the file at path into the collection
func (s *BackupService) ImportFromFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	s.logger.Debug("importing flashcards", zap.String("path", path))
	return s.ImportFromReader(file)
}

// ImportFromReader merges the cards read from r into the collection
func (s *BackupService) ImportFromReader(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read import: %w", err)
	}
	return s.store.ImportMerge(data)
}

// PeekImportCount returns how many cards an import of data would add
// without changing the collection
func (s *BackupService) PeekImportCount(data []byte) (int, error) {
	cards, err := decodeImport(data)
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}
