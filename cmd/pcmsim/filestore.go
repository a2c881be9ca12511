package main

import (
	"os"

	"github.com/charmbracelet/log"
)

// fileStore is a config.FlashStore backed by a plain file, standing in for
// the real firmware's flash sector — enough to let pcmsim survive a
// restart with ApplySavedConfig across runs.
type fileStore struct {
	path   string
	logger *log.Logger
}

func newFileStore(path string, logger *log.Logger) *fileStore {
	return &fileStore{path: path, logger: logger}
}

func (s *fileStore) Load() ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *fileStore) Save(blob []byte) error {
	if err := os.WriteFile(s.path, blob, 0o644); err != nil {
		return err
	}
	s.logger.Info("saved configuration", "path", s.path, "bytes", len(blob))
	return nil
}
