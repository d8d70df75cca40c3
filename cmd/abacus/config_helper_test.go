package main

import (
	"os"
	"path/filepath"

	"github.com/aretw0/abacus/internal/config"
)

func writeConfig(dir, content string) error {
	return os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte(content), 0644)
}
