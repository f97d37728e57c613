package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/enn-tee/agentic-job-search/internal/settings"
)

// tailorDir is the per-user state directory: settings database, artifact
// cache, and output files live under it unless overridden by flags.
func tailorDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tailor")
}

func getSettings() *settings.Store {
	s, err := settings.Open(filepath.Join(tailorDir(), "settings.db"))
	if err != nil {
		fmt.Printf("Failed to open settings: %v\n", err)
		os.Exit(1)
	}
	return s
}
