package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goldlure/blogwatch/internal/config"
)

func TestInitCreatesExampleConfig(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "cfg")
	restoreFlags(t)
	configDir = tmpDir

	output, err := captureStdout(t, func() error {
		return initAction(nil, nil)
	})
	if err != nil {
		t.Fatalf("init action: %v", err)
	}
	requireContains(t, output, "created:")

	if _, err := os.Stat(filepath.Join(tmpDir, config.DefaultConfigFile)); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// The shipped example must itself be a loadable config.
	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Helm" {
		t.Fatalf("unexpected example sources: %+v", cfg.Sources)
	}

	output, err = captureStdout(t, func() error {
		return initAction(nil, nil)
	})
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	requireContains(t, output, "already initialized")
}
