package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deepakdgupta1/knowcode/internal/config"
	"github.com/deepakdgupta1/knowcode/internal/engine"
	"github.com/deepakdgupta1/knowcode/internal/logging"
)

// openEngine resolves the state directory and configuration document for
// root and constructs an Engine, creating the state directory if needed.
func openEngine(root string) (*engine.Engine, error) {
	return openEngineWithSignals(root, "", 0)
}

// openEngineWithSignals is openEngine plus the optional post-analyze signal
// ingestion flags, split out so commands that never ingest coverage or git
// history (query, watch) don't carry unused flags.
func openEngineWithSignals(root, coverageXMLPath string, gitHistoryLimit int) (*engine.Engine, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	stateDir := flagStateDir
	if stateDir == "" {
		stateDir = filepath.Join(root, ".knowcode")
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	settings := config.Load(flagConfig)
	log := logging.New(flagVerbose)

	return engine.New(engine.Config{
		Root:            root,
		StateDir:        stateDir,
		Settings:        settings,
		Logger:          log,
		CoverageXMLPath: coverageXMLPath,
		GitHistoryLimit: gitHistoryLimit,
	})
}
