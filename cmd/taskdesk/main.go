package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"taskdesk/internal/config"
	"taskdesk/internal/manager"
	"taskdesk/internal/store"
	"taskdesk/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	dataFile := flag.String("data", "", "path to the data file (overrides config)")
	importLegacy := flag.String("import", "", "import tasks from a legacy flat task file into the given project id (format: file:projectID)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("taskdesk %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	st := store.New(cfg.DataFile, logger)
	mgr := manager.New(st, logger)

	if *importLegacy != "" {
		if err := runImport(mgr, *importLegacy); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing legacy tasks: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	app := ui.NewApp(mgr)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// newLogger opens the configured log file. The TUI owns the terminal,
// so logs go to a file rather than stdout.
func newLogger(cfg *config.Config) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	logger := log.New(f)
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger, func() { f.Close() }, nil
}

// runImport parses "file:projectID" and pulls legacy tasks in.
func runImport(mgr *manager.Manager, spec string) error {
	file, projectID, ok := splitImportSpec(spec)
	if !ok {
		return fmt.Errorf("invalid import spec %q, expected file:projectID", spec)
	}

	n, err := mgr.ImportLegacyTasks(file, projectID)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d tasks into project %s\n", n, projectID)
	return nil
}

// splitImportSpec splits on the last colon so Windows drive letters in
// the file path survive.
func splitImportSpec(spec string) (file, projectID string, ok bool) {
	for i := len(spec) - 1; i >= 0; i-- {
		if spec[i] == ':' {
			return spec[:i], spec[i+1:], spec[:i] != "" && spec[i+1:] != ""
		}
	}
	return "", "", false
}
