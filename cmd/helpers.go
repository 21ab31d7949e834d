package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/backend"
	"github.com/ziadkadry99/contractqa/internal/canvas"
	"github.com/ziadkadry99/contractqa/internal/config"
	"github.com/ziadkadry99/contractqa/internal/db"
	"github.com/ziadkadry99/contractqa/internal/history"
	"github.com/ziadkadry99/contractqa/internal/logging"
	"github.com/ziadkadry99/contractqa/internal/pdfview"
	"github.com/ziadkadry99/contractqa/internal/progress"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// pageFile is the name rendered pages are written under in the output dir.
const pageFile = "page.png"

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `contractqa init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the logger for cfg. --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// openHistory opens the history store, or returns nil when history is
// disabled. The returned func closes the database.
func openHistory(cfg *config.Config) (*history.Store, func(), error) {
	if !cfg.History.Enabled {
		return nil, func() {}, nil
	}
	database, err := db.Open(cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history %s: %w", cfg.History.Path, err)
	}
	return history.NewStore(database), func() { database.Close() }, nil
}

// newBackend creates the backend client for cfg, recording calls into store
// when it is non-nil.
func newBackend(cfg *config.Config, logger *zap.Logger, reporter progress.Reporter, store *history.Store) viewer.Backend {
	client := backend.NewClient(backend.Options{
		BaseURL:    cfg.Backend.URL,
		UploadPath: cfg.Backend.UploadPath,
		AskPath:    cfg.Backend.AskPath,
		Timeout:    cfg.Backend.Timeout,
		Logger:     logger,
		Reporter:   reporter,
	})
	if store == nil {
		return client
	}
	return history.Wrap(client, store, logger)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newLoader opens documents for the controller. Tests replace it to avoid
// native rasterisation.
var newLoader = func(objects *pdfview.Objects, logger *zap.Logger) viewer.Loader {
	return pdfview.NewEngine(objects, logger)
}

// workspace is a controller wired to the real backend, PDF engine and an
// in-memory canvas. Labels records everything the controller displays.
type workspace struct {
	controller *viewer.Controller
	canvas     *canvas.Canvas
	labels     *viewer.Recorder
	objects    *pdfview.Objects
}

// newWorkspace wires a controller drawing into c. Extra displays receive
// every label update after the workspace's own recorder.
func newWorkspace(cfg *config.Config, logger *zap.Logger, b viewer.Backend, c *canvas.Canvas, displays ...viewer.Display) *workspace {
	objects := pdfview.NewObjects()
	labels := &viewer.Recorder{}

	ctrl := viewer.NewController(
		viewer.Config{Scale: cfg.Viewer.Scale, Logger: logger},
		b,
		newLoader(objects, logger),
		objects,
		c,
		append(viewer.Displays{labels}, displays...),
	)

	return &workspace{controller: ctrl, canvas: c, labels: labels, objects: objects}
}
