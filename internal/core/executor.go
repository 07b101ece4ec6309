package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jprybylski/batchrun/internal/registry"
	"github.com/jprybylski/batchrun/internal/uri"
)

// Launcher starts a local file with arguments, optionally elevated, and waits
// for it to finish. runtime.Launcher is the production implementation.
type Launcher interface {
	Run(ctx context.Context, path string, args []string, elevate bool) error
}

// FileExecutor is the execution service: it turns a document into a local file
// through the scheme registry, launches it and records the run.
type FileExecutor struct {
	CacheDir    string
	HistoryPath string // empty disables the run history
	Launcher    Launcher
	Logger      *log.Logger

	now func() time.Time
}

// NewFileExecutor builds an executor from the configuration.
func NewFileExecutor(cfg *Config, l Launcher, logger *log.Logger) *FileExecutor {
	return &FileExecutor{
		CacheDir:    cfg.Defaults.CacheDir,
		HistoryPath: cfg.Defaults.History,
		Launcher:    l,
		Logger:      logger,
	}
}

// Run launches id. It reports true when the process ran and exited cleanly;
// any failure is returned with false.
func (e *FileExecutor) Run(ctx context.Context, id uri.ID, args []string, elevate bool) (bool, error) {
	logger := e.logger()

	path, err := registry.Localize(ctx, id, e.CacheDir)
	if err != nil {
		return false, fmt.Errorf("localize %s: %w", id, err)
	}
	if !fileExists(path) {
		return false, fmt.Errorf("localize %s: %s does not exist", id, path)
	}
	if id.Scheme != uri.FileScheme {
		logger.Debug("[LOCAL] materialized", "uri", id.String(), "path", path)
	}

	sum, err := HashFile(path)
	if err != nil {
		logger.Warn("[WARN] local hash", "path", path, "err", err)
	}

	logger.Info("[RUN ] "+id.Base(), "args", args, "elevated", elevate)
	runErr := e.Launcher.Run(ctx, path, args, elevate)
	if err := e.record(id, args, sum, elevate, runErr == nil); err != nil {
		logger.Warn("[WARN] history write", "path", e.HistoryPath, "err", err)
	}
	if runErr != nil {
		return false, runErr
	}
	return true, nil
}

func (e *FileExecutor) record(id uri.ID, args []string, sum string, elevate, ok bool) error {
	if e.HistoryPath == "" {
		return nil
	}
	h, err := readHistory(e.HistoryPath)
	if err != nil {
		return err
	}
	now := e.clock().UTC()
	h.Items[historyKey(id)] = &HistoryItem{
		Args:        args,
		LocalSHA256: sum,
		Elevated:    elevate,
		Succeeded:   ok,
		RanAt:       &now,
	}
	h.Version = 1
	h.LastRun = &now
	return writeHistory(e.HistoryPath, h)
}

func (e *FileExecutor) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *FileExecutor) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.New(io.Discard)
}
