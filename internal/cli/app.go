package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ppiankov/answermirror/internal/classify"
	"github.com/ppiankov/answermirror/internal/logging"
	"github.com/ppiankov/answermirror/internal/model"
	"github.com/ppiankov/answermirror/internal/reddit"
	"github.com/ppiankov/answermirror/internal/scan"
)

// app holds the pieces shared by the commands
type app struct {
	cfg       *model.Config
	logger    *slog.Logger
	logCloser io.Closer
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	slog.SetDefault(logger)
	return &app{cfg: cfg, logger: logger, logCloser: closer}, nil
}

func (a *app) Close() error {
	return a.logCloser.Close()
}

func (a *app) forum() (*reddit.Client, error) {
	client, err := reddit.New(a.cfg.Reddit, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return client, nil
}

func (a *app) scanner(source scan.CommentSource) (*scan.Scanner, error) {
	cl, err := classify.FromConfig(a.cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}
	return scan.NewScanner(source, cl, a.logger), nil
}
