package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/gomoku-backend/internal/config"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/tui"
)

// stdout belongs to the screen, so logs only go to a file when one is set.
type tuiConfig struct {
	LogFile  string `env:"GOMOKU_LOG_FILE" env-default:""`
	LogLevel string `env:"GOMOKU_LOG_LEVEL" env-default:"info"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gomoku: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var conf tuiConfig
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return fmt.Errorf("unable to read environment: %w", err)
	}

	logger, closeLog, err := initLogger(conf)
	if err != nil {
		return err
	}
	defer closeLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}

	if err = screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	tui.NewApp(logger, screen, gomoku.NewBoardState()).Run()

	return nil
}

// initialize logger.
func initLogger(conf tuiConfig) (*slog.Logger, func(), error) {
	if conf.LogFile == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}

	file, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: config.ParseLogLevel(conf.LogLevel)}))

	return logger, func() { _ = file.Close() }, nil
}
