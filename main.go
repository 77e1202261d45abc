package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"tetrii/config"
	"tetrii/terminal"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[2J\033[H\033[?25h"
)

func main() {
	f, err := os.OpenFile(filepath.Join(os.TempDir(), "tetrii.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer f.Close()
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := config.Default()
	t, err := terminal.New(&terminal.Options{Logger: logger, Config: cfg})
	if err != nil {
		logger.Error("unable to start terminal", slog.String("error", err.Error()))
		log.Fatalf("unable to start terminal: %v", err)
	}

	fmt.Print(hideCursor)
	t.Start()
	fmt.Print(showCursor)
	logger.Info("bye")
}
