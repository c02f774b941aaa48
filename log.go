package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/JustinDev-afk/languagebridge/internal/pathutil"
)

// setupLog configures the global logger. Logs go to stderr at warn level by
// default; LB_LOG_FILE redirects them to a file, and LB_DEBUG or --debug
// lowers the level. The returned closer flushes the log file, if any.
func setupLog() (func() error, error) {
	log.SetLevel(log.WarnLevel)
	if os.Getenv("LB_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		log.SetFormatter(log.LogfmtFormatter)
	}

	if logFile := os.Getenv("LB_LOG_FILE"); logFile != "" {
		path := pathutil.ExpandPath(logFile)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(f)
		log.SetFormatter(log.LogfmtFormatter)
		log.SetReportTimestamp(true)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}
