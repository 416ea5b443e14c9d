package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nconklindev/qareport/internal/command/generate"
	"github.com/nconklindev/qareport/internal/config"
	"github.com/nconklindev/qareport/internal/logging"
	"github.com/nconklindev/qareport/internal/pipeline"
	"github.com/nconklindev/qareport/internal/session"
	"github.com/nconklindev/qareport/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup finishes before exit.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v":
			fmt.Fprintf(stdout, "qareport %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
			return 0
		case "report":
			if err := generate.Run(args[1:]); err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
			return 0
		}
	}

	cfg, err := config.Load(os.Getenv("QAREPORT_CONFIG"))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// The TUI owns the terminal, so logs go to a file.
	log, closer, err := logging.ToFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	store := session.NewMemory()
	log.WithField("session", store.ID).Info("starting")
	defer func() {
		log.WithFields(logrus.Fields{
			"session":  store.ID,
			"keys":     store.Len(),
			"duration": time.Since(store.CreatedAt).Round(time.Second).String(),
		}).Info("session ended")
	}()

	sess := pipeline.New(store, cfg, log.WithField("session", store.ID))
	p := tea.NewProgram(ui.New(cfg, sess, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.WithError(err).Error("program exited")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
