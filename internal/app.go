// Package internal wires the qualsync components together: it loads the
// environment configuration, constructs the Qualtrics client and the event
// log, and hands the assembled runtime to the CLI layer.
package internal

import (
	"github.com/civiclab/qualsync/internal/cli"
	"github.com/civiclab/qualsync/internal/config"
	"github.com/civiclab/qualsync/internal/observability"
	"github.com/civiclab/qualsync/internal/qualtrics"
)

// App holds the wired dependencies for one invocation.
type App struct {
	Cfg      *config.Config
	Client   *qualtrics.Client
	EventLog observability.EventLog
}

// NewApp loads and validates configuration and constructs every component.
// A configuration error here is fatal. An event-log error is not: the run
// proceeds without observability.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	app := &App{
		Cfg:    cfg,
		Client: qualtrics.NewClient(cfg),
	}

	if cfg.EventLogPath != "" {
		if log, err := observability.NewJSONLEventLog(cfg.EventLogPath); err == nil {
			app.EventLog = log
		}
	}
	return app, nil
}

// Runtime adapts the App into the CLI layer's dependency bundle.
func (a *App) Runtime() *cli.Runtime {
	return &cli.Runtime{
		Cfg:      a.Cfg,
		Client:   a.Client,
		EventLog: a.EventLog,
	}
}

// Bootstrap is installed as cli.Bootstrap by main. Configuration loading is
// deferred to here so commands that need no environment still work.
func Bootstrap() (*cli.Runtime, error) {
	app, err := NewApp()
	if err != nil {
		return nil, err
	}
	return app.Runtime(), nil
}
