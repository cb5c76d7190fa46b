// Package cli implements the qualsync command tree. Runtime dependencies
// are injected by the application wiring in internal/app.go via the
// Bootstrap variable, so commands that need no configuration (version,
// completion) work even with an empty environment.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civiclab/qualsync/internal/config"
	"github.com/civiclab/qualsync/internal/observability"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// ExportClient is the slice of the Qualtrics client the run command needs.
// Tests substitute fakes.
type ExportClient interface {
	StartExport(ctx context.Context) (string, error)
	AwaitCompletion(ctx context.Context, progressID string) (string, error)
	FetchArchive(ctx context.Context, fileID string) ([]byte, error)
}

// Runtime carries the wired dependencies for one invocation.
type Runtime struct {
	Cfg      *config.Config
	Client   ExportClient
	EventLog observability.EventLog
}

// Close releases runtime resources.
func (rt *Runtime) Close() {
	if rt.EventLog != nil {
		_ = rt.EventLog.Close()
	}
}

// Bootstrap loads configuration and wires the runtime. Set by main before
// Execute; replaced by tests.
var Bootstrap func() (*Runtime, error)

var rootCmd = &cobra.Command{
	Use:   "qualsync",
	Short: "Sync Qualtrics survey responses into petition markdown files",
	Long: `qualsync performs one export-download-reconcile cycle against the
Qualtrics response-export API: it requests a CSV export of a survey, waits
for it to complete, downloads the archive, and reconciles the published
responses into a directory of markdown petition documents with YAML front
matter, one file per response.

It is designed to be invoked periodically by an external scheduler; each
invocation is a complete, idempotent run.

Configuration is read from QUALTRICS_* environment variables; see
"qualsync check" for the resolved values.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qualsync %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
