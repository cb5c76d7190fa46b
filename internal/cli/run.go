package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/civiclab/qualsync/internal/config"
	"github.com/civiclab/qualsync/internal/document"
	"github.com/civiclab/qualsync/internal/export"
	"github.com/civiclab/qualsync/internal/naming"
	"github.com/civiclab/qualsync/internal/observability"
	"github.com/civiclab/qualsync/internal/syncer"
)

var runDryRun bool

var (
	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)

	createdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	updatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dryRunStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Bold(true)
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one export-download-reconcile cycle",
	Long: `Request a response export from Qualtrics, wait for it to complete,
download the CSV archive, and reconcile the published responses into the
petitions directory.

With --dry-run every decision and comparison runs identically but nothing
is written or renamed; the reported counts match what a real run would do.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := Bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		cfg := rt.Cfg

		// Dry runs must not touch the filesystem, the event log included.
		log := rt.EventLog
		if runDryRun {
			log = nil
		}
		observability.Emit(log, "run.started", map[string]any{"survey_id": cfg.SurveyID})

		store := document.NewStore(cfg.PetitionsDir)
		if err := store.Scan(); err != nil {
			return err
		}
		fmt.Printf("Indexed %d existing petition(s) in %s\n", store.Count(), cfg.PetitionsDir)

		var resolver naming.Resolver
		switch cfg.NamingStrategy {
		case config.StrategySlug:
			resolver = naming.NewSlugResolver(cfg.PetitionsDir, store)
		default:
			resolver = naming.NewTokenResolver(cfg.PetitionsDir, cfg.EncryptionKey, store)
		}

		fmt.Println("Starting Qualtrics export...")
		progressID, err := rt.Client.StartExport(ctx)
		if err != nil {
			observability.Emit(log, "run.failed", map[string]any{"error": err.Error()})
			return err
		}
		observability.Emit(log, "export.started", map[string]any{"progress_id": progressID})

		fmt.Println("Waiting for export to complete...")
		fileID, err := rt.Client.AwaitCompletion(ctx, progressID)
		if err != nil {
			observability.Emit(log, "run.failed", map[string]any{"error": err.Error()})
			return err
		}
		observability.Emit(log, "export.complete", map[string]any{"file_id": fileID})

		fmt.Println("Downloading export archive...")
		archive, err := rt.Client.FetchArchive(ctx, fileID)
		if err != nil {
			observability.Emit(log, "run.failed", map[string]any{"error": err.Error()})
			return err
		}
		observability.Emit(log, "archive.downloaded", map[string]any{"bytes": len(archive)})

		rows, err := export.ExtractRows(archive, cfg.Columns)
		if err != nil {
			observability.Emit(log, "run.failed", map[string]any{"error": err.Error()})
			return err
		}
		observability.Emit(log, "rows.extracted", map[string]any{"rows": len(rows)})

		sum, err := syncer.New(store, resolver, log).Reconcile(rows, runDryRun)
		if err != nil {
			observability.Emit(log, "run.failed", map[string]any{"error": err.Error()})
			return err
		}
		observability.Emit(log, "run.complete", map[string]any{
			"processed": sum.Processed,
			"created":   sum.Created,
			"updated":   sum.Updated,
			"skipped":   sum.Skipped,
		})

		fmt.Println(renderSummary(sum, runDryRun))
		return nil
	},
}

// renderSummary formats the reconciliation counts as a styled block.
func renderSummary(sum syncer.Summary, dryRun bool) string {
	header := "Sync complete"
	if dryRun {
		header = dryRunStyle.Render("Dry run") + ": no files were written"
	}
	body := fmt.Sprintf("%s\n%d rows processed\n%s  %s  %s",
		header,
		sum.Processed,
		createdStyle.Render(fmt.Sprintf("created %d", sum.Created)),
		updatedStyle.Render(fmt.Sprintf("updated %d", sum.Updated)),
		skippedStyle.Render(fmt.Sprintf("skipped %d", sum.Skipped)),
	)
	return summaryStyle.Render(body)
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Report what would change without writing files")
	rootCmd.AddCommand(runCmd)
}
