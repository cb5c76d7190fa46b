package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civiclab/qualsync/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and print the resolved values",
	Long: `Load the QUALTRICS_* environment variables, validate them, and print
the resolved configuration with the API token and encryption key redacted.

Exits non-zero if any required variable is missing or invalid, making this
suitable as a deployment pre-flight check.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := Bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		cfg := rt.Cfg
		fmt.Println("Configuration OK")
		fmt.Printf("  base URL:         %s\n", cfg.BaseURL)
		fmt.Printf("  survey:           %s\n", cfg.SurveyID)
		fmt.Printf("  api token:        %s\n", redact(cfg.APIToken))
		fmt.Printf("  title column:     %s\n", cfg.Columns.Title)
		fmt.Printf("  body column:      %s\n", cfg.Columns.Body)
		fmt.Printf("  id column:        %s\n", cfg.Columns.ResponseID)
		fmt.Printf("  published:        %s\n", publishedRule(cfg))
		fmt.Printf("  date column:      %s\n", cfg.Columns.RecordedDate)
		fmt.Printf("  naming strategy:  %s\n", cfg.NamingStrategy)
		if cfg.NamingStrategy == config.StrategyToken {
			fmt.Printf("  encryption key:   %s\n", redact(cfg.EncryptionKey))
		}
		fmt.Printf("  petitions dir:    %s\n", cfg.PetitionsDir)
		fmt.Printf("  poll interval:    %s\n", cfg.PollInterval)
		fmt.Printf("  poll timeout:     %s\n", cfg.PollTimeout)
		return nil
	},
}

func publishedRule(cfg *config.Config) string {
	if cfg.Columns.Published == "" {
		return "(disabled, all rows eligible)"
	}
	return fmt.Sprintf("%s == %q", cfg.Columns.Published, cfg.Columns.PublishedValue)
}

// redact hides all but the first characters of a secret.
func redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-4)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
