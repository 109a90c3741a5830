package cli

import (
	"context"
	"os"

	"github.com/goldlure/blogwatch/internal/config"
	"github.com/spf13/cobra"
)

var checkDryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check all sources once and send notifications for new posts",
	RunE:  checkAction,
}

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "print messages instead of sending them")
	rootCmd.AddCommand(checkCmd)
}

func checkAction(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(cfg, checkDryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)
	return nil
}
