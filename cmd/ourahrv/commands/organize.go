package commands

import (
	"fmt"

	"github.com/nikdata/oura-hrv/internal/nightly"
	"github.com/spf13/cobra"
)

// NewOrganizeCommand creates the organize command
func NewOrganizeCommand() *cobra.Command {
	var dryRun bool
	var dir string
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Move flat night files into {metric}/{year}/{month}/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if dir == "" {
				dir = e.cfg.DataDir
			}
			report, err := nightly.NewOrganizer(e.logger).Organize(dir, dryRun)
			if err != nil {
				return fmt.Errorf("failed to organize %s: %w", dir, err)
			}
			printReport(cmd, report)
			if len(report.Failed) > 0 {
				return fmt.Errorf("failed to move %d file(s)", len(report.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only show what would be moved")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to organize (defaults to DATA_DIR)")
	return cmd
}

func printReport(cmd *cobra.Command, report nightly.OrganizeReport) {
	out := cmd.OutOrStdout()
	verb := "Moved"
	if report.DryRun {
		verb = "Would move"
	}
	for _, m := range report.Moves {
		fmt.Fprintf(out, "%s %s -> %s\n", verb, m.Source, m.Dest)
	}
	for _, name := range report.AlreadyOrganized {
		fmt.Fprintf(out, "Already organized: %s\n", name)
	}
	for _, name := range report.Failed {
		fmt.Fprintf(out, "Failed: %s\n", name)
	}
	fmt.Fprintf(out, "%s %d file(s), %d already organized, %d skipped, %d failed\n",
		verb, len(report.Moves), len(report.AlreadyOrganized), len(report.Skipped), len(report.Failed))
}
