package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch sleep sessions and write new night files",
		Long: `Fetch sleep sessions for the configured window and write one HRV and one RHR
file per night. Nights that already have a file are skipped. The window is
START_DATE..END_DATE when set, otherwise the last DAYS_BACK days.`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	r, err := e.dateRange("", "")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, err := e.newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.close(e.logger)

	summary, err := p.syncer.Run(ctx, r)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s)\n", summary.RunID, r)
	fmt.Fprintf(out, "  sessions fetched:   %d\n", summary.Fetched)
	fmt.Fprintf(out, "  files written:      %d\n", summary.Written)
	fmt.Fprintf(out, "  already present:    %d\n", summary.SkippedDuplicate)
	fmt.Fprintf(out, "  empty nights:       %d\n", summary.SkippedEmpty)
	fmt.Fprintf(out, "  nights without RHR: %d\n", summary.NoRHR)
	fmt.Fprintf(out, "  failed:             %d\n", summary.Failed)
	if len(p.sinks) > 0 {
		fmt.Fprintf(out, "  exported:           %d\n", summary.Exported)
	}
	return nil
}
