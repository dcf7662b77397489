package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/DukeRupert/promptgate/internal/service"
	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "usage <account-id>",
		Short: "Show current usage windows and monthly history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			if months < 1 || months > 24 {
				return fmt.Errorf("--months must be between 1 and 24")
			}

			d, err := loadDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			report, err := d.usage.Report(cmd.Context(), accountID, time.Now(), months)
			if err != nil {
				return err
			}
			return writeUsage(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().IntVarP(&months, "months", "m", service.DefaultHistoryMonths, "months of history to show")
	return cmd
}

func writeUsage(out io.Writer, r *service.UsageReport) error {
	s := r.Summary
	_, _ = fmt.Fprintf(out, "Plan:     %s (%s)\n", s.PlanName, s.Status)
	_, _ = fmt.Fprintf(out, "Today:    %d / %s (resets %s)\n", s.DailyUsed, s.DailyLimit, r.DayStart.AddDate(0, 0, 1).Format(time.RFC3339))
	_, _ = fmt.Fprintf(out, "Month:    %d / %s (resets %s)\n", s.MonthlyUsed, s.MonthlyLimit, r.MonthStart.AddDate(0, 1, 0).Format(time.RFC3339))
	_, _ = fmt.Fprintf(out, "Warning:  %s\n", s.QuotaWarning)
	if r.Decision.Allowed {
		_, _ = fmt.Fprintln(out, "Admitted: yes")
	} else {
		_, _ = fmt.Fprintf(out, "Admitted: no (%s)\n", r.Decision.Reason)
	}
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MONTH\tPROMPTS")
	for _, m := range r.History {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", m.PeriodStart.Format("2006-01"), m.Count)
	}
	return w.Flush()
}
