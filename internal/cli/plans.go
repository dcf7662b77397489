package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the plan catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writePlans(cmd.OutOrStdout(), domain.DefaultPlanCatalog())
		},
	}
}

func writePlans(out io.Writer, catalog *domain.PlanCatalog) error {
	title := cases.Title(language.English)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLAN\tNAME\tTYPE\tMONTHLY\tDAILY\tAPI CALLS\tMODEL\tPRICE (TRY/mo)")
	for _, p := range catalog.Plans() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			p.ID, p.Name, title.String(string(p.UserType)),
			p.MonthlyPromptLimit, p.DailyPromptLimit, p.APICallsPerMonth,
			title.String(string(p.ModelTier)), p.MonthlyPriceTRY,
		)
	}
	return w.Flush()
}
