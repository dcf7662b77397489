package cli

import (
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/handler"
	"github.com/spf13/cobra"
)

func newSubscribeCmd() *cobra.Command {
	var (
		action string
		plan   string
		cycle  string
	)

	cmd := &cobra.Command{
		Use:   "subscribe <account-id>",
		Short: "Create, change, cancel or reactivate an account's subscription",
		Example: `  quotactl subscribe 3f1b7f0e-9a44-4c0e-8d8c-0f4b9a1f2e11 --plan pro --cycle yearly
  quotactl subscribe 3f1b7f0e-9a44-4c0e-8d8c-0f4b9a1f2e11 --action cancel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseAccountID(args[0])
			if err != nil {
				return err
			}

			d, err := loadDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			now := time.Now().UTC()
			if _, err := d.subscriptions.Apply(cmd.Context(), domain.SubscriptionChangeParams{
				AccountID:    accountID,
				Action:       domain.SubscriptionAction(action),
				PlanID:       domain.PlanID(plan),
				BillingCycle: domain.BillingCycle(cycle),
			}, now); err != nil {
				return err
			}

			decision, ent, err := d.admission.Evaluate(cmd.Context(), accountID, now)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), handler.NewSummaryJSON(domain.Summarize(ent, *decision)))
		},
	}

	cmd.Flags().StringVar(&action, "action", string(domain.SubscriptionActionCreate), "create, upgrade, downgrade, cancel or reactivate")
	cmd.Flags().StringVar(&plan, "plan", "", "target plan id")
	cmd.Flags().StringVar(&cycle, "cycle", "", "monthly or yearly (default monthly)")
	return cmd
}
