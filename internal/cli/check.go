package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/handler"
	"github.com/spf13/cobra"
)

// checkOutput is what `quotactl check` prints.
type checkOutput struct {
	AccountID    string               `json:"accountId"`
	EvaluatedAt  time.Time            `json:"evaluatedAt"`
	Subscription handler.SummaryJSON  `json:"subscription"`
	Decision     handler.DecisionJSON `json:"decision"`
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <account-id>",
		Short: "Evaluate admission for an account without consuming quota",
		Args:  cobra.ExactArgs(1),
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
			decision, ent, err := d.admission.Evaluate(cmd.Context(), accountID, now)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), checkOutput{
				AccountID:    accountID.String(),
				EvaluatedAt:  now,
				Subscription: handler.NewSummaryJSON(domain.Summarize(ent, *decision)),
				Decision:     handler.NewDecisionJSON(*decision),
			})
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
