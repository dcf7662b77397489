// Package cli implements quotactl, the operator command line for promptgate.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command for quotactl.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "quotactl",
		Short:         "Inspect plans, entitlements and usage",
		Long:          "quotactl reads the same database and usage ledger as the promptgate server, configured from the same environment.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPlansCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newUsageCmd())
	root.AddCommand(newSubscribeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newRawCmd())

	return root
}
