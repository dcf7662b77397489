package cli

import (
	"fmt"
	"os"

	"github.com/DukeRupert/promptgate/internal"
	"github.com/DukeRupert/promptgate/internal/archive"
	"github.com/spf13/cobra"
)

func newRawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raw <archive-key>",
		Short: "Print an archived raw provider reply",
		Long:  "Degraded generations keep the provider's unparsed reply in the archive; the key is stored on the generation row.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.NewConfig()
			if err != nil {
				return err
			}
			a, err := archive.New(archive.Config{
				Provider:          cfg.ArchiveProvider,
				LocalPath:         cfg.LocalArchivePath,
				R2AccountID:       cfg.R2AccountID,
				R2AccessKeyID:     cfg.R2AccessKeyID,
				R2SecretAccessKey: cfg.R2SecretAccessKey,
				R2Bucket:          cfg.R2BucketName,
				R2Endpoint:        cfg.R2Endpoint,
			}, internal.NewLogger(os.Stderr, cfg.Env, "warn"))
			if err != nil {
				return err
			}

			data, err := a.Get(cmd.Context(), args[0])
			if archive.IsNotFound(err) {
				return fmt.Errorf("no archived output at %q", args[0])
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
