package startup

import (
	"github.com/AilenFranco43/Booked/startup/config"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "booked",
		Short:         "Property catalog and review ledger service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			NewServer(config.NewConfig()).Start()
			return nil
		},
	}

	root.AddCommand(newServeCommand(), newMigrateReviewsCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			NewServer(config.NewConfig()).Start()
			return nil
		},
	}
}

func newMigrateReviewsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-reviews",
		Short: "Convert string property/guest references on reviews to ObjectIDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := NewServer(config.NewConfig())
			result, err := server.MigrateReviews(cmd.Context())
			if err != nil {
				return err
			}
			server.logger.Infof("migrated %d reviews", result.Migrated)
			return nil
		},
	}
}
