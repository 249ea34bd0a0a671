package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"claimbot/internal/config"
	"claimbot/internal/repository"
	"claimbot/internal/service"
)

func newUsersCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Print the first users stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStore(viper.GetViper())
			if err != nil {
				return err
			}

			db, err := repository.NewDB(cfg.DatabaseURL, zap.NewNop())
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			report, err := service.NewRosterService(repository.NewUserRepository(db)).Report(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Displaying %d of %d users\n", len(report.Users), report.Total)
			for _, line := range report.Lines() {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", service.DefaultRosterLimit, "Maximum number of users to print")
	return cmd
}
