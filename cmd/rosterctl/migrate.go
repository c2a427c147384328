package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shiftgrid/pkg/database"
)

func newMigrateCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewDB(&env.cfg.Database, "warn", env.logger)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return database.RunMigrations(sqlDB, env.logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps 必须为正整数: %q", args[0])
				}
				steps = n
			}
			db, err := database.NewDB(&env.cfg.Database, "warn", env.logger)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return database.RollbackMigrations(sqlDB, steps, env.logger)
		},
	})
	return cmd
}
