package main

import (
	"context"
	"time"

	"github.com/princinho/eventsbackend/config"
	"github.com/princinho/eventsbackend/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const defaultSeedTimeout = 30 * time.Second

func newSeedAdminCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD",
		Long: `Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD.
Running it again is a no-op once an account with that email exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runSeedAdmin(ctx)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g. 30s, 1m)")
	return cmd
}

func runSeedAdmin(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.close(context.Background()) }()

	a, err := newApp(ctx, cfg, log, st)
	if err != nil {
		return err
	}
	return a.seedAdmin(ctx)
}
