package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/security/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenRole string
	tokenTTL  time.Duration
)

// tokenCmd signs a development token. Production tokens come from the identity provider.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign a bearer token for local development",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret (JWT_SECRET) must be set")
		}

		token, err := auth.GenerateToken(userID, tokenRole, cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", "TEAM", "role claim (ADMIN, TEAM or CLIENT)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
