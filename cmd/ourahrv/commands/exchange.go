package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewExchangeCommand creates the exchange command
func NewExchangeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <code>",
		Short: "Trade an authorization code for tokens and store them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if e.cfg.ClientID == "" || e.cfg.ClientSecret == "" {
				return errors.New("OURA_CLIENT_ID and OURA_CLIENT_SECRET must be set to exchange a code")
			}

			ctx := cmd.Context()
			store, client, err := e.newClient(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := client.ExchangeCode(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tokens stored in the %s token backend\n", e.cfg.TokenBackend)
			return nil
		},
	}
}
