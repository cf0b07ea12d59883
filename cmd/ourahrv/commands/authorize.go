package commands

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikdata/oura-hrv/internal/oura"
	"github.com/nikdata/oura-hrv/internal/storage"
	"github.com/spf13/cobra"
)

// NewAuthorizeCommand creates the authorize command
func NewAuthorizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Print the Oura authorization URL for first-time setup",
		Long: `Print the URL that grants this application access to your Oura data.
After approving, copy the "code" query parameter from the redirect and run
"ourahrv exchange <code>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if e.cfg.ClientID == "" {
				return errors.New("OURA_CLIENT_ID must be set to build the authorization URL")
			}
			// Building the URL needs neither tokens nor a store.
			seed := storage.SeedCredentials(e.cfg)
			client := oura.NewClient(&seed, nil, oura.Options{
				AuthURL:     e.cfg.AuthURL,
				RedirectURI: e.cfg.RedirectURI,
			}, e.logger)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL in a browser and approve access:")
			fmt.Fprintln(out)
			fmt.Fprintln(out, client.AuthorizationURL(uuid.NewString()))
			fmt.Fprintln(out)
			fmt.Fprintln(out, `Then run: ourahrv exchange <code>`)
			return nil
		},
	}
}
