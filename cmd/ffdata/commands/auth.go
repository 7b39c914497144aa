package commands

import (
	"errors"
	"fmt"
	"os"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/oauth"
	"yst-fantasy/internal/oauth1"

	"github.com/spf13/cobra"
)

func init() {
	authCmd.AddCommand(authYahooCmd)
	authCmd.AddCommand(authYahooLegacyCmd)
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorizes with a provider and saves the credentials.",
}

func loadTokens(file oauth.TokenFile) (oauth.StoredTokens, error) {
	tokens, err := file.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return oauth.StoredTokens{}, err
	}
	return tokens, nil
}

var authYahooCmd = &cobra.Command{
	Use:   "yahoo",
	Short: "Authorizes with yahoo through oauth2, the user pastes the code yahoo shows them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		err = cfg.RequireOAuth2()
		if err != nil {
			return err
		}
		client, err := newOAuth2Client(cfg)
		if err != nil {
			return err
		}

		prompter := oauth.NewConsolePrompter(cmd.OutOrStdout(), cmd.InOrStdin())
		token, err := oauth.Authorize(cmd.Context(), client, prompter)
		if err != nil {
			return fmt.Errorf("authorize: %w", err)
		}

		file := oauth.TokenFile{Path: cfg.Yahoo.TokenFile}
		tokens, err := loadTokens(file)
		if err != nil {
			return err
		}
		tokens.OAuth2 = &token
		err = file.Save(tokens)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved token to %s, it expires at %s\n", file.Path, token.ExpiresAt.Format("15:04:05"))
		return nil
	},
}

var authYahooLegacyCmd = &cobra.Command{
	Use:   "yahoo-legacy",
	Short: "Authorizes with yahoo through three legged oauth1.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		err = cfg.RequireOAuth1()
		if err != nil {
			return err
		}
		output, err := dumpOutput(cfg, "yahoo_oauth1")
		if err != nil {
			return err
		}
		client, err := oauth.NewLegacyClient(oauth.LegacyOptions{
			ConsumerKey:    cfg.Yahoo.OAuth1.ConsumerKey,
			ConsumerSecret: cfg.Yahoo.OAuth1.ConsumerSecret,
			Output:         output,
		}, oauth1.NewSigner(chrono.NewStandardTime(), oauth1.RandomNonce{Length: 32}), tel)
		if err != nil {
			return err
		}

		prompter := oauth.NewConsolePrompter(cmd.OutOrStdout(), cmd.InOrStdin())
		creds, err := oauth.AuthorizeLegacy(cmd.Context(), client, prompter)
		if err != nil {
			return fmt.Errorf("authorize: %w", err)
		}

		file := oauth.TokenFile{Path: cfg.Yahoo.TokenFile}
		tokens, err := loadTokens(file)
		if err != nil {
			return err
		}
		tokens.OAuth1 = &creds
		err = file.Save(tokens)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved credentials to %s\n", file.Path)
		return nil
	},
}
