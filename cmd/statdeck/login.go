package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/providers"
	"github.com/statdeck/statdeck/internal/providers/plausible"
	"github.com/statdeck/statdeck/internal/providers/umami"
)

func newLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Add an analytics account",
	}
	cmd.AddCommand(newLoginUmamiCommand(), newLoginPlausibleCommand())
	return cmd
}

func newLoginUmamiCommand() *cobra.Command {
	var username, password, name string

	cmd := &cobra.Command{
		Use:   "umami <server-url>",
		Short: "Log in to a self-hosted Umami server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = prompt("Username: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}

			serverURL, token, err := umami.Login(cmd.Context(), http.DefaultClient, args[0], username, password)
			if err != nil {
				return err
			}

			acct := core.Account{
				Name:      name,
				ServerURL: serverURL,
				Kind:      core.ProviderUmami,
				Username:  username,
				Token:     token,
			}
			if acct.Name == "" {
				acct.Name = username + "@" + strings.TrimPrefix(serverURL, "https://")
			}
			return addAccount(cmd.Context(), acct)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Umami username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Umami password (prompted when omitted)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name for the account")
	return cmd
}

func newLoginPlausibleCommand() *cobra.Command {
	var apiKey, server, name string
	var sites []string

	cmd := &cobra.Command{
		Use:   "plausible",
		Short: "Add a Plausible account using an API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if apiKey == "" {
				apiKey = prompt("API key: ")
			}

			serverURL, err := plausible.ValidateKey(cmd.Context(), http.DefaultClient, server, apiKey)
			if err != nil {
				return err
			}

			acct := core.Account{
				Name:      name,
				ServerURL: serverURL,
				Kind:      core.ProviderPlausible,
				APIKey:    apiKey,
				Sites:     sites,
			}
			if acct.Name == "" {
				acct.Name = strings.TrimPrefix(serverURL, "https://")
			}
			return addAccount(cmd.Context(), acct)
		},
	}
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Plausible API key (prompted when omitted)")
	cmd.Flags().StringVarP(&server, "server", "s", "", "Plausible server URL (defaults to plausible.io)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name for the account")
	cmd.Flags().StringSliceVar(&sites, "site", nil, "site domain to track (repeatable)")
	return cmd
}

func addAccount(ctx context.Context, acct core.Account) error {
	registry, err := openRegistry()
	if err != nil {
		return err
	}
	saved, err := registry.Add(acct)
	if err != nil {
		return err
	}

	fmt.Printf("Added account %s (%s)\n", saved.Name, saved.ID)

	// Umami can enumerate its websites right away; remember them so the
	// dashboard opens populated.
	if saved.Kind == core.ProviderUmami {
		if provider, err := providers.ForAccount(saved); err == nil {
			if sites, err := provider.Websites(ctx); err == nil && len(sites) > 0 {
				fmt.Printf("Found %d website(s)\n", len(sites))
			}
		}
	}
	return nil
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
