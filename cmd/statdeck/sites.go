package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/statdeck/statdeck/internal/core"
	"github.com/statdeck/statdeck/internal/providers/umami"
)

func newSitesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List the active account's websites",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			sites, err := sess.sites(cmd.Context())
			if err != nil {
				return err
			}
			if len(sites) == 0 {
				fmt.Println("No websites found for this account.")
				return nil
			}
			for _, site := range sites {
				fmt.Printf("%-28s %-32s %s\n", site.Name, site.Domain, site.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <domain>...",
		Short: "Track additional site domains (API-key accounts only)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := openRegistry()
			if err != nil {
				return err
			}
			acct, ok := registry.Active()
			if !ok {
				return errNoAccounts
			}
			if acct.Kind != core.ProviderPlausible {
				return fmt.Errorf("%s accounts discover their websites from the server", acct.Kind.Label())
			}
			merged := lo.Uniq(append(acct.Sites, args...))
			if err := registry.UpdateSites(acct.ID, merged); err != nil {
				return err
			}
			fmt.Printf("Tracking %d site(s)\n", len(merged))
			return nil
		},
	})

	var shareID string
	shareCmd := &cobra.Command{
		Use:   "share <website-id>",
		Short: "Set or clear a website's public share-link id (Umami only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			client, ok := sess.provider.(*umami.Client)
			if !ok {
				return fmt.Errorf("%s accounts manage share links on the server", sess.account.Kind.Label())
			}
			site, err := client.UpdateShareID(cmd.Context(), args[0], shareID)
			if err != nil {
				return err
			}
			if site.ShareID == "" {
				fmt.Printf("Share link cleared for %s\n", site.Domain)
				return nil
			}
			fmt.Printf("%s shares at %s/share/%s\n", site.Domain, sess.account.ServerURL, site.ShareID)
			return nil
		},
	}
	shareCmd.Flags().StringVar(&shareID, "id", "", "share id to set (empty clears the link)")
	cmd.AddCommand(shareCmd)
	return cmd
}
