package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/statdeck/statdeck/internal/cache"
	"github.com/statdeck/statdeck/internal/config"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage configured analytics accounts",
		RunE: func(*cobra.Command, []string) error {
			return listAccounts()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "use <account-id>",
			Short: "Switch the active account",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				registry, err := openRegistry()
				if err != nil {
					return err
				}
				if err := registry.SetActive(args[0]); err != nil {
					return err
				}
				acct, _ := registry.Active()
				fmt.Printf("Switched to %s\n", acct.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <account-id>",
			Short: "Remove an account and its stored credentials",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				registry, err := openRegistry()
				if err != nil {
					return err
				}
				if err := registry.Remove(args[0]); err != nil {
					return err
				}
				store, err := cache.Open(config.CachePath())
				if err != nil {
					log.Printf("statdeck: opening cache: %v", err)
					return nil
				}
				defer store.Close()
				if err := store.Init(cmd.Context()); err != nil {
					log.Printf("statdeck: initializing cache: %v", err)
					return nil
				}
				if err := store.PurgeAccount(cmd.Context(), args[0]); err != nil {
					log.Printf("statdeck: purging cache: %v", err)
				}
				return nil
			},
		},
	)
	return cmd
}

func listAccounts() error {
	registry, err := openRegistry()
	if err != nil {
		return err
	}

	all := registry.Accounts()
	if len(all) == 0 {
		fmt.Println("No accounts configured. Run `statdeck login` to add one.")
		return nil
	}

	active, _ := registry.Active()
	for _, acct := range all {
		marker := "  "
		if acct.ID == active.ID {
			marker = "* "
		}
		fmt.Printf("%s%-24s %-10s %s  (%s)\n", marker, acct.Name, acct.Kind.Label(), acct.ServerURL, acct.ID)
	}
	return nil
}
