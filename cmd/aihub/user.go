package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/aihub/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

func adminCmd(use string, admin bool) *cobra.Command {
	verb := "Grant"
	if !admin {
		verb = "Revoke"
	}
	return &cobra.Command{
		Use:   use + " [username]",
		Short: verb + " admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				if err := st.SetAdmin(ctx, args[0], admin); err != nil {
					return err
				}
				fmt.Printf("%s: admin=%t\n", args[0], admin)
				return nil
			})
		},
	}
}

func init() {
	userCmd.AddCommand(adminCmd("promote", true), adminCmd("demote", false))
	rootCmd.AddCommand(userCmd)
}
