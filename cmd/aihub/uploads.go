package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/aihub/internal/store"
	"github.com/pdiddy/aihub/pkg/types"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "Moderate community uploads",
}

var uploadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploads by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		return withStore(func(ctx context.Context, st *store.Store) error {
			list, err := st.Uploads(ctx, types.UploadStatus(status))
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintf(os.Stdout, "No %s uploads.\n", status)
				return nil
			}
			fmt.Fprintf(os.Stdout, "%-36s  %-10s  %-40s  %s\n", "ID", "Type", "Title", "URL")
			fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
			for _, u := range list {
				fmt.Fprintf(os.Stdout, "%-36s  %-10s  %-40s  %s\n", u.ID, u.Type, u.Title, u.URL)
			}
			return nil
		})
	},
}

func reviewCmd(use string, status types.UploadStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [upload-id...]",
		Short: "Mark uploads as " + string(status),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				failed := 0
				for _, id := range args {
					if _, err := st.ReviewUpload(ctx, id, "cli", status); err != nil {
						fmt.Fprintf(os.Stderr, "failed  %s: %v\n", id, err)
						failed++
						continue
					}
					fmt.Fprintf(os.Stdout, "%s  %s\n", status, id)
				}
				if failed > 0 {
					return fmt.Errorf("%d upload(s) could not be %s", failed, status)
				}
				return nil
			})
		},
	}
}

func init() {
	uploadsListCmd.Flags().String("status", string(types.UploadPending), "pending, approved or rejected")
	uploadsCmd.AddCommand(uploadsListCmd, reviewCmd("approve", types.UploadApproved), reviewCmd("reject", types.UploadRejected))
	rootCmd.AddCommand(uploadsCmd)
}

// withStore opens the configured database for the duration of fn.
func withStore(fn func(context.Context, *store.Store) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(context.Background(), st)
}
