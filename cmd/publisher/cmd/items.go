package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"forge-build-publisher/config"
	"forge-build-publisher/internal/forge"
)

func newItemsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List the account's forge items (id and name)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig(config.NewViper())
			if err != nil {
				return err
			}
			if err := cfg.Forge.ValidateAccount(); err != nil {
				return err
			}

			creds := forge.Credentials{
				UserID:      cfg.Forge.UserID,
				Username:    cfg.Forge.Username,
				PasswordMD5: cfg.Forge.PasswordMD5,
			}
			urls := forge.URLs{ManageCraft: cfg.Forge.ManageURL, APICrafterItems: cfg.Forge.ItemsAPIURL}

			items, err := forge.NewItemsClient(urls, creds, cfg.Forge.Timeout).List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\n", it.ID, it.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
