package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	dbfx "forge-build-publisher/db/fx"
	"forge-build-publisher/internal/history"
	historyfx "forge-build-publisher/internal/history/fx"
)

func newHistoryCmd() *cobra.Command {
	var (
		itemID string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent publish runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *history.Store

			return withApp(cmd.Context(), func(ctx context.Context) error {
				runs, err := store.List(ctx, history.ListFilter{ItemID: itemID, Limit: limit})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(runs)
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RUN\tITEM\tCHANNEL\tSTATUS\tSTARTED\tFAILURE")
				for _, r := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						r.ID, r.ItemID, r.Channel, r.Status,
						time.UnixMilli(r.StartedAtMs).UTC().Format(time.RFC3339),
						deref(r.FailureKind),
					)
				}
				return tw.Flush()
			},
				dbfx.Module,
				historyfx.Module,
				fx.Invoke(history.RegisterAutoMigrate),
				fx.Populate(&store),
			)
		},
	}

	cmd.Flags().StringVar(&itemID, "item", "", "only runs for this item id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
