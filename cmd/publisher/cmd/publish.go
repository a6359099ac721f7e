package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"forge-build-publisher/internal/publisher"
	publisherfx "forge-build-publisher/internal/publisher/fx"
)

type publishFlags struct {
	itemID  string
	file    string
	dir     string
	channel string
}

func (f *publishFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.itemID, "item", "", "forge item id (overrides FG_ITEM_ID)")
	cmd.Flags().StringVar(&f.file, "file", "", "build file to upload (overrides FG_UL_FILE)")
	cmd.Flags().StringVar(&f.dir, "dir", "", "base directory for a relative --file (overrides FG_UL_DIR)")
	cmd.Flags().StringVar(&f.channel, "channel", "", "release channel: Live, Test or Disabled (overrides FG_RELEASE_CHANNEL)")
}

func (f publishFlags) request() publisher.Request {
	return publisher.Request{
		ItemID:    f.itemID,
		BuildFile: f.file,
		BuildDir:  f.dir,
		Channel:   f.channel,
	}
}

func newPublishCmd() *cobra.Command {
	flags := publishFlags{}
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the build and set the newest build's release channel (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

func runPublish(cmd *cobra.Command, flags publishFlags) error {
	var pub *publisher.Publisher

	return withApp(cmd.Context(), func(ctx context.Context) error {
		res, err := pub.Publish(ctx, flags.request())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %s to item %s (%s) in %s, run %s\n",
			res.BuildFile, res.ItemID, res.Channel, res.Duration.Round(100*time.Millisecond), res.RunID)
		return nil
	},
		publisherfx.Module,
		fx.Populate(&pub),
	)
}
