package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show gateway health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			snap, err := c.Status(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(snap)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "State:      %s\n", snap.State)
			_, _ = fmt.Fprintf(out, "Since:      %s\n", snap.ChangedAt.Local().Format(time.DateTime))
			if !snap.LastLoad.IsZero() {
				_, _ = fmt.Fprintf(out, "Last load:  %s\n", snap.LastLoad.Local().Format(time.DateTime))
			}
			if snap.LastError != "" {
				_, _ = fmt.Fprintf(out, "Last error: %s\n", snap.LastError)
			}
			return nil
		},
	}
}
