package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <to> <text...>",
		Short: "Send an SMS from the account's number",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			msg, err := c.SendSMS(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if opts.json {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(msg)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s (%s)\n", msg.SID, msg.To, msg.Status)
			return nil
		},
	}
}
