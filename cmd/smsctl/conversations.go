package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/spf13/cobra"
)

func newConversationsCmd(opts *rootOptions) *cobra.Command {
	var unregistered bool
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"ls"},
		Short:   "List conversations, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			convs, err := c.Conversations(ctx)
			if err != nil {
				return err
			}
			if unregistered {
				convs = onlyUnregistered(convs)
			}
			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(convs)
			}
			return printConversations(cmd.OutOrStdout(), convs)
		},
	}
	cmd.Flags().BoolVar(&unregistered, "unregistered", false, "only show numbers missing from the contact directory")
	return cmd
}

func onlyUnregistered(convs []conversation.Conversation) []conversation.Conversation {
	out := make([]conversation.Conversation, 0, len(convs))
	for _, c := range convs {
		if !c.IsRegistered {
			out = append(out, c)
		}
	}
	return out
}

func printConversations(w io.Writer, convs []conversation.Conversation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tPHONE\tREG\tMSGS\tLAST\tPREVIEW")
	for _, c := range convs {
		reg := "no"
		if c.IsRegistered {
			reg = "yes"
		}
		last, preview := "-", ""
		if c.LastMessage != nil {
			last = time.UnixMilli(c.LastMessageTimestamp).Local().Format("2006-01-02 15:04")
			preview = truncate(c.LastMessage.Body, 40)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", c.DisplayName(), c.Phone, reg, len(c.Messages), last, preview)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
