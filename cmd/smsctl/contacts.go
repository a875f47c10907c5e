package main

import (
	"encoding/json"
	"fmt"

	"github.com/matheus3301/smsdash/internal/client"
	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/spf13/cobra"
)

func newContactsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage the contact directory",
	}
	cmd.AddCommand(newContactsAddCmd(opts))
	return cmd
}

func newContactsAddCmd(opts *rootOptions) *cobra.Command {
	var nc conversation.NewContact
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a phone number in the contact directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			rec, err := c.SaveContact(ctx, nc)
			if client.IsConflict(err) {
				return fmt.Errorf("%s is already registered", nc.Phone)
			}
			if err != nil {
				return err
			}
			if opts.json {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s) as %s\n", rec.Fields.Name, rec.Fields.Phone, rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nc.Name, "name", "", "contact name")
	cmd.Flags().StringVar(&nc.Phone, "phone", "", "phone number in E.164 form")
	cmd.Flags().StringVar(&nc.Email, "email", "", "email address")
	cmd.Flags().StringVar(&nc.ShootDate, "shoot-date", "", "shoot date")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}
