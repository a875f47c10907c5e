package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/smsdash/internal/client"
	"github.com/matheus3301/smsdash/internal/profile"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	profile string
	url     string
	token   string
	timeout time.Duration
	json    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "smsctl",
		Short:         "Command-line client for the smsdash gateway",
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.profile, "profile", "", "profile name (overrides config default)")
	flags.StringVar(&opts.url, "url", "", "gateway base URL (default: discovered from the running profile)")
	flags.StringVar(&opts.token, "token", "", "API bearer token (default: profile api_token)")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "request timeout")
	flags.BoolVar(&opts.json, "json", false, "output in JSON format")

	cmd.AddCommand(newConversationsCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newContactsCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))

	return cmd
}

// connect resolves the gateway for the selected profile.
func (o *rootOptions) connect() (*client.Client, error) {
	name := profile.Resolve(o.profile)
	if err := profile.ValidateName(name); err != nil {
		return nil, err
	}

	token := o.token
	if token == "" {
		if p, err := profile.Load(name, os.Getenv); err == nil {
			token = p.Server.APIToken
		}
	}
	var opts []client.Option
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}

	if o.url != "" {
		return client.New(o.url, opts...), nil
	}
	c, err := client.Discover(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}
