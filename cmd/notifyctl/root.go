package main

import (
	"time"

	"github.com/selectdb/notifier/pkg/client"
	"github.com/spf13/cobra"
)

const (
	defaultAddr = "127.0.0.1:9290"
)

type commandContext struct {
	addr    string
	timeout time.Duration
}

func (c *commandContext) client() *client.Client {
	return client.New(c.addr, c.timeout)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Command line client of the notifier daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.addr, "addr", defaultAddr, "notifier address, host:port or url")
	rootCmd.PersistentFlags().DurationVar(&ctx.timeout, "timeout", client.DefaultTimeout, "request timeout")

	rootCmd.AddCommand(newNotifyCommand(ctx))
	rootCmd.AddCommand(newSubscribeCommand(ctx))
	rootCmd.AddCommand(newUnsubscribeCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newMessagesCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))

	return rootCmd
}
