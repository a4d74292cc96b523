package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify <message>",
		Short: "Broadcast a message to every subscriber",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.client().Notify(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Notified %d subscribers, policy %s\n", result.Subscribers, result.Policy)
			for _, failure := range result.Failures {
				fmt.Fprintf(out, "  subscription %d (#%d) failed: %s\n", failure.ID, failure.Index, failure.Error)
			}
			if !result.Success {
				return fmt.Errorf("%d deliveries failed", len(result.Failures))
			}
			return nil
		},
	}
}

func newSubscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <name> <url>",
		Short: "Register a webhook subscriber",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.client().Subscribe(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook %s subscribed\n", args[0])
			return nil
		},
	}
}

func newUnsubscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <name>",
		Short: "Remove a webhook subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.client().Unsubscribe(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook %s unsubscribed\n", args[0])
			return nil
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the webhook subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subscribers, err := ctx.client().ListSubscribers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subscribers: %d\n", subscribers.Total)
			for _, hook := range subscribers.Webhooks {
				kind := "static"
				if hook.Persisted {
					kind = "persisted"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", hook.Name, hook.URL, kind)
			}
			return nil
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var since uint64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recent messages kept in memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ctx.client().History(cmd.Context(), limit, since)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", entry.Seq, formatMillis(entry.Timestamp), entry.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of newest messages, server default when 0")
	cmd.Flags().Uint64Var(&since, "since", 0, "only messages after this seq")
	return cmd
}

func newMessagesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the messages recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := ctx.client().Messages(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, m := range messages {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, formatMillis(m.Timestamp), m.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of newest messages, server default when 0")
	return cmd
}

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the daemon version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := ctx.client().Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05.000")
}
