package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/filebox/internal/app"
	"github.com/templui/filebox/internal/model"
)

func SubscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Inspect or change the service subscription",
	}

	cmd.AddCommand(subscriptionShowCmd())
	cmd.AddCommand(subscriptionExtendCmd())
	return cmd
}

func subscriptionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				sub, err := a.SubscriptionService.Status(cmd.Context())
				if err != nil {
					return err
				}
				printSubscription(cmd.OutOrStdout(), sub)
				return nil
			})
		},
	}
}

func subscriptionExtendCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Extend the subscription by a number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				sub, err := a.SubscriptionService.Extend(cmd.Context(), days)
				if err != nil {
					return err
				}
				printSubscription(cmd.OutOrStdout(), sub)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "days to add")
	return cmd
}

func printSubscription(w io.Writer, sub *model.Subscription) {
	if sub.ExpiresAt.IsZero() {
		fmt.Fprintln(w, "subscription: not set (expired)")
		return
	}

	state := "expired"
	if sub.Active {
		state = fmt.Sprintf("active, %d days left", sub.DaysLeft)
	}
	fmt.Fprintf(w, "subscription: expires %s (%s)\n", sub.ExpiresAt.UTC().Format(time.RFC3339), state)
}
