package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/constructorio/client"
	"github.com/jonesrussell/north-cloud/constructorio/tracking"
)

type sentView struct {
	Sent string `json:"sent"`
}

func (a *app) trackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Send a behavioral event and wait for the answer",
	}
	cmd.AddCommand(
		a.trackSessionStartCommand(),
		a.trackFocusCommand(),
		a.trackSelectCommand(),
		a.trackSubmitCommand(),
		a.trackClickCommand(),
		a.trackConversionCommand(),
		a.trackPurchaseCommand(),
	)
	return cmd
}

// send runs one synchronous event so its error reaches the exit code.
func (a *app) send(cmd *cobra.Command, event string, fn func(ctx context.Context, t *tracking.Tracker) error) error {
	return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
		if err := fn(ctx, c.Tracker()); err != nil {
			return err
		}
		return a.printJSON(sentView{Sent: event})
	})
}

func (a *app) trackSessionStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session-start",
		Short: "Report a session start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.send(cmd, tracking.EventSessionStart, func(ctx context.Context, t *tracking.Tracker) error {
				return t.SessionStart(ctx)
			})
		},
	}
}

func (a *app) trackFocusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "focus [TERM]",
		Short: "Report focus on the search input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var e tracking.InputFocus
			if len(args) == 1 {
				e.Term = args[0]
			}
			return a.send(cmd, tracking.EventInputFocus, func(ctx context.Context, t *tracking.Tracker) error {
				return t.InputFocus(ctx, e)
			})
		},
	}
}

func groupOf(id, name string) *tracking.Group {
	if id == "" {
		return nil
	}
	return &tracking.Group{ID: id, DisplayName: name}
}

func (a *app) trackSelectCommand() *cobra.Command {
	var (
		e                  tracking.AutocompleteSelect
		groupID, groupName string
	)
	cmd := &cobra.Command{
		Use:   "select TERM",
		Short: "Report a chosen suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.Term = args[0]
			e.Group = groupOf(groupID, groupName)
			return a.send(cmd, tracking.EventAutocompleteSelect, func(ctx context.Context, t *tracking.Tracker) error {
				return t.AutocompleteSelect(ctx, e)
			})
		},
	}
	cmd.Flags().StringVar(&e.OriginalQuery, "original-query", "", "what the user had typed")
	cmd.Flags().StringVar(&e.Section, "section", "", "autocomplete section")
	cmd.Flags().StringVar(&e.ResultID, "result-id", "", "result id of the autocomplete response")
	cmd.Flags().StringVar(&groupID, "group-id", "", "group the suggestion was scoped to")
	cmd.Flags().StringVar(&groupName, "group-name", "", "display name of the group")
	return cmd
}

func (a *app) trackSubmitCommand() *cobra.Command {
	var (
		e                  tracking.SearchSubmit
		groupID, groupName string
	)
	cmd := &cobra.Command{
		Use:   "submit TERM",
		Short: "Report a submitted search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.Term = args[0]
			e.Group = groupOf(groupID, groupName)
			return a.send(cmd, tracking.EventSearchSubmit, func(ctx context.Context, t *tracking.Tracker) error {
				return t.SearchSubmit(ctx, e)
			})
		},
	}
	cmd.Flags().StringVar(&e.OriginalQuery, "original-query", "", "what the user had typed")
	cmd.Flags().StringVar(&e.ResultID, "result-id", "", "result id of the autocomplete response")
	cmd.Flags().StringVar(&groupID, "group-id", "", "group the search was scoped to")
	cmd.Flags().StringVar(&groupName, "group-name", "", "display name of the group")
	return cmd
}

func (a *app) trackClickCommand() *cobra.Command {
	var e tracking.SearchResultClick
	cmd := &cobra.Command{
		Use:   "click TERM",
		Short: "Report a clicked search result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.Term = args[0]
			return a.send(cmd, tracking.EventSearchResultClick, func(ctx context.Context, t *tracking.Tracker) error {
				return t.SearchResultClick(ctx, e)
			})
		},
	}
	cmd.Flags().StringVar(&e.ItemName, "name", "", "item name")
	cmd.Flags().StringVar(&e.CustomerID, "customer-id", "", "item id")
	cmd.Flags().StringVar(&e.VariationID, "variation-id", "", "variation id")
	cmd.Flags().StringVar(&e.Section, "section", "", "index section")
	cmd.Flags().StringVar(&e.ResultID, "result-id", "", "result id of the search response")
	return cmd
}

func (a *app) trackConversionCommand() *cobra.Command {
	var e tracking.Conversion
	cmd := &cobra.Command{
		Use:   "conversion ITEM_ID",
		Short: "Report a conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.ItemID = args[0]
			return a.send(cmd, tracking.EventConversion, func(ctx context.Context, t *tracking.Tracker) error {
				return t.Conversion(ctx, e)
			})
		},
	}
	cmd.Flags().StringVar(&e.Term, "term", "", "search term that led to the conversion")
	cmd.Flags().StringVar(&e.ItemName, "name", "", "item name")
	cmd.Flags().StringVar(&e.VariationID, "variation-id", "", "variation id")
	cmd.Flags().Float64Var(&e.Revenue, "revenue", 0, "revenue")
	cmd.Flags().StringVar(&e.Type, "type", "", "conversion type (default add_to_cart)")
	cmd.Flags().StringVar(&e.Section, "section", "", "index section")
	return cmd
}

func (a *app) trackPurchaseCommand() *cobra.Command {
	var e tracking.Purchase
	cmd := &cobra.Command{
		Use:   "purchase ITEM_ID...",
		Short: "Report an order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.Items = make([]tracking.PurchaseItem, len(args))
			for i, id := range args {
				e.Items[i] = tracking.PurchaseItem{ItemID: id, Quantity: 1}
			}
			return a.send(cmd, tracking.EventPurchase, func(ctx context.Context, t *tracking.Tracker) error {
				return t.Purchase(ctx, e)
			})
		},
	}
	cmd.Flags().Float64Var(&e.Revenue, "revenue", 0, "order total")
	cmd.Flags().StringVar(&e.OrderID, "order-id", "", "order id")
	cmd.Flags().StringVar(&e.Section, "section", "", "index section")
	return cmd
}
