package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/constructorio/client"
)

type identityView struct {
	ClientID  string            `json:"client_id"`
	SessionID int               `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Segments  []string          `json:"segments,omitempty"`
	TestCells map[string]string `json:"test_cells,omitempty"`
}

func (a *app) identityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Print the persisted client identity and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				view, err := identityOf(ctx, c)
				if err != nil {
					return err
				}
				return a.printJSON(view)
			})
		},
	}
}

func (a *app) resetSessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-session [VALUE]",
		Short: "Set the session id, to 1 by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid session id %q: %w", args[0], err)
				}
				value = n
			}
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if _, err := c.ResetSession(ctx, value); err != nil {
					return err
				}
				view, err := identityOf(ctx, c)
				if err != nil {
					return err
				}
				return a.printJSON(view)
			})
		},
	}
}

func identityOf(ctx context.Context, c *client.Client) (identityView, error) {
	id, err := c.ClientID(ctx)
	if err != nil {
		return identityView{}, err
	}
	sid, err := c.SessionID(ctx)
	if err != nil {
		return identityView{}, err
	}
	cells, err := c.TestCells(ctx)
	if err != nil {
		return identityView{}, err
	}
	view := identityView{ClientID: id, SessionID: sid, UserID: c.UserID(), Segments: c.Segments()}
	if len(cells) > 0 {
		view.TestCells = make(map[string]string, len(cells))
		for _, cell := range cells {
			view.TestCells[cell.Key] = cell.Value
		}
	}
	return view, nil
}
