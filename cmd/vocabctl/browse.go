package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/vocabadmin/internal/invite"
	"github.com/fyrsmithlabs/vocabadmin/internal/listview"
	"github.com/fyrsmithlabs/vocabadmin/internal/vocab"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
}

func newCategoriesCmd(opts *globalOptions) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				client, err := a.client()
				if err != nil {
					return err
				}
				view := listview.NewCategoryView(client, listview.WithLogger(a.logger))
				defer view.Deactivate()

				if err := view.Refresh(ctx); err != nil {
					return err
				}
				view.SetSearch(search)
				printCategories(cmd.OutOrStdout(), view.Filtered(), view.Counts(), search)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	return cmd
}

func printCategories(w io.Writer, items []vocab.Category, counts listview.Counts, search string) {
	if counts.Total == 0 {
		fmt.Fprintln(w, dimStyle.Render("No categories yet."))
		return
	}
	if len(items) == 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("No categories match %q.", search)))
		return
	}
	t := newTable("ID", "NAME")
	for _, c := range items {
		t.Row(c.ID.String(), c.Name)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d of %d categories\n", counts.Visible, counts.Total)
}

func newWordsCmd(opts *globalOptions) *cobra.Command {
	var search, status, name string
	cmd := &cobra.Command{
		Use:   "words <categoryId>",
		Short: "List the words of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := listview.ParseStatus(status)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				client, err := a.client()
				if err != nil {
					return err
				}
				view := listview.NewWordView(client, vocab.ID(args[0]), name, listview.WithLogger(a.logger))
				defer view.Deactivate()

				if err := view.Refresh(ctx); err != nil {
					return err
				}
				view.SetSearch(search)
				view.SetStatus(filter)
				printWords(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	cmd.Flags().StringVar(&status, "status", "all", "all, published or unpublished")
	cmd.Flags().StringVar(&name, "name", "", "category name to show in the title")
	return cmd
}

func printWords(w io.Writer, view *listview.WordView) {
	state := view.State()
	published, unpublished := listview.PublishedCounts(state.Items)
	counts := view.Counts()

	fmt.Fprintln(w, headerStyle.Render(view.Title()))
	fmt.Fprintf(w, "%s %d  %s %d  %s %d  %s %d\n",
		labelStyle.Render("Total"), counts.Total,
		labelStyle.Render("Published"), published,
		labelStyle.Render("Draft"), unpublished,
		labelStyle.Render("Filtered"), counts.Visible)

	items := view.Filtered()
	if len(items) == 0 {
		msg := "This category has no words."
		if state.Query.Search != "" || state.Query.Status != listview.StatusAll {
			msg = "No words match the current filters."
		}
		fmt.Fprintln(w, dimStyle.Render(msg))
		return
	}

	t := newTable("ID", "NAME", "STATUS", "DESCRIPTION")
	for _, word := range items {
		badge := successStyle.Render("published")
		if !word.Published {
			badge = warningStyle.Render("draft")
		}
		t.Row(word.ID.String(), word.Name, badge, word.Description)
	}
	fmt.Fprintln(w, t.Render())
}

func newInviteCmd(opts *globalOptions) *cobra.Command {
	var req vocab.InviteRequest
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite a new administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				client, err := a.client()
				if err != nil {
					return err
				}
				if err := invite.NewController(client, a.logger).Submit(ctx, req); err != nil {
					return errors.New(invite.Message(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(invite.MsgInviteSent))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "first name")
	cmd.Flags().StringVar(&req.Surname, "surname", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Role, "role", vocab.RoleAdministrator, "role to grant ("+strconv.Quote(vocab.RoleAdministrator)+")")
	return cmd
}
