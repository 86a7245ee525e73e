package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/page"
	"github.com/jwalitptl/practice-admin/internal/session"
	"github.com/jwalitptl/practice-admin/internal/table"
)

const sessionCheckInterval = time.Minute

var errSessionEnded = errors.New("session ended; run `practice-console sign-in` to continue")

func (c *console) signInCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "sign-in",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.init(ctx); err != nil {
				return err
			}
			if email == "" {
				email = c.prompt("Email: ")
			}
			if password == "" {
				password = c.prompt("Password: ")
			}
			sess, err := c.store.SignIn(ctx, email, password)
			if err != nil {
				return err
			}
			if err := c.saveToken(c.store.Token()); err != nil {
				return err
			}
			renderSession(c.out, sess)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func (c *console) signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-out",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.init(ctx); err != nil {
				return err
			}
			err := c.store.SignOut(ctx)
			if saveErr := c.saveToken(""); saveErr != nil {
				return saveErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Signed out.")
			return nil
		},
	}
}

func (c *console) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.init(cmd.Context()); err != nil {
				return err
			}
			renderSession(c.out, c.store.Current())
			return nil
		},
	}
}

func (c *console) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [source]",
		Short: "List data sources or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.init(ctx); err != nil {
				return err
			}
			if len(args) == 0 {
				return renderSources(c.out, c.app.MasterData.Configs())
			}
			cfg, err := c.app.MasterData.Config(args[0])
			if err != nil {
				return err
			}
			options, err := c.app.MasterData.FormOptions(ctx, cfg.DataSource)
			if err != nil {
				return err
			}
			return renderConfig(c.out, cfg, options)
		},
	}
}

func (c *console) listCmd() *cobra.Command {
	var search, query string
	var filters []string
	cmd := &cobra.Command{
		Use:   "list <source>",
		Short: "List active records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			f, err := parseFilters(filters)
			if err != nil {
				return err
			}
			p, err := c.openPage(ctx, args[0], &model.ListFilter{Search: search, Filters: f})
			if err != nil {
				return err
			}
			defer p.Close()

			sess := table.NewSession(p.Config(), p, table.Options{})
			sess.SetSearch(query)
			view := sess.View(p.Rows())
			return renderTable(c.out, p.Config(), view.Rows, view.Selected)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "server-side search on the entity's search column")
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter displayed rows across every column")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "exact-match filter, key=value (repeatable)")
	return cmd
}

func (c *console) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <source> [field=value ...]",
		Short: "Create a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			p, err := c.openPage(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer p.Close()

			fields, err := parseAssignments(p.Config(), args[1:])
			if err != nil {
				return err
			}
			sess := table.NewSession(p.Config(), p, table.Options{})
			sess.OpenAdd()
			for k, v := range fields {
				sess.SetAddField(k, v)
			}
			return c.report(sess, sess.SubmitAdd(ctx))
		},
	}
}

func (c *console) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <source> <id> field=value [field=value ...]",
		Short: "Update a record",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			p, err := c.openPage(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer p.Close()

			fields, err := parseAssignments(p.Config(), args[2:])
			if err != nil {
				return err
			}
			row, err := findRow(p.Rows(), args[1])
			if err != nil {
				return err
			}
			sess := table.NewSession(p.Config(), p, table.Options{})
			sess.OpenEdit(row)
			for k, v := range fields {
				sess.SetEditField(k, v)
			}
			return c.report(sess, sess.SubmitEdit(ctx))
		},
	}
}

func (c *console) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <source> <id>",
		Short: "Deactivate a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			p, err := c.openPage(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer p.Close()

			var opts table.Options
			if yes {
				opts.OnDelete = p.Delete
			}
			sess := table.NewSession(p.Config(), p, opts)
			if err := sess.RequestDelete(ctx, args[1]); err != nil || yes {
				return c.report(sess, err)
			}

			if !c.confirm(fmt.Sprintf("Delete %s %s?", strings.ToLower(p.Config().Labels.Singular), args[1])) {
				sess.CancelDelete()
				fmt.Fprintln(c.out, "Cancelled.")
				return nil
			}
			return c.report(sess, sess.ConfirmDelete(ctx))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *console) bulkDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "bulk-delete <source> <id> [id ...]",
		Short: "Deactivate several records",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			p, err := c.openPage(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer p.Close()

			var opts table.Options
			if yes {
				opts.OnBulkDelete = c.bulkDeleter(p)
			}
			sess := table.NewSession(p.Config(), p, opts)
			for _, id := range uniqueIDs(args[1:]) {
				sess.Toggle(id)
			}
			if err := sess.RequestBulkDelete(ctx); err != nil || yes {
				return c.report(sess, err)
			}

			ids := sess.Selected()
			if !c.confirm(fmt.Sprintf("Delete %d %s?", len(ids), strings.ToLower(p.Config().Labels.Plural))) {
				sess.CancelBulkDelete()
				fmt.Fprintln(c.out, "Cancelled.")
				return nil
			}
			err = sess.ConfirmBulkDelete(ctx)
			var bulkErr *table.BulkError
			if errors.As(err, &bulkErr) {
				for _, id := range sess.Selected() {
					fmt.Fprintf(c.out, "  %s: %v\n", id, consoleMessage(bulkErr.Failed[id]))
				}
			}
			return c.report(sess, err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// bulkDeleter deletes ids in one service call and refreshes the page.
func (c *console) bulkDeleter(p *page.Page) func(context.Context, []string) error {
	return func(ctx context.Context, ids []string) error {
		res, err := c.app.MasterData.BulkDelete(ctx, p.Config().DataSource, ids)
		if refreshErr := p.Refresh(ctx); refreshErr != nil {
			c.app.Logger.Error(refreshErr, "Failed to refresh after bulk delete")
		}
		if err != nil {
			return err
		}
		if len(res.Failed) > 0 {
			for id, msg := range res.Failed {
				fmt.Fprintf(c.out, "  %s: %s\n", id, msg)
			}
			return fmt.Errorf("deleted %d of %d records", len(res.Deleted), res.Requested)
		}
		return nil
	}
}

func (c *console) exportCmd() *cobra.Command {
	var query, out, to string
	cmd := &cobra.Command{
		Use:   "export <source>",
		Short: "Export the displayed rows as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			p, err := c.openPage(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer p.Close()

			sess := table.NewSession(p.Config(), p, table.Options{})
			sess.SetSearch(query)

			var buf bytes.Buffer
			filename, err := sess.Export(&buf, p.Rows())
			if err != nil {
				return err
			}

			switch {
			case to != "":
				if err := c.app.Mailer.SendExport(ctx, to, p.Config().Title, filename, buf.Bytes()); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Sent %s to %s\n", filename, to)
				return nil
			case out == "-":
				_, err := io.Copy(c.out, &buf)
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(c.out, "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only export rows matching this term")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default <title>.csv)")
	cmd.Flags().StringVar(&to, "email", "", "mail the export to this address instead")
	return cmd
}

func (c *console) watchCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "watch <source>",
		Short: "Show a live table that re-renders on every change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireSession(ctx); err != nil {
				return err
			}
			p, err := c.openPage(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer p.Close()

			// Without Redis, changes only reach this process if it publishes them.
			if c.app.Config.Redis.URL == "" {
				outboxCtx, cancel := context.WithCancel(ctx)
				wait := c.app.RunOutbox(outboxCtx)
				defer wait()
				defer cancel()
			}

			tbl := table.NewSession(p.Config(), p, table.Options{})
			tbl.SetSearch(query)

			events, unsubscribe := c.store.Subscribe()
			defer unsubscribe()
			ticker := time.NewTicker(sessionCheckInterval)
			defer ticker.Stop()

			return c.watchLoop(ctx, p, tbl, events, ticker.C)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter displayed rows across every column")
	return cmd
}

// watchLoop re-renders on every page update until ctx ends or the session
// is signed out. Each tick re-checks the session with the backend.
func (c *console) watchLoop(ctx context.Context, p *page.Page, tbl *table.Session, events <-chan session.Event, verify <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Type != session.SignedOut {
				continue
			}
			if err := c.saveToken(""); err != nil {
				return err
			}
			return errSessionEnded
		case <-verify:
			if err := c.store.Verify(ctx); err != nil {
				log.Warn().Err(err).Msg("session check failed")
			}
		case <-p.Updates():
			if p.Loading() {
				continue
			}
			if err := p.Err(); err != nil {
				fmt.Fprintln(c.out, "Error:", consoleMessage(err))
				continue
			}
			fmt.Fprint(c.out, "\033[H\033[2J")
			if prof := c.store.Profile(); prof != nil {
				fmt.Fprintf(c.out, "%s, watching as %s (%s)\n\n", p.Config().Title, prof.FullName, prof.Role)
			}
			view := tbl.View(p.Rows())
			if err := renderTable(c.out, p.Config(), view.Rows, view.Selected); err != nil {
				return err
			}
		}
	}
}

// uniqueIDs drops repeated ids, keeping first-seen order. Toggling an id
// twice would deselect it.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func findRow(rows []model.Record, id string) (model.Record, error) {
	for _, r := range rows {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no active record with id %s", id)
}

func (c *console) prompt(label string) string {
	fmt.Fprint(c.out, label)
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (c *console) confirm(question string) bool {
	switch strings.ToLower(c.prompt(question + " [y/N] ")) {
	case "y", "yes":
		return true
	}
	return false
}
