package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/classiccarrry/classic-carrry-admin/internal/config"
	"github.com/classiccarrry/classic-carrry-admin/internal/session"
	"github.com/classiccarrry/classic-carrry-admin/internal/viewmodel"
)

// passwordEnv lets scripts sign in without putting the password on the command line.
const passwordEnv = "CARRRY_ADMIN_PASSWORD"

var errNotSignedIn = errors.New("not signed in, run carrry-admin login first")

// withApp builds the app for one command and boots the gate once.
func withApp(cfg *config.Config, fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := a.gate.Retry(ctx); err != nil {
			return fmt.Errorf("%w: %v", session.ErrUnreachable, err)
		}
		return fn(ctx, cmd, a, args)
	}
}

func (a *app) requireAdmin() error {
	switch a.gate.Phase() {
	case session.PhaseAuthenticated:
		return nil
	case session.PhaseUnreachable:
		return session.ErrUnreachable
	}
	return errNotSignedIn
}

// report prints the notification an operation left behind.
func (a *app) report(w io.Writer) {
	if n, ok := a.notes.Current(); ok {
		fmt.Fprintf(w, "[%s] %s\n", n.Kind, n.Message)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLoginCmd(cfg *config.Config) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a storefront administrator",
		RunE: withApp(cfg, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if email == "" {
				email = a.session.RememberedEmail()
			}
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			user, err := a.gate.Login(ctx, email, password, remember)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.DisplayName(), user.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Administrator email (default: remembered email)")
	cmd.Flags().StringVar(&password, "password", "", "Password (default: $"+passwordEnv+")")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember the email for the next sign-in")
	return cmd
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()
			a.gate.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in administrator",
		RunE: withApp(cfg, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.session.User())
		}),
	}
}

func newHealthCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the storefront API and show the gate state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			probeErr := a.gate.Retry(ctx)
			if err := printJSON(cmd.OutOrStdout(), a.gate.Snapshot()); err != nil {
				return err
			}
			return probeErr
		},
	}
}

func newListCmd(cfg *config.Config) *cobra.Command {
	var filter, query string
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a storefront resource",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(cfg, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			c, err := a.views.Mount(args[0])
			if err != nil {
				return err
			}
			if err := c.List().Load(ctx, viewmodel.Filter{Server: filter, Query: query}); err != nil {
				a.report(cmd.ErrOrStderr())
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.List().Visible())
		}),
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Server-side filter (status or category)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search text")
	return cmd
}

func newDeleteCmd(cfg *config.Config) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a storefront record",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(cfg, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			c, err := a.views.Mount(args[0])
			if err != nil {
				return err
			}
			confirm := viewmodel.Confirmer(viewmodel.Confirmed)
			if !yes {
				confirm = promptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr())
			}
			err = c.Delete(ctx, args[1], confirm)
			a.report(cmd.ErrOrStderr())
			return err
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// promptConfirm asks on out and accepts "y" or "yes" from in.
func promptConfirm(in io.Reader, out io.Writer) viewmodel.ConfirmFunc {
	return func(ctx context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func newToggleCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <resource> <id>",
		Short: "Flip the active flag of a record",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(cfg, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			c, err := a.views.Mount(args[0])
			if err != nil {
				return err
			}
			err = c.Toggle(ctx, args[1])
			a.report(cmd.ErrOrStderr())
			return err
		}),
	}
}

func newDashboardCmd(cfg *config.Config) *cobra.Command {
	var customer string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show store totals, or one customer's orders with --customer",
		RunE: withApp(cfg, func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if customer != "" {
				summary, err := a.dashboard.Customer(ctx, customer)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			}
			summary, err := a.dashboard.Summary(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		}),
	}
	cmd.Flags().StringVar(&customer, "customer", "", "Customer email")
	return cmd
}
