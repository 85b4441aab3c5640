// Package main implements vocabctl, a terminal client for the vocabulary
// admin backend.
//
// vocabctl shares the console's session rules: the bearer token is kept in a
// 0600 file, protected commands refuse to run without it, and login refuses
// to run with it.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/vocabadmin/internal/api"
	"github.com/fyrsmithlabs/vocabadmin/internal/auth"
	"github.com/fyrsmithlabs/vocabadmin/internal/config"
	"github.com/fyrsmithlabs/vocabadmin/internal/guard"
	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

var version = "dev"

// errNotLoggedIn and errLoggedIn are the terminal renderings of the route
// guards' redirects.
var (
	errNotLoggedIn = errors.New("not logged in: run `vocabctl login` first")
	errLoggedIn    = errors.New("already logged in: run `vocabctl logout` first")
)

type globalOptions struct {
	configPath string
	tokenFile  string
	verbose    bool
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	store   *session.FileStore
	session *session.Session
}

func newApp(opts *globalOptions) (*app, error) {
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewNop()
	if opts.verbose {
		lc := logging.NewDefaultConfig()
		lc.Level = logging.TraceLevel
		lc.Format = "console"
		if logger, err = logging.NewLogger(lc, nil); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	path := opts.tokenFile
	if path == "" {
		path = cfg.Session.TokenFile
	}
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "token")
	}
	store, err := session.NewFileStore(path)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, session: session.Init(store)}, nil
}

func (a *app) client() (*api.Client, error) {
	return api.New(a.cfg.Backend.BaseURL, a.session,
		api.WithHTTPClient(&http.Client{}),
		api.WithTimeout(a.cfg.Backend.RequestTimeout),
		api.WithLogger(a.logger),
	)
}

func (a *app) auth() (*auth.Service, error) {
	return auth.NewService(auth.Config{
		TokenURL:     a.cfg.Backend.TokenURL,
		ClientID:     a.cfg.Backend.ClientID,
		ClientSecret: a.cfg.Backend.ClientSecret.Value(),
		Scopes:       a.cfg.Backend.Scopes(),
	}, a.session, auth.WithLogger(a.logger))
}

// check applies a route guard and turns its redirect into a command error.
func (a *app) check(g guard.Check) error {
	path, redirect := g(a.session).Redirect()
	if !redirect {
		return nil
	}
	if path == guard.LoginPath {
		return errNotLoggedIn
	}
	return errLoggedIn
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "vocabctl",
		Short: "Terminal client for the vocabulary admin backend",
		Long: `vocabctl signs in to the vocabulary backend and browses categories and
words, or invites new administrators, without the web console.

Examples:
  # Sign in (password is read from stdin when --password is omitted)
  vocabctl login --username admin

  # Categories containing "an"
  vocabctl categories --search an

  # Unpublished words of category 2
  vocabctl words 2 --status unpublished`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/vocabadmin/config.yaml)")
	root.PersistentFlags().StringVar(&opts.tokenFile, "token-file", "", "token file (default ~/.config/vocabadmin/token)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log backend traffic")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newCategoriesCmd(opts),
		newWordsCmd(opts),
		newInviteCmd(opts),
	)
	return root
}

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if err := a.check(guard.RequireAnonymous); err != nil {
				return err
			}
			if password == "" {
				if password, err = readLine(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			svc, err := a.auth()
			if err != nil {
				return err
			}
			if err := svc.Login(cmd.Context(), username, password); err != nil {
				var authErr *auth.AuthError
				if errors.As(err, &authErr) {
					return errors.New(authErr.Message)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Signed in."))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				svc, err := a.auth()
				if err != nil {
					return err
				}
				if err := svc.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
				return nil
			})
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			state := dimStyle.Render("signed out")
			if a.session.Authenticated() {
				state = successStyle.Render("signed in")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Session:"), state)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Backend:"), a.cfg.Backend.BaseURL)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Token file:"), a.store.Path())
			return nil
		},
	}
}

// readLine reads one line, trimming the newline. EOF after text is accepted.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// withApp loads the app and enforces the authenticated guard.
func withApp(ctx context.Context, opts *globalOptions, fn func(context.Context, *app) error) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	if err := a.check(guard.RequireAuthenticated); err != nil {
		return err
	}
	return fn(ctx, a)
}
