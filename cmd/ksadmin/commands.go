package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/digicoders-git/ksadmin/internal/auth"
	"github.com/digicoders-git/ksadmin/internal/router"
	"github.com/digicoders-git/ksadmin/internal/tui"
)

// secretEnv is read by `ksadmin login` before falling back to stdin.
const secretEnv = "KSADMIN_SECRET"

func newRootCmd() *cobra.Command {
	var cfgFile string
	var openPath string

	root := &cobra.Command{
		Use:   "ksadmin",
		Short: "KS Medial admin console",
		Long: `ksadmin is the terminal admin console for the KS Medial store and its
MLM referral programme.

Run without arguments to open the interactive console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, cfgFile, openPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.ksadmin/config.yaml)")
	root.Flags().StringVar(&openPath, "open", "", "initial location, e.g. /orders")

	root.AddCommand(
		newLoginCmd(&cfgFile),
		newLogoutCmd(&cfgFile),
		newWhoamiCmd(&cfgFile),
		newVersionCmd(),
	)
	return root
}

func runConsole(cmd *cobra.Command, cfgFile, openPath string) error {
	d, err := setup(cfgFile)
	if err != nil {
		return err
	}
	defer d.Close() //nolint:errcheck

	policy, err := router.ParseHiddenPolicy(d.cfg.HiddenRoutes)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		API:         d.client,
		Auth:        d.auth,
		Guard:       router.NewGuard(router.DefaultRegistry(), policy),
		InitialPath: openPath,
		WebURL:      d.cfg.WebURL,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	// Send blocks until the event loop reads it, and transitions can run
	// inside Update, so deliver asynchronously.
	unsubscribe := d.auth.Subscribe(func(auth.Snapshot) {
		go p.Send(tui.AuthChangedMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func newLoginCmd(cfgFile *string) *cobra.Command {
	var identifier string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long: `Sign in with an admin identifier. The password is read from ` + secretEnv + `
or, if unset, from the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(identifier) == "" {
				return errors.New("--identifier is required")
			}
			secret, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}

			d, err := setup(*cfgFile)
			if err != nil {
				return err
			}
			defer d.Close() //nolint:errcheck

			ctx := cmd.Context()
			resp, err := d.client.Login(ctx, strings.TrimSpace(identifier), secret)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			id := resp.Identity()
			if err := d.auth.SetLoginData(ctx, id); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s.\n", id.Name()) //nolint:errcheck
			if label := auth.ExpiryLabel(id.Token, time.Now()); label != "" {
				fmt.Fprintf(out, "Session %s.\n", label) //nolint:errcheck
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&identifier, "identifier", "", "admin email or username")
	return cmd
}

// readSecret returns KSADMIN_SECRET, or one line from r.
func readSecret(r io.Reader) (string, error) {
	if s := os.Getenv(secretEnv); s != "" {
		return s, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no password given (set %s or pipe it on stdin)", secretEnv)
	}
	return line, nil
}

func newLogoutCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup(*cfgFile)
			if err != nil {
				return err
			}
			defer d.Close() //nolint:errcheck

			ctx := cmd.Context()
			d.auth.Init(ctx)
			wasIn := d.auth.IsLoggedIn()
			// Clear even when logged out so partial leftovers go too.
			d.auth.Logout(ctx)

			if !wasIn {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.") //nolint:errcheck
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.") //nolint:errcheck
			return nil
		},
	}
}

func newWhoamiCmd(cfgFile *string) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup(*cfgFile)
			if err != nil {
				return err
			}
			defer d.Close() //nolint:errcheck

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			d.auth.Init(ctx)
			id := d.auth.Identity()
			if !d.auth.IsLoggedIn() {
				fmt.Fprintln(out, "Not logged in.") //nolint:errcheck
				return nil
			}

			fmt.Fprintf(out, "%s <%s>\n", id.Name(), id.Identifier) //nolint:errcheck
			fmt.Fprintf(out, "subject: %s\n", id.SubjectID)         //nolint:errcheck
			if label := auth.ExpiryLabel(id.Token, time.Now()); label != "" {
				fmt.Fprintf(out, "session: %s\n", label) //nolint:errcheck
			}

			if verify {
				p, err := d.client.GetMe(ctx)
				if err != nil {
					if !d.auth.IsLoggedIn() {
						fmt.Fprintln(out, "Session rejected by server; logged out.") //nolint:errcheck
						return nil
					}
					return fmt.Errorf("verify: %w", err)
				}
				fmt.Fprintf(out, "verified: %s\n", p.SubjectID) //nolint:errcheck
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check the session against the server")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ksadmin "+version) //nolint:errcheck
		},
	}
}
