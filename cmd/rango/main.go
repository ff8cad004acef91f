package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/rango"
	"github.com/eringen/rango/views"
)

// version is set at build time via ldflags.
var version = "dev"

//go:embed seed.yaml
var defaultSeed []byte

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rango",
		Short:         "Rango - categorized links with per-visitor day counting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newPopulateCmd())
	root.AddCommand(newCreateUserCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := rango.LoadConfig()
			if err != nil {
				return err
			}
			app := rango.New(cfg, views.New(cfg))
			defer app.Close()

			go func() {
				sig := make(chan os.Signal, 1)
				signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
				<-sig
				_ = app.Echo.Close()
			}()
			return app.Start()
		},
	}
}

func openStore() (*rango.Store, error) {
	cfg, err := rango.LoadConfig()
	if err != nil {
		return nil, err
	}
	return rango.NewStore(cfg.DatabasePath)
}

func newPopulateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Load categories and pages from a YAML seed file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r io.Reader = bytes.NewReader(defaultSeed)
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			seed, err := rango.LoadSeed(r)
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := store.Populate(seed)
			if err != nil {
				return err
			}
			for _, c := range seed.Categories {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "- %s (%d pages)\n", c.Name, len(c.Pages))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "populated %d categories, %d pages\n", res.Categories, res.Pages)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed YAML file (defaults to the built-in tutorial data)")
	return cmd
}

func newCreateUserCmd() *cobra.Command {
	var username, email, password, website string
	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" || len(password) < 8 {
				return fmt.Errorf("--username is required and --password must be at least 8 characters")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			u, err := store.CreateUser(rango.User{
				Username: username,
				Email:    email,
				Website:  rango.NormalizeURL(website),
			}, password)
			if err != nil {
				return fmt.Errorf("create user %q: %w", username, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	cmd.Flags().StringVar(&website, "website", "", "personal website")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rango version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rango %s\n", version)
		},
	}
}
