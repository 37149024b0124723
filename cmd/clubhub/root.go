package main

import (
	"errors"
	"fmt"
	"os"

	"clubhub/internal/config"
	"clubhub/internal/transport"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	apiURL    string
	profile   string
	storeKind string
	verbose   bool
	plain     bool

	cli *app
)

var rootCmd = &cobra.Command{
	Use:   "clubhub",
	Short: "Club-Hub terminal client",
	Long: `clubhub signs you in to Club-Hub, keeps your session across runs and lets you
browse and manage clubs and events according to your role.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if plain {
			pterm.DisableStyling()
		}

		cfg, err := config.LoadClient()
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, &cfg); err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, verbose)
		if err != nil {
			return err
		}
		cli = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cli != nil {
			cli.Close()
		}
	},
}

// applyFlags lets explicit flags win over the environment, then re-validates.
func applyFlags(cmd *cobra.Command, cfg *config.ClientConfig) error {
	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("profile") {
		cfg.Profile = profile
	}
	if flags.Changed("store") {
		cfg.Store = storeKind
	}
	return cfg.Validate()
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if errors.Is(err, transport.ErrSessionExpired) || errors.Is(err, errNotLoggedIn) {
		// the user has already been told
		os.Exit(2)
	}
	pterm.Error.WithWriter(os.Stderr).Println(err)
	os.Exit(1)
}

func init() {
	cobra.EnableTraverseRunHooks = true
	clubsCmd.PersistentPreRunE = requireSession
	eventsCmd.PersistentPreRunE = requireSession

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (also CLUBHUB_API_URL)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "session profile name (also CLUBHUB_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", fmt.Sprintf("session store: %s, %s or %s (also CLUBHUB_SESSION_STORE)", config.StoreFile, config.StoreRedis, config.StoreMemory))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and session changes to stderr")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "disable colors and styling")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, registerCmd, openCmd)
	rootCmd.AddCommand(clubsCmd, eventsCmd)
}
