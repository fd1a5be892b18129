package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dylanchu/WinShortcuts/internal/config"
	"github.com/dylanchu/WinShortcuts/internal/secret"
)

func settingsPath(opts *options) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return config.DefaultPath()
}

func openStore(opts *options) (*config.Store, error) {
	path, err := settingsPath(opts)
	if err != nil {
		return nil, err
	}
	return config.Open(path)
}

func newTokenCmd(opts *options) *cobra.Command {
	var enable, save bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a new control socket token",
		Long: `Generate a random token for the local control socket. Only its bcrypt hash
is stored; the token is printed once and cannot be recovered later unless
--save also puts it in the OS credential store for the bundled client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := store.Load()
			if err != nil {
				return err
			}
			tok, err := config.GenerateToken()
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			hash, err := config.HashToken(tok)
			if err != nil {
				return err
			}
			cfg.ControlTokenHash = hash
			if enable {
				cfg.ControlEnabled = true
			}
			if err := store.Save(cfg); err != nil {
				return err
			}
			if err := syncSavedToken(save, tok); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&enable, "enable", false, "also enable the control socket")
	cmd.Flags().BoolVar(&save, "save", false, "save the token in the OS credential store")
	return cmd
}

// openTokenStore is replaced in tests.
var openTokenStore = secret.Open

// syncSavedToken stores tok when save is set. Otherwise any previously saved
// token is stale and gets removed.
func syncSavedToken(save bool, tok string) error {
	ts, err := openTokenStore()
	if err != nil {
		if save {
			return err
		}
		return nil
	}
	if save {
		return ts.SaveToken(tok)
	}
	return ts.DeleteToken()
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := store.Load()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "path\t%s\n", store.Path())
			for _, kv := range config.Values(cfg) {
				fmt.Fprintf(tw, "%s\t%s\n", kv[0], kv[1])
			}
			return tw.Flush()
		},
	}

	set := &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Change one setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated (restart WinShortcuts to apply)\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "winshortcuts %s\n", version)
		},
	}
}
