package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	configPath string
	logDir     string
	headless   bool
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "winshortcuts",
		Short: "Hot corner and LWin blocker for the Windows tray",
		Long: `winshortcuts sits in the system tray and provides two shortcuts:
clicking the top-left screen corner opens Task View (by sending RWin+Tab),
and the left Windows key can be blocked system-wide.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings database (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", "", "directory for daily log files (default: logs beside the executable)")

	rootCmd.Flags().BoolVar(&opts.headless, "headless", false, "run the hooks (and control socket) without the tray")

	rootCmd.AddCommand(newTokenCmd(opts), newConfigCmd(opts), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
