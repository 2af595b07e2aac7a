// Package cli implements the lmstray CLI commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lmstudio-tray/lmstray/internal/buildinfo"
)

var rootFlags runOptions

var rootCmd = &cobra.Command{
	Use:   "lmstray [model] [dir]",
	Short: "Tray status monitor for LM Studio",
	Long: `lmstray watches the LM Studio daemon and desktop app, shows whether the
expected model is loaded and offers start, stop and reload actions from a
system tray menu.

model is the model identifier to watch for (default: none).
dir is the working directory for logs, VERSION and AUTHORS (default: current directory).`,
	Args:          cobra.MaximumNArgs(2),
	Version:       buildinfo.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// runRoot is assigned in init because runTray refers back to rootCmd.
func runRoot(cmd *cobra.Command, args []string) error {
	opts := rootFlags
	if len(args) > 0 {
		opts.model = args[0]
	}
	if len(args) > 1 {
		opts.dir = args[1]
	}
	return runTray(cmd.Context(), opts)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.RunE = runRoot

	f := rootCmd.Flags()
	f.BoolVarP(&rootFlags.debug, "debug", "d", false, "Enable debug logging (also to the console)")
	f.BoolVarP(&rootFlags.autoStartDaemon, "auto-start-daemon", "a", false, "Start the daemon after the first poll if it is stopped")
	f.BoolVarP(&rootFlags.gui, "gui", "g", false, "Start the desktop app after the first poll")
	f.BoolVar(&rootFlags.foreground, "foreground", false, "Run in the terminal instead of the system tray")
	f.BoolP("version", "v", false, "Show version and exit")

	rootCmd.SetVersionTemplate(versionLine() + "\n")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}
