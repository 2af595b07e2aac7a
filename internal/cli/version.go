package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lmstudio-tray/lmstray/internal/buildinfo"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		p := painter{styled: stdoutIsTerminal()}
		fmt.Println(p.paint(styleBrand, "lmstray") + " " + p.paint(styleVersion, buildinfo.Version))
		fmt.Println(p.paint(styleLabel, "  Commit:  ") + buildinfo.CommitHash)
		fmt.Println(p.paint(styleLabel, "  Built:   ") + buildinfo.BuildDate)
		fmt.Println(p.paint(styleLabel, "  OS/Arch: ") + fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
		fmt.Println(p.paint(styleLabel, "  Go:      ") + runtime.Version())

		if versionCheck {
			res := checkForUpdate(cmd.Context(), buildinfo.Version)
			fmt.Println(p.paint(styleUpdate, "  Update:  ") + res.Message())
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Also check GitHub for a newer release")
}

func versionLine() string {
	return fmt.Sprintf("lmstray %s (%s, built %s)", buildinfo.Version, buildinfo.CommitHash, buildinfo.BuildDate)
}
