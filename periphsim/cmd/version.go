package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version can be overridden at build time with
// -ldflags "-X github.com/sarchlab/periphsim/periphsim/cmd.version=v1.2.3".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the periphsim version.",
	Run: func(_ *cobra.Command, _ []string) {
		v := version
		if info, ok := debug.ReadBuildInfo(); ok && v == "dev" &&
			info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}

		fmt.Println("periphsim", v)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
