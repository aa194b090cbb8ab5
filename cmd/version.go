package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the ilcheck build information",
		Long:  "Displays the ilcheck release, the VCS revision it was built from, and the Go toolchain.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("ilcheck version: unknown")
				return
			}

			cmd.Println("ilcheck version\t", info.Main.Version)
			if rev := vcsRevision(info); rev != "" {
				cmd.Println("revision\t", rev)
			}
			cmd.Println("go version\t", info.GoVersion)
		},
	}
}

func vcsRevision(info *debug.BuildInfo) string {
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}

	return ""
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
