package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dh1tw/opusbridge/audiocodec/opus"
	"github.com/spf13/cobra"
)

var version string
var commitHash string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of opusbridge",
	Long:  `Print the version number of opusbridge and of the linked opus library.`,
	Run: func(cmd *cobra.Command, args []string) {
		printOpusbridgeVersion()
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

func printOpusbridgeVersion() {
	// version is typically defined through a git tag and injected during
	// compilation; if not, just set it to "dev"
	if version == "" {
		version = "dev"
	}
	buildDate := time.Now().Format(time.RFC3339)
	fmt.Printf("opusbridge Version: %s, %s/%s, BuildDate: %s, Commit: %s\n",
		version, runtime.GOOS, runtime.GOARCH, buildDate, commitHash)
	fmt.Printf("codec: %s\n", opus.NewBackend().Version())
}
