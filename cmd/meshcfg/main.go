// Meshcfg edits the remote hardware module of a Meshtastic node.
//
// The editor keeps unconfirmed edits in an overlay layered over the
// configuration last reported by the node. Snapshots of that configuration
// come from a YAML/JSON document on disk or from a websocket bridge.
//
// Usage:
//
//	meshcfg [command] [flags]
//
// Running without arguments launches the interactive editor.
// See 'meshcfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/urls"
	"github.com/muurk/meshcfg/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meshcfg",
	Short: "Meshtastic module configuration editor",
	Long: `An editor for the remote hardware module of Meshtastic nodes.

Edits are held as pending changes over the configuration the node last
reported, and survive restarts until they are discarded.

If no command is specified, the interactive editor will launch automatically.

Module reference: ` + urls.RemoteHardwareModule,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the editor when no subcommand provided
		return runEdit(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		switch outputFormat {
		case "json", "yaml":
			return writeStructured(cmd.OutOrStdout(), outputFormat, info)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "meshcfg %s (commit: %s, %s, %s)\n",
				info.Version, info.Commit, info.GoVersion, info.Platform)
			return nil
		}
	},
}
