package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xpkg",
		Short: "Resolve and install binary packages from repository pools",
		Long: `Xpkg resolves package names and version patterns against an ordered
pool of repositories and unpacks binary package archives onto a target
filesystem root.

Upgrades, configuration-file conflicts and obsolete-file cleanup are
handled as part of the unpack transaction.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewResolveCmd())
	rootCmd.AddCommand(NewInstallCmd())

	return rootCmd
}
