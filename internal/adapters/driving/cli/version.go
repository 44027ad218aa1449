package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationServices: servicesNone},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(out(cmd), "vecdocs version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
