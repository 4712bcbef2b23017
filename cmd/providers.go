package cmd

import (
	"fmt"
	"strings"

	"sensor-collector/core/storage"

	"github.com/spf13/cobra"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported storage providers",
	Long:  `Lists the storage providers the collector can write to and the configuration keys each one requires.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, p := range storage.Providers() {
			fmt.Fprintf(out, "%-6s required: %s\n", p, strings.Join(p.RequiredKeys(), ", "))
		}
	},
}

func init() {
	RootCmd.AddCommand(providersCmd)
}
