package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/madebyjake/hashreport/pkg/hashreport/hasher"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List supported hash algorithms",
	Long:  `Display the hash algorithms available for scans, with the configured default marked.`,
	Run:   runAlgorithms,
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}

// runAlgorithms prints the supported algorithms.
func runAlgorithms(cmd *cobra.Command, args []string) {
	defaultAlgorithm := viper.GetString("algorithm")

	for _, name := range hasher.Algorithms() {
		if name == defaultAlgorithm {
			fmt.Printf("%s (default)\n", name)
			continue
		}
		fmt.Println(name)
	}
}
