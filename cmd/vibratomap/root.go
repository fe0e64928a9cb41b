package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vibratomap",
	Short: "Apply a connection-id reorder map to a compiled dictionary",
	Long: `vibratomap rewrites a compiled dictionary's connection ids
through a .lmap/.rmap pair, for cache-locality reordering produced by an
offline frequency count.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
