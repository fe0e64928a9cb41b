package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vibratotok",
	Short: "Tokenize Japanese text against a compiled vibrato dictionary",
	Long: `vibratotok loads a compiled dictionary and segments stdin, one
sentence per line, printing each token's surface and feature string.`,
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
