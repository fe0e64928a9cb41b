package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vibratogo/vibrato/dictionary"
)

var mapFlags = struct {
	lmap   *string
	rmap   *string
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "map",
		Short:   "Rewrite a dictionary's connection ids through a .lmap/.rmap pair",
		Example: `  vibratomap map system.dic -l system.lmap -r system.rmap -o system.reordered.dic`,
		Args:    cobra.ExactArgs(1),
		RunE:    runMap,
	}
	mapFlags.lmap = cmd.Flags().StringP("lmap", "l", "", "left-id reorder file (required)")
	mapFlags.rmap = cmd.Flags().StringP("rmap", "r", "", "right-id reorder file (required)")
	mapFlags.output = cmd.Flags().StringP("output", "o", "", "output dictionary path (required)")
	cmd.MarkFlagRequired("lmap")
	cmd.MarkFlagRequired("rmap")
	cmd.MarkFlagRequired("output")
	rootCmd.AddCommand(cmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	dictPath := args[0]

	dict, err := dictionary.FromPath(dictPath, dictionary.Validate, dictionary.CacheLocal)
	if err != nil {
		return fmt.Errorf("loading dictionary: %w", err)
	}
	defer dict.Close()

	left, err := loadReorderFile(*mapFlags.lmap)
	if err != nil {
		return fmt.Errorf("loading lmap: %w", err)
	}
	right, err := loadReorderFile(*mapFlags.rmap)
	if err != nil {
		return fmt.Errorf("loading rmap: %w", err)
	}

	mapper, err := dictionary.NewConnIdMapper(left, right)
	if err != nil {
		return fmt.Errorf("building conn-id mapper: %w", err)
	}

	if err := dict.Map(mapper); err != nil {
		return fmt.Errorf("applying conn-id mapper: %w", err)
	}

	out, err := os.OpenFile(*mapFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer out.Close()

	if err := dict.Write(out); err != nil {
		return fmt.Errorf("writing reordered dictionary: %w", err)
	}
	return nil
}

func loadReorderFile(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dictionary.LoadConnIDMap(f)
}
