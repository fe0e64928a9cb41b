package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vibratogo/vibrato/dictionary"
	"github.com/vibratogo/vibrato/tokenizer"
)

var tokenizeFlags = struct {
	dictPath    *string
	ignoreSpace *bool
	nbest       *int
	trustCache  *bool
	zstd        *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "tokenize",
		Short:   "Tokenize stdin, one sentence per line",
		Example: `  vibratotok tokenize -d system.dic < input.txt`,
		Args:    cobra.NoArgs,
		RunE:    runTokenize,
	}
	tokenizeFlags.dictPath = cmd.Flags().StringP("dict", "d", "", "path to the compiled dictionary (or $VIBRATOGO_DICT_PATH)")
	tokenizeFlags.ignoreSpace = cmd.Flags().Bool("ignore-space", false, "skip SPACE-category characters between words")
	tokenizeFlags.nbest = cmd.Flags().IntP("nbest", "n", 0, "print this many alternate segmentations instead of the 1-best")
	tokenizeFlags.trustCache = cmd.Flags().Bool("trust-cache", false, "skip structural validation when a proof file already exists")
	tokenizeFlags.zstd = cmd.Flags().Bool("zstd", false, "treat the dictionary path as a zstd-compressed archive")
	rootCmd.AddCommand(cmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	path := *tokenizeFlags.dictPath
	if path == "" {
		path = os.Getenv("VIBRATOGO_DICT_PATH")
	}
	if path == "" {
		return fmt.Errorf("no dictionary path given (-d or $VIBRATOGO_DICT_PATH)")
	}

	mode := dictionary.Validate
	if *tokenizeFlags.trustCache {
		mode = dictionary.TrustCache
	}

	var dict *dictionary.Dictionary
	var err error
	if *tokenizeFlags.zstd {
		dict, err = dictionary.FromZstdPath(path, mode, dictionary.CacheLocal)
	} else {
		dict, err = dictionary.FromPath(path, mode, dictionary.CacheLocal)
	}
	if err != nil {
		return fmt.Errorf("loading dictionary: %w", err)
	}
	defer dict.Close()

	opts := []tokenizer.Option{}
	if *tokenizeFlags.ignoreSpace {
		opts = append(opts, tokenizer.WithIgnoreSpace(true))
	}
	tok, err := tokenizer.New(dict, opts...)
	if err != nil {
		return fmt.Errorf("building tokenizer: %w", err)
	}

	worker := tok.NewWorker()
	w := bufio.NewWriter(cmd.OutOrStdout())
	defer w.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if err := tokenizeLine(worker, line, *tokenizeFlags.nbest, w); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func tokenizeLine(worker *tokenizer.Worker, line string, nbest int, w io.Writer) error {
	worker.ResetSentence(line)

	if nbest <= 1 {
		worker.Tokenize()
		worker.TokenIter(func(t tokenizer.Token) bool {
			fmt.Fprintf(w, "%s\t%s\n", t.Surface(), t.Feature())
			return true
		})
		fmt.Fprintln(w, "EOS")
		return nil
	}

	worker.TokenizeNbest(nbest)
	for i := 0; i < worker.NumNbest(); i++ {
		var surfaces []string
		for _, t := range worker.NbestTokens(i) {
			surfaces = append(surfaces, t.Surface())
		}
		fmt.Fprintf(w, "%d\t%s\n", i+1, strings.Join(surfaces, " "))
	}
	fmt.Fprintln(w, "EOS")
	return nil
}
