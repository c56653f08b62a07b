package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plume-oss/go-jimple2cpg/fixture"
)

var (
	batchFormat  string
	batchArchive string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Lower every YAML fixture under dir",
	Long: `Lower every *.yaml method fixture found directly under dir, printing one
delta graph per fixture.

Examples:
  # Lower every fixture in a directory
  jimple2cpg batch lower/testdata

  # Lower every fixture and archive each one next to the fixture
  jimple2cpg batch lower/testdata --archive`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchFormat, "format", "text", "output format: text|dot")
	batchCmd.Flags().BoolVar(&batchArchiveFlag, "archive", false, "also write a gzip-compressed binary archive next to each fixture")
}

var batchArchiveFlag bool

func runBatch(_ *cobra.Command, args []string) error {
	dir := args[0]
	fs := fixture.NewOS()
	objects, err := fs.List(context.Background(), dir)
	if err != nil {
		return fmt.Errorf("batch: list %s: %w", dir, err)
	}

	var failures int
	for _, obj := range objects {
		if obj.IsDir() || !strings.HasSuffix(strings.ToLower(obj.Name()), ".yaml") {
			continue
		}
		location := obj.URL()
		if verbose {
			fmt.Fprintf(os.Stderr, "lowering %s\n", location)
		}
		m, res, err := lowerFixture(location)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", location, err)
			failures++
			continue
		}
		fmt.Printf("=== %s (%s) ===\n", m.FullName, obj.Name())
		printDiagnostics(res)
		if err := printGraph(res.Graph, batchFormat); err != nil {
			return err
		}
		if batchArchiveFlag {
			archivePath := path.Join(dir, strings.TrimSuffix(obj.Name(), path.Ext(obj.Name()))+".cpg.gz")
			if err := archiveGraph(res.Graph, archivePath); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", location, err)
				failures++
			}
		}
		if res.HasErrors() {
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("batch: %d fixture(s) completed with errors", failures)
	}
	return nil
}
