// Command jimple2cpg is a small demonstrator CLI around the lowering core:
// it reads one or more YAML method fixtures and prints the resulting Code
// Property Graph fragment, or archives it for later bulk application to a
// graph backend. Packaging beyond this minimal demonstrator is out of
// scope; the CLI exists to exercise package lower end to end, not to be a
// production ingestion pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/plume-oss/go-jimple2cpg/cmd/jimple2cpg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
