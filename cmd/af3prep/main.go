// af3prep assembles AlphaFold3 fold input documents for a bait-against-
// library interaction screen.
//
// Usage:
//
//	af3prep <bait.fasta> <library.fasta> <inputs-dir>
//
// The bait file holds exactly one sequence. One JSON document per library
// record is written to inputs-dir, named <baitID>_<preyID>.json, ready for
// af3batch to pick up. Existing documents are overwritten; a malformed
// library record is reported and skipped.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/EnricoCalvanese/Colabfold-on-Savio/internal/fasta"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 3 {
		fmt.Fprintln(stderr, "usage: af3prep <bait.fasta> <library.fasta> <inputs-dir>")
		return 2
	}
	baitPath, libraryPath, inputsDir := args[0], args[1], args[2]

	bait, err := fasta.ReadOne(baitPath)
	if err != nil {
		fmt.Fprintf(stderr, "af3prep: bait: %v\n", err)
		return 1
	}
	library, err := fasta.Read(libraryPath)
	if err != nil {
		fmt.Fprintf(stderr, "af3prep: library: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(inputsDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "af3prep: %v\n", err)
		return 1
	}

	written, skipped := 0, 0
	for _, prey := range library {
		if prey.Sequence == "" {
			fmt.Fprintf(stderr, "af3prep: %s: empty sequence, skipped\n", prey.ID)
			skipped++
			continue
		}
		name := fasta.PairName(bait.ID, prey.ID)
		doc := fasta.PairDocument(name, bait.Sequence, prey.Sequence)
		if err := fasta.WriteDocument(filepath.Join(inputsDir, name+".json"), doc); err != nil {
			fmt.Fprintf(stderr, "af3prep: %v\n", err)
			skipped++
			continue
		}
		written++
	}

	fmt.Fprintf(stdout, "%d fold input document(s) written to %s", written, inputsDir)
	if skipped > 0 {
		fmt.Fprintf(stdout, ", %d skipped", skipped)
	}
	fmt.Fprintln(stdout)
	if written == 0 {
		return 1
	}
	return 0
}
