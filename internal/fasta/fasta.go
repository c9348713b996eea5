// Package fasta assembles AlphaFold3 fold input documents from protein
// sequence files. It understands just enough FASTA for the screening
// workflow: headers, sequence lines, and the ':' chain separator the older
// ColabFold inputs used.
package fasta

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Record is one named sequence from a FASTA file. Trailing stop codons
// ('*') are stripped on read; the engine rejects them.
type Record struct {
	ID       string
	Sequence string
}

// Read parses every record in a FASTA file.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	var current *Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ">"):
			if current != nil {
				records = append(records, *current)
			}
			id := strings.Fields(strings.TrimPrefix(line, ">"))
			if len(id) == 0 {
				return nil, fmt.Errorf("%s: empty FASTA header", path)
			}
			current = &Record{ID: id[0]}
		case current == nil:
			return nil, fmt.Errorf("%s: sequence data before first header", path)
		default:
			current.Sequence += strings.ReplaceAll(line, "*", "")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if current != nil {
		records = append(records, *current)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no FASTA records", path)
	}
	return records, nil
}

// ReadOne parses a FASTA file that must contain exactly one record.
func ReadOne(path string) (Record, error) {
	records, err := Read(path)
	if err != nil {
		return Record{}, err
	}
	if len(records) != 1 {
		return Record{}, fmt.Errorf("%s: expected exactly 1 record, found %d", path, len(records))
	}
	return records[0], nil
}

// SplitPair splits a ColabFold-style concatenated multimer sequence on its
// ':' separator.
func SplitPair(sequence string) (string, string, error) {
	parts := strings.Split(sequence, ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected exactly 2 chains separated by ':', found %d", len(parts))
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// Document is the AlphaFold3 fold input schema, version 1.
type Document struct {
	Name       string     `json:"name"`
	Sequences  []Sequence `json:"sequences"`
	ModelSeeds []int      `json:"modelSeeds"`
	Dialect    string     `json:"dialect"`
	Version    int        `json:"version"`
}

// Sequence wraps one chain entry.
type Sequence struct {
	Protein Protein `json:"protein"`
}

// Protein is one polypeptide chain with its chain ids.
type Protein struct {
	ID       []string `json:"id"`
	Sequence string   `json:"sequence"`
}

// PairDocument builds the two-chain fold input for a bait/prey pair, chains
// A and B, single default seed.
func PairDocument(name, baitSeq, preySeq string) Document {
	return Document{
		Name: name,
		Sequences: []Sequence{
			{Protein: Protein{ID: []string{"A"}, Sequence: baitSeq}},
			{Protein: Protein{ID: []string{"B"}, Sequence: preySeq}},
		},
		ModelSeeds: []int{1},
		Dialect:    "alphafold3",
		Version:    1,
	}
}

// PairName derives the job id for a bait/prey pair. The id doubles as the
// input document stem and the output directory name.
func PairName(baitID, preyID string) string {
	return baitID + "_" + preyID
}

// WriteDocument marshals a fold input document to path.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", doc.Name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
