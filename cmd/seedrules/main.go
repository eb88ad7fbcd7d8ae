// Command seedrules converts a keyword dictionary Excel file into a SQL seed
// file for the keyword_rules table.
// Expected columns: A=keyword, B=classification, C=match type, D=weight.
// Data starts at row 2 (row 1 is the header).
// Usage: go run ./cmd/seedrules <dictionary.xlsx>
// Output: db/seeds/keyword_rules.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"garagebook/internal/domain"
)

const batchSize = 500

type ruleEntry struct {
	keyword        string
	classification string
	matchType      string
	weight         int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedrules <dictionary.xlsx>")
	}
	xlsxPath := os.Args[1]
	outPath := "db/seeds/keyword_rules.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseRuleSheet(f)
	if err != nil {
		return fmt.Errorf("parse rule sheet: %w", err)
	}
	log.Printf("dictionary sheet: %d entries", len(entries))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Keyword rule seed data generated from the dictionary spreadsheet.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d entries (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

// parseRuleSheet reads the first sheet, skipping the header row and any row
// whose classification is not in the closed category set.
func parseRuleSheet(f *excelize.File) ([]ruleEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []ruleEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 4 {
			continue
		}

		keyword := strings.ToLower(strings.TrimSpace(row[0]))
		if keyword == "" || seen[keyword] {
			continue
		}

		class, ok := domain.CanonicalClassification(row[1])
		if !ok {
			log.Printf("row %d: unknown classification %q, skipping", i+1, row[1])
			continue
		}

		matchType := strings.ToLower(strings.TrimSpace(row[2]))
		switch domain.MatchType(matchType) {
		case domain.MatchExact, domain.MatchPartial, domain.MatchContains:
		default:
			log.Printf("row %d: unknown match type %q, skipping", i+1, row[2])
			continue
		}

		weight, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || weight <= 0 || weight > 100 {
			log.Printf("row %d: invalid weight %q, skipping", i+1, row[3])
			continue
		}

		seen[keyword] = true
		entries = append(entries, ruleEntry{
			keyword:        keyword,
			classification: string(class),
			matchType:      matchType,
			weight:         weight,
		})
	}
	return entries, nil
}

func writeBatch(out *os.File, entries []ruleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out, "INSERT INTO keyword_rules (keyword, classification, match_type, weight, is_active) VALUES"); err != nil {
		return err
	}
	for i, e := range entries {
		sep := ","
		if i == len(entries)-1 {
			sep = ";"
		}
		if _, err := fmt.Fprintf(out, "  ('%s', '%s', '%s', %d, TRUE)%s\n",
			sqlEscape(e.keyword), e.classification, e.matchType, e.weight, sep); err != nil {
			return err
		}
	}
	return nil
}

func sqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
