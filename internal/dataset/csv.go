package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/podiumlabs/podium/internal/models"
)

// LoadCSV reads examples from a CSV file. The first row is the header
// and must contain an "input" column; a "target" column is optional.
func LoadCSV(path string) ([]models.Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	inputCol, targetCol := -1, -1
	for i, h := range records[0] {
		switch h {
		case "input":
			inputCol = i
		case "target":
			targetCol = i
		}
	}
	if inputCol < 0 {
		return nil, fmt.Errorf("csv: %s has no %q column", path, "input")
	}

	examples := make([]models.Example, 0, len(records)-1)
	for _, record := range records[1:] {
		ex := models.Example{
			Index: len(examples),
			Input: record[inputCol],
		}
		if targetCol >= 0 {
			ex.Target = record[targetCol]
		}
		examples = append(examples, ex)
	}

	return examples, nil
}

// Load picks the loader from the file extension: ".csv" uses LoadCSV,
// everything else is treated as JSONL.
func Load(path string) ([]models.Example, int, error) {
	if len(path) > 4 && path[len(path)-4:] == ".csv" {
		examples, err := LoadCSV(path)
		return examples, 0, err
	}
	return LoadJSONL(path)
}
