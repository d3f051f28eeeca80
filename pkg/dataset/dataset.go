package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hamlet-ml/hamlet/pkg/config"
)

// Record is a single labeled message
type Record struct {
	Label string
	Text  string
}

// Dataset is an ordered collection of labeled messages
type Dataset []Record

// Load reads a labeled message table from disk.
// TSV files carry one "label<TAB>text" pair per line (SMSSpamCollection
// style). CSV files need a header row; the label and text columns are
// resolved by name from the dataset config.
func Load(path string, cfg *config.DatasetConfig) (Dataset, error) {
	format := cfg.Format
	if format == "" || format == "auto" {
		format = detectFormat(path)
	}

	switch format {
	case "tsv":
		return loadTSV(path)
	case "csv":
		return loadCSV(path, cfg.LabelColumn, cfg.TextColumn)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", format)
	}
}

// detectFormat guesses the format from the file extension
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	default:
		return "tsv"
	}
}

// loadTSV reads label<TAB>text lines
func loadTSV(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %v", err)
	}
	defer file.Close()

	var records Dataset

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		label, text, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("malformed line %d: missing tab separator", lineNum)
		}

		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			return nil, fmt.Errorf("malformed line %d: empty label", lineNum)
		}

		records = append(records, Record{Label: label, Text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %v", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty: %s", path)
	}

	return records, nil
}

// loadCSV reads a CSV file with a header row
func loadCSV(path, labelColumn, textColumn string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %v", err)
	}

	labelIdx, textIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case strings.ToLower(labelColumn):
			labelIdx = i
		case strings.ToLower(textColumn):
			textIdx = i
		}
	}

	if labelIdx < 0 {
		return nil, fmt.Errorf("label column %q not found in CSV header", labelColumn)
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("text column %q not found in CSV header", textColumn)
	}

	var records Dataset

	lineNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %v", err)
		}
		lineNum++

		if labelIdx >= len(row) || textIdx >= len(row) {
			return nil, fmt.Errorf("malformed line %d: too few columns", lineNum)
		}

		label := strings.ToLower(strings.TrimSpace(row[labelIdx]))
		if label == "" {
			return nil, fmt.Errorf("malformed line %d: empty label", lineNum)
		}

		records = append(records, Record{Label: label, Text: row[textIdx]})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty: %s", path)
	}

	return records, nil
}

// Labels returns the sorted distinct labels in the dataset
func (d Dataset) Labels() []string {
	seen := make(map[string]bool)
	var labels []string

	for _, r := range d {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}

	sort.Strings(labels)
	return labels
}

// CountByLabel returns the number of records per label
func (d Dataset) CountByLabel() map[string]int {
	counts := make(map[string]int)
	for _, r := range d {
		counts[r.Label]++
	}
	return counts
}
