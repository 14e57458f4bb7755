package cli

import (
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/khalid-nowaf/ipv4tree"
	"gopkg.in/yaml.v3"
)

// sizeKey is the column holding the number of addresses of a block.
const sizeKey = "addresses"

// Writer stores the cover of a tree in a directory and returns the file path.
type Writer interface {
	Write(tree *ipv4tree.Tree, directory string, cidrKey string) (string, error)
}

// NewWriter returns the writer of format: csv, tsv, json or yaml.
func NewWriter(format string) (Writer, error) {
	switch format {
	case "csv":
		return CsvWriter{}, nil
	case "tsv":
		return CsvWriter{isTSV: true}, nil
	case "json":
		return JsonWriter{}, nil
	case "yaml":
		return YamlWriter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// coverRecords returns one record per block of the cover. A block that is an
// inserted network keeps the attributes it was read with.
func coverRecords(tree *ipv4tree.Tree, cidrKey string) []Record {
	records := []Record{}
	for node := range tree.All() {
		if !node.IsTerminal() {
			continue
		}
		record := Record{}
		if node.Info != nil {
			maps.Copy(record, node.Info.Attributes)
		}
		record[cidrKey] = node.Prefix().String()
		record[sizeKey] = strconv.FormatUint(node.Size(), 10)
		records = append(records, record)
	}
	return records
}

// headersOf returns the union of the record keys, the network column first.
func headersOf(records []Record, cidrKey string) []string {
	keys := map[string]struct{}{}
	for _, record := range records {
		for key := range record {
			if key != cidrKey {
				keys[key] = struct{}{}
			}
		}
	}
	return append([]string{cidrKey}, slices.Sorted(maps.Keys(keys))...)
}

type CsvWriter struct {
	isTSV bool
}

func (w CsvWriter) Write(tree *ipv4tree.Tree, directory string, cidrKey string) (string, error) {
	filePath := filepath.Join(directory, "resolved.csv")
	separator := ','
	if w.isTSV {
		filePath = filepath.Join(directory, "resolved.tsv")
		separator = '\t'
	}

	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = separator

	records := coverRecords(tree, cidrKey)
	headers := headersOf(records, cidrKey)
	if err := writer.Write(headers); err != nil {
		return "", err
	}
	for _, record := range records {
		row := make([]string, 0, len(headers))
		// same order as the headers
		for _, header := range headers {
			row = append(row, record[header])
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	return filePath, writer.Error()
}

type JsonWriter struct{}

func (w JsonWriter) Write(tree *ipv4tree.Tree, directory string, cidrKey string) (string, error) {
	filePath := filepath.Join(directory, "resolved.json")
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return filePath, encoder.Encode(coverRecords(tree, cidrKey))
}

type YamlWriter struct{}

func (w YamlWriter) Write(tree *ipv4tree.Tree, directory string, cidrKey string) (string, error) {
	filePath := filepath.Join(directory, "resolved.yaml")
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(coverRecords(tree, cidrKey)); err != nil {
		return "", err
	}
	return filePath, encoder.Close()
}
