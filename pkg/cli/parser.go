package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/khalid-nowaf/ipv4tree"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one row of an input file, keyed by column name.
type Record map[string]string

// CIDR is a network read from an input file with the row it came from.
type CIDR struct {
	network    netip.Prefix
	attributes Record
}

// InputFlags are shared by every command reading networks from files.
type InputFlags struct {
	Files        []string `arg:"" type:"existingfile" help:"CSV, TSV or JSON files holding the networks"`
	CidrKey      string   `help:"Column holding the network" default:"cidr"`
	MaskHostBits bool     `help:"Zero host bits instead of rejecting networks that have them"`
}

// load inserts the networks of every input file into a new tree and returns
// them in reading order.
func (in *InputFlags) load() (*ipv4tree.Tree, []netip.Prefix, error) {
	tree := ipv4tree.NewTree()
	networks := []netip.Prefix{}

	for _, file := range in.Files {
		before := len(networks)
		err := parseFile(in, file, func(cidr *CIDR) error {
			networks = append(networks, cidr.network)
			return tree.Insert(cidr.network, &ipv4tree.Info{Attributes: cidr.attributes})
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", file, err)
		}
		log.WithFields(logrus.Fields{
			"file":     file,
			"networks": len(networks) - before,
		}).Info("file loaded")
	}
	return tree, networks, nil
}

func parseFile(in *InputFlags, path string, onEachCidr func(cidr *CIDR) error) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJson(in, path, onEachCidr)
	case ".tsv":
		return parseCsv(in, path, '\t', onEachCidr)
	default:
		return parseCsv(in, path, ',', onEachCidr)
	}
}

// parseJson reads an array of objects. Values that are not strings are kept
// in their JSON text form.
func parseJson(in *InputFlags, path string, onEachCidr func(cidr *CIDR) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	rows := []map[string]jsoniter.RawMessage{}
	if err := json.NewDecoder(file).Decode(&rows); err != nil {
		return err
	}

	for i, row := range rows {
		record := make(Record, len(row))
		for key, raw := range row {
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				value = string(raw)
			}
			record[key] = value
		}

		cidr, err := parseCIDR(record, in)
		if err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		if err := onEachCidr(cidr); err != nil {
			return err
		}
	}
	return nil
}

func parseCsv(in *InputFlags, path string, separator rune, onEachCidr func(cidr *CIDR) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = separator
	reader.Comment = '#'

	// the first line is the header
	headers, err := reader.Read()
	if err != nil {
		return err
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		record := make(Record, len(headers))
		for i, value := range row {
			record[headers[i]] = value
		}

		cidr, err := parseCIDR(record, in)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := onEachCidr(cidr); err != nil {
			return err
		}
	}
}

func parseCIDR(record Record, in *InputFlags) (*CIDR, error) {
	value, found := record[in.CidrKey]
	if !found {
		return nil, fmt.Errorf("no %q column in %v", in.CidrKey, record)
	}

	if in.MaskHostBits {
		if pfx, err := netip.ParsePrefix(strings.TrimSpace(value)); err == nil {
			value = pfx.Masked().String()
		}
	}

	network, err := ipv4tree.ParseNetwork(value)
	if err != nil {
		return nil, err
	}
	return &CIDR{network: network, attributes: record}, nil
}
