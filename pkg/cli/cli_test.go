package cli

import (
	"bytes"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/khalid-nowaf/ipv4tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sixAddressesCsv = `cidr,name
1.1.1.1,a
1.1.1.2,b
1.1.1.3,c
1.1.1.4,d
1.1.1.5,e
1.1.1.6,f
`

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAll(t *testing.T, in *InputFlags, path string) []*CIDR {
	t.Helper()
	cidrs := []*CIDR{}
	require.NoError(t, parseFile(in, path, func(cidr *CIDR) error {
		cidrs = append(cidrs, cidr)
		return nil
	}))
	return cidrs
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out := &bytes.Buffer{}
	require.NoError(t, Run(args, out))
	return out.String()
}

func TestParseCsv(t *testing.T) {
	path := writeFile(t, "networks.csv", "# exported networks\n"+sixAddressesCsv)
	cidrs := readAll(t, &InputFlags{CidrKey: "cidr"}, path)

	require.Len(t, cidrs, 6)
	assert.Equal(t, netip.MustParsePrefix("1.1.1.1/32"), cidrs[0].network)
	assert.Equal(t, Record{"cidr": "1.1.1.1", "name": "a"}, cidrs[0].attributes)
	assert.Equal(t, "f", cidrs[5].attributes["name"])
}

func TestParseTsv(t *testing.T) {
	path := writeFile(t, "networks.tsv", "network\tcountry\n10.0.0.0/24\tRU\n")
	cidrs := readAll(t, &InputFlags{CidrKey: "network"}, path)

	require.Len(t, cidrs, 1)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/24"), cidrs[0].network)
	assert.Equal(t, "RU", cidrs[0].attributes["country"])
}

func TestParseJson(t *testing.T) {
	path := writeFile(t, "networks.json", `[
		{"cidr": "10.0.0.0/24", "country": "RU", "asn": 12389},
		{"cidr": "10.0.1.7", "country": "NL", "anycast": true}
	]`)
	cidrs := readAll(t, &InputFlags{CidrKey: "cidr"}, path)

	require.Len(t, cidrs, 2)
	assert.Equal(t, Record{"cidr": "10.0.0.0/24", "country": "RU", "asn": "12389"}, cidrs[0].attributes)
	assert.Equal(t, netip.MustParsePrefix("10.0.1.7/32"), cidrs[1].network)
	assert.Equal(t, "true", cidrs[1].attributes["anycast"])
}

func TestParseRejectsBadRecords(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		in      InputFlags
	}{
		{"hosts bits", "cidr\n10.0.0.1/24\n", InputFlags{CidrKey: "cidr"}},
		{"ipv6", "cidr\n2001:db8::/32\n", InputFlags{CidrKey: "cidr"}},
		{"missing column", "network\n10.0.0.0/24\n", InputFlags{CidrKey: "cidr"}},
		{"short row", "cidr,name\n10.0.0.0/24\n", InputFlags{CidrKey: "cidr"}},
	}

	for _, tc := range testCases {
		path := writeFile(t, "networks.csv", tc.content)
		err := parseFile(&tc.in, path, func(*CIDR) error { return nil })
		assert.Error(t, err, tc.name)
	}
}

func TestParseMasksHostBits(t *testing.T) {
	path := writeFile(t, "networks.csv", "cidr\n10.0.0.1/24\n")
	cidrs := readAll(t, &InputFlags{CidrKey: "cidr", MaskHostBits: true}, path)

	require.Len(t, cidrs, 1)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/24"), cidrs[0].network)
}

func TestLoadReportsFile(t *testing.T) {
	good := writeFile(t, "good.csv", sixAddressesCsv)
	bad := writeFile(t, "bad.csv", "cidr\nnot a network\n")

	in := &InputFlags{Files: []string{good, bad}, CidrKey: "cidr"}
	_, _, err := in.load()
	assert.ErrorIs(t, err, ipv4tree.ErrInvalidNetwork)
	assert.Contains(t, err.Error(), bad)

	in.Files = []string{good}
	tree, networks, err := in.load()
	require.NoError(t, err)
	assert.Len(t, networks, 6)
	assert.Equal(t, uint64(6), tree.Len())
}

func TestWriters(t *testing.T) {
	in := &InputFlags{Files: []string{writeFile(t, "networks.csv", sixAddressesCsv)}, CidrKey: "cidr"}
	tree, _, err := in.load()
	require.NoError(t, err)
	require.NoError(t, tree.Aggregate(1.0))

	dir := t.TempDir()

	writer, err := NewWriter("csv")
	require.NoError(t, err)
	path, err := writer.Write(tree, dir, "cidr")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "resolved.csv"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cidr,addresses,name\n"+
		"1.1.1.1/32,1,a\n"+
		"1.1.1.2/31,2,\n"+
		"1.1.1.4/31,2,\n"+
		"1.1.1.6/32,1,f\n", string(content))

	writer, err = NewWriter("tsv")
	require.NoError(t, err)
	path, err = writer.Write(tree, dir, "cidr")
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "1.1.1.6/32\t1\tf\n")

	writer, err = NewWriter("json")
	require.NoError(t, err)
	path, err = writer.Write(tree, dir, "cidr")
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	records := []Record{}
	require.NoError(t, json.Unmarshal(content, &records))
	require.Len(t, records, 4)
	assert.Equal(t, Record{"cidr": "1.1.1.2/31", "addresses": "2"}, records[1])

	writer, err = NewWriter("yaml")
	require.NoError(t, err)
	path, err = writer.Write(tree, dir, "cidr")
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	records = []Record{}
	require.NoError(t, yaml.Unmarshal(content, &records))
	require.Len(t, records, 4)
	assert.Equal(t, Record{"cidr": "1.1.1.1/32", "addresses": "1", "name": "a"}, records[0])

	_, err = NewWriter("xml")
	assert.Error(t, err)
}

func TestVerifyCover(t *testing.T) {
	networks := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/24"),
		netip.MustParsePrefix("10.0.1.7/32"),
	}
	assert.NoError(t, verifyCover([]netip.Prefix{netip.MustParsePrefix("10.0.0.0/23")}, networks))
	assert.Error(t, verifyCover([]netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")}, networks))
}

func TestAggregateCommand(t *testing.T) {
	input := writeFile(t, "networks.csv", sixAddressesCsv)
	dir := t.TempDir()

	out := run(t, "aggregate", input, "--threshold=0.5", "--output", dir, "--verify", "--format=json")
	assert.Equal(t, "6 networks aggregated into 1 blocks: "+filepath.Join(dir, "resolved.json")+"\n", out)

	content, err := os.ReadFile(filepath.Join(dir, "resolved.json"))
	require.NoError(t, err)
	records := []Record{}
	require.NoError(t, json.Unmarshal(content, &records))
	assert.Equal(t, []Record{{"cidr": "1.1.1.0/29", "addresses": "6"}}, records)
}

func TestAggregateCommandRejectsThreshold(t *testing.T) {
	input := writeFile(t, "networks.csv", sixAddressesCsv)
	err := Run([]string{"aggregate", input, "--threshold=1.5", "--output", t.TempDir()}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ipv4tree.ErrInvalidThreshold)
}

func TestLookupCommand(t *testing.T) {
	input := writeFile(t, "networks.csv", "cidr,country\n10.0.0.0/24,RU\n")

	out := run(t, "lookup", input, "--ip=10.0.0.34,10.1.0.12")
	assert.Equal(t, "10.0.0.34/32\tin-tree=true\tblock=10.0.0.0/24\tcidr=10.0.0.0/24 country=RU\n"+
		"10.1.0.12/32\tin-tree=false\tblock=none\n", out)
}

func TestLookupCommandAfterAggregate(t *testing.T) {
	input := writeFile(t, "networks.csv", sixAddressesCsv)

	out := run(t, "lookup", input, "--aggregate", "--threshold=0.5", "--ip=1.1.1.7")
	assert.Equal(t, "1.1.1.7/32\tin-tree=true\tblock=1.1.1.0/29\n", out)
}

func TestSummaryCommand(t *testing.T) {
	input := writeFile(t, "networks.csv", sixAddressesCsv)

	out := run(t, "summary", input)
	assert.Contains(t, out, "Networks read: 6\n")
	assert.Contains(t, out, "/0   1\n")
	assert.Contains(t, out, "/32  6\n")
	assert.Contains(t, out, "Size: 6\n")
	assert.Contains(t, out, "Terminal nodes: 6\n")
}

func TestDeleteCommand(t *testing.T) {
	input := writeFile(t, "networks.csv", "cidr\n1.0.0.0/24\n1.0.1.0/24\n1.0.2.0/24\n")

	out := run(t, "delete", input, "--network=1.0.1.0/24,1.0.0.25/32")
	assert.Equal(t, "not inserted on its own, ignored: 1.0.0.25/32\n"+
		"1.0.0.0/24\n"+
		"1.0.2.0/24\n", out)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	assert.Error(t, Run([]string{"resolve"}, &bytes.Buffer{}))
}
