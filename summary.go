package ipv4tree

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Summary describes the shape of a tree.
type Summary struct {
	PrefixLens map[int]int // visible nodes per prefix length
	Nodes      int         // every node of the trie
	Size       uint64      // distinct addresses represented
	Terminal   int         // visible terminal nodes
}

// Summary walks the visible nodes of the tree.
func (tree *Tree) Summary() Summary {
	summary := Summary{
		PrefixLens: map[int]int{},
		Nodes:      tree.nodes,
		Size:       tree.Len(),
	}
	for node := range tree.All() {
		summary.PrefixLens[node.Depth()]++
		if node.IsTerminal() {
			summary.Terminal++
		}
	}
	return summary
}

func (s Summary) String() string {
	counts := []string{}
	for _, prefixLen := range slices.Sorted(maps.Keys(s.PrefixLens)) {
		counts = append(counts, fmt.Sprintf("/%d: %d", prefixLen, s.PrefixLens[prefixLen]))
	}
	return fmt.Sprintf("{%s}\nTotal nodes: %d\nSize: %d\nTerminal nodes: %d",
		strings.Join(counts, ", "), s.Nodes, s.Size, s.Terminal)
}

func (tree *Tree) String() string {
	return tree.Summary().String()
}
