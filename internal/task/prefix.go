package task

// prefixNode is one byte of a prefix trie over task ids. count is the
// number of ids passing through the node, terminal marks a node where an
// id ends.
type prefixNode struct {
	children map[byte]*prefixNode
	count    int
	terminal bool
}

func newPrefixNode() *prefixNode {
	return &prefixNode{children: make(map[byte]*prefixNode)}
}

// Prefixes maps each id to its shortest unique leading substring. When
// one id is a leading substring of another, no shorter form is safe for
// either, so both map to their full id. Building the trie and walking it
// once per id keeps the whole computation linear in the total length of
// the ids.
func Prefixes(ids []string) map[string]string {
	root := newPrefixNode()
	for _, id := range ids {
		node := root
		for i := 0; i < len(id); i++ {
			next, ok := node.children[id[i]]
			if !ok {
				next = newPrefixNode()
				node.children[id[i]] = next
			}
			next.count++
			node = next
		}
		node.terminal = true
	}

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = shortestPrefix(root, id)
	}
	return out
}

func shortestPrefix(root *prefixNode, id string) string {
	node := root
	for i := 0; i < len(id); i++ {
		node = node.children[id[i]]
		if node.terminal && i+1 < len(id) {
			// A shorter id ends here, so it shadows every prefix of
			// this one and the full id is the only safe handle.
			return id
		}
		if node.count == 1 {
			return id[:i+1]
		}
	}
	// The id is itself a leading substring of another id.
	return id
}
