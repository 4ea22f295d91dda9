package node

// WalkFunc is called for every node visited by [Walk]. path is the
// slash-separated title path from the root ("" for the root itself) and depth
// is 0 for the root. Returning false skips the node's children.
type WalkFunc func(n *Node, path string, depth int) bool

// Walk visits the tree in pre-order, children in document order.
func Walk(root *Node, fn WalkFunc) {
	if root == nil {
		return
	}
	walk(root, "", 0, fn)
}

func walk(n *Node, path string, depth int, fn WalkFunc) {
	if !fn(n, path, depth) {
		return
	}
	for i, c := range n.Children {
		if c == nil {
			continue
		}
		walk(c, childPath(path, n, i), depth+1, fn)
	}
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes    int // all nodes, root included
	Leaves   int
	Arrays   int // positional collections
	Objects  int // keyed collections
	MaxDepth int // 0 for a lone root
}

// Count computes [Stats] for the tree rooted at root.
func Count(root *Node) Stats {
	var s Stats
	Walk(root, func(n *Node, _ string, depth int) bool {
		s.Nodes++
		switch {
		case n.IsLeaf:
			s.Leaves++
		case n.IsArray:
			s.Arrays++
		default:
			s.Objects++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	return s
}
