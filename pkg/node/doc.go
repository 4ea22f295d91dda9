// Package node provides the generic tree model for hierarchical documents.
//
// # Overview
//
// Every parsed document, whatever its source format, is represented as a tree
// of [Node] values. A node is either a leaf holding a scalar in textual form,
// or an internal node holding an ordered list of children. Internal nodes are
// keyed collections (children named by their Title) or positional collections
// ([Node.IsArray] set, children labelled by position).
//
// # Invariants
//
// The shape fields are derived, never chosen freely:
//
//   - IsLeaf implies no children and ObjectCount == 0
//   - !IsLeaf implies ObjectCount == len(Children)
//   - IsArray implies every child title is empty or its [IndexLabel]
//   - a node appears at most once in a tree (no sharing, no cycles)
//
// The constructors [NewLeaf], [NewObject] and [NewArray] always produce nodes
// satisfying these rules. Code that assembles nodes by hand should call
// [Validate] before handing the tree to an exporter.
//
// # Example
//
//	root := node.NewObject("",
//	    node.NewLeaf("a", "1", node.Number),
//	    node.NewArray("b",
//	        node.NewLeaf("", "2", node.Number),
//	        node.NewLeaf("", "3", node.Number),
//	    ),
//	)
//	fmt.Println(root.ObjectCount) // 2
//
// # Concurrency
//
// Nodes carry no synchronization. A tree may be read from several goroutines
// once it is fully built; mutation requires external locking.
package node
