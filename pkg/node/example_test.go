package node_test

import (
	"fmt"

	"github.com/matzehuels/fetchtree/pkg/node"
)

func Example() {
	root := node.NewObject("",
		node.NewLeaf("a", "1", node.Number),
		node.NewArray("b",
			node.NewLeaf("", "2", node.Number),
			node.NewLeaf("", "3", node.Number),
		),
	)

	node.Walk(root, func(n *node.Node, path string, depth int) bool {
		fmt.Printf("%*s%s\n", depth*2, "", n)
		return true
	})
	// Output:
	// (root) {2}
	//   a = 1
	//   b [2]
	//     [0] = 2
	//     [1] = 3
}

func ExampleValidate() {
	broken := &node.Node{Title: "items", IsArray: true, ObjectCount: 3}
	fmt.Println(node.Validate(broken))
	// Output:
	// INVARIANT_VIOLATION: /: object count 3 does not match 0 children
}
