package render_test

import (
	"fmt"

	"github.com/matzehuels/fetchtree/pkg/node"
	"github.com/matzehuels/fetchtree/pkg/render"
)

func ExampleOutline() {
	root := node.NewObject("",
		node.NewLeaf("name", "fetchtree", node.String),
		node.NewArray("tags", node.NewLeaf("", "cli", node.String)),
	)
	fmt.Print(render.Outline(root, render.OutlineOptions{}))
	// Output:
	// (root) {2}
	// ├── name = fetchtree
	// └── tags [1]
	//     └── [0] = cli
}

func ExampleDiff() {
	before := node.NewObject("", node.NewLeaf("v", "1", node.Number))
	after := node.NewObject("", node.NewLeaf("v", "2", node.Number))
	fmt.Print(render.Diff(before, after))
	// Output:
	//   / {1}
	// - /v = 1
	// + /v = 2
}
