package node

import (
	"github.com/matzehuels/fetchtree/pkg/errors"
)

// Validate checks the shape invariants of every node reachable from root.
// It reports the first violation found in pre-order as an *errors.Error with
// code [errors.ErrCodeInvariantViolation]; the message names the offending
// path.
func Validate(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvariantViolation, "tree has no root node")
	}
	seen := make(map[*Node]struct{})
	return validate(root, "", seen)
}

func validate(n *Node, path string, seen map[*Node]struct{}) error {
	if _, dup := seen[n]; dup {
		return violation(path, "node is shared or part of a cycle")
	}
	seen[n] = struct{}{}

	if n.IsLeaf {
		if len(n.Children) != 0 {
			return violation(path, "leaf has %d children", len(n.Children))
		}
		if n.ObjectCount != 0 {
			return violation(path, "leaf has object count %d", n.ObjectCount)
		}
		if n.IsArray {
			return violation(path, "leaf is marked as array")
		}
		if n.Type < String || n.Type > Null {
			return violation(path, "unknown value type %d", int(n.Type))
		}
		return nil
	}

	if n.ObjectCount != len(n.Children) {
		return violation(path, "object count %d does not match %d children", n.ObjectCount, len(n.Children))
	}
	for i, c := range n.Children {
		if c == nil {
			return violation(path, "child %d is nil", i)
		}
		if n.IsArray && c.Title != "" && c.Title != IndexLabel(i) {
			return violation(path, "array element %d has field title %q", i, c.Title)
		}
		if err := validate(c, childPath(path, n, i), seen); err != nil {
			return err
		}
	}
	return nil
}

func violation(path, format string, args ...any) error {
	if path == "" {
		path = "/"
	}
	err := errors.New(errors.ErrCodeInvariantViolation, format, args...)
	err.Message = path + ": " + err.Message
	return err
}

func childPath(parent string, n *Node, i int) string {
	title := n.Children[i].Title
	if n.IsArray {
		title = IndexLabel(i)
	}
	return parent + "/" + title
}
