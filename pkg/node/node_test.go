package node

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/fetchtree/pkg/errors"
)

func sample() *Node {
	return NewObject("",
		NewLeaf("a", "1", Number),
		NewArray("b",
			NewLeaf("", "2", Number),
			NewLeaf("", "3", Number),
		),
	)
}

func TestConstructorsDeriveShape(t *testing.T) {
	root := sample()

	if root.IsLeaf || root.IsArray {
		t.Fatalf("root: IsLeaf=%v IsArray=%v, want keyed collection", root.IsLeaf, root.IsArray)
	}
	if root.ObjectCount != 2 {
		t.Errorf("root.ObjectCount = %d, want 2", root.ObjectCount)
	}

	a := root.Child("a")
	if a == nil || !a.IsLeaf || a.Value != "1" || a.ObjectCount != 0 {
		t.Errorf("a = %+v, want leaf with value 1", a)
	}

	b := root.Child("b")
	if b == nil || !b.IsArray || b.ObjectCount != 2 {
		t.Fatalf("b = %+v, want array of 2", b)
	}
	for i, c := range b.Children {
		if c.Title != IndexLabel(i) {
			t.Errorf("b[%d].Title = %q, want %q", i, c.Title, IndexLabel(i))
		}
	}
	if b.Children[1].Value != "3" {
		t.Errorf("b[1].Value = %q, want 3", b.Children[1].Value)
	}
}

func TestAppend(t *testing.T) {
	arr := NewArray("items")
	arr.Append(NewLeaf("ignored", "x", String))
	arr.Append(NewLeaf("ignored", "y", String))

	if arr.ObjectCount != 2 {
		t.Errorf("ObjectCount = %d, want 2", arr.ObjectCount)
	}
	if arr.Children[1].Title != "[1]" {
		t.Errorf("second title = %q, want [1]", arr.Children[1].Title)
	}

	defer func() {
		if recover() == nil {
			t.Error("Append on leaf should panic")
		}
	}()
	NewLeaf("x", "1", Number).Append(NewLeaf("y", "2", Number))
}

func TestValidate(t *testing.T) {
	shared := NewLeaf("s", "1", Number)

	tests := []struct {
		name    string
		root    *Node
		wantErr bool
	}{
		{"sample", sample(), false},
		{"empty object", NewObject(""), false},
		{"empty array", NewArray(""), false},
		{"lone leaf", NewLeaf("", "x", String), false},
		{"nil root", nil, true},
		{"leaf with children", &Node{IsLeaf: true, Children: []*Node{NewLeaf("x", "1", Number)}}, true},
		{"leaf with count", &Node{IsLeaf: true, ObjectCount: 3}, true},
		{"leaf marked array", &Node{IsLeaf: true, IsArray: true}, true},
		{"count mismatch", &Node{ObjectCount: 2, Children: []*Node{NewLeaf("x", "1", Number)}}, true},
		{"nil child", &Node{ObjectCount: 1, Children: []*Node{nil}}, true},
		{"array with field title", &Node{IsArray: true, ObjectCount: 1, Children: []*Node{NewLeaf("name", "1", Number)}}, true},
		{"array with wrong index", &Node{IsArray: true, ObjectCount: 1, Children: []*Node{NewLeaf("[3]", "1", Number)}}, true},
		{"array with empty titles", &Node{IsArray: true, ObjectCount: 1, Children: []*Node{NewLeaf("", "1", Number)}}, false},
		{"shared child", NewObject("", shared, NewObject("inner", shared)), true},
		{"unknown type", &Node{IsLeaf: true, Type: ValueType(42)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvariantViolation) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvariantViolation)
			}
		})
	}
}

func TestValidateReportsPath(t *testing.T) {
	root := sample()
	root.Child("b").Children[1].ObjectCount = 5

	err := Validate(root)
	if err == nil {
		t.Fatal("expected violation")
	}
	if got := errors.UserMessage(err); got != "/b/[1]: leaf has object count 5" {
		t.Errorf("message = %q", got)
	}
}

func TestInvariantsHoldForEveryNode(t *testing.T) {
	Walk(sample(), func(n *Node, path string, _ int) bool {
		if n.IsLeaf && (n.ObjectCount != 0 || len(n.Children) != 0) {
			t.Errorf("%s: leaf with count %d and %d children", path, n.ObjectCount, len(n.Children))
		}
		if !n.IsLeaf && n.ObjectCount != len(n.Children) {
			t.Errorf("%s: count %d != %d children", path, n.ObjectCount, len(n.Children))
		}
		return true
	})
}

func TestFind(t *testing.T) {
	root := sample()

	tests := []struct {
		path string
		want string
	}{
		{"", "(root) {2}"},
		{"/", "(root) {2}"},
		{"a", "a = 1"},
		{"b", "b [2]"},
		{"b/[0]", "[0] = 2"},
		{"b/1", "[1] = 3"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := root.Find(tt.path)
			if got == nil {
				t.Fatalf("Find(%q) = nil", tt.path)
			}
			if got.String() != tt.want {
				t.Errorf("Find(%q) = %q, want %q", tt.path, got.String(), tt.want)
			}
		})
	}

	for _, missing := range []string{"c", "a/x", "b/7", "b/name"} {
		if got := root.Find(missing); got != nil {
			t.Errorf("Find(%q) = %v, want nil", missing, got)
		}
	}
}

func TestCloneAndEqual(t *testing.T) {
	root := sample()
	cp := root.Clone()

	if !Equal(root, cp) {
		t.Fatal("clone should be equal")
	}
	if cp.Children[1] == root.Children[1] {
		t.Error("clone shares children")
	}

	cp.Child("b").Children[0].Value = "99"
	if Equal(root, cp) {
		t.Error("trees with different values should differ")
	}

	typed := root.Clone()
	typed.Child("a").Type = String
	if Equal(root, typed) {
		t.Error("trees with different scalar types should differ")
	}
}

func TestCount(t *testing.T) {
	got := Count(sample())
	want := Stats{Nodes: 5, Leaves: 3, Arrays: 1, Objects: 1, MaxDepth: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Count() mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	var paths []string
	Walk(sample(), func(n *Node, path string, _ int) bool {
		paths = append(paths, path)
		return !n.IsArray
	})
	want := []string{"", "/a", "/b"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("visited paths mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotJSON(t *testing.T) {
	root := sample()
	data, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !Equal(root, &back) {
		t.Errorf("snapshot round trip changed tree:\n%s", data)
	}
}

func TestValueTypeText(t *testing.T) {
	for _, typ := range []ValueType{String, Number, Bool, Null} {
		b, _ := typ.MarshalText()
		var back ValueType
		if err := back.UnmarshalText(b); err != nil || back != typ {
			t.Errorf("%v: round trip = %v, %v", typ, back, err)
		}
	}
	var v ValueType
	if err := v.UnmarshalText([]byte("date")); err == nil {
		t.Error("expected error for unknown type")
	}
}
