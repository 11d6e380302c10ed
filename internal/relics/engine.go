package relics

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// nodeKey identifies a node within one tree. Tree-sitter hands out
// fresh node handles on every child access, so identity has to be
// derived from the node's span and kind.
type nodeKey struct {
	start, end uint32
	kind       string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Type()}
}

// parentMap records the immediate syntactic parent of every node in one
// tree. The tree structure itself only exposes parent-to-child links to
// the traversal, so the map is built in a pre-pass, used for the scan
// of that file, and discarded with the tree.
type parentMap map[nodeKey]*sitter.Node

func (m parentMap) of(n *sitter.Node) *sitter.Node {
	return m[keyOf(n)]
}

func buildParents(root *sitter.Node) parentMap {
	parents := make(parentMap)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			parents[keyOf(child)] = n
			walk(child)
		}
	}
	walk(root)
	return parents
}

// Inspect traverses the tree rooted at root in pre-order, depth-first,
// and returns every relic finding for file in document order. It visits
// each node exactly once and evaluates the whole rule set against it;
// a node no rule matches is simply skipped. Inspect performs no I/O.
func Inspect(file string, source []byte, root *sitter.Node) []Finding {
	if root == nil {
		return nil
	}
	parents := buildParents(root)

	var findings []Finding
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		nodeType := n.Type()
		for _, r := range ruleSet {
			if r.nodeType != nodeType {
				continue
			}
			if kind, ok := r.match(n, source, parents); ok {
				findings = append(findings, newFinding(file, n, kind, source))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	return findings
}

func newFinding(file string, n *sitter.Node, kind Kind, source []byte) Finding {
	point := n.StartPoint()
	return Finding{
		File:    file,
		Line:    int(point.Row) + 1,
		Column:  int(point.Column),
		Kind:    kind,
		Snippet: nodeText(n, source),
	}
}
