package relics

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// rule ties one syntax-node kind to the predicate recognizing one
// obsolete construct. The rule set is fixed; it is not extensible at
// runtime and rules cannot be disabled.
type rule struct {
	nodeType string
	match    func(n *sitter.Node, source []byte, parents parentMap) (Kind, bool)
}

// ruleSet is evaluated in order against every node whose type matches.
var ruleSet = []rule{
	{nodeType: "binary_operator", match: matchPercentFormat},
	{nodeType: "attribute", match: matchLegacyIteration},
	{nodeType: "attribute", match: matchOSPathJoin},
	{nodeType: "identifier", match: matchLegacyName},
	{nodeType: "except_clause", match: matchCommaExcept},
	{nodeType: "print_statement", match: matchPrintStatement},
}

// legacyIterationNames are the dict iteration methods removed in Python 3.
var legacyIterationNames = map[string]Kind{
	"iteritems":  KindIterItems,
	"iterkeys":   KindIterKeys,
	"itervalues": KindIterValues,
}

// legacyNames are builtins removed in Python 3. Matching is purely
// syntactic: a local variable merely named one of these also matches.
var legacyNames = map[string]Kind{
	"xrange":     KindXrange,
	"basestring": KindBasestring,
	"unicode":    KindUnicode,
}

// matchPercentFormat flags %-style string formatting. The match is
// suppressed when the expression is the sole argument of a method call
// named debug, so intentional modulo arithmetic handed to logging calls
// is not flagged.
func matchPercentFormat(n *sitter.Node, source []byte, parents parentMap) (Kind, bool) {
	op := n.ChildByFieldName("operator")
	if op == nil || nodeText(op, source) != "%" {
		return "", false
	}
	if isSoleDebugArgument(n, parents, source) {
		return "", false
	}
	return KindPercentFormat, true
}

// isSoleDebugArgument reports whether n is the only argument of a call
// of the form <anything>.debug(n).
func isSoleDebugArgument(n *sitter.Node, parents parentMap, source []byte) bool {
	args := parents.of(n)
	if args == nil || args.Type() != "argument_list" || args.NamedChildCount() != 1 {
		return false
	}
	call := parents.of(args)
	if call == nil || call.Type() != "call" {
		return false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return false
	}
	member := fn.ChildByFieldName("attribute")
	return member != nil && nodeText(member, source) == "debug"
}

// matchLegacyIteration flags d.iteritems(), d.iterkeys(), d.itervalues().
// Exact membership test on the member name, no prefix matching.
func matchLegacyIteration(n *sitter.Node, source []byte, _ parentMap) (Kind, bool) {
	member := n.ChildByFieldName("attribute")
	if member == nil {
		return "", false
	}
	kind, ok := legacyIterationNames[nodeText(member, source)]
	return kind, ok
}

// matchOSPathJoin flags any expression shaped X.path.join. It never
// checks that X resolves to the os module, so unrelated objects with a
// path attribute over-trigger. That imprecision is part of the rule's
// contract and is covered by a test.
func matchOSPathJoin(n *sitter.Node, source []byte, _ parentMap) (Kind, bool) {
	member := n.ChildByFieldName("attribute")
	if member == nil || nodeText(member, source) != "join" {
		return "", false
	}
	object := n.ChildByFieldName("object")
	if object == nil || object.Type() != "attribute" {
		return "", false
	}
	inner := object.ChildByFieldName("attribute")
	if inner == nil || nodeText(inner, source) != "path" {
		return "", false
	}
	return KindOSPathJoin, true
}

// matchLegacyName flags references to xrange, basestring and unicode.
// Identifiers that are not name references (the member slot of an
// attribute, a keyword-argument name, a def/class name) are excluded so
// obj.unicode or f(unicode=1) do not fire.
func matchLegacyName(n *sitter.Node, source []byte, parents parentMap) (Kind, bool) {
	kind, ok := legacyNames[nodeText(n, source)]
	if !ok {
		return "", false
	}
	if !isNameReference(n, parents) {
		return "", false
	}
	return kind, true
}

// isNameReference reports whether an identifier occupies a position
// the grammar treats as a plain name reference.
func isNameReference(n *sitter.Node, parents parentMap) bool {
	parent := parents.of(n)
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case "attribute":
		member := parent.ChildByFieldName("attribute")
		return member == nil || !sameNode(member, n)
	case "keyword_argument", "function_definition", "class_definition", "default_parameter":
		name := parent.ChildByFieldName("name")
		return name == nil || !sameNode(name, n)
	case "parameters", "lambda_parameters":
		return false
	}
	return true
}

// matchCommaExcept flags the two-clause Python 2 handler form
// `except Type, name:`. The grammar still parses that form, so the
// clause header (everything before the colon) containing a comma is the
// signal; body text is deliberately not inspected.
func matchCommaExcept(n *sitter.Node, source []byte, _ parentMap) (Kind, bool) {
	header, _, _ := strings.Cut(nodeText(n, source), ":")
	if !strings.Contains(header, ",") {
		return "", false
	}
	return KindCommaExcept, true
}

// matchPrintStatement flags the Python 2 print statement. The grammar
// models it as a distinct node kind; print used as an ordinary call
// parses as a call node and never reaches this rule.
func matchPrintStatement(_ *sitter.Node, _ []byte, _ parentMap) (Kind, bool) {
	return KindPrintStatement, true
}

// nodeText returns the source text spanned by a node, best effort.
func nodeText(n *sitter.Node, source []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

// sameNode reports whether two node handles refer to the same tree node.
func sameNode(a, b *sitter.Node) bool {
	return a.Type() == b.Type() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
