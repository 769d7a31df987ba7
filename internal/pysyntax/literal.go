package pysyntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// IsLiteral reports whether text is a single Python literal expression that
// ast.literal_eval accepts: numbers, strings without interpolation, booleans,
// None, Ellipsis, and tuples, lists, sets and dicts built from those.
func IsLiteral(text string) bool {
	root, closeTree, err := parse(text)
	if err != nil {
		return false
	}
	defer closeTree()

	if root.HasError() {
		return false
	}

	var stmt *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if stmt != nil {
			return false
		}
		stmt = child
	}
	if stmt == nil || stmt.Type() != "expression_statement" {
		return false
	}

	src := []byte(text)
	return allLiteral(stmt, src)
}

func allLiteral(n *sitter.Node, src []byte) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if !isLiteralNode(child, src) {
			return false
		}
	}
	return true
}

func isLiteralNode(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "integer", "float", "true", "false", "none", "ellipsis":
		return true
	case "string":
		return !containsType(n, "interpolation")
	case "concatenated_string", "list", "tuple", "set", "parenthesized_expression", "expression_list", "dictionary":
		return allLiteral(n, src)
	case "pair":
		key, value := n.ChildByFieldName("key"), n.ChildByFieldName("value")
		return key != nil && value != nil && isLiteralNode(key, src) && isLiteralNode(value, src)
	case "unary_operator":
		op, arg := n.ChildByFieldName("operator"), n.ChildByFieldName("argument")
		return op != nil && arg != nil && isSign(op, src) && isNumber(arg, src)
	case "binary_operator":
		// complex literals such as 1+2j
		op := n.ChildByFieldName("operator")
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		return op != nil && left != nil && right != nil &&
			isSign(op, src) && isNumber(left, src) && isNumber(right, src)
	case "call":
		fn, args := n.ChildByFieldName("function"), n.ChildByFieldName("arguments")
		return fn != nil && args != nil && fn.Content(src) == "set" && args.NamedChildCount() == 0
	default:
		return false
	}
}

func isSign(op *sitter.Node, src []byte) bool {
	s := op.Content(src)
	return s == "-" || s == "+"
}

func isNumber(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "integer", "float":
		return true
	case "unary_operator":
		return isLiteralNode(n, src)
	}
	return false
}

func containsType(n *sitter.Node, nodeType string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == nodeType || containsType(child, nodeType) {
			return true
		}
	}
	return false
}
