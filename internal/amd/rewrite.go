package amd

// A pass maps a factory body statement list to a new one. Passes never mutate
// their input slice or the nodes in it.
type pass func(body []Node) []Node

func rewriteBody(body []Node, passes ...pass) []Node {
	out := body
	for _, p := range passes {
		out = p(out)
	}
	return out
}

// scrubDeclarationLocs drops the source span of every top-level variable
// declaration so the printer lays them out afresh.
//
// Post: same length and order as body; VariableDeclaration entries are
// copies with a nil Loc.
func scrubDeclarationLocs(body []Node) []Node {
	out := make([]Node, len(body))
	for i, stmt := range body {
		decl, ok := stmt.(*VariableDeclaration)
		if !ok || decl.Loc == nil {
			out[i] = stmt
			continue
		}
		scrubbed := *decl
		scrubbed.Loc = nil
		out[i] = &scrubbed
	}
	return out
}

// convertReturnToExport replaces each top-level `return x;` with
// `module.exports = x;`, keeping the return's comments. Returns nested in
// inner blocks are left alone.
//
// Post: same length and order as body; no top-level ReturnStatement remains.
func convertReturnToExport(body []Node) []Node {
	out := make([]Node, len(body))
	for i, stmt := range body {
		ret, ok := stmt.(*ReturnStatement)
		if !ok {
			out[i] = stmt
			continue
		}
		out[i] = moduleExport(ret)
	}
	return out
}

func moduleExport(ret *ReturnStatement) *ExpressionStatement {
	value := ret.Argument
	if value == nil {
		value = &Identifier{Name: "undefined"}
	}
	stmt := &ExpressionStatement{
		Expression: &AssignmentExpression{
			Operator: "=",
			Left: &MemberExpression{
				Object:   &Identifier{Name: "module"},
				Property: &Identifier{Name: "exports"},
			},
			Right: value,
		},
	}
	stmt.Leading = ret.Leading
	stmt.Trailing = ret.Trailing
	return stmt
}

// injectDeclarations returns a pass inserting decls as one block right before
// the first variable declaration of the body, or right after the directive
// prologue when it declares no variables.
//
// Post: len(out) == len(body)+len(decls); decls appear contiguously and in
// order; every original statement keeps its relative order.
func injectDeclarations(decls []*VariableDeclaration) pass {
	return func(body []Node) []Node {
		at := firstDeclarationIndex(body)
		out := make([]Node, 0, len(body)+len(decls))
		out = append(out, body[:at]...)
		for _, decl := range decls {
			out = append(out, decl)
		}
		return append(out, body[at:]...)
	}
}

func firstDeclarationIndex(body []Node) int {
	for i, stmt := range body {
		if _, ok := stmt.(*VariableDeclaration); ok {
			return i
		}
	}
	return directivePrologueLen(body)
}

// directivePrologueLen counts the leading "use strict"-style directives,
// which stop being directives if anything is inserted above them.
func directivePrologueLen(body []Node) int {
	n := 0
	for _, stmt := range body {
		es, ok := stmt.(*ExpressionStatement)
		if !ok {
			break
		}
		lit, ok := es.Expression.(*Literal)
		if !ok || !lit.IsString {
			break
		}
		n++
	}
	return n
}

// withLeading returns a copy of the statement stmt with comments placed ahead
// of its own leading comments.
func withLeading(stmt Node, comments []Comment) Node {
	var out Node
	switch v := stmt.(type) {
	case *ExpressionStatement:
		c := *v
		out = &c
	case *VariableDeclaration:
		c := *v
		out = &c
	case *ReturnStatement:
		c := *v
		out = &c
	case *IfStatement:
		c := *v
		out = &c
	case *BlockStatement:
		c := *v
		out = &c
	case *Opaque:
		c := *v
		out = &c
	default:
		return stmt
	}
	b := out.base()
	b.Leading = append(append([]Comment{}, comments...), b.Leading...)
	return out
}
