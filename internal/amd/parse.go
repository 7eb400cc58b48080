package amd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Parse parses one JavaScript module and lowers the tree-sitter syntax tree
// into a Program. Sources with syntax errors are rejected with a *ParseError.
func Parse(ctx context.Context, src []byte) (*Program, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse javascript: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse javascript: tree-sitter returned nil tree")
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, newParseError(root, src)
	}

	l := &lowerer{src: src}
	prog := &Program{
		source: src,
	}
	prog.Loc = l.loc(root)
	prog.Body = l.statements(root)
	prog.protected = l.protected
	return prog, nil
}

type lowerer struct {
	src []byte
	// protected holds byte ranges whose line breaks belong to literal
	// contents and must never be re-indented.
	protected [][2]uint32
}

func (l *lowerer) loc(n *sitter.Node) *Loc {
	return &Loc{
		Start:    n.StartByte(),
		End:      n.EndByte(),
		StartRow: int(n.StartPoint().Row),
		EndRow:   int(n.EndPoint().Row),
	}
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(l.src[n.StartByte():n.EndByte()])
}

func (l *lowerer) comment(n *sitter.Node) Comment {
	return Comment{
		Text:   l.text(n),
		Start:  n.StartByte(),
		Row:    int(n.StartPoint().Row),
		EndRow: int(n.EndPoint().Row),
	}
}

// statements lowers the statement children of a program or block and attaches
// comment siblings to them. A comment on the same row as the end of the
// previous statement trails it; any other comment leads the next statement.
func (l *lowerer) statements(parent *sitter.Node) []Node {
	out := make([]Node, 0, int(parent.NamedChildCount()))
	var pending []Comment
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		child := parent.NamedChild(i)
		if child.Type() == "comment" {
			c := l.comment(child)
			if len(out) > 0 && len(pending) == 0 && c.Row == out[len(out)-1].base().Loc.EndRow {
				last := out[len(out)-1].base()
				last.Trailing = append(last.Trailing, c)
				continue
			}
			pending = append(pending, c)
			continue
		}
		stmt := l.statement(child)
		stmt.base().Leading = pending
		pending = nil
		out = append(out, stmt)
	}
	if len(pending) > 0 && len(out) > 0 {
		last := out[len(out)-1].base()
		last.Trailing = append(last.Trailing, pending...)
	}
	return out
}

func (l *lowerer) statement(n *sitter.Node) Node {
	switch n.Type() {
	case "expression_statement":
		expr := firstNamedNonComment(n)
		if expr == nil {
			return l.opaque(n, false)
		}
		stmt := &ExpressionStatement{Expression: l.expression(expr)}
		stmt.Loc = l.loc(n)
		return stmt
	case "variable_declaration", "lexical_declaration":
		return l.declaration(n)
	case "return_statement":
		stmt := &ReturnStatement{}
		if arg := firstNamedNonComment(n); arg != nil {
			stmt.Argument = l.expression(arg)
		}
		stmt.Loc = l.loc(n)
		return stmt
	case "if_statement":
		return l.ifStatement(n)
	case "statement_block":
		block := &BlockStatement{Body: l.statements(n)}
		block.Loc = l.loc(n)
		return block
	default:
		return l.opaque(n, false)
	}
}

func (l *lowerer) declaration(n *sitter.Node) Node {
	decl := &VariableDeclaration{Keyword: "var"}
	if n.Type() == "lexical_declaration" && n.ChildCount() > 0 {
		decl.Keyword = l.text(n.Child(0))
	}
	// Comments between declarators trail the one before them; comments before
	// the first declarator lead it.
	var pending []Comment
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			c := l.comment(child)
			if last := len(decl.Declarations) - 1; last >= 0 {
				decl.Declarations[last].Trailing = append(decl.Declarations[last].Trailing, c)
			} else {
				pending = append(pending, c)
			}
			continue
		}
		if child.Type() != "variable_declarator" {
			continue
		}
		declarator := &VariableDeclarator{}
		declarator.Loc = l.loc(child)
		declarator.Leading, pending = pending, nil
		if name := child.ChildByFieldName("name"); name != nil {
			declarator.ID = l.expression(name)
		}
		if value := child.ChildByFieldName("value"); value != nil {
			declarator.Init = l.expression(value)
		}
		decl.Declarations = append(decl.Declarations, declarator)
	}
	if len(decl.Declarations) == 0 {
		return l.opaque(n, false)
	}
	decl.Loc = l.loc(n)
	return decl
}

func (l *lowerer) ifStatement(n *sitter.Node) Node {
	stmt := &IfStatement{}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		stmt.Test = l.expression(cond)
	}
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		stmt.Consequent = l.statement(cons)
	}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		// else_clause wraps the alternate statement.
		if inner := firstNamedNonComment(alt); inner != nil && alt.Type() == "else_clause" {
			stmt.Alternate = l.statement(inner)
		} else {
			stmt.Alternate = l.statement(alt)
		}
	}
	stmt.Loc = l.loc(n)
	return stmt
}

func (l *lowerer) expression(n *sitter.Node) Node {
	switch n.Type() {
	case "parenthesized_expression":
		inner := firstNamedNonComment(n)
		if inner == nil {
			return l.opaque(n, true)
		}
		// Parentheses are transparent to the tree, but the span keeps them so
		// verbatim printing cannot change precedence.
		node := l.expression(inner)
		node.base().Loc = l.loc(n)
		node.base().Parenthesized = true
		return node
	case "identifier", "property_identifier", "shorthand_property_identifier":
		id := &Identifier{Name: l.text(n)}
		id.Loc = l.loc(n)
		return id
	case "string":
		raw := l.text(n)
		value, ok := decodeStringLiteral(raw)
		if !ok {
			return l.opaque(n, true)
		}
		if strings.ContainsAny(raw, "\n") {
			l.protect(n)
		}
		lit := &Literal{Raw: raw, Value: value, IsString: true}
		lit.Loc = l.loc(n)
		return lit
	case "number", "true", "false", "null":
		lit := &Literal{Raw: l.text(n), Value: l.text(n)}
		lit.Loc = l.loc(n)
		return lit
	case "array":
		arr := &ArrayExpression{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}
			arr.Elements = append(arr.Elements, l.expression(child))
		}
		arr.Loc = l.loc(n)
		return arr
	case "call_expression":
		return l.call(n)
	case "function_expression", "function":
		return l.function(n)
	case "member_expression":
		object := n.ChildByFieldName("object")
		property := n.ChildByFieldName("property")
		if object == nil || property == nil || n.ChildByFieldName("optional_chain") != nil {
			return l.opaque(n, true)
		}
		member := &MemberExpression{Object: l.expression(object), Property: l.expression(property)}
		member.Loc = l.loc(n)
		return member
	case "assignment_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil {
			return l.opaque(n, true)
		}
		assign := &AssignmentExpression{Operator: "=", Left: l.expression(left), Right: l.expression(right)}
		assign.Loc = l.loc(n)
		return assign
	default:
		return l.opaque(n, true)
	}
}

func (l *lowerer) call(n *sitter.Node) Node {
	callee := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if callee == nil || args == nil || args.Type() != "arguments" {
		return l.opaque(n, true)
	}
	call := &CallExpression{Callee: l.expression(callee)}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		call.Arguments = append(call.Arguments, l.expression(child))
	}
	call.Loc = l.loc(n)
	return call
}

func (l *lowerer) function(n *sitter.Node) Node {
	body := n.ChildByFieldName("body")
	if body == nil {
		return l.opaque(n, true)
	}
	fn := &FunctionExpression{}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = l.text(name)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			child := params.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}
			if child.Type() == "identifier" {
				id := &Identifier{Name: l.text(child)}
				id.Loc = l.loc(child)
				fn.Params = append(fn.Params, id)
				continue
			}
			fn.Params = append(fn.Params, l.opaque(child, false))
		}
	}
	block := &BlockStatement{Body: l.statements(body)}
	block.Loc = l.loc(body)
	fn.Body = block
	fn.Loc = l.loc(n)
	return fn
}

// opaque wraps n verbatim. Expressions also record the identifiers they
// mention so callers can ask what an opaque test refers to.
func (l *lowerer) opaque(n *sitter.Node, expression bool) Node {
	node := &Opaque{Type: n.Type()}
	node.Loc = l.loc(n)
	if n.Type() == "template_string" {
		l.protect(n)
	}
	visitNode(n, func(child *sitter.Node) {
		switch child.Type() {
		case "identifier":
			if expression {
				node.Identifiers = append(node.Identifiers, l.text(child))
			}
		case "template_string", "string":
			l.protect(child)
		}
	})
	return node
}

func (l *lowerer) protect(n *sitter.Node) {
	if n.StartPoint().Row == n.EndPoint().Row {
		return
	}
	l.protected = append(l.protected, [2]uint32{n.StartByte(), n.EndByte()})
}

func visitNode(node *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		visit(child)
		visitNode(child, visit)
	}
}

func firstNamedNonComment(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "comment" {
			return child
		}
	}
	return nil
}

// ParseError reports the first syntax error tree-sitter recovered from.
type ParseError struct {
	Line    int
	Column  int
	Snippet string
	Missing bool
}

func (e *ParseError) Error() string {
	if e.Missing {
		return fmt.Sprintf("syntax error at %d:%d: missing %s", e.Line, e.Column, e.Snippet)
	}
	if e.Snippet == "" {
		return fmt.Sprintf("syntax error at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Snippet)
}

func newParseError(root *sitter.Node, src []byte) *ParseError {
	bad := firstErrorNode(root)
	if bad == nil {
		return &ParseError{Line: 1, Column: 1}
	}
	perr := &ParseError{
		Line:    int(bad.StartPoint().Row) + 1,
		Column:  int(bad.StartPoint().Column) + 1,
		Missing: bad.IsMissing(),
	}
	if perr.Missing {
		perr.Snippet = bad.Type()
		return perr
	}
	snippet := string(src[bad.StartByte():bad.EndByte()])
	if idx := strings.IndexByte(snippet, '\n'); idx >= 0 {
		snippet = snippet[:idx]
	}
	if len(snippet) > 40 {
		snippet = snippet[:40]
	}
	perr.Snippet = snippet
	return perr
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return node
}

// decodeStringLiteral returns the value of a quoted JavaScript string literal.
func decodeStringLiteral(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[len(raw)-1] != quote {
		return "", false
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, true
	}

	var b strings.Builder
	var units []uint16
	flush := func() {
		if len(units) > 0 {
			b.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			flush()
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case 'u':
			r, width, ok := decodeUnicodeEscape(body[i+1:])
			if !ok {
				return "", false
			}
			i += width
			if r <= 0xFFFF {
				units = append(units, uint16(r))
				continue
			}
			flush()
			b.WriteRune(r)
			continue
		case 'x':
			if i+2 >= len(body) {
				return "", false
			}
			value, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			flush()
			b.WriteRune(rune(value))
			i += 2
			continue
		}
		flush()
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\n':
		default:
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size - 1
		}
	}
	flush()
	return b.String(), true
}

// decodeUnicodeEscape decodes the part of a \u escape after the "u" and
// reports how many bytes it consumed.
func decodeUnicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		value, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || value > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(value), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	value, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(value), 4, true
}
