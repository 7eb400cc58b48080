package amd

import (
	"fmt"
	"strings"
)

// Quote is the quote character used for synthesized string literals.
// Literals copied from the source keep their original quoting.
type Quote byte

const (
	QuoteSingle Quote = '\''
	QuoteDouble Quote = '"'
)

func ParseQuote(value string) (Quote, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "single":
		return QuoteSingle, nil
	case "double":
		return QuoteDouble, nil
	default:
		return 0, fmt.Errorf("unknown quote style: %s", value)
	}
}

func (q Quote) String() string {
	if q == QuoteDouble {
		return "double"
	}
	return "single"
}

// Print serializes prog. Nodes that still carry a source span are copied from
// the source with their indentation shifted to the top level; synthesized
// nodes are laid out from their structure.
func Print(prog *Program, quote Quote) []byte {
	if quote != QuoteDouble {
		quote = QuoteSingle
	}
	p := &printer{src: prog.source, protected: prog.protected, quote: quote}
	return []byte(p.program(prog))
}

type printer struct {
	src       []byte
	protected [][2]uint32
	quote     Quote
}

func (p *printer) program(prog *Program) string {
	var b strings.Builder
	for _, c := range prog.Comments {
		b.WriteString(p.comment(c))
		b.WriteByte('\n')
	}
	var prev Node
	for _, stmt := range prog.Body {
		if prev != nil {
			b.WriteByte('\n')
			if p.blankLineBetween(prev, stmt) {
				b.WriteByte('\n')
			}
		}
		p.statement(&b, stmt)
		prev = stmt
	}
	for i, c := range prog.TrailingComments {
		if i > 0 || len(prog.Body) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.comment(c))
	}
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *printer) statement(b *strings.Builder, stmt Node) {
	leading, trailing := CommentsOf(stmt)
	for _, c := range leading {
		b.WriteString(p.comment(c))
		b.WriteByte('\n')
	}
	b.WriteString(p.node(stmt))
	_, endRow, ok := sourceRows(stmt)
	for _, c := range trailing {
		if ok && c.Row == endRow {
			b.WriteByte(' ')
		} else {
			b.WriteByte('\n')
		}
		b.WriteString(p.comment(c))
		endRow, ok = c.EndRow, true
	}
}

func (p *printer) node(n Node) string {
	if n == nil {
		return ""
	}
	if loc := n.base().Loc; loc != nil {
		return p.verbatim(loc.Start, loc.End)
	}
	switch v := n.(type) {
	case *Program:
		return p.program(v)
	case *ExpressionStatement:
		return p.node(v.Expression) + ";"
	case *CallExpression:
		return p.node(v.Callee) + "(" + p.list(v.Arguments) + ")"
	case *FunctionExpression:
		head := "function"
		if v.Name != "" {
			head += " " + v.Name
		}
		body := "{}"
		if v.Body != nil {
			body = p.node(v.Body)
		}
		return head + "(" + p.list(v.Params) + ") " + body
	case *ArrayExpression:
		return "[" + p.list(v.Elements) + "]"
	case *VariableDeclaration:
		return p.declaration(v)
	case *VariableDeclarator:
		if v.Init == nil {
			return p.node(v.ID)
		}
		return p.node(v.ID) + " = " + p.node(v.Init)
	case *ReturnStatement:
		if v.Argument == nil {
			return "return;"
		}
		return "return " + p.node(v.Argument) + ";"
	case *IfStatement:
		out := "if (" + p.node(v.Test) + ") " + p.node(v.Consequent)
		if v.Alternate != nil {
			out += " else " + p.node(v.Alternate)
		}
		return out
	case *BlockStatement:
		if len(v.Body) == 0 {
			return "{}"
		}
		var b strings.Builder
		b.WriteString("{\n")
		for _, stmt := range v.Body {
			var inner strings.Builder
			p.statement(&inner, stmt)
			for _, line := range strings.Split(inner.String(), "\n") {
				b.WriteString("  ")
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		b.WriteString("}")
		return b.String()
	case *MemberExpression:
		if v.Computed {
			return p.node(v.Object) + "[" + p.node(v.Property) + "]"
		}
		return p.node(v.Object) + "." + p.node(v.Property)
	case *AssignmentExpression:
		right := p.node(v.Right)
		if needsGrouping(v.Right) {
			right = "(" + right + ")"
		}
		return p.node(v.Left) + " " + v.Operator + " " + right
	case *Identifier:
		return v.Name
	case *Literal:
		if v.IsString {
			return quoteString(v.Value, p.quote)
		}
		return v.Raw
	case *Opaque:
		// Opaque nodes always come from the source.
		return ""
	}
	return ""
}

// declaration lays out a variable declaration whose own span was dropped.
// Comments between declarators stay after the comma that precedes them.
func (p *printer) declaration(v *VariableDeclaration) string {
	var b strings.Builder
	b.WriteString(v.Keyword)
	b.WriteByte(' ')
	last := len(v.Declarations) - 1
	for i, decl := range v.Declarations {
		leading, trailing := CommentsOf(decl)
		p.inlineComments(&b, leading)
		b.WriteString(p.node(decl))
		if i == last {
			b.WriteByte(';')
		} else {
			b.WriteByte(',')
		}
		if len(trailing) > 0 {
			b.WriteByte(' ')
			p.inlineComments(&b, trailing)
		} else if i < last {
			b.WriteByte(' ')
		}
	}
	return strings.TrimRight(b.String(), " \n")
}

// inlineComments writes comments in the middle of a line. A line comment ends
// the line, so the text after it continues on an indented line.
func (p *printer) inlineComments(b *strings.Builder, comments []Comment) {
	for _, c := range comments {
		b.WriteString(p.comment(c))
		if strings.HasPrefix(c.Text, "//") {
			b.WriteString("\n    ")
		} else {
			b.WriteByte(' ')
		}
	}
}

// needsGrouping reports whether n binds more loosely than an assignment and
// is not already wrapped in parentheses.
func needsGrouping(n Node) bool {
	op, ok := n.(*Opaque)
	return ok && op.Type == "sequence_expression" && !op.Parenthesized
}

func (p *printer) list(nodes []Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, p.node(n))
	}
	return strings.Join(parts, ", ")
}

func (p *printer) comment(c Comment) string {
	return p.verbatim(c.Start, c.Start+uint32(len(c.Text)))
}

// verbatim copies src[start:end], removing the indentation of the line the
// span starts on from every following line, except lines that begin inside a
// multi-line string or template literal.
func (p *printer) verbatim(start, end uint32) string {
	text := string(p.src[start:end])
	indent := lineIndent(p.src, start)
	if indent == 0 || !strings.Contains(text, "\n") {
		return text
	}
	var b strings.Builder
	offset := start
	for i, line := range strings.SplitAfter(text, "\n") {
		width := uint32(len(line))
		if i > 0 && !p.isProtected(offset) {
			line = trimIndent(line, indent)
		}
		b.WriteString(line)
		offset += width
	}
	return b.String()
}

func (p *printer) isProtected(offset uint32) bool {
	for _, r := range p.protected {
		if r[0] < offset && offset < r[1] {
			return true
		}
	}
	return false
}

func (p *printer) blankLineBetween(prev, next Node) bool {
	_, prevEnd, ok := sourceRows(prev)
	if !ok {
		return false
	}
	nextStart, _, ok := sourceRows(next)
	if !ok {
		return false
	}
	_, trailing := CommentsOf(prev)
	for _, c := range trailing {
		prevEnd = max(prevEnd, c.EndRow)
	}
	leading, _ := CommentsOf(next)
	if len(leading) > 0 {
		nextStart = min(nextStart, leading[0].Row)
	}
	return nextStart-prevEnd > 1
}

// sourceRows returns the source rows spanned by n and its located
// descendants. ok is false for entirely synthesized nodes.
func sourceRows(n Node) (start, end int, ok bool) {
	if loc := LocOf(n); loc != nil {
		return loc.StartRow, loc.EndRow, true
	}
	start, end = -1, -1
	walk(n, func(node Node) {
		loc := node.base().Loc
		if loc == nil {
			return
		}
		if start < 0 || loc.StartRow < start {
			start = loc.StartRow
		}
		if loc.EndRow > end {
			end = loc.EndRow
		}
	})
	return start, end, start >= 0
}

func lineIndent(src []byte, pos uint32) int {
	lineStart := int(pos)
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	indent := 0
	for i := lineStart; i < int(pos) && (src[i] == ' ' || src[i] == '\t'); i++ {
		indent++
	}
	return indent
}

func trimIndent(line string, indent int) string {
	i := 0
	for i < indent && i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

func quoteString(value string, quote Quote) string {
	var b strings.Builder
	b.WriteByte(byte(quote))
	for _, r := range value {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte(byte(quote))
	return b.String()
}
