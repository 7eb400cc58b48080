package amd

// Kind tags every node of the module tree.
type Kind string

const (
	KindProgram              Kind = "Program"
	KindExpressionStatement  Kind = "ExpressionStatement"
	KindCallExpression       Kind = "CallExpression"
	KindFunctionExpression   Kind = "FunctionExpression"
	KindArrayExpression      Kind = "ArrayExpression"
	KindVariableDeclaration  Kind = "VariableDeclaration"
	KindVariableDeclarator   Kind = "VariableDeclarator"
	KindReturnStatement      Kind = "ReturnStatement"
	KindIfStatement          Kind = "IfStatement"
	KindBlockStatement       Kind = "BlockStatement"
	KindMemberExpression     Kind = "MemberExpression"
	KindAssignmentExpression Kind = "AssignmentExpression"
	KindIdentifier           Kind = "Identifier"
	KindLiteral              Kind = "Literal"
	KindOpaque               Kind = "Opaque"
)

// Loc is the source span a node was parsed from. Nodes without a Loc are
// printed structurally; nodes with one are copied from the source.
type Loc struct {
	Start    uint32
	End      uint32
	StartRow int
	EndRow   int
}

type Comment struct {
	Text  string
	Start uint32
	Row   int
	// EndRow differs from Row for multi-line block comments.
	EndRow int
}

// Node is implemented only by the node types of this package, so a type
// switch over them is exhaustive.
type Node interface {
	Kind() Kind
	base() *nodeBase
}

type nodeBase struct {
	Loc      *Loc
	Leading  []Comment
	Trailing []Comment
	// Parenthesized is set when Loc spans grouping parentheses around the
	// expression.
	Parenthesized bool
}

func (b *nodeBase) base() *nodeBase { return b }

// Program is the root of a parsed module. Comments holds comments that belong
// to the module as a whole rather than to one statement.
type Program struct {
	nodeBase
	Body     []Node
	Comments []Comment
	// TrailingComments are printed after the last statement.
	TrailingComments []Comment

	source    []byte
	protected [][2]uint32
}

type ExpressionStatement struct {
	nodeBase
	Expression Node
}

type CallExpression struct {
	nodeBase
	Callee    Node
	Arguments []Node
}

type FunctionExpression struct {
	nodeBase
	// Name is empty for anonymous functions.
	Name   string
	Params []Node
	Body   *BlockStatement
}

type ArrayExpression struct {
	nodeBase
	Elements []Node
}

type VariableDeclaration struct {
	nodeBase
	// Keyword is var, let or const.
	Keyword      string
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	nodeBase
	ID   Node
	Init Node
}

type ReturnStatement struct {
	nodeBase
	// Argument is nil for a bare return.
	Argument Node
}

type IfStatement struct {
	nodeBase
	Test       Node
	Consequent Node
	Alternate  Node
}

type BlockStatement struct {
	nodeBase
	Body []Node
}

type MemberExpression struct {
	nodeBase
	Object   Node
	Property Node
	Computed bool
}

type AssignmentExpression struct {
	nodeBase
	Operator string
	Left     Node
	Right    Node
}

type Identifier struct {
	nodeBase
	Name string
}

// Literal is a string, number, boolean or null literal. Value holds the
// decoded contents of string literals.
type Literal struct {
	nodeBase
	Raw      string
	Value    string
	IsString bool
}

// Opaque is any construct the rewriter never looks inside. It is always
// printed from its source span. Identifiers lists the identifier names found
// inside opaque expressions.
type Opaque struct {
	nodeBase
	Type        string
	Identifiers []string
}

func (*Program) Kind() Kind              { return KindProgram }
func (*ExpressionStatement) Kind() Kind  { return KindExpressionStatement }
func (*CallExpression) Kind() Kind       { return KindCallExpression }
func (*FunctionExpression) Kind() Kind   { return KindFunctionExpression }
func (*ArrayExpression) Kind() Kind      { return KindArrayExpression }
func (*VariableDeclaration) Kind() Kind  { return KindVariableDeclaration }
func (*VariableDeclarator) Kind() Kind   { return KindVariableDeclarator }
func (*ReturnStatement) Kind() Kind      { return KindReturnStatement }
func (*IfStatement) Kind() Kind          { return KindIfStatement }
func (*BlockStatement) Kind() Kind       { return KindBlockStatement }
func (*MemberExpression) Kind() Kind     { return KindMemberExpression }
func (*AssignmentExpression) Kind() Kind { return KindAssignmentExpression }
func (*Identifier) Kind() Kind           { return KindIdentifier }
func (*Literal) Kind() Kind              { return KindLiteral }
func (*Opaque) Kind() Kind               { return KindOpaque }

// LocOf returns the source span of n, or nil for synthesized nodes.
func LocOf(n Node) *Loc {
	if n == nil {
		return nil
	}
	return n.base().Loc
}

// CommentsOf returns the leading and trailing comments attached to n.
func CommentsOf(n Node) (leading []Comment, trailing []Comment) {
	if n == nil {
		return nil, nil
	}
	b := n.base()
	return b.Leading, b.Trailing
}

// Source returns the text the program was parsed from.
func (p *Program) Source() []byte {
	return p.source
}

func (p *Program) first() Node {
	if len(p.Body) == 0 {
		return nil
	}
	return p.Body[0]
}

// walk visits n and its structural children depth first.
func walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range children(n) {
		walk(child, visit)
	}
}

// children returns the non-nil structural children of n in source order.
func children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, child := range nodes {
			if child != nil {
				out = append(out, child)
			}
		}
	}
	switch node := n.(type) {
	case *Program:
		add(node.Body...)
	case *ExpressionStatement:
		add(node.Expression)
	case *CallExpression:
		add(node.Callee)
		add(node.Arguments...)
	case *FunctionExpression:
		add(node.Params...)
		if node.Body != nil {
			add(node.Body)
		}
	case *ArrayExpression:
		add(node.Elements...)
	case *VariableDeclaration:
		for _, decl := range node.Declarations {
			add(decl)
		}
	case *VariableDeclarator:
		add(node.ID, node.Init)
	case *ReturnStatement:
		add(node.Argument)
	case *IfStatement:
		add(node.Test, node.Consequent, node.Alternate)
	case *BlockStatement:
		add(node.Body...)
	case *MemberExpression:
		add(node.Object, node.Property)
	case *AssignmentExpression:
		add(node.Left, node.Right)
	case *Identifier, *Literal, *Opaque:
	}
	return out
}
