package amd

// Pattern is the wrapper shape of a module's first statement.
type Pattern int

const (
	Unrecognized Pattern = iota
	AMD
	UMD
)

func (p Pattern) String() string {
	switch p {
	case AMD:
		return "amd"
	case UMD:
		return "umd"
	default:
		return "unrecognized"
	}
}

// Classify labels a module's first top-level statement.
//
// AMD is a call whose callee is the identifier define. UMD is a call whose
// callee is an anonymous function expression with a last parameter named
// factory. Everything else, including a nil statement, is Unrecognized.
func Classify(stmt Node) Pattern {
	call, ok := wrapperCall(stmt)
	if !ok {
		return Unrecognized
	}
	switch callee := call.Callee.(type) {
	case *Identifier:
		if callee.Name == "define" {
			return AMD
		}
	case *FunctionExpression:
		if callee.Name == "" && len(callee.Params) > 0 && paramName(callee.Params[len(callee.Params)-1]) == "factory" {
			return UMD
		}
	}
	return Unrecognized
}

func wrapperCall(stmt Node) (*CallExpression, bool) {
	es, ok := stmt.(*ExpressionStatement)
	if !ok {
		return nil, false
	}
	call, ok := es.Expression.(*CallExpression)
	return call, ok
}

func paramName(n Node) string {
	if id, ok := n.(*Identifier); ok {
		return id.Name
	}
	return ""
}
