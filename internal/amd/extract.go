package amd

import "slices"

// Factory is the function whose parameters receive the dependencies and whose
// body becomes the module body.
type Factory struct {
	Node *FunctionExpression
	// Params holds parameter names in declaration order. Parameters that are
	// not plain identifiers have an empty name.
	Params []string
	Body   []Node
}

// FindFactory returns the first function-expression argument of the
// wrapper's outer call.
func FindFactory(stmt Node, pattern Pattern) (*Factory, error) {
	call, ok := wrapperCall(stmt)
	if !ok {
		return nil, malformed(pattern, AssumeFactoryFunction, "wrapper is not a call expression")
	}
	for _, arg := range call.Arguments {
		fn, ok := arg.(*FunctionExpression)
		if !ok {
			continue
		}
		factory := &Factory{Node: fn, Params: make([]string, 0, len(fn.Params))}
		for _, param := range fn.Params {
			factory.Params = append(factory.Params, paramName(param))
		}
		if fn.Body != nil {
			factory.Body = fn.Body.Body
		}
		return factory, nil
	}
	return nil, malformed(pattern, AssumeFactoryFunction, "no function expression among %d argument(s)", len(call.Arguments))
}

// IsSimplifiedCommonJS reports whether the factory takes a parameter named
// require and therefore loads its own dependencies.
func IsSimplifiedCommonJS(f *Factory) bool {
	for _, name := range f.Params {
		if name == "require" {
			return true
		}
	}
	return false
}

// ExtractDependencies returns the dependency paths registered by the wrapper,
// in array order.
func ExtractDependencies(stmt Node, pattern Pattern) ([]string, error) {
	call, ok := wrapperCall(stmt)
	if !ok {
		return nil, nil
	}
	switch pattern {
	case AMD:
		return amdDependencies(call)
	case UMD:
		return umdDependencies(call)
	default:
		return nil, nil
	}
}

func amdDependencies(call *CallExpression) ([]string, error) {
	arr := firstArrayArgument(call)
	if arr == nil {
		return []string{}, nil
	}
	return literalValues(arr, AMD)
}

type umdBranch struct {
	deps          *ArrayExpression
	checksDefine  bool
	branchOrdinal int
}

// umdDependencies picks the registration branch of a UMD header. A branch is
// an if (or else-if) whose consequent starts with a call taking a dependency
// array. The branch whose test mentions define is the AMD one; when no test
// mentions define, the last branch found is used.
func umdDependencies(call *CallExpression) ([]string, error) {
	wrapper, ok := call.Callee.(*FunctionExpression)
	if !ok || wrapper.Body == nil {
		return []string{}, nil
	}

	var branches []umdBranch
	for _, stmt := range wrapper.Body.Body {
		for ifs, ok := stmt.(*IfStatement); ok; ifs, ok = ifs.Alternate.(*IfStatement) {
			arr := consequentDependencies(ifs.Consequent)
			if arr == nil {
				continue
			}
			branches = append(branches, umdBranch{
				deps:          arr,
				checksDefine:  references(ifs.Test, "define"),
				branchOrdinal: len(branches) + 1,
			})
		}
	}
	if len(branches) == 0 {
		return []string{}, nil
	}

	var chosen *umdBranch
	for i := range branches {
		if !branches[i].checksDefine {
			continue
		}
		if chosen != nil {
			return nil, malformed(UMD, AssumeAMDBranch, "branches %d and %d both register with define", chosen.branchOrdinal, branches[i].branchOrdinal)
		}
		chosen = &branches[i]
	}
	if chosen == nil {
		chosen = &branches[len(branches)-1]
	}
	return literalValues(chosen.deps, UMD)
}

func consequentDependencies(consequent Node) *ArrayExpression {
	stmt := consequent
	if block, ok := consequent.(*BlockStatement); ok {
		if len(block.Body) == 0 {
			return nil
		}
		stmt = block.Body[0]
	}
	call, ok := wrapperCall(stmt)
	if !ok {
		return nil
	}
	return firstArrayArgument(call)
}

func firstArrayArgument(call *CallExpression) *ArrayExpression {
	for _, arg := range call.Arguments {
		if arr, ok := arg.(*ArrayExpression); ok {
			return arr
		}
	}
	return nil
}

func literalValues(arr *ArrayExpression, pattern Pattern) ([]string, error) {
	values := make([]string, 0, len(arr.Elements))
	for i, element := range arr.Elements {
		lit, ok := element.(*Literal)
		if !ok || !lit.IsString {
			return nil, malformed(pattern, AssumeDependencyLiteral, "dependency %d is a %s, not a string literal", i, element.Kind())
		}
		values = append(values, lit.Value)
	}
	return values, nil
}

// references reports whether n mentions the identifier name as a variable.
// Property names of member expressions do not count, so window.define does
// not reference define.
func references(n Node, name string) bool {
	switch v := n.(type) {
	case nil:
		return false
	case *Identifier:
		return v.Name == name
	case *Opaque:
		return slices.Contains(v.Identifiers, name)
	case *MemberExpression:
		if references(v.Object, name) {
			return true
		}
		return v.Computed && references(v.Property, name)
	}
	for _, child := range children(n) {
		if references(child, name) {
			return true
		}
	}
	return false
}
