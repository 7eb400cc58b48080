package amd

// SynthesizeDeclarations pairs parameter names with dependency paths by index
// and builds `var name = require('path');` for each pair. Pairing stops at the
// shorter of the two lists: extra parameters are left unbound and extra
// dependencies are loaded by nobody.
func SynthesizeDeclarations(pattern Pattern, names, paths []string) ([]*VariableDeclaration, error) {
	n := min(len(names), len(paths))
	decls := make([]*VariableDeclaration, 0, n)
	for i := 0; i < n; i++ {
		if names[i] == "" {
			return nil, malformed(pattern, AssumeParameterName, "parameter %d receiving %q is not a plain identifier", i, paths[i])
		}
		decls = append(decls, requireDeclaration(names[i], paths[i]))
	}
	return decls, nil
}

func requireDeclaration(name, path string) *VariableDeclaration {
	return &VariableDeclaration{
		Keyword: "var",
		Declarations: []*VariableDeclarator{{
			ID: &Identifier{Name: name},
			Init: &CallExpression{
				Callee:    &Identifier{Name: "require"},
				Arguments: []Node{&Literal{Value: path, IsString: true}},
			},
		}},
	}
}
