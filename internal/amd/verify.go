package amd

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
)

// VerifyRoundTrip checks that out, the printed form of prog, parses cleanly
// into a tree of the same shape as prog. Comments and layout are ignored.
func VerifyRoundTrip(ctx context.Context, prog *Program, out []byte) error {
	if err := checkSyntax(out); err != nil {
		return err
	}
	reparsed, err := Parse(ctx, out)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("%w: %v", ErrRoundTrip, perr)
		}
		return err
	}
	if len(reparsed.Body) != len(prog.Body) {
		return fmt.Errorf("%w: expected %d top-level statements, got %d", ErrRoundTrip, len(prog.Body), len(reparsed.Body))
	}
	for i := range prog.Body {
		if err := sameShape(prog.Body[i], reparsed.Body[i]); err != nil {
			return fmt.Errorf("%w: statement %d: %v", ErrRoundTrip, i, err)
		}
	}
	return nil
}

// sameShape compares two trees node by node: kinds, the attributes that
// change meaning, and child counts.
func sameShape(want, got Node) error {
	if want.Kind() != got.Kind() {
		return fmt.Errorf("expected %s, got %s", want.Kind(), got.Kind())
	}
	if err := sameAttributes(want, got); err != nil {
		return fmt.Errorf("%s: %w", want.Kind(), err)
	}
	wantChildren, gotChildren := children(want), children(got)
	if len(wantChildren) != len(gotChildren) {
		return fmt.Errorf("%s: expected %d children, got %d", want.Kind(), len(wantChildren), len(gotChildren))
	}
	for i := range wantChildren {
		if err := sameShape(wantChildren[i], gotChildren[i]); err != nil {
			return fmt.Errorf("%s > %w", want.Kind(), err)
		}
	}
	return nil
}

func sameAttributes(want, got Node) error {
	switch w := want.(type) {
	case *Identifier:
		if g := got.(*Identifier); w.Name != g.Name {
			return fmt.Errorf("expected %q, got %q", w.Name, g.Name)
		}
	case *Literal:
		g := got.(*Literal)
		if w.IsString != g.IsString || (w.IsString && w.Value != g.Value) || (!w.IsString && w.Raw != g.Raw) {
			return fmt.Errorf("expected %s, got %s", w.Raw, g.Raw)
		}
	case *Opaque:
		if g := got.(*Opaque); w.Type != g.Type {
			return fmt.Errorf("expected %s, got %s", w.Type, g.Type)
		}
	case *VariableDeclaration:
		if g := got.(*VariableDeclaration); w.Keyword != g.Keyword {
			return fmt.Errorf("expected %s, got %s", w.Keyword, g.Keyword)
		}
	case *FunctionExpression:
		if g := got.(*FunctionExpression); w.Name != g.Name {
			return fmt.Errorf("expected name %q, got %q", w.Name, g.Name)
		}
	case *MemberExpression:
		if g := got.(*MemberExpression); w.Computed != g.Computed {
			return fmt.Errorf("expected computed=%t, got %t", w.Computed, g.Computed)
		}
	case *AssignmentExpression:
		if g := got.(*AssignmentExpression); w.Operator != g.Operator {
			return fmt.Errorf("expected %s, got %s", w.Operator, g.Operator)
		}
	}
	return nil
}

// checkSyntax runs the emitted text through esbuild, whose parser rejects
// inputs tree-sitter would recover from.
func checkSyntax(out []byte) error {
	result := api.Transform(string(out), api.TransformOptions{
		Loader:   api.LoaderJS,
		Format:   api.FormatDefault,
		LogLevel: api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}
	msg := result.Errors[0]
	loc := ""
	if msg.Location != nil {
		loc = fmt.Sprintf(" at line %d, column %d", msg.Location.Line, msg.Location.Column)
	}
	return fmt.Errorf("%w: syntax error%s: %s", ErrRoundTrip, loc, msg.Text)
}
