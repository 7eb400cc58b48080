// Package amd rewrites modules wrapped in an AMD define call or a UMD
// header into CommonJS module bodies.
//
// The module is parsed with tree-sitter into a small closed node tree, the
// first top-level statement is classified, the factory body is rewritten by an
// ordered list of passes and the result is printed back to text.
package amd

import (
	"bytes"
	"context"
)

type Options struct {
	Quote Quote
	// Verify re-parses every rewritten module before returning it.
	Verify bool
}

func DefaultOptions() Options {
	return Options{Quote: QuoteSingle, Verify: true}
}

type Result struct {
	Output       []byte
	Pattern      Pattern
	Dependencies []string
	Params       []string
	// Injected is the number of require declarations added to the body.
	Injected int
	// InjectionSkipped is set for simplified CommonJS factories.
	InjectionSkipped bool
	Changed          bool
}

type Transcoder struct {
	opts Options
}

func New(opts Options) *Transcoder {
	return &Transcoder{opts: opts}
}

// Transcode converts one complete module. Sources whose first statement is
// not an AMD or UMD wrapper are returned unchanged.
func (t *Transcoder) Transcode(ctx context.Context, src []byte) (Result, error) {
	prog, err := Parse(ctx, src)
	if err != nil {
		return Result{}, err
	}

	wrapper := prog.first()
	pattern := Classify(wrapper)
	if pattern == Unrecognized {
		return Result{Output: src, Pattern: pattern}, nil
	}

	rewritten, result, err := t.rewrite(prog, wrapper, pattern)
	if err != nil {
		return Result{Pattern: pattern}, err
	}

	out := Print(rewritten, t.opts.Quote)
	if t.opts.Verify {
		if err := VerifyRoundTrip(ctx, rewritten, out); err != nil {
			return Result{Pattern: pattern}, err
		}
	}
	result.Output = out
	result.Changed = !bytes.Equal(out, src)
	return result, nil
}

// Inspect classifies a module and extracts its wrapper metadata without
// rewriting it. Output is always nil and Injected counts the declarations a
// rewrite would add.
func (t *Transcoder) Inspect(ctx context.Context, src []byte) (Result, error) {
	prog, err := Parse(ctx, src)
	if err != nil {
		return Result{}, err
	}
	wrapper := prog.first()
	result := Result{Pattern: Classify(wrapper)}
	if result.Pattern == Unrecognized {
		return result, nil
	}

	factory, err := FindFactory(wrapper, result.Pattern)
	if err != nil {
		return result, err
	}
	result.Params = factory.Params
	if IsSimplifiedCommonJS(factory) {
		result.InjectionSkipped = true
		return result, nil
	}
	deps, err := ExtractDependencies(wrapper, result.Pattern)
	if err != nil {
		return result, err
	}
	result.Dependencies = deps
	result.Injected = min(len(deps), len(factory.Params))
	return result, nil
}

// Rewrite returns the CommonJS form of a program whose first statement is a
// recognized wrapper.
func Rewrite(prog *Program) (*Program, error) {
	wrapper := prog.first()
	pattern := Classify(wrapper)
	if pattern == Unrecognized {
		return prog, nil
	}
	rewritten, _, err := New(DefaultOptions()).rewrite(prog, wrapper, pattern)
	return rewritten, err
}

func (t *Transcoder) rewrite(prog *Program, wrapper Node, pattern Pattern) (*Program, Result, error) {
	result := Result{Pattern: pattern}

	factory, err := FindFactory(wrapper, pattern)
	if err != nil {
		return nil, result, err
	}
	result.Params = factory.Params

	passes := []pass{scrubDeclarationLocs, convertReturnToExport}
	if IsSimplifiedCommonJS(factory) {
		result.InjectionSkipped = true
	} else {
		deps, err := ExtractDependencies(wrapper, pattern)
		if err != nil {
			return nil, result, err
		}
		decls, err := SynthesizeDeclarations(pattern, factory.Params, deps)
		if err != nil {
			return nil, result, err
		}
		result.Dependencies = deps
		result.Injected = len(decls)
		passes = append(passes, injectDeclarations(decls))
	}

	body := rewriteBody(factory.Body, passes...)

	// The wrapper's trailing comments stay between the module body and the
	// statements that followed the wrapper.
	leading, trailing := CommentsOf(wrapper)
	rest := prog.Body[1:]
	if len(rest) > 0 && len(trailing) > 0 {
		rest = append([]Node{withLeading(rest[0], trailing)}, rest[1:]...)
		trailing = nil
	}
	body = append(body, rest...)

	rewritten := &Program{
		Body:             body,
		Comments:         append(append([]Comment{}, prog.Comments...), leading...),
		TrailingComments: trailing,
		source:           prog.source,
		protected:        prog.protected,
	}
	return rewritten, result, nil
}
