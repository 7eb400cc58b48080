package amd

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func transcode(t *testing.T, src string) Result {
	t.Helper()
	result, err := New(DefaultOptions()).Transcode(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	return result
}

func assertOutput(t *testing.T, result Result, want string) {
	t.Helper()
	if string(result.Output) != want {
		t.Fatalf("unexpected output\n--- got ---\n%s\n--- want ---\n%s", result.Output, want)
	}
}

func TestTranscodePassesThroughUnrecognizedSources(t *testing.T) {
	sources := []string{
		"",
		"var x = require('x');\nmodule.exports = x;\n",
		"foo(function (a) { return a; });\n",
		"(function (root, other) {\n  root.x = 1;\n}(this, function () {}));\n",
		"   // only a comment, with odd spacing   \n\n",
		"require(['a'], function (a) {});",
	}
	for _, src := range sources {
		result := transcode(t, src)
		if string(result.Output) != src {
			t.Fatalf("expected pass-through for %q, got %q", src, result.Output)
		}
		if result.Pattern != Unrecognized || result.Changed {
			t.Fatalf("expected unrecognized unchanged result for %q, got %#v", src, result)
		}
	}
}

func TestTranscodeAMDInjectsRequiresAndExport(t *testing.T) {
	result := transcode(t, "define(['a','b'], function(a, b){ return {x:1}; })")
	assertOutput(t, result, "var a = require('a');\nvar b = require('b');\nmodule.exports = {x:1};\n")
	if result.Pattern != AMD {
		t.Fatalf("expected AMD pattern, got %s", result.Pattern)
	}
	if !slices.Equal(result.Dependencies, []string{"a", "b"}) {
		t.Fatalf("unexpected dependencies: %#v", result.Dependencies)
	}
	if result.Injected != 2 || !result.Changed {
		t.Fatalf("expected 2 injected declarations and a change, got %#v", result)
	}
}

func TestTranscodeAMDInsertsBeforeFirstDeclaration(t *testing.T) {
	src := `define(['jquery', 'lodash'], function ($, _) {
  'use strict';
  function helper() {
    return $.noop;
  }
  var name = 'x';
  return {
    helper: helper,
    name: name
  };
});
`
	want := `'use strict';
function helper() {
  return $.noop;
}
var $ = require('jquery');
var _ = require('lodash');
var name = 'x';
module.exports = {
  helper: helper,
  name: name
};
`
	assertOutput(t, transcode(t, src), want)
}

func TestTranscodeAMDKeepsDirectivePrologueFirst(t *testing.T) {
	src := "define(['a'], function (a) {\n  'use strict';\n  return a;\n});\n"
	assertOutput(t, transcode(t, src), "'use strict';\nvar a = require('a');\nmodule.exports = a;\n")
}

func TestTranscodeNamedDefine(t *testing.T) {
	src := "define('widget', ['dep'], function (dep) {\n  return dep.make();\n});\n"
	result := transcode(t, src)
	assertOutput(t, result, "var dep = require('dep');\nmodule.exports = dep.make();\n")
}

func TestTranscodeSimplifiedCommonJSSkipsInjection(t *testing.T) {
	src := `define(['require', 'exports', 'a'], function (require, exports, a) {
  var b = require('b');
  exports.value = a(b);
});
`
	result := transcode(t, src)
	assertOutput(t, result, "var b = require('b');\nexports.value = a(b);\n")
	if !result.InjectionSkipped || result.Injected != 0 {
		t.Fatalf("expected injection to be skipped, got %#v", result)
	}
}

func TestTranscodeSimplifiedCommonJSStillConvertsReturn(t *testing.T) {
	src := "define(function (require) {\n  var a = require('a');\n  return a.b;\n});\n"
	assertOutput(t, transcode(t, src), "var a = require('a');\nmodule.exports = a.b;\n")
}

const umdSource = `(function (root, factory) {
    if (typeof define === 'function' && define.amd) {
        define(['foo', 'bar'], factory);
    } else if (typeof exports === 'object') {
        module.exports = factory(require('foo'), require('bar'));
    } else {
        root.returnExports = factory(root.foo, root.bar);
    }
}(this, function (foo, bar) {
    var baz = foo(bar);
    return {
        baz: baz
    };
}));
`

func TestTranscodeUMD(t *testing.T) {
	result := transcode(t, umdSource)
	want := `var foo = require('foo');
var bar = require('bar');
var baz = foo(bar);
module.exports = {
    baz: baz
};
`
	assertOutput(t, result, want)
	if result.Pattern != UMD {
		t.Fatalf("expected UMD pattern, got %s", result.Pattern)
	}
	if !slices.Equal(result.Dependencies, []string{"foo", "bar"}) {
		t.Fatalf("unexpected dependencies: %#v", result.Dependencies)
	}
}

func TestTranscodeUMDWithCallOutsideParentheses(t *testing.T) {
	src := `(function (root, factory) {
  if (typeof define === 'function' && define.amd) {
    define(['dep'], factory);
  }
})(this, function (dep) {
  return dep;
});
`
	assertOutput(t, transcode(t, src), "var dep = require('dep');\nmodule.exports = dep;\n")
}

func TestTranscodePreservesWrapperComments(t *testing.T) {
	src := `/**
 * Module header.
 */
define(['a'], function (a) {
  // export the thing
  return a.thing; // trailing
});
`
	want := `/**
 * Module header.
 */
var a = require('a');
// export the thing
module.exports = a.thing; // trailing
`
	assertOutput(t, transcode(t, src), want)
}

func TestTranscodeKeepsLaterTopLevelStatements(t *testing.T) {
	src := "define(function () {\n  return 1;\n});\n\nconsole.log('after');\n"
	assertOutput(t, transcode(t, src), "module.exports = 1;\n\nconsole.log('after');\n")
}

func TestTranscodeBareReturnExportsUndefined(t *testing.T) {
	assertOutput(t, transcode(t, "define(function () { return; });"), "module.exports = undefined;\n")
}

func TestTranscodeKeepsParenthesesOfReturnedExpression(t *testing.T) {
	assertOutput(t, transcode(t, "define(function () { return (1, 2); });"), "module.exports = (1, 2);\n")
}

func TestTranscodeGroupsSequenceExport(t *testing.T) {
	src := "define(['a'], function (a) {\n  return a.x, a.y;\n});\n"
	assertOutput(t, transcode(t, src), "var a = require('a');\nmodule.exports = (a.x, a.y);\n")
}

func TestTranscodeKeepsCommentsBetweenDeclarators(t *testing.T) {
	src := "define(['a'], function (a) {\n  var b = 1, // tail\n    c = 2;\n  return b + c;\n});\n"
	want := "var a = require('a');\nvar b = 1, // tail\n    c = 2;\nmodule.exports = b + c;\n"
	assertOutput(t, transcode(t, src), want)
}

func TestTranscodeKeepsWrapperTrailingCommentBeforeLaterStatements(t *testing.T) {
	src := "define(function () {\n  return 1;\n}); // after\nfoo();\n"
	assertOutput(t, transcode(t, src), "module.exports = 1;\n// after\nfoo();\n")
}

func TestVerifyRoundTripComparesNestedShape(t *testing.T) {
	prog := mustParse(t, "module.exports = (a.x, a.y);\n")
	if err := VerifyRoundTrip(context.Background(), prog, Print(prog, QuoteSingle)); err != nil {
		t.Fatalf("expected printed program to verify, got %v", err)
	}

	tests := map[string]string{
		"ungrouped sequence": "module.exports = a.x, a.y;\n",
		"different target":   "exports.x = (a.x, a.y);\n",
		"extra statement":    "module.exports = (a.x, a.y);\nfoo();\n",
	}
	for name, out := range tests {
		t.Run(name, func(t *testing.T) {
			err := VerifyRoundTrip(context.Background(), prog, []byte(out))
			if !errors.Is(err, ErrRoundTrip) {
				t.Fatalf("expected round-trip error, got %v", err)
			}
		})
	}
}

func TestTranscodeLeavesNestedReturnsAlone(t *testing.T) {
	src := "define(function () {\n  if (ready) {\n    return 1;\n  }\n  return 2;\n});\n"
	want := "if (ready) {\n  return 1;\n}\nmodule.exports = 2;\n"
	assertOutput(t, transcode(t, src), want)
}

func TestTranscodeDoesNotReindentTemplateLiterals(t *testing.T) {
	src := "define(function () {\n  var s = `line1\n  line2`;\n  return s;\n});\n"
	assertOutput(t, transcode(t, src), "var s = `line1\n  line2`;\nmodule.exports = s;\n")
}

func TestTranscodeTruncatesToShorterList(t *testing.T) {
	result := transcode(t, "define(['a', 'b', 'c'], function (a) { return a; });")
	assertOutput(t, result, "var a = require('a');\nmodule.exports = a;\n")

	result = transcode(t, "define(['a'], function (a, b, c) { return [a, b, c]; });")
	assertOutput(t, result, "var a = require('a');\nmodule.exports = [a, b, c];\n")
	if result.Injected != 1 {
		t.Fatalf("expected one injected declaration, got %d", result.Injected)
	}
}

func TestTranscodeDoubleQuotes(t *testing.T) {
	opts := DefaultOptions()
	opts.Quote = QuoteDouble
	result, err := New(opts).Transcode(context.Background(), []byte("define(['a'], function (a) { return a; });"))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	assertOutput(t, result, "var a = require(\"a\");\nmodule.exports = a;\n")
}

func TestTranscodeIsIdempotentOnItsOutput(t *testing.T) {
	first := transcode(t, umdSource)
	second := transcode(t, string(first.Output))
	if second.Changed || string(second.Output) != string(first.Output) {
		t.Fatalf("expected converted output to pass through unchanged, got %q", second.Output)
	}
}

func TestTranscodeOutputReparses(t *testing.T) {
	result := transcode(t, "define(['a','b'], function(a, b){ var c = a + b; return {x: c}; })")
	prog, err := Parse(context.Background(), result.Output)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	kinds := make([]Kind, 0, len(prog.Body))
	for _, stmt := range prog.Body {
		kinds = append(kinds, stmt.Kind())
	}
	want := []Kind{KindVariableDeclaration, KindVariableDeclaration, KindVariableDeclaration, KindExpressionStatement}
	if !slices.Equal(kinds, want) {
		t.Fatalf("expected kinds %v, got %v", want, kinds)
	}
	for i, path := range []string{"a", "b"} {
		decl := prog.Body[i].(*VariableDeclaration)
		id := decl.Declarations[0].ID.(*Identifier)
		call := decl.Declarations[0].Init.(*CallExpression)
		lit := call.Arguments[0].(*Literal)
		if id.Name != path || lit.Value != path {
			t.Fatalf("declaration %d: expected %s = require(%s), got %s = require(%s)", i, path, path, id.Name, lit.Value)
		}
	}
}

func TestTranscodeMalformedWrappers(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		assumption Assumption
	}{
		{name: "object factory", src: "define({a: 1});", assumption: AssumeFactoryFunction},
		{name: "arrow factory", src: "define(['a'], (a) => a);", assumption: AssumeFactoryFunction},
		{name: "non-literal dependency", src: "define([dep], function (d) { return d; });", assumption: AssumeDependencyLiteral},
		{name: "destructured parameter", src: "define(['a'], function ({ x }) { return x; });", assumption: AssumeParameterName},
		{
			name: "ambiguous umd",
			src: `(function (root, factory) {
  if (typeof define === 'function') { define(['a'], factory); }
  if (define.amd) { define(['b'], factory); }
}(this, function (x) { return x; }));`,
			assumption: AssumeAMDBranch,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(DefaultOptions()).Transcode(context.Background(), []byte(tc.src))
			if !errors.Is(err, ErrMalformedWrapper) {
				t.Fatalf("expected malformed wrapper error, got %v", err)
			}
			var merr *MalformedWrapperError
			if !errors.As(err, &merr) {
				t.Fatalf("expected *MalformedWrapperError, got %T", err)
			}
			if merr.Assumption != tc.assumption {
				t.Fatalf("expected assumption %s, got %s", tc.assumption, merr.Assumption)
			}
		})
	}
}

func TestTranscodeRejectsUnparsableSource(t *testing.T) {
	_, err := New(DefaultOptions()).Transcode(context.Background(), []byte("define(['a', function (a) {"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if perr.Line != 1 {
		t.Fatalf("expected error on line 1, got %d", perr.Line)
	}
}

func TestRewriteLeavesUnrecognizedProgram(t *testing.T) {
	prog, err := Parse(context.Background(), []byte("module.exports = 1;\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rewritten, err := Rewrite(prog)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if rewritten != prog {
		t.Fatalf("expected the same program back")
	}
}

func TestInspectReportsWrapperWithoutRewriting(t *testing.T) {
	tr := New(DefaultOptions())
	result, err := tr.Inspect(context.Background(), []byte("define(['a', 'b', 'c'], function (a, b) { return a; });"))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if result.Pattern != AMD || result.Output != nil || result.Changed {
		t.Fatalf("unexpected inspect result: %#v", result)
	}
	if !slices.Equal(result.Dependencies, []string{"a", "b", "c"}) || result.Injected != 2 {
		t.Fatalf("unexpected dependencies %v / injected %d", result.Dependencies, result.Injected)
	}

	result, err = tr.Inspect(context.Background(), []byte("define(function (require) { return require('x'); });"))
	if err != nil || !result.InjectionSkipped {
		t.Fatalf("expected simplified CommonJS to skip injection, got %#v (%v)", result, err)
	}

	result, err = tr.Inspect(context.Background(), []byte("module.exports = 1;"))
	if err != nil || result.Pattern != Unrecognized {
		t.Fatalf("expected unrecognized, got %#v (%v)", result, err)
	}

	result, err = tr.Inspect(context.Background(), []byte("define({a: 1});"))
	if !errors.Is(err, ErrMalformedWrapper) || result.Pattern != AMD {
		t.Fatalf("expected malformed amd wrapper, got %#v (%v)", result, err)
	}
}

func TestTranscodeErrorKeepsPattern(t *testing.T) {
	result, err := New(DefaultOptions()).Transcode(context.Background(), []byte("define([dep], function (d) { return d; });"))
	if err == nil || result.Pattern != AMD {
		t.Fatalf("expected amd pattern alongside the error, got %s (%v)", result.Pattern, err)
	}
}
