// Package compiler wires the frontend stages together: one Session owns the
// operator table and the IR module, so operators and functions defined by
// earlier input stay in force for later input, whether that input is the
// next line of a REPL or the next unit of a source file.
package compiler

import (
	"github.com/kaleido-lang/kaleido/internal/compiler/ast"
	"github.com/kaleido-lang/kaleido/internal/compiler/codegen"
	"github.com/kaleido-lang/kaleido/internal/compiler/lexer"
	"github.com/kaleido-lang/kaleido/internal/compiler/ops"
	"github.com/kaleido-lang/kaleido/internal/compiler/parser"
)

type Session struct {
	ops *ops.Table
	gen *codegen.Generator
}

func NewSession() *Session {
	return &Session{
		ops: ops.NewTable(),
		gen: codegen.New(),
	}
}

// IR renders the session's accumulated module as textual LLVM IR, the
// handoff format for an external backend.
func (s *Session) IR() string {
	return s.gen.Module().String()
}

// eachUnit parses src unit by unit and passes each tree to fn. The parser
// shares the session's operator table, so operator definitions in src take
// effect immediately.
func (s *Session) eachUnit(src string, fn func(ast.Node) error) error {
	p := parser.New(lexer.New(src), s.ops)
	for {
		item, err := p.ParseUnit()
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// CompileSource lowers a whole source text into the session's module. The
// first error aborts the compile; everything lowered before it remains in
// the module and stays usable.
func (s *Session) CompileSource(src string) error {
	return s.eachUnit(src, func(item ast.Node) error {
		_, err := s.gen.Item(item)
		return err
	})
}

// EvalLine lowers one line of interactive input and returns the textual IR
// of each function it produced. Anonymous expression wrappers are rendered
// and then dropped from the module: the wrapper only exists to give the
// backend something to run, and keeping it would pollute later output.
func (s *Session) EvalLine(line string) ([]string, error) {
	var rendered []string
	err := s.eachUnit(line, func(item ast.Node) error {
		f, err := s.gen.Item(item)
		if err != nil {
			return err
		}
		rendered = append(rendered, f.LLString())
		if fn, ok := item.(*ast.Function); ok && fn.Proto.IsAnon() {
			s.gen.RemoveFunction(f.Name())
		}
		return nil
	})
	return rendered, err
}

// DumpAST parses src without lowering it and renders each top-level unit on
// its own line.
func (s *Session) DumpAST(src string) (string, error) {
	var out string
	err := s.eachUnit(src, func(item ast.Node) error {
		out += item.String() + "\n"
		return nil
	})
	return out, err
}
