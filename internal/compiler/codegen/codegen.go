// Package codegen lowers syntax trees into LLVM IR. Every value is a double.
// Every variable, parameters included, lives in a stack slot allocated in the
// function's entry block, so mutation is a plain store and the backend's
// mem2reg pass can promote the slots to registers later.
package codegen

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/kaleido-lang/kaleido/internal/compiler/ast"
	"github.com/kaleido-lang/kaleido/internal/compiler/scope"
)

// Lowering failures. Each error returned by Item wraps exactly one of these.
var (
	ErrUnknownVariable         = errors.New("unknown variable")
	ErrUnknownFunction         = errors.New("unknown function")
	ErrUnknownOperator         = errors.New("unknown operator")
	ErrArityMismatch           = errors.New("arity mismatch")
	ErrInvalidAssignmentTarget = errors.New("invalid assignment target")
	ErrRedefinition            = errors.New("redefinition")
)

// Generator accumulates lowered functions into one LLVM module across calls,
// so a session's earlier definitions stay callable from later units.
type Generator struct {
	mod   *ir.Module
	funcs map[string]*ir.Func

	// Per-function lowering state.
	fn     *ir.Func
	entry  *ir.Block
	block  *ir.Block // insertion point; moves as control flow splits
	scope  *scope.Scope
	names  map[string]int
	blocks int
}

func New() *Generator {
	return &Generator{
		mod:   ir.NewModule(),
		funcs: make(map[string]*ir.Func),
	}
}

// Module exposes the accumulated module for printing or handoff to a backend.
func (g *Generator) Module() *ir.Module { return g.mod }

// Lookup returns the lowered function named name, if any.
func (g *Generator) Lookup(name string) (*ir.Func, bool) {
	f, ok := g.funcs[name]
	return f, ok
}

// Item lowers one top-level unit and returns the function it produced or
// affected. A failed function body leaves no trace in the module: the half
// built function is erased so the name can be redefined cleanly.
func (g *Generator) Item(node ast.Node) (*ir.Func, error) {
	switch n := node.(type) {
	case *ast.Extern:
		return g.declare(n.Proto)
	case *ast.Function:
		return g.function(n)
	default:
		return nil, fmt.Errorf("cannot lower %T at top level", node)
	}
}

// declare ensures a function header exists for proto. Redeclaring with the
// same arity is a no-op; a conflicting arity is an error because every
// existing call site would be invalidated.
func (g *Generator) declare(proto *ast.Prototype) (*ir.Func, error) {
	if f, ok := g.funcs[proto.Name]; ok {
		if len(f.Params) != len(proto.Params) {
			return nil, fmt.Errorf("%w: %s declared with %d parameter(s), previously %d",
				ErrRedefinition, proto.Name, len(proto.Params), len(f.Params))
		}
		return f, nil
	}

	params := make([]*ir.Param, len(proto.Params))
	for i, name := range proto.Params {
		params[i] = ir.NewParam(name, types.Double)
	}
	f := g.mod.NewFunc(proto.Name, types.Double, params...)
	g.funcs[proto.Name] = f
	return f, nil
}

// function lowers a definition. Defining a name again replaces the previous
// function wholesale, so interactive sessions can fix a bad definition, but
// only at the same arity. The previous function is held aside until the new
// body lowers, so a failed redefinition leaves it in place.
func (g *Generator) function(node *ast.Function) (*ir.Func, error) {
	proto := node.Proto
	var old *ir.Func
	prev, existed := g.funcs[proto.Name]
	if existed {
		if len(prev.Params) != len(proto.Params) {
			return nil, fmt.Errorf("%w: %s redefined with %d parameter(s), previously %d",
				ErrRedefinition, proto.Name, len(proto.Params), len(prev.Params))
		}
		if len(prev.Blocks) > 0 {
			old = prev
			g.RemoveFunction(proto.Name)
		}
	}

	f, err := g.declare(proto)
	if err != nil {
		return nil, err
	}

	g.fn = f
	g.entry = f.NewBlock("entry")
	g.block = g.entry
	g.scope = scope.New(nil)
	g.names = make(map[string]int)
	g.blocks = 0

	// Spill every parameter into its own slot so the body can assign to it.
	for _, param := range f.Params {
		slot := g.allocSlot(param.Name())
		g.entry.NewStore(param, slot)
		g.scope.Define(param.Name(), slot)
	}

	result, err := g.expr(node.Body)
	if err != nil {
		switch {
		case old != nil:
			g.RemoveFunction(proto.Name)
			g.funcs[proto.Name] = old
			g.mod.Funcs = append(g.mod.Funcs, old)
		case existed:
			// The name was a bare declaration; strip the half-built body and
			// keep the declaration as it was.
			f.Blocks = nil
		default:
			g.RemoveFunction(proto.Name)
		}
		return nil, err
	}
	g.block.NewRet(result)
	return f, nil
}

// RemoveFunction erases a function from the module and the lookup table.
// The interactive driver uses it to drop anonymous expression wrappers once
// they have been handed to the backend.
func (g *Generator) RemoveFunction(name string) {
	delete(g.funcs, name)
	for i, f := range g.mod.Funcs {
		if f.Name() == name {
			g.mod.Funcs = append(g.mod.Funcs[:i], g.mod.Funcs[i+1:]...)
			return
		}
	}
}

// allocSlot reserves a double-sized stack slot in the entry block. Slot names
// are uniqued per function because shadowing reuses source names freely.
func (g *Generator) allocSlot(name string) *ir.InstAlloca {
	slot := g.entry.NewAlloca(types.Double)
	if n := g.names[name]; n > 0 {
		slot.SetName(name + strconv.Itoa(n))
	} else {
		slot.SetName(name)
	}
	g.names[name]++
	return slot
}

// newBlock appends a control-flow block to the current function with a
// uniqued name.
func (g *Generator) newBlock(kind string) *ir.Block {
	g.blocks++
	return g.fn.NewBlock(kind + strconv.Itoa(g.blocks))
}

func (g *Generator) expr(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return constant.NewFloat(types.Double, n.Value), nil
	case *ast.VariableRef:
		return g.variable(n)
	case *ast.UnaryExpr:
		return g.unary(n)
	case *ast.BinaryExpr:
		return g.binary(n)
	case *ast.CallExpr:
		return g.call(n)
	case *ast.IfExpr:
		return g.ifExpr(n)
	case *ast.ForExpr:
		return g.forExpr(n)
	case *ast.VarExpr:
		return g.varExpr(n)
	default:
		return nil, fmt.Errorf("cannot lower %T", e)
	}
}

func (g *Generator) variable(n *ast.VariableRef) (value.Value, error) {
	slot, ok := g.scope.Resolve(n.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, n.Name)
	}
	return g.block.NewLoad(types.Double, slot), nil
}

// unary lowers a unary application to a call of its defining function.
func (g *Generator) unary(n *ast.UnaryExpr) (value.Value, error) {
	f, ok := g.funcs["unary"+n.Op]
	if !ok {
		return nil, fmt.Errorf("%w: unary %q", ErrUnknownOperator, n.Op)
	}
	operand, err := g.expr(n.Operand)
	if err != nil {
		return nil, err
	}
	return g.block.NewCall(f, operand), nil
}

func (g *Generator) binary(n *ast.BinaryExpr) (value.Value, error) {
	if n.Op == "=" {
		return g.assign(n)
	}

	l, err := g.expr(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := g.expr(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		return g.block.NewFAdd(l, r), nil
	case "-":
		return g.block.NewFSub(l, r), nil
	case "*":
		return g.block.NewFMul(l, r), nil
	case "/":
		return g.block.NewFDiv(l, r), nil
	case "<":
		// Comparison produces an i1; widen back to double since doubles
		// are the language's only type.
		cmp := g.block.NewFCmp(enum.FPredOLT, l, r)
		return g.block.NewUIToFP(cmp, types.Double), nil
	}

	f, ok := g.funcs["binary"+n.Op]
	if !ok {
		return nil, fmt.Errorf("%w: binary %q", ErrUnknownOperator, n.Op)
	}
	return g.block.NewCall(f, l, r), nil
}

// assign stores into an existing slot. The value of the whole expression is
// the assigned value, which is what makes chains like x = y = ... useful.
func (g *Generator) assign(n *ast.BinaryExpr) (value.Value, error) {
	target, ok := n.Left.(*ast.VariableRef)
	if !ok {
		return nil, fmt.Errorf("%w: left side of '=' must be a variable, got %s",
			ErrInvalidAssignmentTarget, n.Left.String())
	}

	v, err := g.expr(n.Right)
	if err != nil {
		return nil, err
	}
	slot, ok := g.scope.Resolve(target.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, target.Name)
	}
	g.block.NewStore(v, slot)
	return v, nil
}

func (g *Generator) call(n *ast.CallExpr) (value.Value, error) {
	f, ok := g.funcs[n.Callee]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, n.Callee)
	}
	if len(n.Args) != len(f.Params) {
		return nil, fmt.Errorf("%w: %s takes %d argument(s), got %d",
			ErrArityMismatch, n.Callee, len(f.Params), len(n.Args))
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := g.expr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return g.block.NewCall(f, args...), nil
}

// ifExpr lowers a conditional to a diamond. The merge block selects the
// branch's value with a phi whose incoming edges are the blocks the branches
// actually ended in, which may be deeper than the blocks they started in.
func (g *Generator) ifExpr(n *ast.IfExpr) (value.Value, error) {
	cond, err := g.expr(n.Cond)
	if err != nil {
		return nil, err
	}
	truth := g.block.NewFCmp(enum.FPredONE, cond, zero())

	thenBlk := g.newBlock("then")
	elseBlk := g.newBlock("else")
	mergeBlk := g.newBlock("ifcont")
	g.block.NewCondBr(truth, thenBlk, elseBlk)

	g.block = thenBlk
	thenVal, err := g.expr(n.Then)
	if err != nil {
		return nil, err
	}
	thenExit := g.block
	thenExit.NewBr(mergeBlk)

	g.block = elseBlk
	elseVal, err := g.expr(n.Else)
	if err != nil {
		return nil, err
	}
	elseExit := g.block
	elseExit.NewBr(mergeBlk)

	g.block = mergeBlk
	return mergeBlk.NewPhi(ir.NewIncoming(thenVal, thenExit), ir.NewIncoming(elseVal, elseExit)), nil
}

// forExpr lowers a loop that runs its body before testing the end condition,
// then evaluates to 0. The loop variable is a slot like any other, so the
// body may reassign it.
func (g *Generator) forExpr(n *ast.ForExpr) (value.Value, error) {
	start, err := g.expr(n.Start)
	if err != nil {
		return nil, err
	}
	slot := g.allocSlot(n.Var)
	g.block.NewStore(start, slot)

	loopBlk := g.newBlock("loop")
	g.block.NewBr(loopBlk)
	g.block = loopBlk

	g.scope = scope.New(g.scope)
	g.scope.Define(n.Var, slot)
	defer func() { g.scope = g.scope.Outer() }()

	// Body value is computed for its effects and discarded.
	if _, err := g.expr(n.Body); err != nil {
		return nil, err
	}

	step := value.Value(constant.NewFloat(types.Double, 1))
	if n.Step != nil {
		if step, err = g.expr(n.Step); err != nil {
			return nil, err
		}
	}
	cur := g.block.NewLoad(types.Double, slot)
	g.block.NewStore(g.block.NewFAdd(cur, step), slot)

	end, err := g.expr(n.End)
	if err != nil {
		return nil, err
	}
	again := g.block.NewFCmp(enum.FPredONE, end, zero())

	afterBlk := g.newBlock("afterloop")
	g.block.NewCondBr(again, loopBlk, afterBlk)
	g.block = afterBlk

	return zero(), nil
}

// varExpr introduces slots for each binding, in order, so later initializers
// see earlier bindings. The bindings scope the body only.
func (g *Generator) varExpr(n *ast.VarExpr) (value.Value, error) {
	g.scope = scope.New(g.scope)
	defer func() { g.scope = g.scope.Outer() }()

	for _, b := range n.Bindings {
		init := value.Value(constant.NewFloat(types.Double, 1))
		if b.Init != nil {
			var err error
			if init, err = g.expr(b.Init); err != nil {
				return nil, err
			}
		}
		slot := g.allocSlot(b.Name)
		g.block.NewStore(init, slot)
		g.scope.Define(b.Name, slot)
	}

	return g.expr(n.Body)
}

func zero() constant.Constant {
	return constant.NewFloat(types.Double, 0)
}
