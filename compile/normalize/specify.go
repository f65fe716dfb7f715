// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package normalize

import "nanoc/ir"

// SpecifyRepresentation replaces every high-level operation and
// literal with the explicit integer arithmetic, Mref/Mset and Alloc
// it compiles down to under the tagged representation of §3, and
// encodes every remaining literal as its final 64-bit immediate
// (§4.11). It also establishes I3's operand shape directly: every
// operand it builds for a Prim2 or Mref is reduced to a triv (symbol
// or integer), with whatever work computing it took — a nested
// primitive call, or a cons/vector/procedure construction's own
// allocate-then-store sequence — hoisted out to the nearest position
// that can host a statement sequence: a Set, a Begin element, an If's
// branch, a Funcall, or another Let's body. gen supplies every
// temporary this hoisting needs.
func SpecifyRepresentation(n ir.Node, gen *ir.Gen) ir.Node {
	return spec(n, gen)
}

// pending is one piece of work floated out of an operand position
// that needed it: either a named temporary (destined to become a Let
// binding, so uncover-locals registers it) or a bare effect statement
// with no value of its own (an Mset store). foldPending replays both
// kinds in their original order.
type pending struct {
	binding *ir.Binding
	stmt    ir.Node
}

func bindPending(name string, value ir.Node) pending {
	return pending{binding: &ir.Binding{Name: name, Value: value}}
}

func stmtPending(n ir.Node) pending { return pending{stmt: n} }

// foldPending rebuilds the statement sequence items describes around
// body, innermost (closest to body) first, so the original left-to-
// right evaluation order is preserved exactly.
func foldPending(items []pending, body ir.Node) ir.Node {
	for i := len(items) - 1; i >= 0; i-- {
		p := items[i]
		if p.binding != nil {
			body = ir.Let{Bindings: []ir.Binding{*p.binding}, Body: body}
		} else {
			body = ir.Begin{Exprs: []ir.Node{p.stmt, body}}
		}
	}
	return body
}

func spec(n ir.Node, gen *ir.Gen) ir.Node {
	switch v := n.(type) {
	case ir.Int64:
		return ir.Int64{Value: encodeFixnum(v.Value)}
	case ir.Bool:
		return ir.Int64{Value: encodeBool(v.Value)}
	case ir.EmptyList:
		return ir.Int64{Value: EmptyListBits}
	case ir.Void:
		return ir.Int64{Value: VoidBits}
	case ir.Quote:
		return lowerQuote(v.Value, gen)
	case ir.Symbol, ir.Nop:
		return n
	case ir.If:
		var items []pending
		pred := specPred(v.Pred, gen, &items)
		result := ir.Node(ir.If{Pred: pred, Then: spec(v.Then, gen), Else: spec(v.Else, gen)})
		return foldPending(items, result)
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = spec(e, gen)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		var items []pending
		val := floatToExpr(spec(v.Value, gen), gen, &items)
		return foldPending(items, ir.Set{Target: v.Target, Value: val})
	case ir.Let:
		var items []pending
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = ir.Binding{Name: b.Name, Value: floatToExpr(spec(b.Value, gen), gen, &items)}
		}
		return foldPending(items, ir.Let{Bindings: bindings, Body: spec(v.Body, gen)})
	case ir.Letrec:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			bindings[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: spec(lam.Body, gen)}}
		}
		return ir.Letrec{Bindings: bindings, Body: spec(v.Body, gen)}
	case ir.Lambda:
		return ir.Lambda{Formals: v.Formals, Body: spec(v.Body, gen)}
	case ir.Funcall:
		var items []pending
		callee := trivOperand(v.Callee, gen, &items)
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = floatToExpr(spec(a, gen), gen, &items)
		}
		return foldPending(items, ir.Funcall{Callee: callee, Args: args})
	case ir.Prim1:
		return specifyPrim1(v, gen)
	case ir.Prim2:
		return specifyPrim2(v, gen)
	case ir.Prim3:
		return specifyPrim3(v, gen)
	case ir.Alloc, ir.Mref, ir.Mset:
		// Already-lowered nodes reaching this pass (shouldn't normally
		// happen this early, but tolerated for idempotence).
		return n
	default:
		ir.InvariantViolation("specify-representation", n)
		return nil
	}
}

// specPred lowers an If's predicate (always one of normalize-context's
// predPrims, possibly still needing its own tag-test or equality
// lowering) down to a bare Prim2 relop, since callconv/regalloc/emit
// all expect an If's Pred to be exactly that. Any hoisting the
// lowering needed is floated into items, for the caller to wrap
// around the whole If rather than just the predicate.
func specPred(n ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	result := spec(n, gen)
	for {
		let, ok := result.(ir.Let)
		if !ok {
			break
		}
		for _, b := range let.Bindings {
			*items = append(*items, bindPending(b.Name, b.Value))
		}
		result = let.Body
	}
	if _, ok := result.(ir.Prim2); !ok {
		ir.InvariantViolation("specify-representation:pred", n)
	}
	return result
}

// trivOperand fully specifies n and reduces it to a bare triv,
// floating whatever work that took into items in evaluation order.
func trivOperand(n ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	return reduceToTriv(spec(n, gen), gen, items)
}

// reduceToTriv takes an already-specified node and reduces it all the
// way to a bare Symbol or Int64: a Let's bindings are floated directly
// into items, a Begin's every statement but the last is floated as an
// effect and the last is reduced recursively, and anything else still
// standing (a Prim2, Mref, or a cons/vector/procedure construction's
// final tagged-pointer expression) is bound to one fresh temporary.
func reduceToTriv(n ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	switch v := n.(type) {
	case ir.Symbol, ir.Int64:
		return n
	case ir.Let:
		for _, b := range v.Bindings {
			*items = append(*items, bindPending(b.Name, b.Value))
		}
		return reduceToTriv(v.Body, gen, items)
	case ir.Begin:
		if len(v.Exprs) == 0 {
			return ir.Int64{Value: VoidBits}
		}
		for _, e := range v.Exprs[:len(v.Exprs)-1] {
			*items = append(*items, stmtPending(e))
		}
		return reduceToTriv(v.Exprs[len(v.Exprs)-1], gen, items)
	default:
		tmp := gen.Temp()
		*items = append(*items, bindPending(tmp, n))
		return ir.Symbol{Name: tmp}
	}
}

// floatToExpr is reduceToTriv's cousin for positions that can hold any
// single expression, not only a bare triv: a Set's value or a
// Funcall's argument also accept a Prim2 or Mref directly, so only a
// Begin or a remaining compound construction needs binding to a
// temporary; a plain arithmetic or memory-read expression is left as
// is rather than wastefully named.
func floatToExpr(n ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	for {
		switch v := n.(type) {
		case ir.Let:
			for _, b := range v.Bindings {
				*items = append(*items, bindPending(b.Name, b.Value))
			}
			n = v.Body
			continue
		case ir.Begin:
			if len(v.Exprs) == 0 {
				return ir.Int64{Value: VoidBits}
			}
			for _, e := range v.Exprs[:len(v.Exprs)-1] {
				*items = append(*items, stmtPending(e))
			}
			n = v.Exprs[len(v.Exprs)-1]
			continue
		}
		break
	}
	switch n.(type) {
	case ir.Symbol, ir.Int64, ir.Prim2, ir.Mref:
		return n
	default:
		tmp := gen.Temp()
		*items = append(*items, bindPending(tmp, n))
		return ir.Symbol{Name: tmp}
	}
}

func specifyPrim1(v ir.Prim1, gen *ir.Gen) ir.Node {
	var items []pending
	arg := trivOperand(v.Arg, gen, &items)
	var result ir.Node
	switch v.Op {
	case "car":
		result = ir.Mref{Base: arg, Offset: lit(PairCarOffset)}
	case "cdr":
		result = ir.Mref{Base: arg, Offset: lit(PairCdrOffset)}
	case "vector-length":
		result = ir.Mref{Base: arg, Offset: lit(VecLengthOffset)}
	case "procedure-code":
		result = ir.Mref{Base: arg, Offset: lit(ProcCodeOffset)}
	case "fixnum?":
		result = tagTest(arg, TagFixnum, gen, &items)
	case "pair?":
		result = tagTest(arg, TagPair, gen, &items)
	case "vector?":
		result = tagTest(arg, TagVector, gen, &items)
	case "procedure?":
		result = tagTest(arg, TagProcedure, gen, &items)
	case "boolean?":
		masked := bindIfCompound(ir.Prim2{Op: "logand", Arg1: arg, Arg2: lit(BoolMask)}, gen, &items)
		result = ir.Prim2{Op: "=", Arg1: masked, Arg2: lit(BoolFalseBits)}
	case "null?":
		result = ir.Prim2{Op: "=", Arg1: arg, Arg2: lit(EmptyListBits)}
	default:
		ir.InvariantViolation("specify-representation:prim1:"+v.Op, v)
		return nil
	}
	return foldPending(items, result)
}

func specifyPrim2(v ir.Prim2, gen *ir.Gen) ir.Node {
	var items []pending
	a1 := trivOperand(v.Arg1, gen, &items)
	a2 := trivOperand(v.Arg2, gen, &items)
	var result ir.Node
	switch v.Op {
	case "+", "-":
		result = ir.Prim2{Op: v.Op, Arg1: a1, Arg2: a2}
	case "*":
		shifted := bindIfCompound(ir.Prim2{Op: "sra", Arg1: a1, Arg2: lit(TagShift)}, gen, &items)
		result = ir.Prim2{Op: "*", Arg1: shifted, Arg2: a2}
	case "cons":
		result = allocPair(a1, a2, gen, &items)
	case "vector-ref":
		result = ir.Mref{Base: a1, Offset: taggedOffset(a2, VecDataOffset, gen, &items)}
	case "procedure-ref":
		result = ir.Mref{Base: a1, Offset: rawOffset(a2, ProcDataOffset, gen, &items)}
	case "make-vector":
		result = allocVectorDynamic(a1, gen, &items)
	case "make-procedure":
		result = allocProcedure(a1, a2, gen, &items)
	case "<=", "<", "=", ">=", ">":
		result = ir.Prim2{Op: v.Op, Arg1: a1, Arg2: a2}
	case "eq?":
		result = ir.Prim2{Op: "=", Arg1: a1, Arg2: a2}
	default:
		ir.InvariantViolation("specify-representation:prim2:"+v.Op, v)
		return nil
	}
	return foldPending(items, result)
}

func specifyPrim3(v ir.Prim3, gen *ir.Gen) ir.Node {
	var items []pending
	a1 := trivOperand(v.Arg1, gen, &items)
	a2 := trivOperand(v.Arg2, gen, &items)
	a3 := trivOperand(v.Arg3, gen, &items)
	var result ir.Node
	switch v.Op {
	case "vector-set!":
		result = ir.Mset{Base: a1, Offset: taggedOffset(a2, VecDataOffset, gen, &items), Value: a3}
	case "procedure-set!":
		result = ir.Mset{Base: a1, Offset: rawOffset(a2, ProcDataOffset, gen, &items), Value: a3}
	case "set-car!":
		result = ir.Mset{Base: a1, Offset: lit(PairCarOffset), Value: a2}
	case "set-cdr!":
		result = ir.Mset{Base: a1, Offset: lit(PairCdrOffset), Value: a2}
	default:
		ir.InvariantViolation("specify-representation:prim3:"+v.Op, v)
		return nil
	}
	return foldPending(items, result)
}

func lit(n int64) ir.Node { return ir.Int64{Value: n} }

// bindIfCompound hoists an already-built internal node (never itself
// in need of further specifying, e.g. a logand/sra helper expression,
// or a construction's final tagged-pointer add) to a fresh temporary
// if it is not already a bare triv.
func bindIfCompound(n ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	switch n.(type) {
	case ir.Symbol, ir.Int64:
		return n
	default:
		tmp := gen.Temp()
		*items = append(*items, bindPending(tmp, n))
		return ir.Symbol{Name: tmp}
	}
}

func tagTest(arg ir.Node, tag int64, gen *ir.Gen, items *[]pending) ir.Node {
	masked := bindIfCompound(ir.Prim2{Op: "logand", Arg1: arg, Arg2: lit(TagMask)}, gen, items)
	return ir.Prim2{Op: "=", Arg1: masked, Arg2: lit(tag)}
}

// taggedOffset builds the byte offset for a vector element whose index
// is itself a live fixnum value: since a tagged fixnum's raw bits
// already equal index*8, no further shift is needed, only the
// constant vector-data-offset. Constant-folded when idx is already a
// literal, per §4.11's literal/dynamic split.
func taggedOffset(idx ir.Node, base int64, gen *ir.Gen, items *[]pending) ir.Node {
	if i, ok := idx.(ir.Int64); ok {
		return lit(i.Value + base)
	}
	return bindIfCompound(ir.Prim2{Op: "+", Arg1: idx, Arg2: lit(base)}, gen, items)
}

// rawOffset builds the byte offset for a procedure free-variable slot
// index (or a make-procedure slot count). That index is a literal count
// from §4.8, but by the time it arrives here spec has already encoded
// it as a fixnum like every other Int64, so its raw bits already equal
// index*8 and, exactly as for a vector index, only the constant offset
// is added.
func rawOffset(idx ir.Node, base int64, gen *ir.Gen, items *[]pending) ir.Node {
	return taggedOffset(idx, base, gen, items)
}

// allocPair, allocVectorDynamic and allocProcedure all require their
// value arguments to already be trivs; every call site triv-ifies
// before calling in. Each appends its own allocate-then-store sequence
// directly onto the caller's items list (in place of returning a
// self-contained Let/Begin of its own, which could never safely sit
// inside an operand position) and returns a bare triv referencing the
// final tagged pointer.
func allocPair(car, cdr ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	tmp := gen.Temp()
	*items = append(*items, bindPending(tmp, ir.Alloc{Size: lit(PairSize)}))
	*items = append(*items, stmtPending(ir.Mset{Base: ir.Symbol{Name: tmp}, Offset: lit(PairCarOffset), Value: car}))
	*items = append(*items, stmtPending(ir.Mset{Base: ir.Symbol{Name: tmp}, Offset: lit(PairCdrOffset), Value: cdr}))
	result := ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: tmp}, Arg2: lit(TagPair)}
	return bindIfCompound(result, gen, items)
}

// allocVectorDynamic covers both the literal and dynamic-n forms of
// make-vector: n always arrives as a tagged fixnum whose raw value is
// already n*8, so the allocation size and stored length both fall out
// of n directly, with literal n folded to a constant automatically by
// taggedOffset/lit.
func allocVectorDynamic(n ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	tmp := gen.Temp()
	size := taggedOffset(n, VecDataOffset, gen, items)
	*items = append(*items, bindPending(tmp, ir.Alloc{Size: size}))
	*items = append(*items, stmtPending(ir.Mset{Base: ir.Symbol{Name: tmp}, Offset: lit(VecLengthOffset), Value: n}))
	result := ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: tmp}, Arg2: lit(TagVector)}
	return bindIfCompound(result, gen, items)
}

func allocProcedure(code, arity ir.Node, gen *ir.Gen, items *[]pending) ir.Node {
	tmp := gen.Temp()
	size := rawOffset(arity, ProcDataOffset, gen, items)
	*items = append(*items, bindPending(tmp, ir.Alloc{Size: size}))
	*items = append(*items, stmtPending(ir.Mset{Base: ir.Symbol{Name: tmp}, Offset: lit(ProcCodeOffset), Value: code}))
	result := ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: tmp}, Arg2: lit(TagProcedure)}
	return bindIfCompound(result, gen, items)
}

// lowerQuote expands a quoted immediate into its runtime construction
// (for compound data) or its encoded literal (for atoms). Quoted
// compound data is rebuilt fresh at every occurrence rather than
// interned in a static data segment, matching the absence of any such
// segment elsewhere in this representation (see design notes).
func lowerQuote(d ir.Datum, gen *ir.Gen) ir.Node {
	switch v := d.(type) {
	case ir.DatumInt64:
		return lit(encodeFixnum(int64(v)))
	case ir.DatumBool:
		return lit(encodeBool(bool(v)))
	case ir.DatumEmptyList:
		return lit(EmptyListBits)
	case ir.DatumPair:
		var items []pending
		car := reduceToTriv(lowerQuote(v.Car, gen), gen, &items)
		cdr := reduceToTriv(lowerQuote(v.Cdr, gen), gen, &items)
		result := allocPair(car, cdr, gen, &items)
		return foldPending(items, result)
	case ir.DatumVector:
		return lowerQuoteVector(v, gen)
	default:
		ir.InvariantViolation("specify-representation:quote", d)
		return nil
	}
}

func lowerQuoteVector(v ir.DatumVector, gen *ir.Gen) ir.Node {
	tmp := gen.Temp()
	n := int64(len(v.Elems))
	var items []pending
	items = append(items, bindPending(tmp, ir.Alloc{Size: lit(n*WordSize + VecDataOffset)}))
	items = append(items, stmtPending(ir.Mset{Base: ir.Symbol{Name: tmp}, Offset: lit(VecLengthOffset), Value: lit(encodeFixnum(n))}))
	for i, e := range v.Elems {
		val := reduceToTriv(lowerQuote(e, gen), gen, &items)
		items = append(items, stmtPending(ir.Mset{
			Base:   ir.Symbol{Name: tmp},
			Offset: lit(int64(i)*WordSize + VecDataOffset),
			Value:  val,
		}))
	}
	var result ir.Node = ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: tmp}, Arg2: lit(TagVector)}
	result = bindIfCompound(result, gen, &items)
	return foldPending(items, result)
}
