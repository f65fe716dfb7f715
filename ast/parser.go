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

// Package ast is the external reader collaborator of §4.1: it turns
// source text into the ir.Node the pipeline consumes. Nothing in
// compile/ depends on ast's internals, only on the ir.Node it hands
// back, matching how the core treats the reader as swappable.
package ast

import (
	"fmt"

	"nanoc/ir"
)

// ReaderError is the §7 "Lexical/syntactic" error class: malformed
// token, unmatched delimiter, or a form the grammar of §6 doesn't
// admit.
type ReaderError struct {
	File string
	Line int32
	Msg  string
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

var keywords = map[string]bool{
	"letrec": true, "let": true, "lambda": true, "begin": true,
	"set!": true, "if": true, "quote": true,
}

var prim1Ops = map[string]bool{
	"car": true, "cdr": true, "make-vector": true, "vector-length": true,
	"procedure-code": true, "boolean?": true, "fixnum?": true,
	"null?": true, "pair?": true, "vector?": true, "procedure?": true,
	"not": true,
}

var prim2Ops = map[string]bool{
	"+": true, "-": true, "*": true, "cons": true, "vector-ref": true,
	"<=": true, "<": true, "=": true, ">=": true, ">": true, "eq?": true,
	"set-car!": true, "set-cdr!": true, "procedure-ref": true,
	"make-procedure": true,
}

var prim3Ops = map[string]bool{
	"vector-set!": true, "procedure-set!": true,
}

type parser struct {
	lex       *Lexer
	file      string
	tok       TokenKind
	lexeme    string
	hasPeeked bool
}

// Parse reads one top-level expression from src. Trailing input after
// the expression is an error: the surface language has exactly one
// program form.
func Parse(fileName, src string) (ir.Node, error) {
	p := &parser{lex: NewLexer(fileName, src), file: fileName}
	var result ir.Node
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &ReaderError{File: fileName, Msg: fmt.Sprintf("%v", r)}
			}
		}()
		p.advance()
		result = p.parseExpr()
		if p.tok != TK_EOF {
			panic("trailing input after program")
		}
	}()
	return result, err
}

func (p *parser) advance() {
	p.tok, p.lexeme = p.lex.NextToken()
}

func (p *parser) expect(k TokenKind) string {
	if p.tok != k {
		panic(fmt.Sprintf("expected %v, got %v %q", k, p.tok, p.lexeme))
	}
	l := p.lexeme
	p.advance()
	return l
}

func (p *parser) parseExpr() ir.Node {
	switch p.tok {
	case TK_QUOTE:
		p.advance()
		return quoteToNode(p.parseDatum())
	case TK_IDENT:
		name := p.lexeme
		p.advance()
		return ir.Symbol{Name: name}
	case TK_INT, TK_TRUE, TK_FALSE:
		return quoteToNode(p.parseDatum())
	case TK_LPAREN:
		return p.parseForm()
	default:
		panic(fmt.Sprintf("unexpected token %v %q in expression position; compound literals must be quoted", p.tok, p.lexeme))
	}
}

func (p *parser) parseForm() ir.Node {
	p.expect(TK_LPAREN)
	if p.tok == TK_IDENT && keywords[p.lexeme] {
		kw := p.lexeme
		p.advance()
		switch kw {
		case "letrec":
			return p.parseLetrec()
		case "let":
			return p.parseLet()
		case "lambda":
			return p.parseLambda()
		case "begin":
			return p.parseBegin()
		case "set!":
			return p.parseSet()
		case "if":
			return p.parseIf()
		case "quote":
			d := p.parseDatum()
			p.expect(TK_RPAREN)
			return quoteToNode(d)
		}
	}
	if p.tok == TK_IDENT && (prim1Ops[p.lexeme] || prim2Ops[p.lexeme] || prim3Ops[p.lexeme]) {
		return p.parsePrim()
	}
	// application
	callee := p.parseExpr()
	args := []ir.Node{}
	for p.tok != TK_RPAREN {
		args = append(args, p.parseExpr())
	}
	p.expect(TK_RPAREN)
	return ir.Funcall{Callee: callee, Args: args}
}

func (p *parser) parsePrim() ir.Node {
	op := p.lexeme
	p.advance()
	var args []ir.Node
	for p.tok != TK_RPAREN {
		args = append(args, p.parseExpr())
	}
	p.expect(TK_RPAREN)
	switch {
	case prim1Ops[op]:
		if len(args) != 1 {
			panic(fmt.Sprintf("%s expects 1 argument, got %d", op, len(args)))
		}
		return ir.Prim1{Op: op, Arg: args[0]}
	case prim2Ops[op]:
		if len(args) != 2 {
			panic(fmt.Sprintf("%s expects 2 arguments, got %d", op, len(args)))
		}
		return ir.Prim2{Op: op, Arg1: args[0], Arg2: args[1]}
	default:
		if len(args) != 3 {
			panic(fmt.Sprintf("%s expects 3 arguments, got %d", op, len(args)))
		}
		return ir.Prim3{Op: op, Arg1: args[0], Arg2: args[1], Arg3: args[2]}
	}
}

func (p *parser) parseBindings() []ir.Binding {
	p.expect(TK_LPAREN)
	var bindings []ir.Binding
	seen := map[string]bool{}
	for p.tok != TK_RPAREN {
		p.expect(TK_LPAREN)
		name := p.expect(TK_IDENT)
		if seen[name] {
			panic("duplicate binding " + name)
		}
		seen[name] = true
		value := p.parseExpr()
		p.expect(TK_RPAREN)
		bindings = append(bindings, ir.Binding{Name: name, Value: value})
	}
	p.expect(TK_RPAREN)
	return bindings
}

func (p *parser) parseLetrec() ir.Node {
	bindings := p.parseBindings()
	for _, b := range bindings {
		if _, ok := b.Value.(ir.Lambda); !ok {
			panic("letrec binding " + b.Name + " is not a lambda")
		}
	}
	body := p.parseExpr()
	p.expect(TK_RPAREN)
	return ir.Letrec{Bindings: bindings, Body: body}
}

func (p *parser) parseLet() ir.Node {
	bindings := p.parseBindings()
	body := p.parseExpr()
	p.expect(TK_RPAREN)
	return ir.Let{Bindings: bindings, Body: body}
}

func (p *parser) parseLambda() ir.Node {
	p.expect(TK_LPAREN)
	var formals []string
	seen := map[string]bool{}
	for p.tok != TK_RPAREN {
		name := p.expect(TK_IDENT)
		if seen[name] {
			panic("duplicate formal " + name)
		}
		seen[name] = true
		formals = append(formals, name)
	}
	p.expect(TK_RPAREN)
	body := p.parseExpr()
	p.expect(TK_RPAREN)
	return ir.Lambda{Formals: formals, Body: body}
}

func (p *parser) parseBegin() ir.Node {
	var exprs []ir.Node
	for p.tok != TK_RPAREN {
		exprs = append(exprs, p.parseExpr())
	}
	if len(exprs) == 0 {
		panic("begin requires at least one expression")
	}
	p.expect(TK_RPAREN)
	return ir.Begin{Exprs: exprs}
}

func (p *parser) parseSet() ir.Node {
	name := p.expect(TK_IDENT)
	value := p.parseExpr()
	p.expect(TK_RPAREN)
	return ir.Set{Target: name, Value: value}
}

func (p *parser) parseIf() ir.Node {
	pred := p.parseExpr()
	then := p.parseExpr()
	els := p.parseExpr()
	p.expect(TK_RPAREN)
	return ir.If{Pred: pred, Then: then, Else: els}
}

// parseDatum reads the quoted-literal grammar: integers, #t/#f, the
// empty list, proper lists, and '#N(...) fixed-length vectors.
func (p *parser) parseDatum() ir.Datum {
	switch p.tok {
	case TK_INT:
		v := parseSignedInt(p.lexeme)
		p.advance()
		return ir.DatumInt64(v)
	case TK_TRUE:
		p.advance()
		return ir.DatumBool(true)
	case TK_FALSE:
		p.advance()
		return ir.DatumBool(false)
	case TK_LPAREN:
		p.advance()
		if p.tok == TK_RPAREN {
			p.advance()
			return ir.DatumEmptyList{}
		}
		var elems []ir.Datum
		for p.tok != TK_RPAREN {
			elems = append(elems, p.parseDatum())
		}
		p.expect(TK_RPAREN)
		var list ir.Datum = ir.DatumEmptyList{}
		for i := len(elems) - 1; i >= 0; i-- {
			list = ir.DatumPair{Car: elems[i], Cdr: list}
		}
		return list
	case TK_HASHVEC:
		n := parseSignedInt(p.lexeme)
		p.advance()
		var elems []ir.Datum
		for p.tok != TK_RPAREN {
			elems = append(elems, p.parseDatum())
		}
		p.expect(TK_RPAREN)
		if int64(len(elems)) != n {
			panic(fmt.Sprintf("'#%d(...) declares %d elements but has %d", n, n, len(elems)))
		}
		return ir.DatumVector{Elems: elems}
	default:
		panic(fmt.Sprintf("unsupported quote shape: %v %q", p.tok, p.lexeme))
	}
}

func parseSignedInt(s string) int64 {
	var neg bool
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var v int64
	for _, c := range s {
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v
}

// quoteToNode simplifies a quoted immediate datum to a bare source-IR
// literal when one already exists (Int64, Bool, EmptyList); compound
// data (pairs, vectors) stay wrapped as Quote, since building them is
// a representation-level job (§4.11), not a reader-level one.
func quoteToNode(d ir.Datum) ir.Node {
	switch v := d.(type) {
	case ir.DatumInt64:
		return ir.Int64{Value: int64(v)}
	case ir.DatumBool:
		return ir.Bool{Value: bool(v)}
	case ir.DatumEmptyList:
		return ir.EmptyList{}
	default:
		return ir.Quote{Value: d}
	}
}
