// Package value implements the runtime representation every register,
// stack slot, and environment binding holds: a small tagged struct copied
// by value at Go's ordinary struct-assignment cost, with pairs and
// lambdas held by reference (arena index / pointer) so mutation and
// aliasing behave like the source's heap-allocated cells.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"wrens.dev/schemevm/pkg/symbol"
)

// Tag discriminates the variant a Value holds.
type Tag byte

const (
	TagVoid Tag = iota
	TagNil
	TagBool
	TagInteger
	TagFloat
	TagLabel
	TagString
	TagSymbol
	TagPair
	TagLambda
	TagEnvironment
	TagError
)

// ErrorKind enumerates the evaluation-error taxonomy carried by the Error
// variant. Unlike fatal machine errors, these flow through registers as
// ordinary values: a primitive that hits a type mismatch returns one
// instead of halting the VM.
type ErrorKind int

const (
	ErrUnboundVariable ErrorKind = iota
	ErrPairExpected
	ErrNumberExpected
	ErrWrongArgs
	ErrElseNotLast
	ErrUserDefined
)

// Value is the uniform representation of every Scheme datum. The zero
// Value is Void. Equality on immediate variants is structural (Equal
// compares fields); equality on Pair/Lambda/Environment is identity
// (same arena cell / same pointer).
type Value struct {
	tag   Tag
	i     int64  // Integer, Bool(0/1), Label index, Symbol id, Pair index, ErrorKind
	f     float64
	s     string // String payload, ErrorKind detail text
	lam   *Lambda
	env   *Environment
	arena *Arena // set only for Pair values
}

// Tag reports which variant v holds.
func (v Value) Tag() Tag { return v.tag }

func Void() Value { return Value{tag: TagVoid} }
func Nil() Value  { return Value{tag: TagNil} }

func Bool(b bool) Value {
	var i int64
	if b {
		i = 1
	}
	return Value{tag: TagBool, i: i}
}

func Integer(n int64) Value  { return Value{tag: TagInteger, i: n} }
func Float(f float64) Value  { return Value{tag: TagFloat, f: f} }
func LabelV(idx int) Value   { return Value{tag: TagLabel, i: int64(idx)} }
func String(s string) Value  { return Value{tag: TagString, s: s} }
func SymbolV(sym symbol.Symbol) Value { return Value{tag: TagSymbol, i: int64(sym)} }

func LambdaV(l *Lambda) Value           { return Value{tag: TagLambda, lam: l} }
func EnvironmentV(e *Environment) Value { return Value{tag: TagEnvironment, env: e} }

// Error constructs an Error-tagged value; detail is free text used in the
// printed message (a variable name, an operator name, and so on).
func Error(kind ErrorKind, detail string) Value {
	return Value{tag: TagError, i: int64(kind), s: detail}
}

func (v Value) IsVoid() bool        { return v.tag == TagVoid }
func (v Value) IsNil() bool         { return v.tag == TagNil }
func (v Value) IsBool() bool        { return v.tag == TagBool }
func (v Value) IsInteger() bool     { return v.tag == TagInteger }
func (v Value) IsFloat() bool       { return v.tag == TagFloat }
func (v Value) IsString() bool      { return v.tag == TagString }
func (v Value) IsSymbol() bool      { return v.tag == TagSymbol }
func (v Value) IsPair() bool        { return v.tag == TagPair }
func (v Value) IsLambda() bool      { return v.tag == TagLambda }
func (v Value) IsEnvironment() bool { return v.tag == TagEnvironment }
func (v Value) IsError() bool       { return v.tag == TagError }

func (v Value) AsBool() bool             { return v.i != 0 }
func (v Value) AsInteger() int64         { return v.i }
func (v Value) AsFloat() float64         { return v.f }
func (v Value) AsString() string         { return v.s }
func (v Value) AsSymbol() symbol.Symbol  { return symbol.Symbol(v.i) }
func (v Value) AsLambda() *Lambda        { return v.lam }
func (v Value) AsEnvironment() *Environment { return v.env }
func (v Value) ErrorKind() ErrorKind      { return ErrorKind(v.i) }
func (v Value) ErrorDetail() string       { return v.s }

// ToInteger coerces an Integer or Float value to int64 (truncating floats),
// matching the reference VM's arithmetic opcodes. Any other tag fails.
func (v Value) ToInteger() (int64, bool) {
	switch v.tag {
	case TagInteger:
		return v.i, true
	case TagFloat:
		return int64(v.f), true
	default:
		return 0, false
	}
}

// Equal implements the Eq opcode's polymorphic structural equality:
// structural on immediate variants, identity on Pair/Lambda/Environment.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case TagVoid, TagNil:
		return true
	case TagBool, TagInteger, TagLabel, TagSymbol:
		return v.i == o.i
	case TagFloat:
		return v.f == o.f
	case TagString:
		return v.s == o.s
	case TagPair:
		return v.arena == o.arena && v.i == o.i
	case TagLambda:
		return v.lam == o.lam
	case TagEnvironment:
		return v.env == o.env
	case TagError:
		return v.i == o.i && v.s == o.s
	default:
		return false
	}
}

// String renders v the way the REPL prints a register's value.
func (v Value) String() string {
	switch v.tag {
	case TagVoid:
		return ""
	case TagNil:
		return "()"
	case TagBool:
		if v.AsBool() {
			return "#t"
		}
		return "#f"
	case TagInteger:
		return strconv.FormatInt(v.i, 10)
	case TagFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TagLabel:
		return fmt.Sprintf("#<label %d>", v.i)
	case TagString:
		return strconv.Quote(v.s)
	case TagSymbol:
		return symbol.Name(v.AsSymbol())
	case TagPair:
		return v.pairString()
	case TagLambda:
		return "#<procedure>"
	case TagEnvironment:
		return "#<environment>"
	case TagError:
		return "ERROR: " + v.errorString()
	default:
		return "#<unknown>"
	}
}

func (v Value) pairString() string {
	var b strings.Builder
	b.WriteByte('(')
	cur := v
	first := true
	for cur.tag == TagPair {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(cur.Car().String())
		cur = cur.Cdr()
	}
	if cur.tag != TagNil {
		b.WriteString(" . ")
		b.WriteString(cur.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (v Value) errorString() string {
	switch ErrorKind(v.i) {
	case ErrUnboundVariable:
		return fmt.Sprintf("unbound variable %s", v.s)
	case ErrPairExpected:
		return "expected a pair: " + v.s
	case ErrNumberExpected:
		return "expected a number: " + v.s
	case ErrWrongArgs:
		return "wrong number of arguments: " + v.s
	case ErrElseNotLast:
		return "else clause must be last: " + v.s
	case ErrUserDefined:
		return v.s
	default:
		return v.s
	}
}

// a Value never needs to be split into bytecode payload words itself: the
// assembler (pkg/asm) holds a per-unit constant pool of Values and embeds
// only the pool index in a LoadConst/MakeClosure Operation's payload words,
// since a Go Value is not the source's bit-packed 64-bit machine word and
// has no business pretending to be one. See pkg/asm's Assemble.
