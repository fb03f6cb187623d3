package ir

import (
	"github.com/samber/lo"

	"wrens.dev/schemevm/pkg/symbol"
)

// Optimize runs the three simplification passes over a compiled IR sequence,
// in the order the lowerer expects: each pass is self-contained and safe to
// run even if the ones before it found nothing to rewrite.
func Optimize(code []IR) []IR {
	code = optimizeLambdaFormals(code)
	code = optimizeLookups(code, nil)
	code = optimizeCopies(code)
	return code
}

// optimizeLambdaFormals rewrites Lookup(t, x) to Copy(t, x) wherever x names
// a formal of the directly enclosing Fn: a formal is bound by the calling
// convention, not by an environment entry, so looking it up is pointless.
func optimizeLambdaFormals(code []IR) []IR {
	out := make([]IR, len(code))
	for i, inst := range code {
		out[i] = inst
		if fn, ok := inst.(Fn); ok {
			out[i] = Fn{Dst: fn.Dst, Formals: fn.Formals, Body: rewriteFormals(fn.Body, fn.Formals)}
		}
	}
	return out
}

func rewriteFormals(body []IR, formals []symbol.Symbol) []IR {
	out := make([]IR, len(body))
	for i, inst := range body {
		switch n := inst.(type) {
		case Fn:
			out[i] = Fn{Dst: n.Dst, Formals: n.Formals, Body: rewriteFormals(n.Body, n.Formals)}
		case Lookup:
			if lo.Contains(formals, n.Name) {
				out[i] = Copy{Dst: n.Dst, Src: n.Name}
			} else {
				out[i] = n
			}
		default:
			out[i] = n
		}
	}
	return out
}

// optimizeLookups hoists repeated Lookups of the same name within one
// function scope: the first Lookup(t, x) is kept and remembered; later
// Lookup(t', x) becomes Copy(t', t). The scope map resets at each Fn
// boundary, since a nested function has its own environment chain.
func optimizeLookups(code []IR, _ map[symbol.Symbol]symbol.Symbol) []IR {
	seen := make(map[symbol.Symbol]symbol.Symbol)
	out := make([]IR, len(code))
	for i, inst := range code {
		switch n := inst.(type) {
		case Lookup:
			if t, ok := seen[n.Name]; ok {
				out[i] = Copy{Dst: n.Dst, Src: t}
			} else {
				seen[n.Name] = n.Dst
				out[i] = n
			}
		case Fn:
			out[i] = Fn{Dst: n.Dst, Formals: n.Formals, Body: optimizeLookups(n.Body, nil)}
		default:
			out[i] = n
		}
	}
	return out
}

// optimizeCopies propagates Copy chains and then deletes the Copy
// instructions themselves: every downstream reference to a copy's
// destination is rewritten to read straight from the original source.
func optimizeCopies(code []IR) []IR {
	rewrite := make(map[symbol.Symbol]symbol.Symbol)

	resolve := func(s symbol.Symbol) symbol.Symbol {
		if t, ok := rewrite[s]; ok {
			return t
		}
		return s
	}

	out := make([]IR, 0, len(code))
	for _, inst := range code {
		switch n := inst.(type) {
		case Copy:
			rewrite[n.Dst] = resolve(n.Src)
			continue
		case Return:
			out = append(out, Return{Src: resolve(n.Src)})
		case GotoIf:
			out = append(out, GotoIf{ID: n.ID, Cond: resolve(n.Cond)})
		case GotoIfNot:
			out = append(out, GotoIfNot{ID: n.ID, Cond: resolve(n.Cond)})
		case Phi:
			out = append(out, Phi{
				Dst: n.Dst, LeftSrc: resolve(n.LeftSrc), LeftBlock: n.LeftBlock,
				RightSrc: resolve(n.RightSrc), RightBlock: n.RightBlock,
			})
		case Define:
			out = append(out, Define{Dst: n.Dst, Name: n.Name, Src: resolve(n.Src)})
		case Move:
			out = append(out, Move{Dst: n.Dst, Src: resolve(n.Src)})
		case Call:
			args := lo.Map(n.Args, func(s symbol.Symbol, _ int) symbol.Symbol { return resolve(s) })
			out = append(out, Call{Dst: n.Dst, Proc: resolve(n.Proc), Args: args})
		case Fn:
			out = append(out, Fn{Dst: n.Dst, Formals: n.Formals, Body: optimizeCopies(n.Body)})
		default:
			out = append(out, inst)
		}
	}
	return out
}
