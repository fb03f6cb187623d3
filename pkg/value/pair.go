package value

// Arena holds the car/cdr slots for every pair allocated through it, in
// parallel slices indexed by the Value's payload index. Indexing instead of
// pointing directly at a heap cell sidesteps Go-GC-vs-cycle concerns
// entirely (no collector is implemented; see the design notes), and keeps
// a Pair Value the same small, copyable shape as every other variant.
type Arena struct {
	cars []Value
	cdrs []Value
}

// NewArena returns an empty, independently-indexed Arena. Production code
// shares defaultArena; tests that need isolation construct their own.
func NewArena() *Arena {
	return &Arena{}
}

// Cons allocates a new pair cell in a and returns a handle to it.
func (a *Arena) Cons(car, cdr Value) Value {
	idx := len(a.cars)
	a.cars = append(a.cars, car)
	a.cdrs = append(a.cdrs, cdr)
	return Value{tag: TagPair, i: int64(idx), arena: a}
}

var defaultArena = NewArena()

// Cons allocates a pair cell in the process-wide default arena.
func Cons(car, cdr Value) Value { return defaultArena.Cons(car, cdr) }

// Car projects the first slot of a pair. Called on a non-pair, it returns
// an Error value rather than panicking: type mismatches in primitives are
// evaluation errors, not fatal machine errors.
func (v Value) Car() Value {
	if v.tag != TagPair {
		return Error(ErrPairExpected, "car: "+v.String())
	}
	return v.arena.cars[v.i]
}

// Cdr projects the second slot of a pair.
func (v Value) Cdr() Value {
	if v.tag != TagPair {
		return Error(ErrPairExpected, "cdr: "+v.String())
	}
	return v.arena.cdrs[v.i]
}

// SetCar mutates the car slot in place; every Value handle aliasing the
// same arena cell observes the change.
func (v Value) SetCar(newCar Value) Value {
	if v.tag != TagPair {
		return Error(ErrPairExpected, "set-car!: "+v.String())
	}
	v.arena.cars[v.i] = newCar
	return Void()
}

// SetCdr mutates the cdr slot in place.
func (v Value) SetCdr(newCdr Value) Value {
	if v.tag != TagPair {
		return Error(ErrPairExpected, "set-cdr!: "+v.String())
	}
	v.arena.cdrs[v.i] = newCdr
	return Void()
}
