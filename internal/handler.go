package internal

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// handler implements the proxy operations for one container kind.
// Keys reaching a handler are already normalized.
type handler interface {
	normalize(key any) (any, bool)

	get(p *Proxy, key any, receiver *Proxy) any
	set(p *Proxy, key, value any, receiver *Proxy)
	has(p *Proxy, key any) bool
	keys(p *Proxy) []string
	remove(p *Proxy, key any) bool
}

func handlerFor(t Target) handler {
	switch t.(type) {
	case *Record:
		return recordHandler{}
	case *List:
		return listHandler{}
	}

	panic(fmt.Sprintf("reactive: no handler for %T", t))
}

type recordHandler struct{}

func (recordHandler) normalize(key any) (any, bool) {
	switch k := key.(type) {
	case string:
		return k, true
	case int:
		return strconv.Itoa(k), true
	case fmt.Stringer:
		return k.String(), true
	}

	return nil, false
}

func (recordHandler) get(p *Proxy, key any, receiver *Proxy) any {
	rec := p.target.(*Record)
	k := key.(string)

	if v, ok := rec.lookup(k); ok {
		if a, ok := asAccessor(v); ok {
			if a.Get == nil {
				return nil
			}
			return a.Get(receiver)
		}

		return v
	}

	// fall through to the prototype, keeping the receiver the read started on
	if rec.proto != nil {
		return rec.proto.get(k, receiver)
	}

	return nil
}

func (recordHandler) set(p *Proxy, key, value any, receiver *Proxy) {
	rec := p.target.(*Record)
	k := key.(string)

	old, had := rec.lookup(k)
	if had {
		if a, ok := asAccessor(old); ok {
			if a.Set != nil {
				a.Set(receiver, value)
			}
			return
		}
	} else if a, ok := inheritedSetter(rec.proto, k); ok {
		a.Set(receiver, value)
		return
	}

	rec.Put(k, value)

	if !had {
		p.rt.Trigger(rec, k, OpAdd, NoLength)
	} else if hasChanged(old, value) {
		p.rt.Trigger(rec, k, OpSet, NoLength)
	}
}

func (recordHandler) has(p *Proxy, key any) bool {
	rec := p.target.(*Record)
	k := key.(string)

	if _, ok := rec.lookup(k); ok {
		return true
	}

	if rec.proto != nil {
		return rec.proto.Has(k)
	}

	return false
}

func (recordHandler) keys(p *Proxy) []string {
	return p.target.(*Record).ownKeys()
}

func (recordHandler) remove(p *Proxy, key any) bool {
	rec := p.target.(*Record)
	k := key.(string)

	if !rec.remove(k) {
		return false
	}

	p.rt.Trigger(rec, k, OpDelete, NoLength)
	return true
}

// inheritedSetter looks up an accessor with a setter along the raw prototype chain.
// A plain value found first shadows anything further up.
func inheritedSetter(proto *Proxy, key string) (Accessor, bool) {
	for proto != nil {
		rec, ok := proto.target.(*Record)
		if !ok {
			return Accessor{}, false
		}

		if v, ok := rec.lookup(key); ok {
			a, ok := asAccessor(v)
			return a, ok && a.Set != nil
		}

		proto = rec.proto
	}

	return Accessor{}, false
}

func asAccessor(v any) (Accessor, bool) {
	switch a := v.(type) {
	case Accessor:
		return a, true
	case *Accessor:
		if a != nil {
			return *a, true
		}
	}

	return Accessor{}, false
}

type listHandler struct{}

func (listHandler) normalize(key any) (any, bool) {
	switch k := key.(type) {
	case int:
		if k >= 0 {
			return k, true
		}
	case string:
		if k == LengthKey {
			return LengthKey, true
		}
		if i, err := strconv.Atoi(k); err == nil && i >= 0 {
			return i, true
		}
	}

	return nil, false
}

func (listHandler) get(p *Proxy, key any, receiver *Proxy) any {
	l := p.target.(*List)

	if key == LengthKey {
		return l.Len()
	}

	v, _ := l.lookup(key.(int))
	return v
}

func (listHandler) set(p *Proxy, key, value any, receiver *Proxy) {
	l := p.target.(*List)

	if key == LengthKey {
		n, ok := toLength(value)
		if !ok {
			p.rt.logger.Warn("invalid list length", "value", fmt.Sprint(value))
			return
		}

		if n == l.Len() {
			return
		}

		l.resize(n)
		p.rt.Trigger(l, LengthKey, OpSet, n)
		return
	}

	i := key.(int)
	old, had := l.lookup(i)
	grows := i >= l.Len()

	l.put(i, value)

	switch {
	case grows:
		p.rt.Trigger(l, i, OpAdd, l.Len())
	case !had:
		p.rt.Trigger(l, i, OpAdd, NoLength)
	case hasChanged(old, value):
		p.rt.Trigger(l, i, OpSet, NoLength)
	}
}

func (listHandler) has(p *Proxy, key any) bool {
	if key == LengthKey {
		return true
	}

	_, ok := p.target.(*List).lookup(key.(int))
	return ok
}

func (listHandler) keys(p *Proxy) []string {
	return p.target.(*List).ownKeys()
}

func (listHandler) remove(p *Proxy, key any) bool {
	if key == LengthKey {
		return false
	}

	l := p.target.(*List)
	i := key.(int)

	if !l.remove(i) {
		return false
	}

	p.rt.Trigger(l, i, OpDelete, NoLength)
	return true
}

func toLength(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case float64:
		if n >= 0 && n == math.Trunc(n) {
			return int(n), true
		}
	}

	return 0, false
}

// hasChanged reports whether a write of b over a is observable.
// NaN is equal to itself; values of non comparable types always count as changed.
func hasChanged(a, b any) bool {
	return !same(a, b)
}

func same(a, b any) bool {
	if isNaN(a) && isNaN(b) {
		return true
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}

	return a == b
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}

	return false
}
