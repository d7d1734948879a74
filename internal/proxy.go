package internal

import "iter"

// Proxy is an observable view over a Record or a List.
// Reads track the active effect, writes trigger the effects that read the key.
type Proxy struct {
	rt *Runtime

	target  Target
	handler handler

	readonly bool
	shallow  bool
}

// Wrap returns the proxy for t with the given flags, reusing a cached one if any.
// Wrapping a proxy again returns it, unless a readonly view of a mutable proxy is asked for.
func (r *Runtime) Wrap(t Target, readonly, shallow bool) *Proxy {
	if p, ok := t.(*Proxy); ok {
		if p.readonly || !readonly {
			return p
		}

		return p.rt.Wrap(p.target, readonly, shallow)
	}

	key := proxyKey{target: t, readonly: readonly, shallow: shallow}
	if p, ok := r.proxies[key]; ok {
		return p
	}

	p := &Proxy{
		rt:       r,
		target:   t,
		handler:  handlerFor(t),
		readonly: readonly,
		shallow:  shallow,
	}
	r.proxies[key] = p

	return p
}

func (*Proxy) isTarget() {}

func (p *Proxy) Runtime() *Runtime { return p.rt }

// Raw returns the wrapped record or list.
func (p *Proxy) Raw() Target { return p.target }

func (p *Proxy) IsReadonly() bool { return p.readonly }

func (p *Proxy) IsShallow() bool { return p.shallow }

// IsList reports whether the proxy wraps a List.
func (p *Proxy) IsList() bool {
	_, ok := p.target.(*List)
	return ok
}

// Get reads key. Record keys are strings, list keys are indexes or "length".
func (p *Proxy) Get(key any) any {
	return p.get(key, p)
}

func (p *Proxy) get(key any, receiver *Proxy) any {
	k, ok := p.handler.normalize(key)
	if !ok {
		return nil
	}

	v := p.handler.get(p, k, receiver)

	if !p.readonly {
		p.rt.Track(p.target, k)
	}

	if p.shallow || !isStructured(v) {
		return v
	}

	return p.rt.Wrap(v.(Target), p.readonly, false)
}

// Set writes key. Readonly proxies refuse the write and log a warning.
func (p *Proxy) Set(key, value any) {
	if p.readonly {
		p.rt.warnReadonly("set", key)
		return
	}

	k, ok := p.handler.normalize(key)
	if !ok {
		p.rt.logger.Warn("unsupported key", "key", key)
		return
	}

	if !p.shallow {
		value = toStored(value)
	}

	p.handler.set(p, k, value, p)
}

// Has reports whether key exists, tracking it like a read.
func (p *Proxy) Has(key any) bool {
	k, ok := p.handler.normalize(key)
	if !ok {
		return false
	}

	if !p.readonly {
		p.rt.Track(p.target, k)
	}

	return p.handler.has(p, k)
}

// Delete removes key and reports whether it existed.
func (p *Proxy) Delete(key any) bool {
	if p.readonly {
		p.rt.warnReadonly("delete", key)
		return false
	}

	k, ok := p.handler.normalize(key)
	if !ok {
		return false
	}

	return p.handler.remove(p, k)
}

// Keys returns the own keys, list indexes formatted as strings.
// The caller depends on the key set, not on the values.
func (p *Proxy) Keys() []string {
	if !p.readonly {
		p.rt.Track(p.target, IterateKey)
	}

	return p.handler.keys(p)
}

// Len returns the number of keys of a record or the length of a list.
func (p *Proxy) Len() int {
	if l, ok := p.target.(*List); ok {
		if !p.readonly {
			p.rt.Track(l, LengthKey)
		}
		return l.Len()
	}

	return len(p.Keys())
}

// All yields the entries of a record in insertion order.
func (p *Proxy) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if p.IsList() {
			return
		}

		for _, k := range p.Keys() {
			if !yield(k, p.Get(k)) {
				return
			}
		}
	}
}

// Values yields the elements of a list, holes included as nil.
func (p *Proxy) Values() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		if !p.IsList() {
			return
		}

		for i := 0; i < p.Len(); i++ {
			if !yield(i, p.Get(i)) {
				return
			}
		}
	}
}

// Push appends items to a list and returns the new length.
// The length read it performs is not tracked.
func (p *Proxy) Push(items ...any) int {
	if p.readonly {
		p.rt.warnReadonly("push", LengthKey)
		return p.Len()
	}

	n := 0
	p.rt.Untrack(func() {
		for _, item := range items {
			p.Set(p.Len(), item)
		}
		n = p.Len()
	})

	return n
}

// Pop removes and returns the last element of a list.
func (p *Proxy) Pop() any {
	if p.readonly {
		p.rt.warnReadonly("pop", LengthKey)
		return nil
	}

	var v any
	p.rt.Untrack(func() {
		n := p.Len()
		if n == 0 {
			return
		}

		v = p.Get(n - 1)
		p.Set(LengthKey, n-1)
	})

	return v
}

// IndexOf returns the index of the first element identical to v, or -1.
// Proxies and their raw targets compare equal.
func (p *Proxy) IndexOf(v any) int {
	raw := ToRaw(v)

	for i, item := range p.Values() {
		if same(ToRaw(item), raw) {
			return i
		}
	}

	return -1
}

func (p *Proxy) Includes(v any) bool {
	return p.IndexOf(v) != -1
}

// toStored unwraps a mutable proxy before it is stored. Readonly proxies are kept
// so reading the value back never hands out a mutable view.
func toStored(v any) any {
	if p, ok := v.(*Proxy); ok && !p.readonly {
		return p.target
	}

	return v
}

// ToRaw unwraps a proxy to its target. Other values are returned as is.
func ToRaw(v any) any {
	if p, ok := v.(*Proxy); ok {
		return p.target
	}

	return v
}
