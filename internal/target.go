package internal

import (
	"slices"
	"sort"
	"strconv"
)

// LengthKey is the synthetic key holding a list's length.
const LengthKey = "length"

type iterateKey struct{}

func (iterateKey) String() string { return "<iterate>" }

// IterateKey is the dependency key standing for "the key set of this target".
var IterateKey any = iterateKey{}

// Target is a plain container that can be made observable.
// It is implemented by *Record, *List and *Proxy.
type Target interface {
	isTarget()
}

// Accessor is a computed property stored on a Record.
// Both functions receive the proxy the property was read or written through,
// so sibling reads made from Get are tracked.
type Accessor struct {
	Get func(this *Proxy) any
	Set func(this *Proxy, v any)
}

// Record is an insertion ordered, string keyed container.
type Record struct {
	keys   []string
	values map[string]any
	proto  *Proxy
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// FromMap builds a record from m, converting nested maps and slices into
// records and lists. Keys are inserted in sorted order.
func FromMap(m map[string]any) *Record {
	r := NewRecord()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		r.Put(k, convert(m[k]))
	}

	return r
}

// FromSlice builds a list from s, converting nested maps and slices.
func FromSlice(s []any) *List {
	l := NewList()
	for _, v := range s {
		l.items = append(l.items, convert(v))
	}

	return l
}

func convert(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return FromMap(v)
	case []any:
		return FromSlice(v)
	}

	return v
}

func (*Record) isTarget() {}

// Put sets key on the raw record without notifying anyone and returns the record.
func (r *Record) Put(key string, v any) *Record {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v

	return r
}

func (r *Record) SetPrototype(p *Proxy) { r.proto = p }

func (r *Record) Prototype() *Proxy { return r.proto }

func (r *Record) Len() int { return len(r.keys) }

// Lookup reads key on the raw record. Nothing is tracked.
func (r *Record) Lookup(key string) (any, bool) {
	return r.lookup(key)
}

// Keys returns the raw record keys in insertion order.
func (r *Record) Keys() []string { return r.ownKeys() }

func (r *Record) lookup(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Record) remove(key string) bool {
	if _, ok := r.values[key]; !ok {
		return false
	}

	delete(r.values, key)
	if i := slices.Index(r.keys, key); i != -1 {
		r.keys = slices.Delete(r.keys, i, i+1)
	}

	return true
}

func (r *Record) ownKeys() []string {
	return slices.Clone(r.keys)
}

// hole marks a deleted list index.
type hole struct{}

// List is an index addressed sequence.
type List struct {
	items []any
}

func NewList(items ...any) *List {
	return &List{items: slices.Clone(items)}
}

func (*List) isTarget() {}

func (l *List) Len() int { return len(l.items) }

// At reads index i on the raw list. Holes and out of range indexes read as nil.
func (l *List) At(i int) any {
	v, _ := l.lookup(i)
	return v
}

func (l *List) lookup(i int) (any, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	if _, ok := l.items[i].(hole); ok {
		return nil, false
	}

	return l.items[i], true
}

func (l *List) put(i int, v any) {
	if i >= len(l.items) {
		l.resize(i + 1)
	}
	l.items[i] = v
}

func (l *List) resize(n int) {
	if n <= len(l.items) {
		clear(l.items[n:])
		l.items = l.items[:n]
		return
	}

	for len(l.items) < n {
		l.items = append(l.items, hole{})
	}
}

func (l *List) remove(i int) bool {
	if _, ok := l.lookup(i); !ok {
		return false
	}

	l.items[i] = hole{}
	return true
}

func (l *List) ownKeys() []string {
	keys := make([]string, 0, len(l.items))
	for i := range l.items {
		if _, ok := l.lookup(i); ok {
			keys = append(keys, strconv.Itoa(i))
		}
	}

	return keys
}

// isStructured reports whether v can be wrapped by a proxy.
func isStructured(v any) bool {
	switch v.(type) {
	case *Record, *List, *Proxy:
		return true
	}

	return false
}
