//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var runtimes sync.Map

// GetRuntime returns the runtime bound to the calling goroutine, creating it on first use.
func GetRuntime() *Runtime {
	gid := getGID()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := newDefaultRuntime()
	runtimes.Store(gid, r)
	return r
}

// SwapRuntime binds r to the calling goroutine and returns the previous binding.
// Passing nil drops the binding.
func SwapRuntime(r *Runtime) *Runtime {
	gid := getGID()

	var prev *Runtime
	if old, ok := runtimes.Load(gid); ok {
		prev = old.(*Runtime)
	}

	if r == nil {
		runtimes.Delete(gid)
	} else {
		runtimes.Store(gid, r)
	}

	return prev
}

func getGID() int64 {
	return goid.Get()
}
