//go:build wasm

package internal

import "sync"

var mu sync.Mutex
var globalRuntime *Runtime

func GetRuntime() *Runtime {
	mu.Lock()
	defer mu.Unlock()

	if globalRuntime == nil {
		globalRuntime = newDefaultRuntime()
	}

	return globalRuntime
}

func SwapRuntime(r *Runtime) *Runtime {
	mu.Lock()
	defer mu.Unlock()

	prev := globalRuntime
	globalRuntime = r
	return prev
}
