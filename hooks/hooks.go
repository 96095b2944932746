// Package hooks provides an ordered hook registration and execution system.
// Hooks with equal priority run in registration order, so subscribers see a
// deterministic fan-out.
package hooks

import (
	"fmt"
	"log"
	"reflect"
	"runtime"
	"sort"
	"sync"
)

// Hook defines a generic hook function that returns an error if it fails
type Hook[T any] func(context T) error

// HookInfo stores information about a registered hook
type HookInfo[T any] struct {
	Name     string  // Name of the hook function
	Hook     Hook[T] // The hook function itself
	Priority int64   // Priority value (lower values run first, like Unix nice)
	seq      int     // Registration sequence, breaks priority ties
}

// Registry manages hook registration and execution for a specific context type
type Registry[T any] struct {
	mu    sync.RWMutex
	hooks []HookInfo[T]
	next  int
}

// NewRegistry creates a new hook registry for the given context type
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Register adds a new hook to the registry with default priority (0)
func (r *Registry[T]) Register(hook Hook[T]) {
	r.RegisterWithPriority(hook, 0)
}

// RegisterWithPriority adds a new hook to the registry with the specified
// priority. Hooks with lower priority values run first; hooks with the same
// priority run in the order they were registered.
func (r *Registry[T]) RegisterWithPriority(hook Hook[T], priority int64) {
	name := runtime.FuncForPC(reflect.ValueOf(hook).Pointer()).Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks, HookInfo[T]{
		Name:     name,
		Hook:     hook,
		Priority: priority,
		seq:      r.next,
	})
	r.next++
}

// RunHooks executes all registered hooks with the provided context, in
// priority then registration order. It returns a map of hook names to errors
// for any hooks that failed, or nil when every hook succeeded. A panicking
// hook is recovered and reported as an error so it cannot take down the
// caller's dispatch loop.
func (r *Registry[T]) RunHooks(context T) map[string]error {
	r.mu.RLock()
	hooks := make([]HookInfo[T], len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.RUnlock()

	sort.SliceStable(hooks, func(i, j int) bool {
		if hooks[i].Priority != hooks[j].Priority {
			return hooks[i].Priority < hooks[j].Priority
		}
		return hooks[i].seq < hooks[j].seq
	})

	hookErrors := make(map[string]error)

	for _, hookInfo := range hooks {
		err := func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("PANIC in hook %s: %v", hookInfo.Name, r)
					hookErrors[hookInfo.Name] = fmt.Errorf("panic in hook %s: %v", hookInfo.Name, r)
				}
			}()
			return hookInfo.Hook(context)
		}()

		if err != nil && hookErrors[hookInfo.Name] == nil {
			hookErrors[hookInfo.Name] = err
			log.Printf("ERROR in hook %s: %v", hookInfo.Name, err)
		}
	}

	if len(hookErrors) == 0 {
		return nil
	}
	return hookErrors
}

// Clear removes all hooks from the registry
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = nil
	r.next = 0
}

// Count returns the number of registered hooks
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.hooks)
}
