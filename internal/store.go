package internal

// Store indexes dependency sets by target identity, then by key.
type Store struct {
	targets map[any]map[any]*Dep
}

func NewStore() *Store {
	return &Store{
		targets: make(map[any]map[any]*Dep),
	}
}

// Dep returns the dependency set for (target, key), creating it if asked to.
func (s *Store) Dep(target, key any, create bool) *Dep {
	keys, ok := s.targets[target]
	if !ok {
		if !create {
			return nil
		}

		keys = make(map[any]*Dep)
		s.targets[target] = keys
	}

	dep, ok := keys[key]
	if !ok && create {
		dep = newDep(target, key)
		keys[key] = dep
	}

	return dep
}

// Keys returns every key of target that currently has a dependency set.
func (s *Store) Keys(target any) []any {
	keys := make([]any, 0, len(s.targets[target]))
	for k := range s.targets[target] {
		keys = append(keys, k)
	}

	return keys
}

// release drops an empty dependency set so dead targets don't pin memory.
func (s *Store) release(dep *Dep) {
	if dep.Len() > 0 {
		return
	}

	keys, ok := s.targets[dep.target]
	if !ok || keys[dep.key] != dep {
		return
	}

	delete(keys, dep.key)
	if len(keys) == 0 {
		delete(s.targets, dep.target)
	}
}

// Size returns the number of targets with at least one live dependency set.
func (s *Store) Size() int { return len(s.targets) }
