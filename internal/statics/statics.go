// Package statics holds the VM-wide map from a type's canonical TypeRef
// to its static value, populated once by internal/staticinit and read
// thereafter by LoadStatic instructions and get_static_from_str calls
// (spec.md §4.7).
package statics

import (
	"sync"

	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// Map is guarded by a reader-writer lock, matching spec.md §5's resource
// model (reads during normal execution vastly outnumber the one write
// per type load_statics performs).
type Map struct {
	mu sync.RWMutex
	m  map[string]types.Value
}

func New() *Map { return &Map{m: make(map[string]types.Value)} }

// Set stores v as the static value for the type named by key (its
// canonical TypeRef string). Called exactly once per type by
// staticinit.LoadStatics.
func (s *Map) Set(key string, v types.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string]types.Value)
	}
	s.m[key] = v
}

// Get returns the static value stored for key.
func (s *Map) Get(key string) (types.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// Len reports how many types currently have a populated static entry.
func (s *Map) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// GetField implements spec.md §4.7's get_static_from_str: primitives fail
// FailedGetField; Struct/Object look up the named field; Array/String
// fail UnsupportedGettingField.
func (s *Map) GetField(key string, field ident.Name) (types.Value, error) {
	v, ok := s.Get(key)
	if !ok {
		return types.Value{}, vmerr.New(vmerr.FailedGetField, key, nil)
	}
	switch v.Kind() {
	case types.KindStruct:
		so := v.Struct()
		fv, ok := so.Fields.Get(field)
		if !ok {
			return types.Value{}, vmerr.New(vmerr.FailedGetField, string(field), nil)
		}
		return fv, nil
	case types.KindReference:
		brv := v.Ref().Get()
		switch brv.Kind {
		case types.ByRefObject:
			fv, ok := brv.Obj.Fields.Get(field)
			if !ok {
				return types.Value{}, vmerr.New(vmerr.FailedGetField, string(field), nil)
			}
			return fv, nil
		case types.ByRefArray, types.ByRefString:
			return types.Value{}, vmerr.New(vmerr.UnsupportedGettingField, string(field), nil)
		default:
			return types.Value{}, vmerr.New(vmerr.FailedGetField, string(field), nil)
		}
	default:
		return types.Value{}, vmerr.New(vmerr.FailedGetField, string(field), nil)
	}
}
