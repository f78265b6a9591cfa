package enum

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/exp/slices"
)

var (
	mutex    sync.RWMutex
	registry = map[reflect.Type]any{}
)

type values[T ~string] struct {
	all []T
}

// New registers value as a valid member of its type. Types are distinguished by their
// package path, so two packages may declare enums with the same name.
func New[T ~string](value T) T {
	mutex.Lock()
	defer mutex.Unlock()

	key := reflect.TypeOf(value)
	v, _ := registry[key].(*values[T])
	if v == nil {
		v = &values[T]{}
		registry[key] = v
	}

	if !slices.Contains(v.all, value) {
		v.all = append(v.all, value)
	}

	return value
}

// ToEnum parses s as a registered member of T.
func ToEnum[T ~string](s string) (T, error) {
	for _, v := range Values[T]() {
		if string(v) == s {
			return v, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("invalid value %q of %T", s, zero)
}

// Values returns the members of T in registration order.
func Values[T ~string]() []T {
	mutex.RLock()
	defer mutex.RUnlock()

	var zero T
	v, ok := registry[reflect.TypeOf(zero)].(*values[T])
	if !ok {
		return nil
	}

	return slices.Clone(v.all)
}
