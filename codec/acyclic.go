package codec

import (
	"errors"
	"reflect"
)

// ErrCyclic is returned when a value refers back to one of its ancestors.
var ErrCyclic = errors.New("codec: value contains a cycle")

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// checkAcyclic walks v the way an encoder would and fails on the first
// reference that loops back into the current path. References shared
// between siblings are fine.
func checkAcyclic(v any) error {
	w := &walker{path: make(map[visitKey]struct{})}
	return w.walk(reflect.ValueOf(v))
}

type walker struct {
	path map[visitKey]struct{}
}

func (w *walker) walk(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.walk(v.Elem())

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return w.enter(visitKey{ptr: v.Pointer(), typ: v.Type()}, func() error {
			return w.walk(v.Elem())
		})

	case reflect.Map:
		if v.IsNil() || v.Len() == 0 || scalar(v.Type().Elem()) {
			return nil
		}
		return w.enter(visitKey{ptr: v.Pointer(), typ: v.Type()}, func() error {
			iter := v.MapRange()
			for iter.Next() {
				if err := w.walk(iter.Value()); err != nil {
					return err
				}
			}
			return nil
		})

	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 || scalar(v.Type().Elem()) {
			return nil
		}
		return w.enter(visitKey{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}, func() error {
			return w.elements(v)
		})

	case reflect.Array:
		if scalar(v.Type().Elem()) {
			return nil
		}
		return w.elements(v)

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("msgpack") == "-" {
				continue
			}
			if err := w.walk(v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) elements(v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		if err := w.walk(v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) enter(key visitKey, next func() error) error {
	if _, ok := w.path[key]; ok {
		return ErrCyclic
	}
	w.path[key] = struct{}{}
	defer delete(w.path, key)
	return next()
}

// scalar reports whether values of t cannot hold references.
func scalar(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
