package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path binds route parameters into fields tagged `path:"name"`, reading
// them through extractor (chi.URLParam with chi). Untagged fields are
// left alone, so Path combines with JSON or Query on one struct.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor is nil", ErrInvalidPath)
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidPath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rt.NumField() {
			name := rt.Field(i).Tag.Get("path")
			field := rv.Field(i)
			if name == "" || name == "-" || !field.CanSet() {
				continue
			}
			raw := extractor(r, name)
			if raw == "" {
				continue
			}
			if err := setValue(field, raw); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidPath, name, err)
			}
		}
		return nil
	}
}
