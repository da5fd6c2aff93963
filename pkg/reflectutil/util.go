package reflectutil

import "reflect"

// PartialEqual reports whether every non-zero field of want equals the
// corresponding field of got. Zero fields of want are ignored, which makes it
// convenient for asserting a subset of a record in tests.
func PartialEqual[T any](want T, got T) bool {
	vw := reflect.ValueOf(want).Elem()
	vg := reflect.ValueOf(got).Elem()

	for i := 0; i < vw.NumField(); i++ {
		fieldW := vw.Field(i)
		if fieldW.IsZero() {
			continue
		}

		if fieldW.Interface() != vg.Field(i).Interface() {
			return false
		}
	}

	return true
}
