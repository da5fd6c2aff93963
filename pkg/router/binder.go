package router

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// bindQuery fills a request struct from URL query parameters, matching fields
// by their json tag. Slices accept repeated parameters as well as a single
// comma-separated value.
func bindQuery(values url.Values, req any) error {
	v := reflect.ValueOf(req).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}

		field := v.Field(i)
		if field.Kind() == reflect.Slice {
			if len(raw) == 1 {
				raw = strings.Split(raw[0], ",")
			}

			slice := reflect.MakeSlice(field.Type(), 0, len(raw))
			for _, s := range raw {
				elem := reflect.New(field.Type().Elem()).Elem()
				if err := setScalar(elem, s); err != nil {
					return err
				}
				slice = reflect.Append(slice, elem)
			}

			field.Set(slice)
			continue
		}

		if err := setScalar(field, raw[0]); err != nil {
			return err
		}
	}

	return nil
}

func setScalar(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported query parameter type %s", field.Kind())
	}

	return nil
}
