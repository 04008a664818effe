package validation

import (
	"reflect"
	"strings"
)

// yamlName returns the yaml key of a struct field, or its Go name when the
// field has no yaml tag. Fields tagged "-" are skipped by the validator.
func yamlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	switch name {
	case "-":
		return "-"
	case "":
		return f.Name
	}
	return name
}
