package forms

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"metaladmin/pkg/models"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field path (e.g. "features[0].maxRange") to the
// message shown next to that input.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Add records a message for field unless one is already present.
func (fe FieldErrors) Add(field, message string) {
	if _, exists := fe[field]; !exists {
		fe[field] = message
	}
}

// Merge copies other into fe under prefix.
func (fe FieldErrors) Merge(prefix string, other FieldErrors) {
	for k, v := range other {
		if prefix != "" {
			k = prefix + "." + k
		}
		fe.Add(k, v)
	}
}

// Err returns nil when there are no field errors.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with JSON field names and the
// cross-field rules of the catalog registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		validate.RegisterStructValidation(featureRanges, models.Feature{})
		validate.RegisterStructValidation(dimensionRange, models.Dimension{})
	})
	return validate
}

func featureRanges(sl validator.StructLevel) {
	f := sl.Current().Interface().(models.Feature)
	if f.MinRange != nil && f.MaxRange != nil && *f.MaxRange < *f.MinRange {
		sl.ReportError(*f.MaxRange, "maxRange", "MaxRange", "gtefield", "minRange")
	}
}

func dimensionRange(sl validator.StructLevel) {
	d := sl.Current().Interface().(models.Dimension)
	if d.Max < d.Min {
		sl.ReportError(d.Max, "max", "Max", "gtefield", "min")
	}
}

// Validate runs struct validation on v and converts failures to FieldErrors.
// It returns nil when v is valid.
func Validate(v interface{}) FieldErrors {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_": err.Error()}
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if k := fe.Kind(); k == reflect.Slice || k == reflect.Array || k == reflect.Map {
			return fmt.Sprintf("needs at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}
