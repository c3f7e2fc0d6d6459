package moduleconfig

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance returns the shared validator. Field names are reported by
// their JSON name so they match the keys a form binds to.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// FieldErrors maps a field path (e.g. "availablePins[1].name") to a
// human-readable message.
type FieldErrors map[string]string

// Fields returns the offending field paths in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Err converts the field errors into a single validation error, or nil when empty.
func (fe FieldErrors) Err(module Name) error {
	if len(fe) == 0 {
		return nil
	}
	fields := fe.Fields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + fe[f]
	}
	return NewValidationError(module, fields[0], strings.Join(parts, "; "))
}

// ValidateRemoteHardware validates a remote hardware configuration.
// Returns an empty map if valid.
func ValidateRemoteHardware(config RemoteHardwareConfig) FieldErrors {
	return validateStruct(config)
}

// ValidatePin validates a single remote hardware pin.
func ValidatePin(pin RemoteHardwarePin) error {
	return validateStruct(pin).Err(RemoteHardware)
}

func validateStruct(v any) FieldErrors {
	out := FieldErrors{}

	err := validatorInstance().Struct(v)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}

	for _, fe := range verrs {
		out[fieldPath(fe)] = describe(fe)
	}
	return out
}

// fieldPath drops the top-level struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
