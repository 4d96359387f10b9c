// Package envstruct fills configuration structs from environment variables.
package envstruct

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"time"

	"github.com/myrjola/repcoach/internal/errors"
)

var (
	ErrEnvNotSet    = errors.NewSentinel("environment variable not set")
	ErrInvalidValue = errors.NewSentinel("v must be a pointer to a struct")
	ErrParse        = errors.NewSentinel("cannot parse environment variable")
)

//nolint:gochecknoglobals // reflect type used for comparison.
var durationType = reflect.TypeFor[time.Duration]()

// Populate populates the fields of the pointer to struct v with values from the environment.
//
// lookupEnv has the same signature as [os.LookupEnv]. Fields are tagged with `env:"ENV_VAR"` and optionally
// `envDefault:"value"`. Without a default an unset variable yields ErrEnvNotSet. Supported field types are string,
// int, bool, float64 and time.Duration.
func Populate(v any, lookupEnv func(string) (string, bool)) error {
	ptrRef := reflect.ValueOf(v)
	if ptrRef.Kind() != reflect.Pointer {
		return fmt.Errorf("%w: not pointer: %v", ErrInvalidValue, v)
	}
	ref := ptrRef.Elem()
	if ref.Kind() != reflect.Struct {
		return fmt.Errorf("%w: not struct: %v", ErrInvalidValue, v)
	}

	var errs []error
	refType := ref.Type()
	for i := range refType.NumField() {
		field := refType.Field(i)
		name, ok := field.Tag.Lookup("env")
		if !ok {
			continue
		}
		value := ref.Field(i)
		if !value.CanSet() {
			errs = append(errs, fmt.Errorf("%w: cannot set field: %s", ErrInvalidValue, field.Name))
			continue
		}
		raw, err := lookupWithFallback(name, field.Tag, lookupEnv)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err = set(value, raw); err != nil {
			errs = append(errs, errors.Wrap(err, "set field",
				slog.String("field", field.Name), slog.String("env", name)))
		}
	}

	return errors.Join(errs...)
}

func set(value reflect.Value, raw string) error {
	if value.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		value.SetInt(int64(d))
		return nil
	}

	switch value.Kind() { //nolint:exhaustive // unsupported kinds handled by default.
	case reflect.String:
		value.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		value.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		value.SetBool(b)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		value.SetFloat(f)
	default:
		return fmt.Errorf("%w: unsupported type %s", ErrInvalidValue, value.Type())
	}
	return nil
}

func lookupWithFallback(name string, tag reflect.StructTag, lookupEnv func(string) (string, bool)) (string, error) {
	if v, ok := lookupEnv(name); ok {
		return v, nil
	}
	if v, ok := tag.Lookup("envDefault"); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrEnvNotSet, name)
}
