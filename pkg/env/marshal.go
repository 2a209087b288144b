package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MarshalEnv renders the env-tagged fields of one or more config structs as
// .env content. Nested structs are walked; zero values are left out so the
// envDefault tags keep applying on the next load.
func MarshalEnv(configs ...any) (string, error) {
	values := make(map[string]string)
	for _, c := range configs {
		v := reflect.ValueOf(c)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return "", fmt.Errorf("marshal env: nil %T", c)
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return "", fmt.Errorf("marshal env: expected struct, got %T", c)
		}
		collect(v, values)
	}

	if len(values) == 0 {
		return "", nil
	}

	out, err := godotenv.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal env: %w", err)
	}
	return out + "\n", nil
}

func collect(v reflect.Value, values map[string]string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		val := v.Field(i)
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")

		if key == "" {
			if val.Kind() == reflect.Struct {
				collect(val, values)
			}
			continue
		}
		if val.IsZero() {
			continue
		}
		values[key] = formatValue(val)
	}
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
