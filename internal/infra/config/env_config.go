package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct")

	// ErrVarNotSet is returned when a required environment variable is not set
	// and the field declares no default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned when an environment variable targets a
	// field of an unsupported Go type.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

// Parse loads configuration values from environment variables into the given
// struct. Fields carry `env` tags naming the variable and optional `default`
// tags; nested structs contribute an `envPrefix` tag. All variable names are
// prefixed with the given namespace, e.g. namespace "AXELSUB" and tag
// "SERVER_ADDR" read AXELSUB_SERVER_ADDR.
func Parse(cfg any, namespace string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidConfig
	}

	prefix := ""
	if namespace != "" {
		prefix = namespace + "_"
	}

	return parseStruct(prefix, cfg)
}

func parseStruct(prefix string, cfg any) error {
	var (
		t = reflect.TypeOf(cfg).Elem()
		v = reflect.ValueOf(cfg).Elem()
	)

	for i := range t.NumField() {
		field := t.Field(i)
		value := v.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := parseStruct(prefix+field.Tag.Get("envPrefix"), value.Addr().Interface()); err != nil {
				return err
			}

			continue
		}

		if err := parseField(prefix, field, value); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

func parseField(prefix string, field reflect.StructField, value reflect.Value) error {
	envTag := field.Tag.Get("env")
	if envTag == "" {
		return nil // Field is not bound to the environment
	}

	envValue, ok := os.LookupEnv(prefix + envTag)
	if !ok {
		defaultValue, hasDefault := field.Tag.Lookup("default")
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, prefix+envTag)
		}

		envValue = defaultValue
	}

	//nolint:exhaustive
	switch field.Type.Kind() {
	case reflect.String:
		value.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(envValue, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", envTag, err)
		}

		value.SetInt(intValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", envTag, err)
		}

		value.SetBool(boolValue)
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envTag, field.Type.Kind())
	}

	return nil
}
