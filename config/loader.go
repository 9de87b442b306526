package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "SLIDEZONE"

var durationType = reflect.TypeOf(time.Duration(0))

// loadFile decodes a YAML or JSON file, chosen by extension, into cfg.
// Fields absent from the file keep their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
	return nil
}

// UnmarshalJSON accepts the timeout either as a duration string such as
// "30s", matching the YAML form, or as integer nanoseconds.
func (a *AnalysisConfig) UnmarshalJSON(data []byte) error {
	type plain AnalysisConfig
	aux := struct {
		*plain
		Timeout json.RawMessage `json:"timeout"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Timeout) == 0 || string(aux.Timeout) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(aux.Timeout, &s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("analysis.timeout: %w", err)
		}
		a.Timeout = d
		return nil
	}
	var n int64
	if err := json.Unmarshal(aux.Timeout, &n); err != nil {
		return fmt.Errorf("analysis.timeout: want a duration string or nanoseconds, got %s", aux.Timeout)
	}
	a.Timeout = time.Duration(n)
	return nil
}

// loadEnv overrides cfg from environment variables. A field's variable name
// is EnvPrefix followed by the yaml names along its path, upper-cased and
// joined with "_", e.g. SLIDEZONE_VIDEO_ZONE_OFFSET_X. Empty variables are
// ignored.
func loadEnv(cfg *Config, lookup func(string) (string, bool)) error {
	return loadEnvStruct(reflect.ValueOf(cfg).Elem(), EnvPrefix, lookup)
}

func loadEnvStruct(v reflect.Value, prefix string, lookup func(string) (string, bool)) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)
		if !field.CanSet() {
			continue
		}

		name := envName(sf)
		if name == "-" {
			continue
		}
		key := prefix + "_" + name

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := loadEnvStruct(field, key, lookup); err != nil {
				return err
			}
			continue
		}

		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		if err := setFromString(field, value); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", sf.Name, key, err)
		}
	}
	return nil
}

// envName returns the upper-cased name a field contributes to an
// environment variable: its env tag, else its yaml name, else its Go name.
func envName(sf reflect.StructField) string {
	if tag := sf.Tag.Get("env"); tag != "" {
		return tag
	}
	if tag := sf.Tag.Get("yaml"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return strings.ToUpper(name)
		}
	}
	return strings.ToUpper(sf.Name)
}

func setFromString(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value: %s", value)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool value: %s", value)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int value: %s", value)
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		parts := strings.Split(value, string(os.PathListSeparator))
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
	return nil
}
