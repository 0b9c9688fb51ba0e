package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// AttributeMap is a generic attribute form of a config, as read from JSON or YAML.
type AttributeMap map[string]interface{}

// lenientScalars converts between strings and numbers so that hand-written files may quote numbers or leave
// numeric expressions unquoted.
func lenientScalars(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from == to {
		return data, nil
	}
	switch to.Kind() {
	case reflect.String:
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return cast.ToStringE(data)
		default:
		}
	case reflect.Float32, reflect.Float64:
		if from.Kind() == reflect.String {
			return cast.ToFloat64E(strings.TrimSpace(reflect.ValueOf(data).String()))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if from.Kind() == reflect.String {
			return cast.ToIntE(strings.TrimSpace(reflect.ValueOf(data).String()))
		}
	default:
	}
	return data, nil
}

// DecodeAttributes decodes attributes into a new T using its json tag names. Unknown keys are an error.
func DecodeAttributes[T any](attributes AttributeMap) (*T, error) {
	out := new(T)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      out,
		DecodeHook:  lenientScalars,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return nil, errors.Wrapf(err, "decoding %T", out)
	}
	return out, nil
}

// ReadAttributesFile reads a JSON (.json) or YAML (.yaml, .yml) file whose top level is a mapping.
func ReadAttributesFile(path string) (AttributeMap, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, errors.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	attrs, err := AssertType[map[string]interface{}](raw)
	if err != nil {
		return nil, errors.Wrapf(err, "top level of %s", path)
	}
	return attrs, nil
}
