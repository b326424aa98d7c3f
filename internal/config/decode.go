package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	policyType   = reflect.TypeOf(domain.UpdatePolicy(0))
)

// Unmarshal parses a YAML, JSON or TOML document, picked by the extension of
// path, into a generic map. Unknown extensions are read as YAML.
func Unmarshal(path string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return raw, nil
}

// Decode maps a generic document onto out, which must be a pointer.
// Durations accept "1.5s" strings or plain numbers of seconds; update
// policies accept their names. Unknown keys are rejected.
func Decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			secondsToDurationHook,
			stringToPolicyHook,
		),
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func secondsToDurationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

func stringToPolicyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != policyType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.ParseUpdatePolicy(data.(string))
}
