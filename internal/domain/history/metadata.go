package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
)

var errNotMapping = errors.New("metadata is not a mapping")

// RepairMetadata turns stored metadata text into a mapping. Strict JSON is
// tried first, then JSON with comments and trailing commas, then a literal
// dict with single quotes and True/None, and finally a YAML flow mapping,
// which accepts unquoted keys. Empty input is an empty mapping.
func RepairMetadata(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" || trimmed == "None" {
		return map[string]any{}, nil
	}

	var lastErr error
	attempts := []func(string) (any, error){
		decodeJSON,
		decodeJSONC,
		citation.ParseLiteral,
		decodeYAML,
	}
	for _, attempt := range attempts {
		value, err := attempt(trimmed)
		if err != nil {
			lastErr = err
			continue
		}
		mapping, ok := value.(map[string]any)
		if !ok {
			return nil, errNotMapping
		}
		return mapping, nil
	}
	return nil, lastErr
}

func decodeJSON(raw string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return normalizeNumbers(value), nil
}

func decodeJSONC(raw string) (any, error) {
	stripped := jsonc.ToJSON([]byte(raw))
	if bytes.Equal(bytes.TrimSpace(stripped), []byte(raw)) {
		return nil, errors.New("no comments or trailing commas to strip")
	}
	return decodeJSON(string(stripped))
}

func decodeYAML(raw string) (any, error) {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// normalizeNumbers converts json.Number into int64 or float64 so repaired
// metadata looks the same whichever decoder produced it.
func normalizeNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		for key, item := range v {
			v[key] = normalizeNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalizeNumbers(item)
		}
		return v
	default:
		return value
	}
}
