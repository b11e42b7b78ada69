package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

// Codec serializes and deserializes one body format.
type Codec interface {
	// ContentType returns the MIME type written when a request body is
	// serialized with this codec.
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default codec, always available.
var JSON Codec = jsonCodec{}

// YAML is the optional YAML codec.
var YAML Codec = yamlCodec{}

// Form encodes url.Values as application/x-www-form-urlencoded.
var Form Codec = formCodec{}

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return newDecodeError("json", err)
	}
	return nil
}

type yamlCodec struct{}

func (yamlCodec) ContentType() string { return "application/yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return data, nil
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	err := yaml.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	de := &DecodeError{
		Format: "yaml",
		Offset: -1,
		Err:    err,
	}

	// yaml.TypeError carries per-field messages rather than offsets.
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		de.Field = typeErr.Errors[0]
	}

	return de
}

type formCodec struct{}

func (formCodec) ContentType() string { return "application/x-www-form-urlencoded" }

func (formCodec) Marshal(v any) ([]byte, error) {
	switch form := v.(type) {
	case url.Values:
		return []byte(form.Encode()), nil
	case map[string][]string:
		return []byte(url.Values(form).Encode()), nil
	case map[string]string:
		values := make(url.Values, len(form))
		for k, val := range form {
			values.Set(k, val)
		}
		return []byte(values.Encode()), nil
	default:
		return nil, fmt.Errorf("marshal form: unsupported type %T (want url.Values or map)", v)
	}
}

func (formCodec) Unmarshal(data []byte, v any) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return &DecodeError{Format: "form", Offset: -1, Err: err}
	}

	switch out := v.(type) {
	case *url.Values:
		*out = values
	case *map[string][]string:
		*out = values
	case *map[string]string:
		flat := make(map[string]string, len(values))
		for k := range values {
			flat[k] = values.Get(k)
		}
		*out = flat
	default:
		return &DecodeError{
			Format: "form",
			Offset: -1,
			Err:    fmt.Errorf("unsupported target type %T (want *url.Values or *map)", v),
		}
	}
	return nil
}
