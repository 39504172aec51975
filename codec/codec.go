// Package codec converts values to and from the plaintext bytes a vault
// encrypts. The vault depends only on the Codec interface, so callers may
// plug in their own encoding.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec turns a value into bytes and back.
type Codec interface {
	// Name identifies the codec, e.g. "json".
	Name() string
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into v, which must be a non-nil pointer.
	Unmarshal(data []byte, v any) error
}

// JSON encodes values with encoding/json. Indent, when non-empty, produces
// human readable output. UseNumber decodes numbers held in interface values
// as json.Number, so integers beyond 2^53 keep every digit.
type JSON struct {
	Indent    string
	UseNumber bool
}

func (JSON) Name() string { return "json" }

func (c JSON) Marshal(v any) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(v, "", c.Indent)
	}
	return json.Marshal(v)
}

func (c JSON) Unmarshal(data []byte, v any) error {
	if !c.UseNumber {
		return json.Unmarshal(data, v)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid character after top-level value")
	}
	return nil
}

// YAML encodes values with gopkg.in/yaml.v3.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (supported: json, yaml)", name)
	}
}
