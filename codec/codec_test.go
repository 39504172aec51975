package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Name    string   `json:"name" yaml:"name"`
	Value   int      `json:"value" yaml:"value"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Comment *string  `json:"comment,omitempty" yaml:"comment,omitempty"`
}

func TestCodecs(t *testing.T) {
	note := "note"
	in := credentials{Name: "GitHub perso", Value: 42, Tags: []string{"work", "git"}, Comment: &note}

	for _, c := range []Codec{JSON{}, JSON{Indent: "  "}, YAML{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out credentials
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestJSON_Output(t *testing.T) {
	data, err := JSON{}.Marshal(map[string]int{"value": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"value":1}`, string(data))

	data, err = JSON{Indent: "  "}.Marshal(map[string]int{"value": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"value\": 1\n}", string(data))
}

func TestYAML_Output(t *testing.T) {
	data, err := YAML{}.Marshal(map[string]any{"name": "x", "value": 1})
	require.NoError(t, err)
	assert.Equal(t, "name: x\nvalue: 1\n", string(data))
}

func TestUnmarshal_Errors(t *testing.T) {
	var out credentials
	assert.Error(t, JSON{}.Unmarshal([]byte("{not json"), &out))
	assert.Error(t, YAML{}.Unmarshal([]byte("name: [unterminated"), &out))
}

func TestJSON_UseNumber(t *testing.T) {
	input := []byte(`{"id": 12345678901234567891, "port": 9007199254740993}`)

	var doc any
	require.NoError(t, JSON{UseNumber: true}.Unmarshal(input, &doc))
	assert.Equal(t, json.Number("12345678901234567891"), doc.(map[string]any)["id"])

	out, err := JSON{}.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"id":12345678901234567891,"port":9007199254740993}`, string(out))

	var typed struct {
		Port uint64 `json:"port"`
	}
	require.NoError(t, JSON{UseNumber: true}.Unmarshal(input, &typed))
	assert.Equal(t, uint64(9007199254740993), typed.Port)

	assert.Error(t, JSON{UseNumber: true}.Unmarshal([]byte(`{"a":1} {"b":2}`), &doc))
	assert.Error(t, JSON{UseNumber: true}.Unmarshal([]byte(`{"a":`), &doc))
}

func TestJSON_MarshalUnsupported(t *testing.T) {
	_, err := JSON{}.Marshal(make(chan int))
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "json", false},
		{"json", "json", false},
		{"JSON", "json", false},
		{"yaml", "yaml", false},
		{"yml", "yaml", false},
		{"toml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}
