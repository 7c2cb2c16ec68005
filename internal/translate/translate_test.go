package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/preset"
)

const landingYAML = `name: landing
description: Generic landing page
root:
  attributes:
    lang: {expected: ru, severity: warning}
  children:
    title: {selector: title}
    form:
      selector: form
      many: true
      attributes:
        id: {expected: mForm}
        method: {choices: [POST], ignore_case: true}
      children:
        phone:
          selector: "input[name=phone]"
          required: false
          attributes: {type: {expected: tel}}
    inject_script:
      script_function: injectScript
      severity: warning
`

func rules(t *testing.T, data []byte, format preset.Format) *preset.Preset {
	t.Helper()
	f, err := preset.Decode(data, format)
	require.NoError(t, err, string(data))
	p, err := f.Compile("test")
	require.NoError(t, err)
	return p
}

func TestPreset_RoundTrip(t *testing.T) {
	want := rules(t, []byte(landingYAML), preset.FormatYAML)

	tomlData, err := Preset([]byte(landingYAML), preset.FormatYAML, preset.FormatTOML)
	require.NoError(t, err)
	assert.Contains(t, string(tomlData), "[root.children.form]")
	assert.Contains(t, string(tomlData), "injectScript")
	fromTOML := rules(t, tomlData, preset.FormatTOML)
	assert.Equal(t, want.Name, fromTOML.Name)
	assert.Equal(t, want.Description, fromTOML.Description)
	assert.Equal(t, want.Schema.Rules(), fromTOML.Schema.Rules())

	yamlData, err := Preset(tomlData, preset.FormatTOML, preset.FormatYAML)
	require.NoError(t, err)
	fromYAML := rules(t, yamlData, preset.FormatYAML)
	assert.Equal(t, want.Schema.Rules(), fromYAML.Schema.Rules())
}

func TestPreset_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "syntax", data: "root: [\n", want: "decoding YAML"},
		{name: "unknown key", data: "root:\n  children:\n    t: {selektor: title}\n", want: "selektor"},
		{name: "does not compile", data: "root:\n  children:\n    t: {many: true}\n", want: "needs a selector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Preset([]byte(tt.data), preset.FormatYAML, preset.FormatTOML)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	_, err := Encode(&preset.File{Name: "x"}, preset.Format("json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, preset.ErrUnsupportedFormat), "%v", err)
}
