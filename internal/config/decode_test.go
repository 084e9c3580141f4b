package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const letterV1JSON = `{"version":1,"external_editor":{"command":"vim","args":"{file}"},"templates":[{"name":"Letter","content":"Dear {name},"}]}`

func TestDecodeLetterV1(t *testing.T) {
	cfg, err := Decode([]byte(letterV1JSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "vim", cfg.ExternalEditor.Command)
	assert.Equal(t, "{file}", cfg.ExternalEditor.Args)
	assert.Empty(t, cfg.ExternalEditor.Name)
	require.Len(t, cfg.Templates, 1)
	assert.Equal(t, Template{Name: "Letter", Content: "Dear {name},"}, cfg.Templates[0])
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{
			name:   "json",
			format: FormatJSON,
			data:   `{"version":2,"external_editor":{"name":"Code","command":"code","args":"-w"},"templates":[{"name":"a","content":"x"}]}`,
		},
		{
			name:   "yaml",
			format: FormatYAML,
			data: `version: 2
external_editor:
  name: Code
  command: code
  args: -w
templates:
  - name: a
    content: x
`,
		},
		{
			name:   "toml",
			format: FormatTOML,
			data: `version = 2

[external_editor]
name = "Code"
command = "code"
args = "-w"

[[templates]]
name = "a"
content = "x"
`,
		},
	}
	want := Configuration{
		Version:        2,
		ExternalEditor: ExternalEditor{Name: "Code", Command: "code", Args: "-w"},
		Templates:      []Template{{Name: "a", Content: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestDecodeRevisionDispatch(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantRev  Revision
		wantName string
	}{
		{name: "explicit v1", data: `{"version":1,"external_editor":{"command":"vim","args":""}}`, wantRev: RevisionV1},
		{name: "explicit v2 with name", data: `{"version":2,"external_editor":{"name":"Vim","command":"vim","args":""}}`, wantRev: RevisionV2, wantName: "Vim"},
		{name: "explicit v2 without name", data: `{"version":2,"external_editor":{"command":"vim","args":""}}`, wantRev: RevisionV2},
		{name: "v1 with name keeps it", data: `{"version":1,"external_editor":{"name":"Vim","command":"vim","args":""}}`, wantRev: RevisionV1, wantName: "Vim"},
		{name: "missing version without name", data: `{"external_editor":{"command":"vim"}}`, wantRev: RevisionV1},
		{name: "zero version with name", data: `{"version":0,"external_editor":{"name":"Vim","command":"vim"}}`, wantRev: RevisionV2, wantName: "Vim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev, err := DetectRevision([]byte(tt.data), FormatJSON)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRev, rev)

			cfg, err := Decode([]byte(tt.data), FormatJSON)
			require.NoError(t, err)
			assert.Equal(t, int(tt.wantRev), cfg.Version)
			assert.Equal(t, tt.wantName, cfg.ExternalEditor.Name)
			assert.NotNil(t, cfg.Templates)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name      string
		format    Format
		data      string
		wantField string
	}{
		{name: "missing editor", format: FormatJSON, data: `{"version":1,"templates":[]}`, wantField: "external_editor"},
		{name: "missing command", format: FormatJSON, data: `{"version":2,"external_editor":{"name":"Vim","args":""}}`, wantField: "external_editor.command"},
		{name: "missing template content", format: FormatJSON, data: `{"version":1,"external_editor":{"command":"vim"},"templates":[{"name":"a","content":"x"},{"name":"b"}]}`, wantField: "templates[1].content"},
		{name: "missing command yaml", format: FormatYAML, data: "version: 1\nexternal_editor:\n  args: x\n", wantField: "external_editor.command"},
		{name: "missing content toml", format: FormatTOML, data: "version = 1\n[external_editor]\ncommand = \"vim\"\n[[templates]]\nname = \"a\"\n", wantField: "templates[0].content"},
		{name: "syntax error", format: FormatJSON, data: `{"version":`},
		{name: "wrong type", format: FormatJSON, data: `{"version":"two","external_editor":{"command":"vim"}}`},
		{name: "command not a string", format: FormatYAML, data: "external_editor:\n  command: [a, b]\n"},
		{name: "empty json", format: FormatJSON, data: "  \n"},
		{name: "empty yaml", format: FormatYAML, data: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedConfig)
			assert.NotErrorIs(t, err, ErrUnsupportedVersion)

			if tt.wantField != "" {
				var mErr *MalformedConfigError
				require.True(t, errors.As(err, &mErr))
				assert.Equal(t, tt.wantField, mErr.Field)
			}
		})
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	for _, v := range []string{"3", "42", "-1"} {
		t.Run(v, func(t *testing.T) {
			data := []byte(`{"version":` + v + `,"external_editor":{"name":"x","command":"vim","args":""}}`)
			_, err := Decode(data, FormatJSON)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedVersion)

			var vErr *UnsupportedVersionError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, err.Error(), "supported: 1..2")
		})
	}
}

func TestDecodeEmptyCommandParsesButIsInvalid(t *testing.T) {
	cfg, err := Decode([]byte(`{"version":2,"external_editor":{"name":"","command":"","args":""},"templates":[]}`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cfg.ExternalEditor.Command)

	res := Validate(cfg)
	assert.False(t, res.Valid())
	require.ErrorIs(t, res.Err(), ErrInvalidConfig)
	assert.Equal(t, "external_editor.command", res.Errors()[0].Field)
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := Decode([]byte(letterV1JSON), Format("ini"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
