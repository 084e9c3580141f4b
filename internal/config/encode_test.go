package config

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templatesOfLen(n int) []Template {
	out := make([]Template, 0, n)
	for i := range n {
		out = append(out, Template{Name: fmt.Sprintf("t%02d", i), Content: fmt.Sprintf("body %d\nline two", i)})
	}
	return out
}

func TestRoundTripV1Idempotent(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			first, err := Decode([]byte(letterV1JSON), FormatJSON)
			require.NoError(t, err)

			out1, err := Encode(first, f)
			require.NoError(t, err)
			second, err := Decode(out1, f)
			require.NoError(t, err)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("round trip changed config (-want +got):\n%s", diff)
			}

			out2, err := Encode(second, f)
			require.NoError(t, err)
			assert.Equal(t, string(out1), string(out2))

			rev, err := DetectRevision(out1, f)
			require.NoError(t, err)
			assert.Equal(t, RevisionV1, rev)
		})
	}
}

func TestEncodeV1OmitsName(t *testing.T) {
	cfg := Configuration{Version: 1, ExternalEditor: ExternalEditor{Command: "vim", Args: "{file}"}}
	out, err := Encode(cfg, FormatJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"name"`)
	assert.Contains(t, string(out), `"templates": []`)
}

func TestRoundTripV2PreservesName(t *testing.T) {
	names := []string{"Vim", "", "Visual Studio Code", "エディタ", "with \"quotes\" and = signs"}
	for _, f := range Formats {
		for _, name := range names {
			t.Run(fmt.Sprintf("%s/%q", f, name), func(t *testing.T) {
				cfg := Configuration{
					Version:        2,
					ExternalEditor: ExternalEditor{Name: name, Command: "code", Args: "--wait {file}"},
					Templates:      templatesOfLen(1),
				}
				out, err := Encode(cfg, f)
				require.NoError(t, err)
				got, err := Decode(out, f)
				require.NoError(t, err)
				assert.Equal(t, name, got.ExternalEditor.Name)
				assert.True(t, Equal(cfg, got))
			})
		}
	}
}

func TestTemplateOrderPreserved(t *testing.T) {
	for _, f := range Formats {
		for _, n := range []int{0, 1, 2, 7, 25} {
			t.Run(fmt.Sprintf("%s/%d", f, n), func(t *testing.T) {
				cfg := Configuration{
					Version:        2,
					ExternalEditor: ExternalEditor{Name: "Vim", Command: "vim"},
					Templates:      templatesOfLen(n),
				}
				out, err := Encode(cfg, f)
				require.NoError(t, err)
				got, err := Decode(out, f)
				require.NoError(t, err)
				require.Len(t, got.Templates, n)
				if diff := cmp.Diff(cfg.Templates, got.Templates); diff != "" {
					t.Fatalf("template order changed (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestUpgradeV1(t *testing.T) {
	v1, err := Decode([]byte(letterV1JSON), FormatJSON)
	require.NoError(t, err)

	up := Upgrade(v1)
	assert.Equal(t, int(CurrentRevision), up.Version)
	assert.Equal(t, v1.ExternalEditor.Command, up.ExternalEditor.Command)
	assert.Equal(t, v1.ExternalEditor.Args, up.ExternalEditor.Args)
	assert.Empty(t, up.ExternalEditor.Name)
	assert.Equal(t, v1.Templates, up.Templates)
	assert.Equal(t, 1, v1.Version, "upgrade must not mutate its input")

	out, err := Encode(up, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name": ""`)
}

func TestEncodeNameDropped(t *testing.T) {
	cfg := Configuration{Version: 2, ExternalEditor: ExternalEditor{Name: "Vim", Command: "vim"}}
	_, err := EncodeAs(cfg, RevisionV1, FormatTOML)
	require.ErrorIs(t, err, ErrNameDropped)
	assert.Equal(t, 2, cfg.Version)

	cfg.ExternalEditor.Name = ""
	out, err := EncodeAs(cfg, RevisionV1, FormatTOML)
	require.NoError(t, err)
	rev, err := DetectRevision(out, FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, RevisionV1, rev)
}

func TestEncodeUnsupportedVersion(t *testing.T) {
	_, err := Encode(Configuration{Version: 9, ExternalEditor: ExternalEditor{Command: "vim"}}, FormatJSON)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Encode(Configuration{Version: 2, ExternalEditor: ExternalEditor{Command: "vim"}}, Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRoundTripOpaqueContent(t *testing.T) {
	contents := []string{
		" leading\nx",
		"    code()\nnext",
		"\t\nx",
		"a\n\tb",
		"\n",
		"\n\n",
		"a\n ",
		"x\n\n\n",
		"trailing space \nx",
		"# not a comment\n- not a list\n",
		"Dear {name},\n\n\n\nBest regards,\n",
	}
	for _, f := range Formats {
		for _, content := range contents {
			t.Run(fmt.Sprintf("%s/%q", f, content), func(t *testing.T) {
				cfg := Configuration{
					Version:        2,
					ExternalEditor: ExternalEditor{Name: "Vim", Command: "vim"},
					Templates:      []Template{{Name: "body", Content: content}, {Name: "after", Content: "x"}},
				}
				out, err := Encode(cfg, f)
				require.NoError(t, err)
				got, err := Decode(out, f)
				require.NoError(t, err, string(out))
				if diff := cmp.Diff(cfg, got); diff != "" {
					t.Fatalf("round trip changed config (-want +got):\n%s\n%s", diff, out)
				}
			})
		}
	}
}

func TestEncodeYAMLLiteralBlocks(t *testing.T) {
	cfg := Configuration{
		Version:        2,
		ExternalEditor: ExternalEditor{Command: "vim"},
		Templates:      []Template{{Name: "Letter", Content: "Dear {name},\n\nBest regards,\n"}},
	}
	out, err := Encode(cfg, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "content: |\n")
	rev, err := DetectRevision(out, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, RevisionV2, rev)
}
