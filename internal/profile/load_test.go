package profile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `weapons:
  - name: ar
    defaultPull: 4.0
    initialDuration: 0.2
    steadyPull: 2.2
    sleepTime: 8
    acceleration: 200
  - name: smg
    curve: exponential
`

const tomlDoc = `[[weapons]]
name = "toml-ar"
defaultPull = 4.0
sleepTime = 8.0
`

const jsonDoc = `{"weapons": [{"name": "json-ar", "defaultPull": 3.5}, {"name": "json-smg"}]}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadPrimary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weapons.yaml", yamlDoc)
	writeFile(t, dir, "weapons.json", jsonDoc)

	set, err := Load(SourcesIn(dir)...)
	require.NoError(t, err)
	assert.Equal(t, []string{"ar", "smg"}, set.Names())
	assert.Equal(t, FormatYAML, set.Source().Format)
	assert.Equal(t, CurveExponential, set.At(1).CurveKind())
}

func TestLoadFallsBackWhenPrimaryCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weapons.yaml", "weapons: [this is: not valid")
	writeFile(t, dir, "weapons.json", jsonDoc)

	set, err := Load(SourcesIn(dir)...)
	require.NoError(t, err)
	assert.Equal(t, []string{"json-ar", "json-smg"}, set.Names())
	assert.Equal(t, 3.5, set.At(0).DefaultPull())
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weapons.toml", tomlDoc)

	set, err := Load(SourcesIn(dir)...)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "toml-ar", set.At(0).Name())
	assert.Equal(t, 4.0, set.At(0).DefaultPull())
}

func TestLoadAllFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weapons.yaml", "weapons:\n  - name: dup\n  - name: dup\n")
	writeFile(t, dir, "weapons.json", `{"weapons": [{"name": "x", "sleepTime": -4}]}`)

	_, err := Load(SourcesIn(dir)...)
	require.Error(t, err)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	require.Len(t, cerr.Failures, 3)
	assert.Contains(t, cerr.Failures[0].Error(), "duplicate")
	assert.True(t, errors.Is(cerr.Failures[1], fs.ErrNotExist))
	assert.Contains(t, cerr.Failures[2].Error(), "sleepTime")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("weapons:\n  - name: a\n    defualtPull: 3\n"), FormatYAML)
	assert.Error(t, err)
	_, err = Parse([]byte(`{"weapons":[{"name":"a","bogus":1}]}`), FormatJSON)
	assert.Error(t, err)
	_, err = Parse(nil, FormatYAML)
	assert.Error(t, err)
	_, err = Parse([]byte("weapons: []\n"), FormatYAML)
	assert.Error(t, err)
}

func TestMarshalSampleParsesBack(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		data, err := Marshal(Sample(), f)
		require.NoError(t, err, f)
		set, err := Parse(data, f)
		require.NoError(t, err, "%s:\n%s", f, data)
		assert.Equal(t, Sample(), set.Weapons(), f)
	}
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor("/x/weapons.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, src.Format)
	_, err = SourceFor("/x/weapons.ini")
	assert.Error(t, err)
}
