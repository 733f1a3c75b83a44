package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".lsi")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const sampleProfiles = `
[default]
username = deploy
filters = running

[base]
username = ubuntu
identity file = /home/u/.ssh/base.pem
filters = web,prod

[child]
inherit = base
username = admin
filters = east
command = uptime
`

func TestLoad_NamedSection(t *testing.T) {
	path := writeProfileFile(t, sampleProfiles)
	p, err := Load(path, "base")
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", p.Username)
	assert.Equal(t, "/home/u/.ssh/base.pem", p.IdentityFile)
	assert.Equal(t, []string{"web", "prod"}, p.Filters)
}

func TestLoad_EmptyNameUsesDefaultSection(t *testing.T) {
	path := writeProfileFile(t, sampleProfiles)
	p, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "deploy", p.Username)
}

func TestLoad_EmptyNameNoDefault(t *testing.T) {
	path := writeProfileFile(t, "[only]\nusername = x\n")
	p, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "", p.Username)
}

func TestLoad_InheritMerges(t *testing.T) {
	path := writeProfileFile(t, sampleProfiles)
	p, err := Load(path, "child")
	require.NoError(t, err)
	// Child scalars win, parent scalars survive where the child is silent.
	assert.Equal(t, "admin", p.Username)
	assert.Equal(t, "/home/u/.ssh/base.pem", p.IdentityFile)
	assert.Equal(t, "uptime", p.Command)
	// Lists extend.
	assert.Equal(t, []string{"web", "prod", "east"}, p.Filters)
}

func TestLoad_MissingSection(t *testing.T) {
	path := writeProfileFile(t, sampleProfiles)
	_, err := Load(path, "nope")
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "nope", le.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")

	p, err := Load(missing, "")
	require.NoError(t, err)
	assert.Equal(t, &Profile{}, p)

	_, err = Load(missing, "prod")
	var le *LoadError
	assert.True(t, errors.As(err, &le))
}

func TestLoad_InheritCycle(t *testing.T) {
	path := writeProfileFile(t, "[a]\ninherit = b\n\n[b]\ninherit = a\n")
	_, err := Load(path, "a")
	assert.Error(t, err)
}

func TestOverride(t *testing.T) {
	p := &Profile{Username: "ubuntu", Filters: []string{"web"}}
	p.Override("", "/id", "uptime", []string{"prod"}, []string{"batch"})
	assert.Equal(t, "ubuntu", p.Username)
	assert.Equal(t, "/id", p.IdentityFile)
	assert.Equal(t, "uptime", p.Command)
	assert.Equal(t, []string{"web", "prod"}, p.Filters)
	assert.Equal(t, []string{"batch"}, p.Exclude)
}
