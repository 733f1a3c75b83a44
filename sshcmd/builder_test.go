package sshcmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	b := NewBuilder("/home/u/.lsi-known-hosts")
	b.paths.lookup = func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}
	return b
}

func TestConnect_SafetyFlags(t *testing.T) {
	b := testBuilder()
	cmd, err := b.Connect("host.example.com", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/ssh "+
		"-o StrictHostKeyChecking=no "+
		"-o ConnectTimeout=5 "+
		"-o UserKnownHostsFile=/home/u/.lsi-known-hosts "+
		"host.example.com", cmd)
}

func TestConnect_UserAndIdentity(t *testing.T) {
	b := testBuilder()
	cmd, err := b.Connect("host.example.com", "ubuntu", "/home/u/.ssh/id", "")
	require.NoError(t, err)
	assert.Contains(t, cmd, "-i /home/u/.ssh/id")
	assert.Contains(t, cmd, "ubuntu@host.example.com")
}

func TestConnect_TunnelDoubleHop(t *testing.T) {
	b := testBuilder()
	cmd, err := b.Connect("inner.example.com", "ubuntu", "", "bastion.example.com")
	require.NoError(t, err)
	assert.Contains(t, cmd, "ubuntu@bastion.example.com")
	// The inner ssh command rides quoted inside the outer one.
	assert.Contains(t, cmd, "'/usr/bin/ssh")
	assert.Contains(t, cmd, "ubuntu@inner.example.com")
}

func TestConnect_EmptyHostname(t *testing.T) {
	b := testBuilder()
	_, err := b.Connect("  ", "", "", "")
	var ehe *EmptyHostnameError
	assert.True(t, errors.As(err, &ehe))
}

func TestRun_QuotesRemoteCommand(t *testing.T) {
	b := testBuilder()
	cmd, err := b.Run("host", "ubuntu", "", "echo 'it works'")
	require.NoError(t, err)
	assert.Contains(t, cmd, `'echo '\''it works'\'''`)
}

func TestCopy_Directions(t *testing.T) {
	b := testBuilder()

	up, err := b.Copy("host", "u", "", false, "/tmp/local", "/tmp/remote")
	require.NoError(t, err)
	assert.Contains(t, up, "/tmp/local u@host:/tmp/remote")

	down, err := b.Copy("host", "u", "", true, "/tmp/local", "/tmp/remote")
	require.NoError(t, err)
	assert.Contains(t, down, "u@host:/tmp/remote /tmp/local")
}

func TestCopy_EmptyHostname(t *testing.T) {
	b := testBuilder()
	_, err := b.Copy("", "u", "", true, "a", "b")
	var ehe *EmptyHostnameError
	assert.True(t, errors.As(err, &ehe))
}

func TestPathCache_Memoizes(t *testing.T) {
	calls := 0
	c := NewPathCache()
	c.lookup = func(name string) (string, error) {
		calls++
		return "/bin/" + name, nil
	}
	for i := 0; i < 3; i++ {
		path, err := c.Lookup("ssh")
		require.NoError(t, err)
		assert.Equal(t, "/bin/ssh", path)
	}
	assert.Equal(t, 1, calls)
}

func TestPathCache_LookupFailure(t *testing.T) {
	c := NewPathCache()
	c.lookup = func(name string) (string, error) {
		return "", fmt.Errorf("not found")
	}
	_, err := c.Lookup("nope")
	assert.Error(t, err)
}
