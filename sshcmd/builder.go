// Package sshcmd builds the ssh and scp command lines lsi executes.
// Centralizing flag construction keeps every remote invocation on the same
// security defaults: no host-key prompts, bounded connect latency, and an
// isolated known-hosts file.
package sshcmd

import (
	"fmt"
	"strings"
)

// EmptyHostnameError is returned when a host entry has no usable address
// for a connect or copy operation.
type EmptyHostnameError struct {
	Host string
}

func (e *EmptyHostnameError) Error() string {
	return fmt.Sprintf("empty hostname for host %q", e.Host)
}

// Builder assembles remote-execution command lines.
type Builder struct {
	knownHosts string
	paths      *PathCache
}

// NewBuilder creates a Builder writing host keys to knownHostsFile.
func NewBuilder(knownHostsFile string) *Builder {
	return &Builder{
		knownHosts: knownHostsFile,
		paths:      NewPathCache(),
	}
}

// prefix returns the binary path plus the uniform safety options.
func (b *Builder) prefix(binary string) ([]string, error) {
	path, err := b.paths.Lookup(binary)
	if err != nil {
		return nil, err
	}
	return []string{
		path,
		"-o", "StrictHostKeyChecking=no",
		"-o", "ConnectTimeout=5",
		"-o", fmt.Sprintf("UserKnownHostsFile=%s", b.knownHosts),
	}, nil
}

func target(hostname, username string) string {
	if username != "" {
		return username + "@" + hostname
	}
	return hostname
}

// Connect builds an interactive ssh invocation. When tunnelHost is given
// the command first connects to the tunnel and invokes ssh from there.
func (b *Builder) Connect(hostname, username, identityFile, tunnelHost string) (string, error) {
	return b.sshCommand(hostname, username, identityFile, tunnelHost, "")
}

// Run builds an ssh invocation that executes remoteCommand on the host
// non-interactively.
func (b *Builder) Run(hostname, username, identityFile, remoteCommand string) (string, error) {
	return b.sshCommand(hostname, username, identityFile, "", remoteCommand)
}

func (b *Builder) sshCommand(hostname, username, identityFile, tunnelHost, remoteCommand string) (string, error) {
	if strings.TrimSpace(hostname) == "" {
		return "", &EmptyHostnameError{Host: hostname}
	}
	parts, err := b.prefix("ssh")
	if err != nil {
		return "", err
	}
	if identityFile != "" {
		parts = append(parts, "-i", identityFile)
	}
	parts = append(parts, target(hostname, username))
	if remoteCommand != "" {
		parts = append(parts, Quote(remoteCommand))
	}
	command := strings.Join(parts, " ")
	if tunnelHost == "" {
		return command, nil
	}

	// Double hop: connect to the tunnel, re-invoke ssh from there.
	outer, err := b.prefix("ssh")
	if err != nil {
		return "", err
	}
	outer = append(outer, "-t")
	if identityFile != "" {
		outer = append(outer, "-i", identityFile)
	}
	outer = append(outer, target(tunnelHost, username), Quote(command))
	return strings.Join(outer, " "), nil
}

// Copy builds an scp invocation between localPath and remotePath on the
// host. download controls the direction: true copies remote to local.
func (b *Builder) Copy(hostname, username, identityFile string, download bool, localPath, remotePath string) (string, error) {
	if strings.TrimSpace(hostname) == "" {
		return "", &EmptyHostnameError{Host: hostname}
	}
	parts, err := b.prefix("scp")
	if err != nil {
		return "", err
	}
	if identityFile != "" {
		parts = append(parts, "-i", identityFile)
	}
	remote := fmt.Sprintf("%s:%s", target(hostname, username), remotePath)
	if download {
		parts = append(parts, remote, localPath)
	} else {
		parts = append(parts, localPath, remote)
	}
	return strings.Join(parts, " "), nil
}

// Quote shell-escapes s with single quotes so it survives one level of
// shell interpretation.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
