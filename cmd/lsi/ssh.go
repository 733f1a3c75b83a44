package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lsi-dev/lsi/config"
	"github.com/lsi-dev/lsi/hosts"
	"github.com/lsi-dev/lsi/profile"
	"github.com/lsi-dev/lsi/render"
	"github.com/lsi-dev/lsi/session"
	"github.com/lsi-dev/lsi/sshcmd"
	"github.com/lsi-dev/lsi/storage"
	"github.com/lsi-dev/lsi/stream"
)

// runSSH dispatches the ssh mode: a single match connects (or runs the
// command) directly, multiple matches go through the interactive session.
func runSSH(ctx context.Context, cfg *config.Config, prof *profile.Profile, entries []hosts.Entry) error {
	if len(entries) == 0 {
		return session.ErrNoEntries
	}
	builder := sshcmd.NewBuilder(cfg.KnownHostsPath)

	if prof.Command != "" && (len(entries) == 1 || prof.NoPrompt) {
		if !prof.NoPrompt && !confirm(fmt.Sprintf("Run %q on %d host(s)?", prof.Command, len(entries))) {
			return nil
		}
		return runOnHosts(ctx, cfg, builder, entries, prof.Username, prof.IdentityFile, prof.Command)
	}
	if len(entries) == 1 {
		return connect(builder, &entries[0], prof.Username, prof.IdentityFile)
	}

	s := session.New(entries, os.Stdout)
	s.Username = prof.Username
	s.IdentityFile = prof.IdentityFile
	s.Command = prof.Command
	s.NoPrompt = prof.NoPrompt
	s.SortKey = flagSortBy
	s.Columns = flagShow
	s.Only = flagOnly
	s.Limit = flagLimit
	s.Include = prof.Filters
	s.Exclude = prof.Exclude
	s.ProfilePath = cfg.ProfilePath

	reader, err := newReadlineReader()
	if err != nil {
		return err
	}
	defer reader.Close()

	action, err := s.Run(reader)
	if err != nil {
		return err
	}
	switch action.Kind {
	case session.ActionConnect:
		return connect(builder, &s.Entries[action.Choice], s.Username, expandPath(s.IdentityFile))
	case session.ActionExecute:
		if !s.NoPrompt && !confirm(fmt.Sprintf("Run %q on %d host(s)?", s.Command, len(s.Entries))) {
			return nil
		}
		return runOnHosts(ctx, cfg, builder, s.Entries, s.Username, expandPath(s.IdentityFile), s.Command)
	}
	return nil
}

// connect replaces lsi's foreground with an interactive ssh to the entry.
// The ssh exit status becomes our exit status.
func connect(builder *sshcmd.Builder, e *hosts.Entry, username, identityFile string) error {
	cmdline, err := builder.Connect(e.Address(), username, identityFile, flagTunnel)
	if err != nil {
		return err
	}
	fmt.Printf("Connecting to %s...\n", render.Cyan(e.Display()))
	log.Debug().Str("command", cmdline).Msg("launching ssh")

	cmd := exec.Command("/bin/sh", "-c", cmdline)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return err
	}
	return nil
}

// runOnHosts runs one remote command per entry, streaming labeled output.
// Entries without a reachable hostname are skipped with a warning.
func runOnHosts(ctx context.Context, cfg *config.Config, builder *sshcmd.Builder, entries []hosts.Entry, username, identityFile, command string) error {
	tasks := make([]stream.Task, 0, len(entries))
	names := make([]string, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		cmdline, err := builder.Run(e.Address(), username, identityFile, command)
		if err != nil {
			var emptyErr *sshcmd.EmptyHostnameError
			if errors.As(err, &emptyErr) {
				log.Warn().Str("entry", e.Display()).Msg("skipping entry without a hostname")
				continue
			}
			return err
		}
		tasks = append(tasks, stream.Task{Command: cmdline, Label: e.Display()})
		names = append(names, e.Display())
	}
	if len(tasks) == 0 {
		return errors.New("no entries with a reachable hostname")
	}

	codes, runErr := stream.New(os.Stdout).RunMany(ctx, tasks, !flagSerial)
	recordRun(cfg, command, !flagSerial, names[:len(codes)], codes)
	return finishRun(codes, runErr)
}

// runCopy transfers a file to or from every entry. Downloads render the
// local path template per entry and refuse templates that collide.
func runCopy(ctx context.Context, cfg *config.Config, prof *profile.Profile, entries []hosts.Entry, download bool, paths []string) error {
	if len(paths) != 2 {
		return errors.New("--get and --put take exactly two values: source then destination")
	}
	if len(entries) == 0 {
		return session.ErrNoEntries
	}
	builder := sshcmd.NewBuilder(cfg.KnownHostsPath)

	tasks := make([]stream.Task, 0, len(entries))
	names := make([]string, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for i := range entries {
		e := &entries[i]
		var local, remote string
		if download {
			remote = paths[0]
			rendered, err := e.FormatString(paths[1])
			if err != nil {
				return err
			}
			if prev, ok := seen[rendered]; ok {
				return fmt.Errorf("local path %q is produced by both %s and %s; add {name} or another attribute to the destination", rendered, prev, e.Display())
			}
			seen[rendered] = e.Display()
			if dir := filepath.Dir(rendered); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
			local = rendered
		} else {
			local = paths[0]
			remote = paths[1]
		}
		cmdline, err := builder.Copy(e.Address(), prof.Username, prof.IdentityFile, download, local, remote)
		if err != nil {
			var emptyErr *sshcmd.EmptyHostnameError
			if errors.As(err, &emptyErr) {
				log.Warn().Str("entry", e.Display()).Msg("skipping entry without a hostname")
				continue
			}
			return err
		}
		tasks = append(tasks, stream.Task{Command: cmdline, Label: e.Display()})
		names = append(names, e.Display())
	}
	if len(tasks) == 0 {
		return errors.New("no entries with a reachable hostname")
	}

	verb := "put"
	if download {
		verb = "get"
	}
	codes, runErr := stream.New(os.Stdout).RunMany(ctx, tasks, !flagSerial)
	recordRun(cfg, fmt.Sprintf("%s %s %s", verb, paths[0], paths[1]), !flagSerial, names[:len(codes)], codes)
	return finishRun(codes, runErr)
}

func finishRun(codes []int, runErr error) error {
	if runErr != nil {
		return runErr
	}
	failed := 0
	for _, code := range codes {
		if code != 0 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(codes))
	}
	fmt.Println(render.Green("All commands finished."))
	return nil
}

// recordRun appends the batch outcome to the local history database.
// History failures never fail the run itself.
func recordRun(cfg *config.Config, command string, parallel bool, hostNames []string, codes []int) {
	h, err := storage.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn().Err(err).Msg("could not open history database")
		return
	}
	defer h.Close()
	rec := storage.RunRecord{
		Time:      time.Now(),
		Command:   command,
		Parallel:  parallel,
		Hosts:     hostNames,
		ExitCodes: codes,
	}
	if err := h.Record(rec); err != nil {
		log.Warn().Err(err).Msg("could not record run history")
	}
}

// confirm asks a y/N question on stdin.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
