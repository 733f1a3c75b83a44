// Package stream executes external commands and multiplexes their output
// onto a single console stream, one labeled line at a time.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lsi-dev/lsi/render"
)

// Task is one queued remote command execution bound to one host.
type Task struct {
	Command string // resolved command line, run through the shell
	Label   string // human-readable label prefixed to every output line
	Stdin   []byte // optional bytes fed to the task's stdin
}

// ProcessLaunchError is returned when a task's process cannot be started.
type ProcessLaunchError struct {
	Command string
	Err     error
}

func (e *ProcessLaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Command, e.Err)
}

func (e *ProcessLaunchError) Unwrap() error { return e.Err }

// noisePatterns are ssh chatter suppressed from streamed output.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)killed by signal 1`),
	regexp.MustCompile(`(?i)permanently added .* known hosts`),
}

// Streamer runs tasks and writes their labeled output. The shared writer
// is mutex-guarded so concurrent tasks interleave at line granularity,
// never mid-line.
type Streamer struct {
	mu    sync.Mutex
	out   io.Writer
	shell string
}

// New creates a Streamer writing to out.
func New(out io.Writer) *Streamer {
	return &Streamer{out: out, shell: "/bin/sh"}
}

func (s *Streamer) writeLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, line)
}

// RunOne launches the task's command, streams its merged stdout/stderr
// line by line with the colorized label prefix, and returns the exit
// code. Blank lines and known ssh noise are dropped.
func (s *Streamer) RunOne(ctx context.Context, task Task) (int, error) {
	cmd := exec.CommandContext(ctx, s.shell, "-c", task.Command)
	if task.Stdin != nil {
		cmd.Stdin = bytes.NewReader(task.Stdin)
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return -1, &ProcessLaunchError{Command: task.Command, Err: err}
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		waitErr <- err
	}()

	label := render.Colorize(task.Label)
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || isNoise(line) {
			continue
		}
		s.writeLine(fmt.Sprintf("[%s]: %s", label, line))
	}
	if scanErr := scanner.Err(); scanErr != nil {
		// Keep draining the pipe so the process is never blocked writing
		// to it; otherwise Wait would not return.
		io.Copy(io.Discard, pr)
		<-waitErr
		return -1, fmt.Errorf("reading output of %q: %w", task.Command, scanErr)
	}

	err := <-waitErr
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}

// RunMany executes the tasks either strictly one after another or with
// one concurrent worker per task, returning per-task exit codes so the
// caller can report which hosts failed. In sequential mode a launch
// failure aborts the remaining tasks, since the same binary would fail
// again immediately. In parallel mode siblings run to completion
// regardless of individual failures.
func (s *Streamer) RunMany(ctx context.Context, tasks []Task, parallel bool) ([]int, error) {
	codes := make([]int, len(tasks))

	if !parallel {
		for i, task := range tasks {
			code, err := s.RunOne(ctx, task)
			codes[i] = code
			if err != nil {
				return codes[:i+1], err
			}
		}
		return codes, nil
	}

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			code, err := s.RunOne(ctx, task)
			codes[i] = code
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return codes, err
	}
	return codes, nil
}

func isNoise(line string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
