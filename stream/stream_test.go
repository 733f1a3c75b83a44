package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	text.DisableColors()
}

func TestRunOne_LabelsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	code, err := s.RunOne(context.Background(), Task{
		Command: "printf 'one\\ntwo\\n'",
		Label:   "web-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[web-1]: one\n[web-1]: two\n", buf.String())
}

func TestRunOne_SkipsBlankAndNoiseLines(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	code, err := s.RunOne(context.Background(), Task{
		Command: `printf 'real\n\nKilled by signal 1.\nWarning: Permanently added host to the list of known hosts.\n'`,
		Label:   "h",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[h]: real\n", buf.String())
}

func TestRunOne_WritesStdin(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	code, err := s.RunOne(context.Background(), Task{
		Command: "cat",
		Label:   "h",
		Stdin:   []byte("from stdin\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[h]: from stdin\n", buf.String())
}

func TestRunOne_NonZeroExit(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	code, err := s.RunOne(context.Background(), Task{Command: "exit 3", Label: "h"})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunOne_LaunchFailure(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	s.shell = "/nonexistent/shell"

	_, err := s.RunOne(context.Background(), Task{Command: "true", Label: "h"})
	var ple *ProcessLaunchError
	require.True(t, errors.As(err, &ple))
	assert.Equal(t, "true", ple.Command)
}

func TestRunMany_SequentialCodesAndOrdering(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	tasks := []Task{
		{Command: "printf 'a1\\na2\\n'", Label: "t1"},
		{Command: "printf 'b1\\n'; exit 1", Label: "t2"},
		{Command: "printf 'c1\\n'", Label: "t3"},
	}
	codes, err := s.RunMany(context.Background(), tasks, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, codes)

	out := buf.String()
	// Task 1's output fully precedes task 2's.
	assert.Less(t, strings.Index(out, "[t1]: a2"), strings.Index(out, "[t2]: b1"))
	assert.Less(t, strings.Index(out, "[t2]: b1"), strings.Index(out, "[t3]: c1"))
}

func TestRunMany_SequentialLaunchFailureAbortsRest(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	s.shell = "/nonexistent/shell"

	tasks := []Task{
		{Command: "true", Label: "t1"},
		{Command: "true", Label: "t2"},
	}
	codes, err := s.RunMany(context.Background(), tasks, false)
	var ple *ProcessLaunchError
	require.True(t, errors.As(err, &ple))
	assert.Len(t, codes, 1)
}

func TestRunMany_ParallelCollectsAllCodes(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	tasks := []Task{
		{Command: "exit 0", Label: "t1"},
		{Command: "exit 2", Label: "t2"},
		{Command: "exit 0", Label: "t3"},
	}
	codes, err := s.RunMany(context.Background(), tasks, true)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 0}, codes)
}

func TestRunMany_ParallelLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	tasks := []Task{
		{Command: "printf 'x1\\nx2\\nx3\\n'", Label: "t1"},
		{Command: "printf 'y1\\ny2\\ny3\\n'", Label: "t2"},
	}
	_, err := s.RunMany(context.Background(), tasks, true)
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		ok := strings.HasPrefix(line, "[t1]: x") || strings.HasPrefix(line, "[t2]: y")
		assert.True(t, ok, "interleaved mid-line: %q", line)
	}
}

func TestRunOne_OversizedLineReturnsError(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	var code int
	var err error
	done := make(chan struct{})
	go func() {
		code, err = s.RunOne(context.Background(), Task{
			Command: "head -c 2097152 /dev/zero | tr '\\0' a",
			Label:   "big",
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("RunOne did not return on an oversized output line")
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Equal(t, -1, code)
}
