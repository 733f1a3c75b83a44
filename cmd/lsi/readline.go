package main

import (
	"errors"
	"io"

	"github.com/chzyer/readline"
)

// readlineReader adapts a readline instance to the session's input
// interface. Ctrl-C and Ctrl-D both end the session cleanly.
type readlineReader struct {
	rl *readline.Instance
}

func newReadlineReader() (*readlineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	return line, err
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}
