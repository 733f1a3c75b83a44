// Package session implements the interactive host-selection loop as an
// explicit state machine: a Session holds the current view and pending
// command, and Handle applies one user directive, returning a terminal
// action when the loop should stop.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lsi-dev/lsi/filter"
	"github.com/lsi-dev/lsi/hosts"
	"github.com/lsi-dev/lsi/profile"
	"github.com/lsi-dev/lsi/render"
)

// ErrNoEntries is returned when the session would start with an empty
// entry set; the caller treats it as fatal rather than entering an empty
// loop.
var ErrNoEntries = errors.New("no entries matched the filters")

// ActionKind classifies what the loop should do after a directive.
type ActionKind int

const (
	// ActionNone keeps browsing.
	ActionNone ActionKind = iota
	// ActionConnect connects to the chosen entry and ends the session.
	ActionConnect
	// ActionExecute runs the pending command on the whole current set.
	ActionExecute
	// ActionQuit ends the session without doing anything.
	ActionQuit
)

// Action is the result of handling one directive.
type Action struct {
	Kind   ActionKind
	Choice int // entry index for ActionConnect
}

// LineReader supplies user input lines. The readline instance in cmd
// implements it; tests drive the session with a scripted reader.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Session is the interactive controller state. Mutated only by user
// directives via Handle.
type Session struct {
	Entries      []hosts.Entry
	Username     string
	IdentityFile string
	Command      string
	NoPrompt     bool
	SortKey      string
	Columns      []string // columns shown in addition to defaults
	Only         []string
	Limit        int // 0 means no cap
	Include      []string
	Exclude      []string

	ProfilePath string
	Out         io.Writer
	Width       func() int

	// statFile is swappable for tests of the `i` directive.
	statFile func(string) error

	redraw   bool
	showHelp bool
}

// New creates a session over the given entries.
func New(entries []hosts.Entry, out io.Writer) *Session {
	return &Session{
		Entries: entries,
		Out:     out,
		Width:   render.TerminalWidth,
		statFile: func(path string) error {
			_, err := os.Stat(path)
			return err
		},
		redraw: true,
	}
}

// Run drives the session until a terminal action. The initial sort key
// and limit are applied before the first render.
func (s *Session) Run(reader LineReader) (Action, error) {
	if len(s.Entries) == 0 {
		return Action{Kind: ActionQuit}, ErrNoEntries
	}
	if s.SortKey != "" {
		s.applySort(s.SortKey)
	}
	if s.Limit > 0 {
		s.applyLimit(s.Limit)
	}

	for {
		s.renderPending()

		line, err := reader.ReadLine(s.prompt())
		if err != nil {
			fmt.Fprintln(s.Out, "bye!")
			return Action{Kind: ActionQuit}, nil
		}

		action := s.Handle(line)
		if action.Kind != ActionNone {
			return action, nil
		}
	}
}

func (s *Session) prompt() string {
	return fmt.Sprintf("Enter command (%s for help, %s to quit): ", render.Cyan("h"), render.Cyan("q"))
}

// renderPending reprints the entry list when a directive changed it, and
// help text at most once per `h`.
func (s *Session) renderPending() {
	if s.redraw {
		out, err := render.Entries(s.Entries, s.columns(), true, s.Width())
		if err != nil {
			fmt.Fprintln(s.Out, render.Yellow(err.Error()))
		} else {
			fmt.Fprintln(s.Out, out)
			fmt.Fprintf(s.Out, "%d matching entries.\n", len(s.Entries))
		}
		s.redraw = false
	}
	if s.showHelp {
		fmt.Fprint(s.Out, s.helpText())
		s.showHelp = false
	} else if s.Command != "" {
		fmt.Fprintf(s.Out, "Set to run ssh command: %s\n", render.Cyan(s.Command))
	}
}

func (s *Session) columns() []string {
	return render.Columns(s.Columns, s.Only)
}

// Handle applies one directive and returns the resulting action.
func (s *Session) Handle(input string) Action {
	input = strings.TrimSpace(input)
	if input == "" {
		return Action{}
	}

	if choice, err := strconv.Atoi(input); err == nil {
		if choice >= 0 && choice < len(s.Entries) {
			return Action{Kind: ActionConnect, Choice: choice}
		}
		fmt.Fprintf(s.Out, "Invalid number: must be between 0 and %d\n", len(s.Entries)-1)
		return Action{}
	}

	switch input {
	case "x":
		if s.Command == "" {
			fmt.Fprintln(s.Out, "No command has been set. Set command with `c`")
			return Action{}
		}
		return Action{Kind: ActionExecute}
	case "h":
		s.showHelp = true
		return Action{}
	case "q", "quit", "exit":
		fmt.Fprintln(s.Out, "bye!")
		return Action{Kind: ActionQuit}
	}

	words := strings.Fields(input)
	if len(words) < 2 {
		fmt.Fprintln(s.Out, render.Yellow(fmt.Sprintf("Unknown command %q.", input)))
		return Action{}
	}

	switch words[0] {
	case "u":
		s.Username = words[1]
		s.printCredentials()
	case "i":
		if err := s.statFile(words[1]); err != nil {
			fmt.Fprintln(s.Out, render.Yellow("No such file: "+words[1]))
			return Action{}
		}
		s.IdentityFile = words[1]
		s.printCredentials()
	case "p":
		p, err := profile.Load(s.ProfilePath, words[1])
		if err != nil {
			fmt.Fprintln(s.Out, render.Yellow("No such profile: "+words[1]))
			return Action{}
		}
		s.Username = p.Username
		s.IdentityFile = p.IdentityFile
		s.printCredentials()
	case "f":
		s.applyFilters(words[1:], nil)
	case "e":
		s.applyFilters(nil, words[1:])
	case "c":
		s.Command = strings.Join(words[1:], " ")
	case "limit":
		n, err := strconv.Atoi(words[1])
		if err != nil {
			fmt.Fprintln(s.Out, render.Yellow("Invalid limit (must be an integer)"))
			return Action{}
		}
		s.applyLimit(n)
		s.redraw = true
	case "sort":
		s.applySort(words[1])
	case "show":
		s.Columns = append(s.Columns, words[1:]...)
		s.redraw = true
	default:
		fmt.Fprintln(s.Out, render.Yellow(fmt.Sprintf("Unknown command %q.", words[0])))
	}
	return Action{}
}

func (s *Session) printCredentials() {
	fmt.Fprintf(s.Out, "username: %s\n", render.Green(s.Username))
	fmt.Fprintf(s.Out, "identity file: %s\n", render.Green(s.IdentityFile))
}

func (s *Session) applyFilters(include, exclude []string) {
	filtered, err := filter.ApplyTexts(s.Entries, include, exclude)
	if err != nil {
		fmt.Fprintln(s.Out, render.Yellow(err.Error()))
		return
	}
	s.Entries = filtered
	s.Include = append(s.Include, include...)
	s.Exclude = append(s.Exclude, exclude...)
	s.redraw = true
}

func (s *Session) applySort(attr string) {
	sorted, err := hosts.SortBy(s.Entries, attr)
	if err != nil {
		fmt.Fprintln(s.Out, render.Yellow(err.Error()))
		return
	}
	s.Entries = sorted
	s.SortKey = attr
	if !contains(s.columns(), attr) {
		s.Columns = append(s.Columns, attr)
	}
	s.redraw = true
}

func (s *Session) applyLimit(n int) {
	s.Limit = n
	if n > 0 && n < len(s.Entries) {
		s.Entries = s.Entries[:n]
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func orNone(s string) string {
	if s == "" {
		return "none set"
	}
	return s
}

func (s *Session) helpText() string {
	cmd := orNone(s.Command)
	if s.Command != "" {
		cmd = render.Green(s.Command)
	}
	return fmt.Sprintf(`%s:
  h: Show this message
  <number %s>: Connect to the %s'th instance in the list
  p %s: Use profile %s
  u %s: Change SSH username to %s (currently %s)
  i %s: Change identity file to %s (currently %s)
  f <one or more %s's>: Restrict results to those with %s's
  e <one or more %s's>: Restrict results to those without %s's
  limit %s: Limit output to first %s lines
  sort <%s>: Sort the list by %s
  show <one or more %s's>: Additionally show those %s's
  c <%s>: Set ssh command to run on matching hosts (currently %s)
  x: Execute the above command on the above host(s)
  %s: Quit
`,
		render.Green("Commands"),
		render.Cyan("n"), render.Cyan("n"),
		render.Cyan("profile"), render.Cyan("profile"),
		render.Cyan("username"), render.Cyan("username"), orNone(s.Username),
		render.Cyan("idfile"), render.Cyan("idfile"), orNone(s.IdentityFile),
		render.Cyan("pattern"), render.Cyan("pattern"),
		render.Cyan("pattern"), render.Cyan("pattern"),
		render.Cyan("n"), render.Cyan("n"),
		render.Cyan("attribute"), render.Cyan("attribute"),
		render.Cyan("attribute"), render.Cyan("attribute"),
		render.Cyan("command"), cmd,
		render.Cyan("q"))
}
