package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"distancematrix/internal/form"
	"distancematrix/internal/maps"
	"distancematrix/platform/logger"
)

// PlaceResolver turns a free-text query into a place selection.
type PlaceResolver interface {
	Resolve(ctx context.Context, query string) (*maps.Selection, error)
}

const shellHelp = `Commands:
  origin <text>                      set the origin
  destination <text>                 set the destination
  date <YYYY-MM-DD>                  set the date
  pick origin|destination <query>    look up a place and select it
  submit                             fetch commute data
  show                               print the form
  help                               print this help
  quit                               leave
`

// Shell is a line-oriented commute form. Its state persists across
// submissions until the shell exits.
type Shell struct {
	form   *form.Form
	places PlaceResolver
	out    io.Writer
	format string
}

// NewShell creates a shell writing to out. places may be nil, which
// disables the pick command.
func NewShell(fetcher form.Fetcher, places PlaceResolver, out io.Writer, format string, log *logger.Logger) *Shell {
	s := &Shell{places: places, out: out, format: format}
	s.form = form.New(fetcher, s, log)
	return s
}

// Form exposes the underlying form.
func (s *Shell) Form() *form.Form {
	return s.form
}

// Warn implements form.Notifier.
func (s *Shell) Warn(message string) {
	fmt.Fprintf(s.out, "warning: %s\n", message)
}

// Run reads commands from in until quit, EOF or ctx ends.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if done := s.Exec(ctx, scanner.Text()); done {
			return nil
		}
		s.prompt()
	}
	return scanner.Err()
}

// Exec runs one command line and reports whether the shell should stop.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	command, rest := splitCommand(line)

	switch command {
	case "":
	case "origin":
		s.form.SetOrigin(rest)
	case "destination":
		s.form.SetDestination(rest)
	case "date":
		s.form.SetDate(rest)
	case "pick":
		s.pick(ctx, rest)
	case "submit":
		if _, err := s.form.Submit(ctx); err == nil {
			s.show()
		}
	case "show":
		s.show()
	case "help":
		fmt.Fprint(s.out, shellHelp)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q, type help\n", command)
	}
	return false
}

func (s *Shell) pick(ctx context.Context, args string) {
	field, query := splitCommand(args)
	if (field != "origin" && field != "destination") || query == "" {
		fmt.Fprintln(s.out, "usage: pick origin|destination <query>")
		return
	}
	if s.places == nil {
		fmt.Fprintln(s.out, "place lookup is not available")
		return
	}

	selection, err := s.places.Resolve(ctx, query)
	if err != nil {
		s.Warn(fmt.Sprintf("No place selected: %v", err))
		return
	}

	if field == "origin" {
		s.form.MountOrigin(selection)
		s.form.OriginPlaceChanged()
	} else {
		s.form.MountDestination(selection)
		s.form.DestinationPlaceChanged()
	}

	if place, ok := selection.Place(); ok {
		fmt.Fprintf(s.out, "%s: %s\n", field, place.FormattedAddress)
	}
}

func (s *Shell) show() {
	if err := Render(s.out, s.form.View(), s.format); err != nil {
		fmt.Fprintf(s.out, "render failed: %v\n", err)
	}
}

func (s *Shell) prompt() {
	fmt.Fprint(s.out, "commute> ")
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	command, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(command), strings.TrimSpace(rest)
}
