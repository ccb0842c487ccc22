// Package shell implements the line-oriented console of "wsinspect shell".
package shell

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vovakirdan/wsinspect/internal/config"
	"github.com/vovakirdan/wsinspect/wsinspect"
)

// Prompt is printed before each command when the input is interactive.
const Prompt = "wsinspect> "

const helpText = `commands:
  status               show connection status and endpoint
  endpoint [url|name]  show or set the endpoint (only while disconnected)
  presets              list preset endpoints
  toggle               connect when disconnected, disconnect otherwise
  connect, disconnect  toggle, refusing when already in the requested state
  clear                drop buffered messages
  messages [n]         print the n newest messages (all by default)
  stats                show message counters
  help                 show this help
  quit                 leave the shell
`

// errQuit ends Run without error.
var errQuit = errors.New("quit")

// Shell drives a Manager from text commands.
type Shell struct {
	mgr *wsinspect.Manager
	cfg *config.Config
	out io.Writer
}

// New returns a shell writing its output to out.
func New(mgr *wsinspect.Manager, cfg *config.Config, out io.Writer) *Shell {
	return &Shell{mgr: mgr, cfg: cfg, out: out}
}

// Run executes commands read from in until EOF, quit, or ctx is done.
// Command errors are printed and do not stop the loop.
//
// When ctx ends first, Run returns but the reader goroutine stays blocked in
// in.Read until in yields data, EOF or an error. Close in (or let the
// process exit) to release it.
func (s *Shell) Run(ctx context.Context, in io.Reader, prompt bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		if prompt {
			fmt.Fprint(s.out, Prompt)
		}
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := s.Exec(line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		}
	}
}

// Exec runs a single command line.
func (s *Shell) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "status":
		s.status()
	case "endpoint":
		return s.endpoint(args)
	case "presets":
		s.presets()
	case "toggle":
		return s.toggle()
	case "connect":
		if s.mgr.State() != wsinspect.StateDisconnected {
			return fmt.Errorf("already %s", s.mgr.State())
		}
		return s.toggle()
	case "disconnect":
		if s.mgr.State() == wsinspect.StateDisconnected {
			return errors.New("not connected")
		}
		return s.toggle()
	case "clear":
		s.mgr.ClearMessages()
		fmt.Fprintln(s.out, "messages cleared")
	case "messages":
		return s.messages(args)
	case "stats":
		s.stats()
	case "help", "?":
		fmt.Fprint(s.out, helpText)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (s *Shell) status() {
	fmt.Fprintf(s.out, "%s  %s\n", s.mgr.State().Label(), s.mgr.Endpoint())
}

func (s *Shell) endpoint(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(s.out, s.mgr.Endpoint())
		return nil
	}
	ep := s.cfg.Resolve(args[0])
	if !s.mgr.SetEndpoint(ep) {
		return fmt.Errorf("endpoint cannot change while %s", s.mgr.State())
	}
	if !wsinspect.ValidateEndpoint(ep) {
		fmt.Fprintf(s.out, "endpoint set to %s (not a valid URL, connect will fail)\n", ep)
		return nil
	}
	fmt.Fprintf(s.out, "endpoint set to %s\n", ep)
	return nil
}

func (s *Shell) presets() {
	if len(s.cfg.Presets) == 0 {
		fmt.Fprintln(s.out, "no presets configured")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, p := range s.cfg.Presets {
		fmt.Fprintf(tw, "%s\t%s\n", p.Label, p.URL)
	}
	_ = tw.Flush()
}

func (s *Shell) toggle() error {
	if err := s.mgr.ToggleConnection(); err != nil {
		return err
	}
	s.status()
	return nil
}

func (s *Shell) messages(args []string) error {
	msgs := s.mgr.Messages()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		if n < len(msgs) {
			msgs = msgs[:n]
		}
	}
	if len(msgs) == 0 {
		fmt.Fprintln(s.out, "no messages")
		return nil
	}
	for _, m := range msgs {
		WriteMessage(s.out, m)
	}
	return nil
}

func (s *Shell) stats() {
	st := s.mgr.Stats()
	fmt.Fprintf(s.out, "state=%s buffered=%d received=%d dropped=%d\n",
		st.State, st.Buffered, st.Received, st.Dropped)
}

// WriteMessage prints m as a header line followed by indented JSON.
func WriteMessage(w io.Writer, m wsinspect.Message) {
	fmt.Fprintf(w, "#%d  %s\n", m.Seq, m.ReceivedAt.Local().Format(time.DateTime))
	var buf bytes.Buffer
	if err := json.Indent(&buf, m.Raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(m.Raw)
	}
	buf.WriteByte('\n')
	_, _ = w.Write(buf.Bytes())
}
