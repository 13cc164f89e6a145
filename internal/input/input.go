// Package input contains the line readers used to get grammar session
// commands from a terminal or other sources of input.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DefaultPrompt is shown before each command read by an InteractiveReader.
const DefaultPrompt = "gnf> "

// LineReader reads trimmed lines of input one at a time.
type LineReader interface {
	// ReadLine blocks until a line is read. See the implementations for the
	// handling of blank lines.
	ReadLine() (string, error)

	// SetPrompt changes the text shown before the next line is read, if the
	// reader shows one at all.
	SetPrompt(p string)

	// Close releases any resources held by the reader.
	Close() error
}

// DirectReader implements LineReader and reads lines from any generic input
// stream directly. It can be used generically with any io.Reader but does not
// sanitize the input of control and escape sequences, and it shows no prompt.
//
// DirectReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader implements LineReader and reads lines from stdin using a
// go implementation of the GNU Readline library. This keeps input clear of all
// typing and editing escape sequences and enables the use of command history.
// This should in general only be used when directly connected to a TTY.
//
// InteractiveReader should not be used directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a new DirectReader with a buffered reader on r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates a new InteractiveReader and initializes
// readline. If historyFile is not empty, command history is saved to and
// loaded from it. The returned InteractiveReader must have Close() called on it
// before disposal to properly teardown readline resources.
func NewInteractiveReader(historyFile string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      DefaultPrompt,
		HistoryFile: historyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: DefaultPrompt,
	}, nil
}

// Close does nothing for a DirectReader; the underlying reader is owned by the
// caller.
func (dr *DirectReader) Close() error {
	return nil
}

// Close cleans up readline resources and other resources associated with the
// InteractiveReader.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadLine reads the next line. Unless blanks are allowed, the returned string
// will only be empty if there is an error reading input; otherwise this
// function blocks until a line containing non-space characters is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (dr *DirectReader) ReadLine() (string, error) {
	return readNonBlank(func() (string, error) {
		return dr.r.ReadString('\n')
	}, dr.blanksAllowed)
}

// ReadLine reads the next line from the terminal. It behaves as
// DirectReader.ReadLine does, except that an interrupt (Ctrl-C) is returned as
// readline.ErrInterrupt.
func (ir *InteractiveReader) ReadLine() (string, error) {
	return readNonBlank(ir.rl.Readline, ir.blanksAllowed)
}

func readNonBlank(next func() (string, error), blanksAllowed bool) (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = next()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && blanksAllowed {
			return line, nil
		}
		if line == "" && err == io.EOF {
			return "", err
		}
	}

	return line, nil
}

// AllowBlank sets whether blank lines are returned. By default they are not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank lines are returned. By default they are not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt does nothing; a DirectReader shows no prompt.
func (dr *DirectReader) SetPrompt(p string) {}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// Prompt gets the current prompt.
func (ir *InteractiveReader) Prompt() string {
	return ir.prompt
}
