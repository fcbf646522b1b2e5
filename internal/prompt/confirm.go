package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNonInteractive is returned when a question needs an answer but stdin is
// not a terminal.
var ErrNonInteractive = errors.New("non-interactive stdin: pass --yes to confirm")

type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
	// ReadPassword reads a line without echo. Nil falls back to a plain read.
	ReadPassword func() ([]byte, error)

	reader *bufio.Reader
}

func DefaultConfirmer() *Confirmer {
	fd := int(os.Stdin.Fd())
	return &Confirmer{
		In:            os.Stdin,
		Out:           os.Stdout,
		IsInteractive: func() bool { return term.IsTerminal(fd) },
		ReadPassword:  func() ([]byte, error) { return term.ReadPassword(fd) },
	}
}

func (c *Confirmer) interactive() bool {
	return c.IsInteractive != nil && c.IsInteractive()
}

func (c *Confirmer) line() (string, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	s, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Confirm asks a yes/no question. assumeYes answers it without reading.
func (c *Confirmer) Confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !c.interactive() {
		return false, ErrNonInteractive
	}
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s (y/n): ", question)
	}
	answer, err := c.line()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes" || answer == "s" || answer == "si" || answer == "sí", nil
}

// Secret reads a value without echoing it when a terminal is attached.
func (c *Confirmer) Secret(label string) (string, error) {
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s: ", label)
	}
	if c.interactive() && c.ReadPassword != nil {
		b, err := c.ReadPassword()
		if c.Out != nil {
			fmt.Fprintln(c.Out)
		}
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return c.line()
}
