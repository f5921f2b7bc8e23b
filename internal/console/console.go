// Package console provides the line and keystroke prompts used by the shell.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console reads answers from in and writes prompts to out.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	// fd is the terminal to switch into raw mode for single keystrokes,
	// or -1 when input is not a terminal.
	fd int
}

// New returns a line-oriented console; yes/no answers are read one line at a time.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out, fd: -1}
}

// NewTerminal returns a console over in. When in is a terminal, yes/no
// prompts react to a single keystroke.
func NewTerminal(in *os.File, out io.Writer) *Console {
	c := New(in, out)
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		c.fd = fd
	}
	return c
}

// Out is the writer prompts and results are printed to.
func (c *Console) Out() io.Writer {
	return c.out
}

// Printf writes formatted output.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Println writes a line of output.
func (c *Console) Println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// ReadLine reads one line without its line terminator. A final line
// without a newline is returned before io.EOF.
func (c *Console) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// YesNo asks prompt until the user answers y or n, in either case.
func (c *Console) YesNo(prompt string) (bool, error) {
	c.Printf("%s (y/n)", prompt)
	for {
		key, err := c.readKey()
		if err != nil {
			c.Println()
			return false, err
		}
		switch key {
		case 'y', 'Y':
			c.Println()
			return true, nil
		case 'n', 'N':
			c.Println()
			return false, nil
		}
	}
}

func (c *Console) readKey() (byte, error) {
	if c.fd < 0 {
		line, err := c.ReadLine()
		if err != nil {
			return 0, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return 0, nil
		}
		return line[0], nil
	}

	state, err := term.MakeRaw(c.fd)
	if err != nil {
		return 0, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer term.Restore(c.fd, state)

	b, err := c.in.ReadByte()
	if err != nil {
		return 0, err
	}
	if b == 3 { // Ctrl-C is not delivered as a signal in raw mode.
		return 0, io.EOF
	}
	return b, nil
}

// Validator decides whether an answer is acceptable. An error aborts the prompt.
type Validator func(input string) (bool, error)

// Input prompts for field until an acceptable answer is given.
//
// A required field is asked again on an empty or invalid answer. An
// optional field returns "" on an empty answer and is asked again on an
// invalid one. A nil validate accepts anything.
func (c *Console) Input(field string, required bool, validate Validator) (string, error) {
	for {
		c.Printf("Enter a %s: ", field)
		if !required {
			c.Printf("(ENTER to skip) ")
		}
		input, err := c.ReadLine()
		if err != nil {
			c.Println()
			return "", err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			if required {
				continue
			}
			return "", nil
		}
		if validate == nil {
			return input, nil
		}
		ok, err := validate(input)
		if err != nil {
			return "", err
		}
		if ok {
			return input, nil
		}
	}
}

// Confirm returns a Validator that accepts an answer once the user says
// yes to question(answer).
func (c *Console) Confirm(question func(input string) string) Validator {
	return func(input string) (bool, error) {
		return c.YesNo(question(input))
	}
}
