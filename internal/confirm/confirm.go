package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Prompter reads a single answer line from in after writing the prompt to out.
// Only "y" (any case, surrounding whitespace ignored) is affirmative.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter returns a Prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm writes prompt and blocks for one line. EOF counts as "no".
func (p *Prompter) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	return IsYes(line), nil
}

// IsYes reports whether answer is the single-character affirmative token.
func IsYes(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
