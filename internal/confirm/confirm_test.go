package confirm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrompter(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"  y  \n", true},
		{"y", true},
		{"yes\n", false},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yy\n", false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tc.input), &out)
		got, err := p.Confirm("Replace database with cleaned version? (y/n): ")
		if err != nil {
			t.Errorf("input %q: unexpected error %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("input %q: got %v, want %v", tc.input, got, tc.want)
		}
		if !strings.Contains(out.String(), "(y/n)") {
			t.Errorf("prompt not written: %q", out.String())
		}
	}
}

func TestPrompterReadsOneLine(t *testing.T) {
	p := NewPrompter(strings.NewReader("n\ny\n"), &bytes.Buffer{})
	first, _ := p.Confirm("? ")
	second, _ := p.Confirm("? ")
	if first || !second {
		t.Errorf("got %v then %v, want false then true", first, second)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestPrompterReadError(t *testing.T) {
	p := NewPrompter(failingReader{}, &bytes.Buffer{})
	ok, err := p.Confirm("? ")
	if err == nil {
		t.Fatal("expected error")
	}
	if ok {
		t.Error("read error must not confirm")
	}
}
