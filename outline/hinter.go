package outline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Hinter adds TrueType hinting to a font. Input and output are plain SFNT files.
type Hinter interface {
	Autohint(ctx context.Context, font []byte) ([]byte, error)
}

// ErrHinter is returned if an external hinting engine is unavailable or fails.
var ErrHinter = errors.New("hinting engine failed")

// TTFAutohint runs the ttfautohint program, reading the font from standard
// input and writing the hinted font to standard output.
type TTFAutohint struct {
	Path string   // executable; defaults to "ttfautohint" found in $PATH
	Args []string // additional command line arguments
}

// Autohint hints a TrueType font with ttfautohint.
func (h TTFAutohint) Autohint(ctx context.Context, font []byte) ([]byte, error) {
	path := h.Path
	if path == "" {
		path = "ttfautohint"
	}
	exe, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHinter, err)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, h.Args...)
	cmd.Stdin = bytes.NewReader(font)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	tracer().Debugf("running %s %s", exe, strings.Join(h.Args, " "))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%w: %v", ErrHinter, err)
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrHinter, err, msg)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no output", ErrHinter)
	}
	return stdout.Bytes(), nil
}

// HinterFunc adapts a function to the Hinter interface.
type HinterFunc func(ctx context.Context, font []byte) ([]byte, error)

// Autohint calls f.
func (f HinterFunc) Autohint(ctx context.Context, font []byte) ([]byte, error) {
	return f(ctx, font)
}
