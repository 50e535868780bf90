package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// KeyKind classifies a decoded keypress.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyDigit
	KeyEnter
	KeySpace
	KeyBackspace
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
)

// Key is one decoded keypress.
type Key struct {
	Kind  KeyKind
	Rune  rune
	Digit int
}

// Reader owns the terminal's raw mode and decodes stdin into key events.
// It is the only stdin consumer in the process.
type Reader struct {
	fd       int
	in       *os.File
	out      chan<- Key
	log      zerolog.Logger
	oldState *term.State
}

// NewReader creates a key reader that emits decoded keys on out.
func NewReader(out chan<- Key, log zerolog.Logger) *Reader {
	return &Reader{
		fd:  int(os.Stdin.Fd()),
		in:  os.Stdin,
		out: out,
		log: log.With().Str("component", "key_reader").Logger(),
	}
}

// MakeRaw switches the terminal into raw mode. Callers must arrange for
// Restore to run before the process exits, on every path.
func (r *Reader) MakeRaw() error {
	if !term.IsTerminal(r.fd) {
		return errors.New("stdin is not a terminal")
	}
	st, err := term.MakeRaw(r.fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	r.oldState = st
	return nil
}

// Restore puts the terminal back into the state MakeRaw captured.
// Safe to call more than once.
func (r *Reader) Restore() {
	if r.oldState != nil {
		_ = term.Restore(r.fd, r.oldState)
		r.oldState = nil
	}
}

// Start reads stdin until ctx is cancelled or stdin closes. Stdin closing
// is forwarded as Ctrl+C so the application shuts down the same way.
//
// A read in flight when ctx is cancelled cannot be interrupted; the
// goroutine exits after it returns. The application quits right after
// cancelling, so the dangling read never outlives the process.
func (r *Reader) Start(ctx context.Context) {
	r.log.Debug().Msg("Key reader started")

	buf := make([]byte, 16)
	for {
		n, err := r.in.Read(buf)
		if err != nil {
			r.log.Debug().Err(err).Msg("Stdin closed, key reader stopping")
			select {
			case r.out <- Key{Kind: KeyCtrlC}:
			case <-ctx.Done():
			}
			return
		}

		for _, k := range decodeKeys(buf[:n]) {
			select {
			case r.out <- k:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			r.log.Debug().Msg("Key reader stopping")
			return
		default:
		}
	}
}

// decodeKeys turns one raw read into key events. Escape sequences for the
// arrow keys arrive as three bytes within a single read.
func decodeKeys(b []byte) []Key {
	var keys []Key
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0x03:
			keys = append(keys, Key{Kind: KeyCtrlC})
			i++
		case c == '\r' || c == '\n':
			keys = append(keys, Key{Kind: KeyEnter})
			i++
		case c == ' ':
			keys = append(keys, Key{Kind: KeySpace})
			i++
		case c == 0x7f || c == 0x08:
			keys = append(keys, Key{Kind: KeyBackspace})
			i++
		case c == 0x1b:
			if i+2 < len(b) && b[i+1] == '[' {
				switch b[i+2] {
				case 'A':
					keys = append(keys, Key{Kind: KeyUp})
				case 'B':
					keys = append(keys, Key{Kind: KeyDown})
				case 'C':
					keys = append(keys, Key{Kind: KeyRight})
				case 'D':
					keys = append(keys, Key{Kind: KeyLeft})
				}
				i += 3
			} else {
				keys = append(keys, Key{Kind: KeyEsc})
				i++
			}
		case c >= '0' && c <= '9':
			keys = append(keys, Key{Kind: KeyDigit, Digit: int(c - '0'), Rune: rune(c)})
			i++
		case c >= 0x20 && c < 0x7f:
			keys = append(keys, Key{Kind: KeyRune, Rune: rune(c)})
			i++
		case c >= 0x80:
			ru, size := utf8.DecodeRune(b[i:])
			if ru != utf8.RuneError {
				keys = append(keys, Key{Kind: KeyRune, Rune: ru})
			}
			i += size
		default:
			// Other control bytes carry no meaning here.
			i++
		}
	}
	return keys
}
