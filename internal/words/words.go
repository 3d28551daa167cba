// Package words holds the secret-word pool the round engine draws from.
package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrTooFewWords = errors.New("word list needs at least 2 entries")

// The stock list ships in Spanish, same as the original game.
var defaultWords = []string{
	"playa", "hospital", "circo", "biblioteca", "aeropuerto",
	"castillo", "submarino", "desierto", "volcán", "piscina",
	"teatro", "mercado", "granja", "museo", "estadio",
	"iglesia", "cueva", "faro", "tren", "peluquería",
	"gimnasio", "restaurante", "cárcel", "escuela", "barco",
	"montaña", "supermercado", "hotel", "zoológico", "panadería",
	"bosque", "isla", "camping", "cine", "oficina",
}

// List is an immutable pool of candidate words.
type List struct {
	words []string
}

// Default returns the built-in list.
func Default() *List {
	return &List{words: defaultWords}
}

// Load reads a newline-separated word file. Blank lines and '#' comments are
// skipped. The pool must end up with at least two words, otherwise the
// no-immediate-repeat rule could never hold.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	var ws []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ws = append(ws, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	if len(ws) < 2 {
		return nil, fmt.Errorf("%s: %w", path, ErrTooFewWords)
	}
	return &List{words: ws}, nil
}

// Words returns the pool. Callers must not mutate it.
func (l *List) Words() []string { return l.words }

func (l *List) Len() int { return len(l.words) }
