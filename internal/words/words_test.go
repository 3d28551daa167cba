package words

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	l := Default()
	assert.GreaterOrEqual(t, l.Len(), 2)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "# lugares\nplaya\n\n  circo  \nfaro\n")

	l, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"playa", "circo", "faro"}, l.Words())
}

func TestLoad_TooFewWords(t *testing.T) {
	path := writeFile(t, "# only comments\nplaya\n")

	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrTooFewWords), "got %v", err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
