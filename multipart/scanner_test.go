package multipart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScannerIndexOfFindsNeedle(t *testing.T) {
	s := newScanner([]byte("--boundary"))
	hay := []byte("preamble stuff\r\n--boundary\r\nheaders")
	assert.Equal(t, 16, s.indexOf(hay, 0))
}

func TestScannerIndexOfNoMatch(t *testing.T) {
	s := newScanner([]byte("--boundary"))
	assert.Equal(t, -1, s.indexOf([]byte("nothing here"), 0))
}

func TestScannerIndexOfRespectsFrom(t *testing.T) {
	needle := []byte("ab")
	s := newScanner(needle)
	hay := []byte("ab....ab")
	assert.Equal(t, 0, s.indexOf(hay, 0))
	assert.Equal(t, 6, s.indexOf(hay, 1))
}

func TestScannerIndexOfLongHaystack(t *testing.T) {
	needle := []byte("--XYZ")
	s := newScanner(needle)
	hay := []byte(strings.Repeat("z", 10000) + "--XYZ" + strings.Repeat("z", 10))
	assert.Equal(t, 10000, s.indexOf(hay, 0))
}
