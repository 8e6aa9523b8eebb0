package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerjios/enerjios/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with Turkish characters should pass through unchanged.
	input := "Ad Soyad;E-posta;Telefon;Şehir\nAyşe Yılmaz;ayse@example.com;05321234567;İzmir\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Windows1254(t *testing.T) {
	// Windows-1254 encoded "Kurulum Gücü;Ünite\n".
	// In Windows-1254: ü = 0xFC, Ü = 0xDC
	turkishBytes := []byte{
		'K', 'u', 'r', 'u', 'l', 'u', 'm', ' ',
		'G', 0xFC, 'c', 0xFC, ';',
		0xDC, 'n', 'i', 't', 'e', '\n',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(turkishBytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Kurulum Gücü;Ünite\n", string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Ad Soyad;Şehir\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Ad Soyad;Şehir\n", string(got))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// UTF-16 LE BOM followed by "Ad\n".
	input := []byte{0xFF, 0xFE, 'A', 0x00, 'd', 0x00, '\n', 0x00}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Ad\n", string(got))
}
