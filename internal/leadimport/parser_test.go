package leadimport_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerjios/enerjios/internal/leadimport"
)

func TestParser_Parse(t *testing.T) {
	input := strings.Join([]string{
		"Pazarlama Raporu",
		"Tarih: 01.08.2026",
		"",
		"Ad Soyad;E-posta;Telefon;Şehir",
		"Ayşe Yılmaz;Ayse@Example.com;+90 532 123 45 67;İzmir",
		"Mehmet Kaya;;0533-222-33-44;Ankara",
		";missing@name.com;;İstanbul",
		"Fatma Çelik;;;Bursa",
		"Hasan Acar;hasan@example.com;;",
	}, "\n") + "\n"

	p := leadimport.NewParser("fuar-2026")
	leads, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, leads, 3)

	assert.Equal(t, "Ayşe Yılmaz", leads[0].Name)
	assert.Equal(t, "ayse@example.com", leads[0].Email)
	assert.Equal(t, "05321234567", leads[0].Phone)
	assert.Equal(t, "İzmir", leads[0].City)
	assert.Equal(t, "fuar-2026", leads[0].Source)

	// No email, phone-only contact still imports.
	assert.Equal(t, "Mehmet Kaya", leads[1].Name)
	assert.Equal(t, "05332223344", leads[1].Phone)

	// No contact channel at all (Fatma) and the nameless row are skipped.
	assert.Equal(t, "Hasan Acar", leads[2].Name)
}

func TestParser_Parse_NoHeader(t *testing.T) {
	input := "just;some;cells\nno;header;here\n"

	p := leadimport.NewParser("import")
	leads, err := p.Parse(strings.NewReader(input))
	assert.Error(t, err)
	assert.Nil(t, leads)
}

func TestParser_Parse_HeaderNeedsContactColumn(t *testing.T) {
	// A row containing only "Ad Soyad" is not enough of a landmark.
	input := "Ad Soyad\nAyşe Yılmaz\n"

	p := leadimport.NewParser("import")
	_, err := p.Parse(strings.NewReader(input))
	assert.Error(t, err)
}

func TestParser_Parse_ShortRows(t *testing.T) {
	input := strings.Join([]string{
		"Ad Soyad;Telefon;Şehir",
		"Ali Demir;0530 111 22 33", // city column missing entirely
		"Veli Şahin",               // no contact columns at all
	}, "\n") + "\n"

	p := leadimport.NewParser("import")
	leads, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Ali Demir", leads[0].Name)
	assert.Equal(t, "05301112233", leads[0].Phone)
	assert.Empty(t, leads[0].City)
}

func TestNormalizePhoneFormats(t *testing.T) {
	type testCase struct {
		name string
		raw  string
		want string
	}

	tests := []testCase{
		{name: "PlusNinety", raw: "+90 532 123 45 67", want: "05321234567"},
		{name: "BareNinety", raw: "905321234567", want: "05321234567"},
		{name: "Parenthesized", raw: "(0532) 123-45-67", want: "05321234567"},
		{name: "AlreadyLocal", raw: "05321234567", want: "05321234567"},
		{name: "Dotted", raw: "0532.123.45.67", want: "05321234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "Ad Soyad;Telefon\nTest Kişi;" + tt.raw + "\n"

			p := leadimport.NewParser("import")
			leads, err := p.Parse(strings.NewReader(input))
			require.NoError(t, err)
			require.Len(t, leads, 1)
			assert.Equal(t, tt.want, leads[0].Phone)
		})
	}
}
