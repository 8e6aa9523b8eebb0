package leadimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/enerjios/enerjios/internal/encoding"
	"github.com/enerjios/enerjios/internal/projectrequest"
)

// Column headers produced by the marketing-team CRM export.
const (
	colName  = "Ad Soyad"
	colEmail = "E-posta"
	colPhone = "Telefon"
	colCity  = "Şehir"
)

// Parser reads a marketing lead export and produces project-request
// create params. The file may be UTF-8 or a legacy Turkish charset; rows
// before the header line (report titles, date stamps) are skipped.
type Parser struct {
	source string
}

func NewParser(source string) *Parser {
	return &Parser{source: source}
}

func (p *Parser) Parse(r io.Reader) ([]projectrequest.CreateParams, error) {
	decoded, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true    // Allow sloppy quotes if necessary

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	var leads []projectrequest.CreateParams

	headerFound := false

	// Column indices
	idxName := -1
	idxEmail := -1
	idxPhone := -1
	idxCity := -1

	for _, row := range rows {
		// 1. Search for header landmark
		if !headerFound {
			matches := 0

			for i, col := range row {
				switch strings.TrimSpace(col) {
				case colName:
					idxName = i
					matches++
				case colEmail:
					idxEmail = i
					matches++
				case colPhone:
					idxPhone = i
					matches++
				case colCity:
					idxCity = i
					matches++
				}
			}

			// Name plus at least one contact column makes it the header.
			if idxName != -1 && matches >= 2 {
				headerFound = true
			}

			continue
		}

		// 2. Parse data rows
		if len(row) <= idxName {
			continue
		}

		name := strings.TrimSpace(row[idxName])
		if name == "" {
			continue
		}

		lead := projectrequest.CreateParams{
			Name:   name,
			Source: p.source,
		}

		if idxEmail != -1 && idxEmail < len(row) {
			lead.Email = strings.ToLower(strings.TrimSpace(row[idxEmail]))
		}

		if idxPhone != -1 && idxPhone < len(row) {
			lead.Phone = normalizePhone(row[idxPhone])
		}

		if idxCity != -1 && idxCity < len(row) {
			lead.City = strings.TrimSpace(row[idxCity])
		}

		if lead.Email == "" && lead.Phone == "" {
			// A lead with no contact channel is unusable.
			continue
		}

		leads = append(leads, lead)
	}

	if !headerFound {
		return nil, fmt.Errorf("no header row found")
	}

	return leads, nil
}

// normalizePhone strips spaces, dashes and parentheses and normalizes the
// Turkish country prefix so duplicate detection matches across formats.
func normalizePhone(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}

		b.WriteRune(r)
	}

	phone := b.String()

	switch {
	case strings.HasPrefix(phone, "+90"):
		phone = "0" + phone[3:]
	case strings.HasPrefix(phone, "90") && len(phone) == 12:
		phone = "0" + phone[2:]
	}

	return phone
}
