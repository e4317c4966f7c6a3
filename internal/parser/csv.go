package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/ThiagoRGoveia/csv-files/internal/models"
)

const utf8BOM = "\ufeff"

// Decode turns CSV text into header-keyed records. The first non-blank row is
// the header. Fields are trimmed, quoted ones included, and blank rows and rows
// that fail to parse are skipped. Decode never fails: content that has no
// readable header yields an empty slice.
func Decode(text string) []models.RawRecord {
	reader := csv.NewReader(strings.NewReader(trimAfterQuotes(strings.TrimPrefix(text, utf8BOM))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records := make([]models.RawRecord, 0)

	header, err := readHeader(reader)
	if err != nil {
		return records
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue // Skip corrupted rows
			}
			break
		}

		trimFields(row)
		if isBlank(row) {
			continue
		}

		records = append(records, toRawRecord(header, row))
	}

	return records
}

func readHeader(reader *csv.Reader) ([]string, error) {
	for {
		row, err := reader.Read()
		if err != nil {
			return nil, err
		}
		trimFields(row)
		if !isBlank(row) {
			return row, nil
		}
	}
}

// toRawRecord maps row values onto header names. Short rows leave the missing
// keys absent and values past the last header column are dropped.
func toRawRecord(header, row []string) models.RawRecord {
	record := make(models.RawRecord, len(header))
	for i, name := range header {
		if i >= len(row) {
			break
		}
		record[name] = row[i]
	}
	return record
}

func trimFields(row []string) {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
}

func isBlank(row []string) bool {
	for _, field := range row {
		if field != "" {
			return false
		}
	}
	return true
}

// trimAfterQuotes drops blanks between a closing quote and the next field or
// line separator, so `"a" ,b` reads like `"a",b`. A quote only opens a quoted
// field when it is the first non-blank byte of the field, matching how
// encoding/csv decides; bare quotes inside unquoted fields are left for the
// reader to reject.
func trimAfterQuotes(text string) string {
	if !strings.Contains(text, `"`) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	fieldStart, inQuotes, afterQuote := true, false, false
	var blanks []byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inQuotes:
			b.WriteByte(c)
			if c != '"' {
				continue
			}
			if i+1 < len(text) && text[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			inQuotes, afterQuote = false, true
		case afterQuote && (c == ' ' || c == '\t'):
			blanks = append(blanks, c)
		default:
			if afterQuote && !isSeparator(c) {
				b.Write(blanks)
			}
			blanks = blanks[:0]
			afterQuote = false
			b.WriteByte(c)
			switch {
			case c == ',' || c == '\n':
				fieldStart = true
			case c == '"' && fieldStart:
				inQuotes, fieldStart = true, false
			case c != ' ' && c != '\t' && c != '\r':
				fieldStart = false
			}
		}
	}
	return b.String()
}

func isSeparator(c byte) bool {
	return c == ',' || c == '\n' || c == '\r'
}
