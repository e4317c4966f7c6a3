package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ThiagoRGoveia/csv-files/internal/models"
)

// requiredFields must be present and non-empty on every raw record. "file" is
// required even though it never reaches the projected Line.
var requiredFields = []string{"file", "text", "number", "hex"}

var (
	hexPattern    = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// Validate reports whether raw satisfies the line schema.
func Validate(raw models.RawRecord) bool {
	return validateRecord(raw) == nil
}

// ToLine validates raw and projects it into a Line. It is the only way a Line
// is built from decoded data.
func ToLine(raw models.RawRecord) (models.Line, error) {
	if err := validateRecord(raw); err != nil {
		return models.Line{}, err
	}

	number, err := parseNumber(raw["number"])
	if err != nil {
		return models.Line{}, err
	}

	return models.Line{
		Text:   raw["text"],
		Number: number,
		Hex:    raw["hex"],
	}, nil
}

func validateRecord(raw models.RawRecord) error {
	for _, name := range requiredFields {
		value, ok := raw[name]
		if !ok {
			return fmt.Errorf("validation failed: field %s is missing", name)
		}
		if value == "" {
			return fmt.Errorf("validation failed: field %s is null or empty", name)
		}
	}

	if _, err := parseNumber(raw["number"]); err != nil {
		return err
	}

	if !hexPattern.MatchString(raw["hex"]) {
		return fmt.Errorf("validation failed: hex %q is not 32 hexadecimal digits", raw["hex"])
	}

	return nil
}

// parseNumber accepts decimal literals with an optional fraction and exponent
// and truncates the value toward zero.
func parseNumber(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("validation failed: number is blank")
	}
	if !numberPattern.MatchString(value) {
		return 0, fmt.Errorf("validation failed: number %q is not numeric", value)
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}

	// The whole literal counts, exponent included: 1e3 is 1000, not 1.
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("validation failed: number %q: %w", value, err)
	}

	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("validation failed: number %q is out of range", value)
	}

	return int64(f), nil
}
