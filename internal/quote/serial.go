package quote

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	serialPrefix    = "Q"
	maxSerialNumber = 999999
)

// FormatSerial renders a quotation serial as Q-YYYY-NNNNNN.
func FormatSerial(year, n int) string {
	return fmt.Sprintf("%s-%04d-%06d", serialPrefix, year, n)
}

// SerialYearPrefix is the LIKE prefix shared by all serials of a year.
func SerialYearPrefix(year int) string {
	return fmt.Sprintf("%s-%04d-", serialPrefix, year)
}

func ParseSerial(s string) (year, n int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != serialPrefix {
		return 0, 0, ErrInvalid.Appendf("serial %q", s)
	}
	if year, err = strconv.Atoi(parts[1]); err != nil || year < 2000 || year > 9999 {
		return 0, 0, ErrInvalid.Appendf("serial %q: year", s)
	}
	n, err = strconv.Atoi(parts[2])
	if err != nil || n < 1 || n > maxSerialNumber || parts[2] != fmt.Sprintf("%06d", n) {
		return 0, 0, ErrInvalid.Appendf("serial %q: number", s)
	}
	return year, n, nil
}

func ValidSerial(s string) bool {
	_, _, err := ParseSerial(s)
	return err == nil
}

// NextSerial follows last within year. A missing or malformed last serial starts the year at 1.
func NextSerial(last string, year int) (string, error) {
	y, n, err := ParseSerial(last)
	if err != nil || y != year {
		return FormatSerial(year, 1), nil
	}
	if n >= maxSerialNumber {
		return "", invalid(fmt.Sprintf("yearly serial range exhausted: %d", year))
	}
	return FormatSerial(year, n+1), nil
}
