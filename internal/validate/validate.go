package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// AR postal code: 4 digits or CPA (letter + 4 digits + 3 letters)
	reCP    = regexp.MustCompile(`^([0-9]{4}|[A-Za-z][0-9]{4}[A-Za-z]{3})$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reDNI   = regexp.MustCompile(`^[0-9]{7,8}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
	reHex   = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
	reQuery = regexp.MustCompile(`^[\p{L}\p{N} #-]{1,40}$`)
)

// MaxQty caps a single line so the cart total stays sane.
const MaxQty = 50

func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 8 {
		return "", false
	}
	return strings.ToUpper(s), reCP.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Qty parses a form quantity and clamps it to [1, MaxQty].
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > MaxQty {
		return MaxQty
	}
	return n
}

// ID validates a simple resource identifier (product and line ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a person's name with a reasonable max length.
func Name(s string) (string, bool) {
	return Text(s, 60)
}

// Text validates a required free-text field of at most max runes.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > max {
		return "", false
	}
	return s, true
}

// Optional is Text for fields that may be left blank.
func Optional(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return Text(s, max)
}

// DNI accepts 7 or 8 digits, ignoring dots and spaces.
func DNI(s string) (string, bool) {
	s = strings.NewReplacer(".", "", " ", "").Replace(strings.TrimSpace(s))
	return s, reDNI.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Hex validates a #rgb or #rrggbb color.
func Hex(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return strings.ToLower(s), reHex.MatchString(s)
}

// Query validates a gallery search: letters, digits, spaces, '#' and '-'.
func Query(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reQuery.MatchString(s)
}
