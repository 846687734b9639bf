package booking

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/yacht-charter/internal/i18n"
	"github.com/iliyamo/yacht-charter/internal/pricing"
)

const (
	minNameLen     = 2
	maxNameLen     = 100
	minPhoneLen    = 8
	maxPhoneLen    = 20
	minPhoneDigits = 7
)

var (
	phoneRe = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)

	validate = validator.New()
)

// validName accepts Latin or Arabic letters (Arabic diacritics included)
// separated by spaces, apostrophes and hyphens, with at least one letter.
func validName(s string) bool {
	letters := 0
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '\'' || r == '-':
		case unicode.IsLetter(r) && (unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Arabic, r)):
			letters++
		case unicode.Is(unicode.Mn, r) && r >= 0x0610 && r <= 0x06ED:
			// harakat; Unicode files most of them under the Inherited script
		default:
			return false
		}
	}
	return letters > 0
}

// validPhone counts the whole string, leading + included, against the
// column width and requires enough digits to be dialable.
func validPhone(s string) bool {
	if n := utf8.RuneCountInString(s); n < minPhoneLen || n > maxPhoneLen {
		return false
	}
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

// ValidationError carries one message key per offending field.  It is
// returned before any database access.
type ValidationError struct {
	Fields map[string]i18n.Key
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid booking draft: %s", strings.Join(names, ", "))
}

// Localize renders the field errors in lang.
func (e *ValidationError) Localize(lang i18n.Lang) map[string]string {
	out := make(map[string]string, len(e.Fields))
	for f, k := range e.Fields {
		out[f] = i18n.T(lang, k)
	}
	return out
}

// ValidateDraft checks the customer fields and the duration.  It returns
// nil or a *ValidationError listing every failed field.
func ValidateDraft(d Draft) error {
	d = d.Normalize()
	fields := make(map[string]i18n.Key)

	switch n := utf8.RuneCountInString(d.CustomerName); {
	case n == 0:
		fields["customer_name"] = i18n.NameRequired
	case n < minNameLen || n > maxNameLen:
		fields["customer_name"] = i18n.NameLength
	case !validName(d.CustomerName):
		fields["customer_name"] = i18n.NameCharacters
	}

	if err := validate.Var(d.CustomerEmail, "required,email,max=255"); err != nil {
		fields["customer_email"] = i18n.EmailInvalid
	}

	if !validPhone(d.CustomerPhone) {
		fields["customer_phone"] = i18n.PhoneInvalid
	}

	if d.Hours < pricing.MinHours || d.Hours > pricing.MaxHours {
		fields["hours"] = i18n.HoursRange
	}

	if _, err := time.Parse(DateLayout, d.BookingDate); err != nil {
		fields["booking_date"] = i18n.DateInvalid
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
