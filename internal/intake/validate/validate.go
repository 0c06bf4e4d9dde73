// Package validate checks user-typed detail and account fields. Failures are
// errx input errors whose message is safe to show the user.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
)

var (
	phoneRe = regexp.MustCompile(`^\+?\d{10,14}$`)
	emailRe = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	panRe   = regexp.MustCompile(`(?i)^[A-Z]{5}\d{4}[A-Z]$`)

	clientOrDPRe = regexp.MustCompile(`(?i)^[A-Z0-9][A-Z0-9\-_/.]{4,24}$`)
	folioRe      = regexp.MustCompile(`(?i)^[A-Z0-9][A-Z0-9\-_/.]{4,24}$`)
	dematRe      = regexp.MustCompile(`(?i)^[A-Z0-9][A-Z0-9\-_/.]{6,24}$`)

	isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyDateRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// MinAge is the youngest complainant accepted.
const MinAge = 18

const (
	msgName    = "Name looks too short. Please enter your **Full Name** (as per PAN):"
	msgPhone   = "Please enter a valid **Phone number**, e.g. +9198XXXXXXXX or 98XXXXXXXX."
	msgEmail   = "Please enter a valid **Email ID** (e.g., name@example.com):"
	msgPAN     = "PAN looks invalid. Please enter like **ABCDE1234F**:"
	msgAddress = "Address looks too short. Please enter your **Address**:"
	msgDOB     = "DOB looks invalid. Use **YYYY-MM-DD** or **DD/MM/YYYY**.\nPlease enter your **Date of Birth**:"
	msgMinor   = "You must be at least **18**. Please enter a valid **Date of Birth**:"
	msgFolio   = "That folio number doesn't look right. Use letters/digits (5–25 chars). Please enter your **Folio Number**:"
	msgDemat   = "That demat account number doesn't look right. Use letters/digits (7–25 chars). Please enter your **Demat Account Number**:"
	msgClient  = "That client / DP ID doesn't look right. Use letters/digits (5–25 chars), or type **no** to skip:"
)

// Detail validates raw for field f and returns the value to store.
func Detail(f model.DetailField, raw string, today time.Time) (string, error) {
	v := strings.TrimSpace(raw)
	switch f {
	case model.FieldFullName:
		if utf8.RuneCountInString(v) < 2 {
			return "", errx.Input(msgName)
		}
		return v, nil
	case model.FieldPhone:
		if !phoneRe.MatchString(v) {
			return "", errx.Input(msgPhone)
		}
		return v, nil
	case model.FieldEmail:
		if !emailRe.MatchString(v) {
			return "", errx.Input(msgEmail)
		}
		return v, nil
	case model.FieldPAN:
		if !panRe.MatchString(v) {
			return "", errx.Input(msgPAN)
		}
		return strings.ToUpper(v), nil
	case model.FieldAddress:
		if utf8.RuneCountInString(v) < 5 {
			return "", errx.Input(msgAddress)
		}
		return v, nil
	case model.FieldDOB:
		dob, ok := ParseDOB(v)
		if !ok {
			return "", errx.Input(msgDOB)
		}
		if Age(dob, today) < MinAge {
			return "", errx.Input(msgMinor)
		}
		return dob.Format(time.DateOnly), nil
	}
	return "", errx.Input(fmt.Sprintf("Unexpected field %q.", f))
}

// ParseDOB accepts YYYY-MM-DD or DD/MM/YYYY and rejects impossible dates.
func ParseDOB(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	var layout string
	switch {
	case isoDateRe.MatchString(s):
		layout = "2006-01-02"
	case dmyDateRe.MatchString(s):
		layout = "02/01/2006"
	default:
		return time.Time{}, false
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Age is whole years between dob and today.
func Age(dob, today time.Time) int {
	years := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		years--
	}
	return years
}

func Folio(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if !folioRe.MatchString(v) {
		return "", errx.Input(msgFolio)
	}
	return v, nil
}

func DematAccount(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if !dematRe.MatchString(v) {
		return "", errx.Input(msgDemat)
	}
	return v, nil
}

func ClientOrDP(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if !clientOrDPRe.MatchString(v) {
		return "", errx.Input(msgClient)
	}
	return v, nil
}

var allowedAttachments = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".docx": true, ".txt": true,
}

// AllowedAttachment reports whether the file extension is accepted.
func AllowedAttachment(name string) bool {
	return allowedAttachments[strings.ToLower(filepath.Ext(name))]
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SafeFilename strips directories and replaces anything outside [A-Za-z0-9._-].
func SafeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	return unsafeFileChars.ReplaceAllString(base, "_")
}
