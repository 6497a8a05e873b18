package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MinLen counts runes, not bytes.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters long", min)},
	}
}

func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("cannot exceed %d characters", max)},
	}
}

// ValidEmail accepts a bare address with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			at := strings.LastIndexByte(value, '@')
			return at > 0 && strings.Contains(value[at+1:], ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9()]{7,20}$`)

// ValidPhone accepts digits with an optional leading plus. Spaces, dots and
// dashes are ignored.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool {
			cleaned := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(value)
			return phoneRegex.MatchString(cleaned)
		},
		Error: ValidationError{Field: field, Message: "must be a valid phone number"},
	}
}

func OneOf[T comparable](field string, value T, options []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(options, value) },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v", options)},
	}
}

func RequiredTime(field string, value time.Time) Rule {
	return Rule{
		Check: func() bool { return !value.IsZero() },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// Before checks value < limit. Zero values pass so RequiredTime owns that case.
func Before(field string, value, limit time.Time) Rule {
	return Rule{
		Check: func() bool { return value.IsZero() || value.Before(limit) },
		Error: ValidationError{Field: field, Message: "must be before " + limit.Format(time.DateOnly)},
	}
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

// ParseDate reads a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Results are in UTC.
func ParseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

func ValidDate(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, err := ParseDate(value)
			return err == nil
		},
		Error: ValidationError{Field: field, Message: "must be a valid date"},
	}
}
