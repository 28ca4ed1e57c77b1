package validate

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "bizdir/internal/errors"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'&.,-]{1,80}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// report json names so callers see the fields they sent
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Struct runs the `validate` tags on req. A missing required field is reported as
// MissingRequiredField naming the fields; any other rule failure is InvalidInput.
func Struct(req any) error {
	err := instance().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !ierr.As(err, &verrs) {
		return ierr.Internal(err, "validate request")
	}
	var missing, invalid []string
	details := map[string]any{}
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return ierr.WithError(err).
			WithHintf("Missing required fields: %s", strings.Join(missing, ", ")).
			WithReportableDetails(details).
			Mark(ierr.ErrMissingRequiredField)
	}
	return ierr.WithError(err).
		WithHintf("Invalid fields: %s", strings.Join(invalid, ", ")).
		WithReportableDetails(details).
		Mark(ierr.ErrInvalidInput)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (uuids, seeded category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Page parses a 1-based page number, clamping junk to 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 1000 {
		return 1000
	}
	return n
}

// Password enforces a length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 72
}
