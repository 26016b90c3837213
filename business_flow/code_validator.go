package businessflow

import (
	"regexp"
	"strings"

	gonanoid "github.com/jaevor/go-nanoid"
)

const (
	GeneratedCodeLength   = 8
	generatedCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9-]{2,50}$`)

// reservedCodes are paths owned by the application itself.
var reservedCodes = map[string]struct{}{
	"admin":       {},
	"api":         {},
	"login":       {},
	"logout":      {},
	"dashboard":   {},
	"_next":       {},
	"static":      {},
	"public":      {},
	"about":       {},
	"contact":     {},
	"terms":       {},
	"privacy":     {},
	"help":        {},
	"settings":    {},
	"signup":      {},
	"register":    {},
	"signin":      {},
	"profile":     {},
	"account":     {},
	"favicon.ico": {},
	"robots.txt":  {},
	"sitemap.xml": {},
	"uploads":     {},
	"swagger":     {},
	"metrics":     {},
	"health":      {},
}

// IsValidCode reports whether code has the shape of a short link code.
func IsValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// IsReservedCode reports whether code collides with an application path, ignoring case.
func IsReservedCode(code string) bool {
	_, ok := reservedCodes[strings.ToLower(code)]
	return ok
}

// ValidateCode returns ErrInvalidCode or ErrReservedCode, nil when the code may be stored.
func ValidateCode(code string) error {
	if !IsValidCode(code) {
		return ErrInvalidCode
	}
	if IsReservedCode(code) {
		return ErrReservedCode
	}
	return nil
}

var generateCode = mustCodeGenerator()

func mustCodeGenerator() func() string {
	gen, err := gonanoid.CustomASCII(generatedCodeAlphabet, GeneratedCodeLength)
	if err != nil {
		panic(err)
	}
	return gen
}

// GenerateCode returns a random lower-case alphanumeric code.
func GenerateCode() string {
	return generateCode()
}
