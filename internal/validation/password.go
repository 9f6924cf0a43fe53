package validation

import (
	"bufio"
	_ "embed"
	"fmt"
	"strings"
	"unicode"
)

//go:embed common_passwords.txt
var commonPasswordsFile string

const (
	msgPasswordTooShort = "This password is too short. It must contain at least %d characters."
	msgPasswordNumeric  = "This password is entirely numeric."
	msgPasswordCommon   = "This password is too common."
	msgPasswordSimilar  = "The password is too similar to the %s."
)

// minSimilarityLength keeps one and two letter names from rejecting every password.
const minSimilarityLength = 3

type PasswordPolicy struct {
	MinLength       int
	RejectNumeric   bool
	RejectCommon    bool
	CheckSimilarity bool
	CommonPasswords map[string]struct{}
}

// Attribute is a user value the password must not resemble.
type Attribute struct {
	Name  string
	Value string
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:       8,
		RejectNumeric:   true,
		RejectCommon:    true,
		CheckSimilarity: true,
		CommonPasswords: LoadCommonPasswords(),
	}
}

// LoadCommonPasswords parses the embedded list, one lowercase password per line.
func LoadCommonPasswords() map[string]struct{} {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(commonPasswordsFile))
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	return set
}

// Check returns every rule the password breaks, in a stable order.
func (p PasswordPolicy) Check(password string, attrs ...Attribute) []string {
	var msgs []string

	if p.CheckSimilarity {
		lower := strings.ToLower(password)
		for _, a := range attrs {
			if tooSimilar(lower, strings.ToLower(a.Value)) {
				msgs = append(msgs, fmt.Sprintf(msgPasswordSimilar, a.Name))
				break
			}
		}
	}

	if p.MinLength > 0 && len([]rune(password)) < p.MinLength {
		msgs = append(msgs, fmt.Sprintf(msgPasswordTooShort, p.MinLength))
	}

	if p.RejectCommon {
		if _, ok := p.CommonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
			msgs = append(msgs, msgPasswordCommon)
		}
	}

	if p.RejectNumeric && isNumeric(password) {
		msgs = append(msgs, msgPasswordNumeric)
	}

	return msgs
}

func tooSimilar(password, value string) bool {
	if password == "" || len([]rune(value)) < minSimilarityLength {
		return false
	}
	return strings.Contains(password, value) || strings.Contains(value, password)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
