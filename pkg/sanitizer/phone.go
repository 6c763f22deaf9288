package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegions are tried in order when a number has no international prefix.
var DefaultRegions = []string{"IN", "US"}

// NormalizePhone returns phone in E.164, or "" when no region can parse it.
func NormalizePhone(phone string, regions ...string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}
	if len(regions) == 0 {
		regions = DefaultRegions
	}

	for _, region := range regions {
		parsedNumber, err := phonenumbers.Parse(phone, strings.ToUpper(region))
		if err != nil || !phonenumbers.IsPossibleNumber(parsedNumber) {
			continue
		}
		return phonenumbers.Format(parsedNumber, phonenumbers.E164)
	}
	return ""
}

// PhoneNormalizer binds a region list so callers do not carry it around.
type PhoneNormalizer struct {
	regions []string
}

func NewPhoneNormalizer(regions []string) *PhoneNormalizer {
	return &PhoneNormalizer{regions: regions}
}

func (n *PhoneNormalizer) Normalize(phone string) string {
	return NormalizePhone(phone, n.regions...)
}

// NormalizeOrKeep returns the E.164 form, or the trimmed input when parsing
// fails so validation can report the original value.
func (n *PhoneNormalizer) NormalizeOrKeep(phone string) string {
	if normalized := n.Normalize(phone); normalized != "" {
		return normalized
	}
	return strings.TrimSpace(phone)
}
