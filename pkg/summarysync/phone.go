package summarysync

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/goliatone/go-formsync/pkg/registry"
)

// Field names of the built-in phone compound.
const (
	PhoneField       = "phone"
	CountryCodeField = "countryCode"
	defaultRegion    = "US"
	defaultDialCode  = "+1"
	nanpCountryCode  = 1
)

var dialInText = regexp.MustCompile(`\(\+(\d+)\)`)

// PhoneCompound joins a phone number field with its country-code select and
// formats the pair for display.
func PhoneCompound() Compound {
	return Compound{
		Name:   PhoneField,
		Parts:  []string{PhoneField, CountryCodeField},
		Format: formatPhoneParts,
	}
}

func formatPhoneParts(parts map[string]registry.Field) string {
	phone, ok := parts[PhoneField]
	if !ok {
		return ""
	}
	number := strings.TrimSpace(phone.Element.Value())

	dial, region := "", ""
	if cc, ok := parts[CountryCodeField]; ok {
		dial = strings.TrimSpace(cc.Element.Value())
		if opt := cc.Element.SelectedOption(); opt != nil {
			region = strings.ToUpper(strings.TrimSpace(opt.AttrValue("data-iso")))
			if digits(dial) == "" {
				if m := dialInText.FindStringSubmatch(opt.OptionText()); m != nil {
					dial = "+" + m[1]
				}
			}
		}
	}
	return FormatPhone(number, dial, region)
}

// FormatPhone renders number for the region implied by region (ISO 3166 code)
// or dial (e.g. "+44"). NANP numbers read "+1 (201) 555-0123"; other regions
// use the international format. Numbers the phone metadata rejects fall back to "+1 (xxx) xxx-xxxx" for ten-digit NANP numbers and to
// "<dial> <number>" otherwise. An empty number yields "".
func FormatPhone(number, dial, region string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	if region == "" {
		region = regionForDial(dial)
	}
	if region == "" {
		region = defaultRegion
	}

	if parsed, err := phonenumbers.Parse(number, region); err == nil && phonenumbers.IsValidNumber(parsed) {
		if parsed.GetCountryCode() == nanpCountryCode {
			return defaultDialCode + " " + phonenumbers.Format(parsed, phonenumbers.NATIONAL)
		}
		return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
	}
	return fallbackPhone(number, dial)
}

func regionForDial(dial string) string {
	code, err := strconv.Atoi(digits(dial))
	if err != nil || code <= 0 {
		return ""
	}
	region := phonenumbers.GetRegionCodeForCountryCode(code)
	if region == "ZZ" {
		return ""
	}
	return region
}

func fallbackPhone(number, dial string) string {
	dial = strings.TrimSpace(dial)
	if dial == "" {
		dial = defaultDialCode
	}
	if !strings.HasPrefix(dial, "+") {
		dial = "+" + dial
	}
	clean := digits(number)
	if dial == defaultDialCode && len(clean) == 10 {
		return "+1 (" + clean[:3] + ") " + clean[3:6] + "-" + clean[6:]
	}
	return dial + " " + number
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
