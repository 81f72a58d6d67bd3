// Package localization maps machine-readable rejection codes to display
// messages. Validation emits codes only; this is the single place where
// display text lives.
package localization

import "strings"

// Language is a lowercase ISO 639-1 code
type Language string

const (
	German  Language = "de"
	English Language = "en"
	Turkish Language = "tr"
)

// DefaultLanguage is used when a requested language has no catalog or a
// code has no entry in the requested language.
const DefaultLanguage = German

// Supported reports whether a catalog exists for the language
func Supported(lang Language) bool {
	_, ok := catalogs[lang]
	return ok
}

var catalogs = map[Language]map[string]string{
	German: {
		"MISSING_GUARDIAN":                 "Für minderjährige Patienten muss ein Erziehungsberechtigter angegeben werden.",
		"MISSING_POLICYHOLDER":             "Für familienversicherte Patienten muss der Hauptversicherte angegeben werden.",
		"INVALID_INSURANCE_TYPE_FOR_MINOR": "Minderjährige Patienten müssen familienversichert sein.",
		"INVALID_BIRTH_DATE":               "Das Geburtsdatum fehlt oder liegt in der Zukunft.",
	},
	English: {
		"MISSING_GUARDIAN":                 "A guardian must be provided for patients under 18.",
		"MISSING_POLICYHOLDER":             "A policyholder must be provided for family-insured patients.",
		"INVALID_INSURANCE_TYPE_FOR_MINOR": "Patients under 18 must be covered by family insurance.",
		"INVALID_BIRTH_DATE":               "The birth date is missing or lies in the future.",
	},
	Turkish: {
		"MISSING_GUARDIAN":                 "18 yaşından küçük hastalar için bir veli belirtilmelidir.",
		"MISSING_POLICYHOLDER":             "Aile sigortalı hastalar için sigorta sahibi belirtilmelidir.",
		"INVALID_INSURANCE_TYPE_FOR_MINOR": "18 yaşından küçük hastalar aile sigortası kapsamında olmalıdır.",
		"INVALID_BIRTH_DATE":               "Doğum tarihi eksik veya gelecekte bir tarih.",
	},
}

// Message resolves a rejection code to a display message. Resolution falls
// back to DefaultLanguage for unknown languages, and to the code itself
// when no catalog carries an entry.
func Message(lang Language, code string) string {
	catalog, ok := catalogs[lang]
	if !ok {
		catalog = catalogs[DefaultLanguage]
	}
	if msg, ok := catalog[code]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLanguage][code]; ok {
		return msg
	}
	return code
}

// Negotiate picks a supported language from an Accept-Language header. Only
// the primary subtag of each entry is considered; quality weights are
// honored by header order, which browsers already emit descending.
func Negotiate(header string) Language {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		if idx := strings.IndexByte(tag, ';'); idx >= 0 {
			tag = tag[:idx]
		}
		if idx := strings.IndexByte(tag, '-'); idx >= 0 {
			tag = tag[:idx]
		}
		lang := Language(strings.ToLower(strings.TrimSpace(tag)))
		if Supported(lang) {
			return lang
		}
	}
	return DefaultLanguage
}
