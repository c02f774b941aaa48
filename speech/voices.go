package speech

import (
	"golang.org/x/text/language"
)

// Locale maps a LanguageBridge language code to the recognition locale and
// synthesis voice the speech service expects.
type Locale struct {
	Code        string // language code used throughout the app
	Name        string // display name
	Recognition string // speech-to-text locale
	Voice       string // synthesis voice identifier
}

// defaultLocale is the fallback for unsupported language codes.
const defaultLocale = "en"

// locales is the fixed language table. The formal Persian register keeps the
// fa-IR recognition locale but speaks with a different voice.
var locales = []Locale{
	{Code: "en", Name: "English", Recognition: "en-US", Voice: "en-US-JennyNeural"},
	{Code: "fa", Name: "Dari/Farsi", Recognition: "fa-IR", Voice: "fa-IR-DilaraNeural"},
	{Code: "fa-IR-formal", Name: "Farsi (formal)", Recognition: "fa-IR", Voice: "fa-IR-FaridNeural"},
	{Code: "ps", Name: "Pashto", Recognition: "ps-AF", Voice: "ps-AF-LatifaNeural"},
	{Code: "ar", Name: "Arabic", Recognition: "ar-SA", Voice: "ar-SA-ZariyahNeural"},
	{Code: "ur", Name: "Urdu", Recognition: "ur-PK", Voice: "ur-PK-UzmaNeural"},
	{Code: "uz", Name: "Uzbek", Recognition: "uz-UZ", Voice: "uz-UZ-MadinaNeural"},
	{Code: "uk", Name: "Ukrainian", Recognition: "uk-UA", Voice: "uk-UA-PolinaNeural"},
	{Code: "es", Name: "Spanish", Recognition: "es-ES", Voice: "es-ES-ElviraNeural"},
}

// matcher resolves BCP 47 variants ("fa-AF", "en-GB") onto the table. The
// formal Persian register is not a real tag and is matched by exact code only.
var matcher language.Matcher

func init() {
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		if l.Code == "fa-IR-formal" {
			continue
		}
		tags = append(tags, language.Make(l.Code))
	}
	matcher = language.NewMatcher(tags)
}

// Locales returns the supported language table.
func Locales() []Locale {
	out := make([]Locale, len(locales))
	copy(out, locales)
	return out
}

// LookupLocale resolves a language code to its locale entry, falling back to
// English for unsupported or malformed codes.
func LookupLocale(code string) Locale {
	for _, l := range locales {
		if l.Code == code {
			return l
		}
	}

	if tag, err := language.Parse(code); err == nil {
		_, index, conf := matcher.Match(tag)
		if conf > language.No {
			base := locales[0].Code
			// The matcher index counts only real tags, which skip the
			// formal Persian entry.
			n := 0
			for _, l := range locales {
				if l.Code == "fa-IR-formal" {
					continue
				}
				if n == index {
					base = l.Code
					break
				}
				n++
			}
			if conf >= language.High {
				return LookupLocale(base)
			}
		}
	}

	return LookupLocale(defaultLocale)
}

// SupportedLanguage reports whether the code resolves without falling back.
func SupportedLanguage(code string) bool {
	for _, l := range locales {
		if l.Code == code {
			return true
		}
	}
	return false
}
