package speech_test

import (
	"testing"

	"github.com/JustinDev-afk/languagebridge/speech"
)

func TestLookupLocaleExactCodes(t *testing.T) {
	tests := []struct {
		code  string
		voice string
	}{
		{"en", "en-US-JennyNeural"},
		{"fa", "fa-IR-DilaraNeural"},
		{"fa-IR-formal", "fa-IR-FaridNeural"},
		{"ps", "ps-AF-LatifaNeural"},
		{"ar", "ar-SA-ZariyahNeural"},
		{"ur", "ur-PK-UzmaNeural"},
		{"uz", "uz-UZ-MadinaNeural"},
		{"uk", "uk-UA-PolinaNeural"},
		{"es", "es-ES-ElviraNeural"},
	}
	for _, tt := range tests {
		if got := speech.LookupLocale(tt.code); got.Voice != tt.voice {
			t.Errorf("LookupLocale(%q).Voice = %q, want %q", tt.code, got.Voice, tt.voice)
		}
	}
}

func TestLookupLocaleFallsBackToEnglish(t *testing.T) {
	for _, code := range []string{"xx", "", "zz-ZZ", "!!"} {
		if got := speech.LookupLocale(code); got.Code != "en" {
			t.Errorf("LookupLocale(%q) = %q, want the en fallback", code, got.Code)
		}
	}
}

func TestLookupLocaleMatchesRegionalVariants(t *testing.T) {
	// Regional variants of supported bases should land on the base entry
	// rather than the English fallback.
	tests := []struct {
		code string
		want string
	}{
		{"en-GB", "en"},
		{"fa-AF", "fa"},
		{"es-MX", "es"},
	}
	for _, tt := range tests {
		if got := speech.LookupLocale(tt.code); got.Code != tt.want {
			t.Errorf("LookupLocale(%q) = %q, want %q", tt.code, got.Code, tt.want)
		}
	}
}

func TestFormalPersianSharesRecognitionLocale(t *testing.T) {
	formal := speech.LookupLocale("fa-IR-formal")
	base := speech.LookupLocale("fa")
	if formal.Recognition != base.Recognition {
		t.Errorf("formal register recognition = %q, want %q", formal.Recognition, base.Recognition)
	}
	if formal.Voice == base.Voice {
		t.Error("formal register should use a distinct voice")
	}
}

func TestSupportedLanguage(t *testing.T) {
	if !speech.SupportedLanguage("fa") || !speech.SupportedLanguage("en") {
		t.Error("table entries must be supported")
	}
	if speech.SupportedLanguage("xx") || speech.SupportedLanguage("") {
		t.Error("unknown codes must not be supported")
	}
}

func TestLocalesReturnsCopy(t *testing.T) {
	first := speech.Locales()
	first[0].Voice = "mutated"
	if speech.Locales()[0].Voice == "mutated" {
		t.Error("Locales() must not expose the internal table")
	}
}
