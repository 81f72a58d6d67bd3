package localization

import (
	"strings"
	"testing"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		lang Language
		code string
		want string
	}{
		{"german guardian message", German, "MISSING_GUARDIAN", "Erziehungsberechtigter"},
		{"english guardian message", English, "MISSING_GUARDIAN", "guardian"},
		{"turkish guardian message", Turkish, "MISSING_GUARDIAN", "veli"},
		{"unknown language falls back to german", Language("fr"), "MISSING_POLICYHOLDER", "Hauptversicherte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Message(tt.lang, tt.code)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Message() = %q, want substring %q", got, tt.want)
			}
		})
	}

	// Unknown codes pass through so the client still sees something stable.
	if got := Message(German, "SOME_NEW_CODE"); got != "SOME_NEW_CODE" {
		t.Errorf("Message() unknown code = %q", got)
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   Language
	}{
		{"de-DE,de;q=0.9,en;q=0.8", German},
		{"en-US,en;q=0.9", English},
		{"tr-TR", Turkish},
		{"fr-FR,fr;q=0.9", German}, // unsupported, fall back
		{"fr-FR, en;q=0.5", English},
		{"", German},
		{"TR", Turkish},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := Negotiate(tt.header); got != tt.want {
				t.Errorf("Negotiate(%q) = %s, want %s", tt.header, got, tt.want)
			}
		})
	}
}
