package locale

import "testing"

func TestLookupFallsBackToHindi(t *testing.T) {
	if got := Lookup("fr"); got.Code != "hi" {
		t.Fatalf("expected hindi fallback, got %s", got.Code)
	}
	if got := Lookup(""); got.Code != "hi" {
		t.Fatalf("expected hindi for empty code, got %s", got.Code)
	}
}

func TestLookupStripsRegion(t *testing.T) {
	if got := Lookup("en-US"); got.Code != "en" {
		t.Fatalf("expected en, got %s", got.Code)
	}
	if got := Lookup("HI_in"); got.Code != "hi" {
		t.Fatalf("expected hi, got %s", got.Code)
	}
}

func TestCatalogsAreComplete(t *testing.T) {
	for _, c := range []Catalog{Lookup("hi"), Lookup("en")} {
		fields := map[string]string{
			"TextFailure":           c.TextFailure,
			"VoiceFailure":          c.VoiceFailure,
			"MicrophoneUnavailable": c.MicrophoneUnavailable,
			"Busy":                  c.Busy,
			"VoiceDropped":          c.VoiceDropped,
			"VoicePlaceholder":      c.VoicePlaceholder,
			"EmailPrompt":           c.EmailPrompt,
			"Greeting":              c.Greeting,
		}
		for name, value := range fields {
			if value == "" {
				t.Fatalf("catalog %s missing %s", c.Code, name)
			}
		}
	}
}
