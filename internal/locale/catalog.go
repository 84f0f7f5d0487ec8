// Package locale holds the user-facing strings of the client.
package locale

import "strings"

// Catalog is the set of localized strings shown to the user.
type Catalog struct {
	Code                  string
	TextFailure           string
	VoiceFailure          string
	MicrophoneUnavailable string
	Busy                  string
	VoiceDropped          string
	VoicePlaceholder      string
	EmailPrompt           string
	AddEmail              string
	Greeting              string
	GreetingHint          string
	InputPlaceholder      string
	Send                  string
	Recording             string
	KeyHint               string
	Typing                string
	You                   string
	Assistant             string
}

var hindi = Catalog{
	Code:                  "hi",
	TextFailure:           "क्षमा करें, मुझे एक त्रुटि आई। कृपया फिर से कोशिश करें।",
	VoiceFailure:          "क्षमा करें, मैं आपका वॉइस संदेश प्रोसेस नहीं कर सका। कृपया फिर से कोशिश करें।",
	MicrophoneUnavailable: "माइक्रोफोन तक पहुंच नहीं मिल सकी। कृपया अनुमतियों की जांच करें।",
	Busy:                  "कृपया पिछले उत्तर की प्रतीक्षा करें।",
	VoiceDropped:          "पिछला उत्तर अभी आ रहा है, आपका वॉइस संदेश नहीं भेजा गया।",
	VoicePlaceholder:      "🎤 Voice message",
	EmailPrompt:           "बेहतर सहायता के लिए अपना ईमेल दर्ज करें:",
	AddEmail:              "+ ईमेल जोड़ें",
	Greeting:              "बातचीत शुरू करें!",
	GreetingHint:          "संदेश टाइप करें या बोलने के लिए माइक्रोफोन पर क्लिक करें",
	InputPlaceholder:      "अपना संदेश यहाँ टाइप करें...",
	Send:                  "भेजें",
	Recording:             "🔴 रिकॉर्डिंग... समाप्त होने पर रोकें",
	KeyHint:               "भेजने के लिए Enter दबाएं, नई लाइन के लिए Shift+Enter",
	Typing:                "टाइप कर रहा है...",
	You:                   "आप",
	Assistant:             "सहायक",
}

var english = Catalog{
	Code:                  "en",
	TextFailure:           "Sorry, I ran into an error. Please try again.",
	VoiceFailure:          "Sorry, I couldn't process your voice message. Please try again.",
	MicrophoneUnavailable: "Could not access the microphone. Please check permissions.",
	Busy:                  "Please wait for the current reply.",
	VoiceDropped:          "A reply is still on its way, so your voice message was not sent.",
	VoicePlaceholder:      "🎤 Voice message",
	EmailPrompt:           "Enter your email for better support:",
	AddEmail:              "+ Add email",
	Greeting:              "Start a conversation!",
	GreetingHint:          "Type a message or press Ctrl+R to speak",
	InputPlaceholder:      "Type your message here...",
	Send:                  "Send",
	Recording:             "🔴 Recording... stop when done",
	KeyHint:               "Enter to send, Shift+Enter for a new line",
	Typing:                "typing...",
	You:                   "You",
	Assistant:             "Assistant",
}

// Default returns the Hindi catalog.
func Default() Catalog {
	return hindi
}

// Lookup returns the catalog for a language code, falling back to Default.
func Lookup(code string) Catalog {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	switch code {
	case "en":
		return english
	case "hi":
		return hindi
	default:
		return Default()
	}
}
