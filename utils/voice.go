package utils

import (
	"fmt"

	"github.com/sendgrid/rest"
)

// The same unauthenticated Google Translate endpoint gTTS wraps. It caps the
// utterance length, so long descriptions are truncated rather than rejected.
const (
	ttsBaseURL    = "https://translate.google.com/translate_tts"
	ttsMaxRunes   = 200
	ttsLang       = "en"
	ttsClientName = "tw-ob"
)

func ttsRequest(text string) rest.Request {
	runes := []rune(text)
	if len(runes) > ttsMaxRunes {
		text = string(runes[:ttsMaxRunes])
	}
	return rest.Request{
		Method:  rest.Get,
		BaseURL: ttsBaseURL,
		QueryParams: map[string]string{
			"ie":     "UTF-8",
			"q":      text,
			"tl":     ttsLang,
			"client": ttsClientName,
		},
	}
}

// SynthesizeVoice turns text into a short MP3 clip.
func SynthesizeVoice(text string) ([]byte, error) {
	resp, err := rest.Send(ttsRequest(text))
	if err != nil {
		return nil, &DeliveryError{Stage: "synthesize", Err: err}
	}
	if resp.StatusCode != 200 {
		return nil, &DeliveryError{Stage: "synthesize", Err: fmt.Errorf("tts returned status %d", resp.StatusCode)}
	}
	return []byte(resp.Body), nil
}
