package utils

import (
	"strings"
	"testing"

	"github.com/sendgrid/rest"
)

func TestTTSRequestParams(t *testing.T) {
	req := ttsRequest("Here is your reminder: Buy milk")

	if req.Method != rest.Get {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.BaseURL != ttsBaseURL {
		t.Errorf("base url = %s, want %s", req.BaseURL, ttsBaseURL)
	}
	if got := req.QueryParams["q"]; got != "Here is your reminder: Buy milk" {
		t.Errorf("q = %q", got)
	}
	if got := req.QueryParams["tl"]; got != "en" {
		t.Errorf("tl = %q, want en", got)
	}
	if got := req.QueryParams["client"]; got != "tw-ob" {
		t.Errorf("client = %q, want tw-ob", got)
	}
}

func TestTTSRequestTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", ttsMaxRunes+50)
	req := ttsRequest(long)

	if got := len([]rune(req.QueryParams["q"])); got != ttsMaxRunes {
		t.Errorf("truncated length = %d, want %d", got, ttsMaxRunes)
	}
}
