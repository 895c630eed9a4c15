package filter

import (
	"net/mail"
	"strings"
	"testing"
)

func parseMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to parse test message: %v", err)
	}
	return msg
}

func TestExtractTextPlainMessage(t *testing.T) {
	msg := parseMessage(t, "From: a@example.com\r\n"+
		"Subject: hello\r\n"+
		"\r\n"+
		"plain body text\r\n")

	text, err := extractTextFromMessage(msg)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	if !strings.Contains(text, "plain body text") {
		t.Fatalf("body lost: %q", text)
	}
}

func TestExtractTextMultipart(t *testing.T) {
	msg := parseMessage(t, "From: a@example.com\r\n"+
		"Content-Type: multipart/alternative; boundary=BOUNDARY\r\n"+
		"\r\n"+
		"--BOUNDARY\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n"+
		"\r\n"+
		"the plain part\r\n"+
		"--BOUNDARY\r\n"+
		"Content-Type: text/html; charset=utf-8\r\n"+
		"\r\n"+
		"<p>the html part</p>\r\n"+
		"--BOUNDARY--\r\n")

	text, err := extractTextFromMessage(msg)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	if !strings.Contains(text, "the plain part") {
		t.Fatalf("text/plain part lost: %q", text)
	}
	if strings.Contains(text, "html part") {
		t.Fatalf("text/html part leaked into the classifier input: %q", text)
	}
}

func TestExtractTextMultipartWithoutBoundary(t *testing.T) {
	msg := parseMessage(t, "From: a@example.com\r\n"+
		"Content-Type: multipart/mixed\r\n"+
		"\r\n"+
		"raw fallback body\r\n")

	text, err := extractTextFromMessage(msg)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	if !strings.Contains(text, "raw fallback body") {
		t.Fatalf("fallback body lost: %q", text)
	}
}

func TestDecodeEncodedHeader(t *testing.T) {
	decoded, err := decodeEncodedHeader("=?UTF-8?Q?Conta_suspensa_=2D_a=C3=A7=C3=A3o_necess=C3=A1ria?=")
	if err != nil {
		t.Fatalf("decoding failed: %v", err)
	}
	if !strings.Contains(decoded, "ação necessária") {
		t.Fatalf("unexpected decoded header: %q", decoded)
	}
}

func TestDecodeEncodedHeaderPlain(t *testing.T) {
	decoded, err := decodeEncodedHeader("Just a subject")
	if err != nil {
		t.Fatalf("decoding failed: %v", err)
	}
	if decoded != "Just a subject" {
		t.Fatalf("plain header changed: %q", decoded)
	}
}
