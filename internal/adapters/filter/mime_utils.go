package filter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// extractTextFromMessage pulls the plain-text content out of a message.
// Only text/plain parts feed the classifier; attachments and HTML
// alternatives are skipped. Anything unparseable falls back to the raw
// body, because a garbled message still needs a verdict.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readAll(msg.Body)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readAll(msg.Body)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return readAll(msg.Body)
	}

	mr := multipart.NewReader(msg.Body, boundary)
	var textContent bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		partType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}
	return readAll(msg.Body)
}

func readAll(r io.Reader) (string, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(bodyBytes), nil
}

// decodeEncodedHeader decodes RFC 2047 encoded-word headers.
func decodeEncodedHeader(value string) (string, error) {
	dec := new(mime.WordDecoder)
	return dec.DecodeHeader(value)
}
