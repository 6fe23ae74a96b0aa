package normalize

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	// Register charset decoders (windows-1252, iso-8859-*, koi8-r, etc.)
	_ "github.com/emersion/go-message/charset"

	"github.com/nhle/mail-triage/internal/model"
)

// Message parses a raw RFC 5322 message and extracts its subject, the
// verbatim From header, and a plain-text body.
//
// Body selection: for multi-part messages the first text/plain part wins
// and scanning stops there; if no text/plain part exists, the last
// text/html part is cleaned to plain text. Single-part messages use their
// body directly (cleaned when HTML). A message with neither yields an
// empty body. Decoding problems degrade per part rather than failing the
// whole message.
func Message(raw []byte) model.Content {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Unparseable MIME: treat the whole thing as plain text.
		return model.Content{Body: strings.ToValidUTF8(string(raw), "")}
	}
	defer mr.Close()

	content := model.Content{
		Subject: decodeSubject(mr.Header),
		Sender:  mr.Header.Get("From"),
	}

	var htmlBody string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		text := strings.ToValidUTF8(string(body), "")

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			content.Body = text
			return content
		case strings.HasPrefix(contentType, "text/html"):
			// Last HTML part wins when no plain part exists.
			htmlBody = text
		}
	}

	if htmlBody != "" {
		content.Body = CleanHTML(htmlBody)
	}

	return content
}

// decodeSubject returns the RFC 2047 decoded Subject header, falling
// back to the raw header value when decoding is not meaningful.
func decodeSubject(header mail.Header) string {
	subject, err := header.Subject()
	if err != nil {
		return header.Get("Subject")
	}
	return subject
}
