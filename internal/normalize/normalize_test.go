package normalize

import (
	"strings"
	"testing"
)

// msg joins header and body lines with CRLF line endings.
func msg(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestMessageSinglePartPlain(t *testing.T) {
	raw := msg(
		"From: Alice Example <alice@example.com>",
		"Subject: Server down",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"The production server is not responding.",
	)

	content := Message(raw)

	if content.Subject != "Server down" {
		t.Errorf("Subject = %q; want %q", content.Subject, "Server down")
	}
	if content.Sender != "Alice Example <alice@example.com>" {
		t.Errorf("Sender = %q; want verbatim From header", content.Sender)
	}
	if content.Body != "The production server is not responding." {
		t.Errorf("Body = %q", content.Body)
	}
}

func TestMessageSinglePartHTML(t *testing.T) {
	raw := msg(
		"From: bob@example.com",
		"Subject: Newsletter",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><body><p>Hello   there</p><p>Second&nbsp;line</p></body></html>",
	)

	content := Message(raw)

	if content.Body != "Hello there Second line" {
		t.Errorf("Body = %q; want cleaned, collapsed text", content.Body)
	}
}

func TestMessageMultipartPlainWins(t *testing.T) {
	// HTML part declared before the plain part: plain still wins.
	raw := msg(
		"From: carol@example.com",
		"Subject: Mixed",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>HTML version</p>",
		"--BOUNDARY",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Plain version",
		"--BOUNDARY--",
		"",
	)

	content := Message(raw)

	if content.Body != "Plain version" {
		t.Errorf("Body = %q; want the text/plain part regardless of order", content.Body)
	}
}

func TestMessageMultipartLastHTMLFallback(t *testing.T) {
	raw := msg(
		"From: dave@example.com",
		"Subject: HTML only",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>First html</p>",
		"--BOUNDARY",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>Second html</p>",
		"--BOUNDARY--",
		"",
	)

	content := Message(raw)

	if content.Body != "Second html" {
		t.Errorf("Body = %q; want the last text/html part cleaned", content.Body)
	}
}

func TestMessageNoTextContent(t *testing.T) {
	raw := msg(
		"From: eve@example.com",
		"Subject: Attachment only",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: application/octet-stream",
		`Content-Disposition: attachment; filename="data.bin"`,
		"",
		"binarybytes",
		"--BOUNDARY--",
		"",
	)

	content := Message(raw)

	if content.Body != "" {
		t.Errorf("Body = %q; want empty body for message with no text parts", content.Body)
	}
	if content.Subject != "Attachment only" {
		t.Errorf("Subject = %q", content.Subject)
	}
}

func TestMessageEncodedSubject(t *testing.T) {
	raw := msg(
		"From: frank@example.com",
		"Subject: =?UTF-8?B?SGVsbG8gV29ybGQ=?=",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"body",
	)

	content := Message(raw)

	if content.Subject != "Hello World" {
		t.Errorf("Subject = %q; want decoded %q", content.Subject, "Hello World")
	}
}

func TestMessageUnparseableFallsBackToRaw(t *testing.T) {
	raw := []byte("not a mime message at all")

	content := Message(raw)

	if content.Body != "not a mime message at all" {
		t.Errorf("Body = %q; want whole raw content as plain text", content.Body)
	}
}

func TestMessageIdempotent(t *testing.T) {
	raw := msg(
		"From: Alice <alice@example.com>",
		"Subject: Repeatable",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<div>same   result<br>every time</div>",
	)

	first := Message(raw)
	second := Message(raw)

	if first != second {
		t.Errorf("normalization not idempotent: %+v vs %+v", first, second)
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "tags stripped",
			in:   "<p>Hello <b>world</b></p>",
			want: "Hello world",
		},
		{
			name: "script and style skipped",
			in:   "<style>p{color:red}</style><script>alert(1)</script><p>kept</p>",
			want: "kept",
		},
		{
			name: "whitespace collapsed",
			in:   "<div>a\n\n   b\t\tc</div>",
			want: "a b c",
		},
		{
			name: "entities decoded",
			in:   "<p>fish &amp; chips</p>",
			want: "fish & chips",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanHTML(tc.in); got != tc.want {
				t.Errorf("CleanHTML(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  a \r\n b\t\tc  ")
	if got != "a b c" {
		t.Errorf("CollapseWhitespace = %q; want %q", got, "a b c")
	}
}
