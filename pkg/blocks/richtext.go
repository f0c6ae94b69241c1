package blocks

// RichText is the sanitize/compile collaborator used for title, text and html content.
// The serializer emits Compile(Sanitize(content)) verbatim.
type RichText interface {
	Sanitize(raw string) string
	Compile(sanitized string) string
}

// EscapedRichText treats content as plain text. It is the fallback when no collaborator
// is configured, so unsanitized markup never reaches the output.
type EscapedRichText struct{}

func (EscapedRichText) Sanitize(raw string) string {
	return escapeContent(raw)
}

func (EscapedRichText) Compile(sanitized string) string {
	return sanitized
}
