package gemini

// Request shapes for the generateContent endpoint. Field names follow the
// snake_case wire format.

type Payload struct {
	Contents []Content `json:"contents"`
	Tools    []Tool    `json:"tools,omitempty"`
}

type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is either a text part or an inline-data part, never both.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries base64-encoded file bytes with their MIME type.
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type Tool struct {
	GoogleSearch *GoogleSearch `json:"googleSearch,omitempty"`
}

// GoogleSearch enables the built-in web-search grounding tool. It carries no
// configuration.
type GoogleSearch struct{}

// NewTextPart returns a text part.
func NewTextPart(text string) Part {
	return Part{Text: text}
}

// NewInlineDataPart returns an inline-data part for already-encoded bytes.
func NewInlineDataPart(mimeType, base64Data string) Part {
	return Part{InlineData: &InlineData{MimeType: mimeType, Data: base64Data}}
}

// NewSearchPayload builds a text-only payload with the web-search tool
// enabled.
func NewSearchPayload(query string) Payload {
	return Payload{
		Contents: []Content{
			{Role: "user", Parts: []Part{NewTextPart(query)}},
		},
		Tools: []Tool{
			{GoogleSearch: &GoogleSearch{}},
		},
	}
}

// NewAnalyzePayload builds a multimodal payload: the file parts in their
// given order, followed by the query as a trailing text part. The search
// tool is not enabled for analysis calls.
func NewAnalyzePayload(fileParts []Part, query string) Payload {
	parts := make([]Part, 0, len(fileParts)+1)
	parts = append(parts, fileParts...)
	parts = append(parts, NewTextPart(query))
	return Payload{
		Contents: []Content{
			{Role: "user", Parts: parts},
		},
	}
}

// GenerationResult is the extracted upstream response: the generated answer
// and, when grounding ran, the rendered search-result snippet.
type GenerationResult struct {
	Text         string
	SearchResult string
}
