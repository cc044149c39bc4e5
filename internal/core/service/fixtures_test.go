package service

import (
	"encoding/json"
	"testing"
)

// reportDocument returns a valid report as a mutable JSON object.
func reportDocument() map[string]any {
	return map[string]any{
		"reporter":    "alice@x.com",
		"report_time": "2023-01-01T00:00:00Z",
		"message_id":  "m1",
		"sender":      "bob@y.com",
		"subject":     "Hi",
		"body": map[string]any{
			"preferred": "text",
			"plaintext": "text",
			"html":      "",
			"rtf":       "",
		},
		"headers":     []any{},
		"tos":         []any{"Carol@Z.com"},
		"ccs":         []any{},
		"attachments": []any{},
	}
}

func encodeDocument(t *testing.T, document map[string]any) []byte {
	t.Helper()
	encoded, err := json.Marshal(document)
	if err != nil {
		t.Fatalf("cannot encode document: %v", err)
	}
	return encoded
}
