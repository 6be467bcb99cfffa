package storage

import (
	"encoding/json"
	"strings"
)

// transcribeDocument is the result document written by the transcription service.
type transcribeDocument struct {
	JobName string `json:"jobName"`
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
	} `json:"results"`
}

// ParseTranscript extracts the transcript from a transcription result document. Input that
// is not such a document is returned trimmed.
func ParseTranscript(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}

	var doc transcribeDocument
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.Results.Transcripts) == 0 {
		return trimmed
	}

	parts := make([]string, 0, len(doc.Results.Transcripts))
	for _, t := range doc.Results.Transcripts {
		if s := strings.TrimSpace(t.Transcript); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
