package model

// PipelineInput is the payload every orchestrator execution starts with.
// Key is the uniqueness-qualified name used for job and artifact naming; SourceKey is the
// uploaded object itself. Older payloads carry only Key, which then names both.
type PipelineInput struct {
	Bucket          string   `json:"bucket"`
	Key             string   `json:"key"`
	SourceKey       string   `json:"source_key,omitempty"`
	TargetLanguages []string `json:"target_languages"`
}

// MediaKey returns the key of the uploaded audio object.
func (in PipelineInput) MediaKey() string {
	if in.SourceKey != "" {
		return in.SourceKey
	}
	return in.Key
}

// Translation is one entry of a translation result set.
type Translation struct {
	URI  string `json:"uri"`
	Text string `json:"translated_text"`
}

// TranslationResultSet maps a target-language code to its translation.
type TranslationResultSet map[string]Translation

// Texts returns the language → translated text mapping consumed by synthesis.
func (s TranslationResultSet) Texts() map[string]string {
	texts := make(map[string]string, len(s))
	for lang, t := range s {
		texts[lang] = t.Text
	}
	return texts
}

// PipelineResult is the output of one pipeline run.
type PipelineResult struct {
	Key           string               `json:"key"`
	TranscriptJob string               `json:"transcript_job"`
	TranscriptURI string               `json:"transcript_uri"`
	Translations  TranslationResultSet `json:"translations"`
	Audio         map[string]string    `json:"audio"`
	Failures      map[string]string    `json:"failures,omitempty"`
}
