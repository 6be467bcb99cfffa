package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"voice-relay/internal/app/model"
)

func sampleRuns() []model.Run {
	started := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	finished := started.Add(3 * time.Minute)
	return []model.Run{
		{
			ID:              2,
			ExecutionID:     "pipeline-talk_1.mp3",
			Bucket:          "media",
			SourceKey:       "uploads/talk.mp3",
			Key:             "uploads/talk_1.mp3",
			TargetLanguages: []string{"es", "fr"},
			Status:          model.RunStatusCompleted,
			TranscriptURI:   "s3://media/transcripts/job.txt",
			Outputs: map[string]string{
				"fr": "s3://media/audio_outputs/talk_fr.mp3",
				"es": "s3://media/audio_outputs/talk_es.mp3",
			},
			StartedAt:  started,
			FinishedAt: &finished,
		},
		{
			ID:          1,
			ExecutionID: "pipeline-old.mp3",
			Status:      model.RunStatusStarted,
			StartedAt:   started.Add(-time.Hour),
		},
	}
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRuns(&buf, sampleRuns()))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, sheetName, sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Execution", sheet.Rows[0].Cells[1].Value)

	first := sheet.Rows[1].Cells
	assert.Equal(t, "2", first[0].Value)
	assert.Equal(t, "es,fr", first[5].Value)
	assert.Equal(t, "completed", first[6].Value)
	assert.Equal(t, "es=s3://media/audio_outputs/talk_es.mp3\nfr=s3://media/audio_outputs/talk_fr.mp3", first[8].Value)
	assert.Equal(t, "2024-03-09T14:08:07Z", first[11].Value)

	second := sheet.Rows[2].Cells
	assert.Equal(t, "started", second[6].Value)
	if len(second) > 11 {
		assert.Empty(t, second[11].Value)
	}
}

func TestToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.xlsx")
	require.NoError(t, ToExcel(sampleRuns(), path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, file.Sheets[0].Rows, 3)
}

func TestToExcel_BadPath(t *testing.T) {
	err := ToExcel(nil, filepath.Join(t.TempDir(), "missing", "runs.xlsx"))
	assert.Error(t, err)
}
