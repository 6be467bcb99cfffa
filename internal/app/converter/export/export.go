// Package export writes the pipeline run history as an Excel workbook.
package export

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tealeg/xlsx"
	"voice-relay/internal/app/model"
)

const sheetName = "Runs"

// ContentType is the media type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []string{
	"ID", "Execution", "Bucket", "Source Key", "Key", "Languages", "Status",
	"Transcript", "Outputs", "Error Message", "Started", "Finished",
}

// WriteRuns writes runs to w, one row per run.
func WriteRuns(w io.Writer, runs []model.Run) error {
	file, err := build(runs)
	if err != nil {
		return err
	}
	return file.Write(w)
}

// ToExcel saves runs to outputFilePath.
func ToExcel(runs []model.Run, outputFilePath string) error {
	f, err := os.Create(outputFilePath)
	if err != nil {
		return err
	}
	if err := WriteRuns(f, runs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func build(runs []model.Run) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return nil, err
	}

	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().Value = h
	}

	for _, r := range runs {
		row := sheet.AddRow()
		row.AddCell().SetInt64(r.ID)
		row.AddCell().Value = r.ExecutionID
		row.AddCell().Value = r.Bucket
		row.AddCell().Value = r.SourceKey
		row.AddCell().Value = r.Key
		row.AddCell().Value = strings.Join(r.TargetLanguages, ",")
		row.AddCell().Value = r.Status
		row.AddCell().Value = r.TranscriptURI
		row.AddCell().Value = formatOutputs(r.Outputs)
		row.AddCell().Value = r.ErrorMessage
		row.AddCell().Value = r.StartedAt.Format(time.RFC3339)
		if r.FinishedAt != nil {
			row.AddCell().Value = r.FinishedAt.Format(time.RFC3339)
		} else {
			row.AddCell().Value = ""
		}
	}
	return file, nil
}

// formatOutputs renders outputs as "lang=uri" lines sorted by language.
func formatOutputs(outputs map[string]string) string {
	langs := make([]string, 0, len(outputs))
	for lang := range outputs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	lines := make([]string, len(langs))
	for i, lang := range langs {
		lines[i] = lang + "=" + outputs[lang]
	}
	return strings.Join(lines, "\n")
}
