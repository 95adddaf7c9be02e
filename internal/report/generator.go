// Package report builds downloadable exports of feeding and medication
// logs. Generation runs on a fixed worker pool behind Manager; Generator
// does the actual querying and rendering.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/repository"
	"github.com/xuri/excelize/v2"
)

type Kind string

const (
	KindFeeding    Kind = "feeding"
	KindMedication Kind = "medication"
	KindCombined   Kind = "combined"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFeeding, KindMedication, KindCombined:
		return Kind(s), nil
	}
	return "", fmt.Errorf("invalid report type %q", s)
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatExcel:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid format %q, use csv, json, or excel", s)
}

// Artifact is a fully rendered report held in memory until downloaded or
// cleaned up.
type Artifact struct {
	Data        []byte
	Kind        Kind
	Format      Format
	RecordCount int
	GeneratedAt time.Time
}

func (a *Artifact) Filename() string {
	ext := map[Format]string{FormatCSV: "csv", FormatJSON: "json", FormatExcel: "xlsx"}[a.Format]
	return fmt.Sprintf("%s_report_%s.%s", a.Kind, a.GeneratedAt.Format("20060102_150405"), ext)
}

func (a *Artifact) MIMEType() string {
	switch a.Format {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

type Generator struct {
	repos repository.Registry
	clock clock.Clock
}

func NewGenerator(repos repository.Registry, clk clock.Clock) *Generator {
	return &Generator{repos: repos, clock: clk}
}

func (g *Generator) Generate(ctx context.Context, userID string, kind Kind, format Format, from, to *time.Time) (*Artifact, error) {
	var (
		feedings []model.FeedingLog
		meds     []model.MedicationLog
		err      error
	)
	if kind == KindFeeding || kind == KindCombined {
		feedings, err = g.repos.Feedings().ListByRange(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
	}
	if kind == KindMedication || kind == KindCombined {
		meds, err = g.repos.Medications().ListByRange(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
	}

	var data []byte
	switch format {
	case FormatCSV:
		data, err = renderCSV(kind, feedings, meds)
	case FormatJSON:
		data, err = renderJSON(kind, feedings, meds)
	case FormatExcel:
		data, err = renderExcel(kind, feedings, meds)
	default:
		err = fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Data:        data,
		Kind:        kind,
		Format:      format,
		RecordCount: len(feedings) + len(meds),
		GeneratedAt: g.clock.Now(),
	}, nil
}

var feedingHeader = []string{"id", "amount_ml", "flushed_before", "flushed_after", "time_given"}

var medicationHeader = []string{"id", "medication_name", "dosage", "amount_ml", "route", "notes", "flushed_before", "flushed_after", "time_given"}

func feedingRow(l model.FeedingLog) []string {
	return []string{
		strconv.FormatUint(l.ID, 10),
		strconv.FormatFloat(l.AmountML, 'f', -1, 64),
		strconv.FormatBool(l.FlushedBefore),
		strconv.FormatBool(l.FlushedAfter),
		l.TimeGiven.Format(time.RFC3339),
	}
}

func medicationRow(l model.MedicationLog) []string {
	return []string{
		strconv.FormatUint(l.ID, 10),
		l.MedicationName,
		l.Dosage,
		strconv.FormatFloat(l.AmountML, 'f', -1, 64),
		l.Route,
		l.Notes,
		strconv.FormatBool(l.FlushedBefore),
		strconv.FormatBool(l.FlushedAfter),
		l.TimeGiven.Format(time.RFC3339),
	}
}

func renderCSV(kind Kind, feedings []model.FeedingLog, meds []model.MedicationLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if kind == KindFeeding || kind == KindCombined {
		if err := w.Write(feedingHeader); err != nil {
			return nil, err
		}
		for _, l := range feedings {
			if err := w.Write(feedingRow(l)); err != nil {
				return nil, err
			}
		}
	}
	if kind == KindCombined {
		w.Flush()
		buf.WriteString("\n")
	}
	if kind == KindMedication || kind == KindCombined {
		if err := w.Write(medicationHeader); err != nil {
			return nil, err
		}
		for _, l := range meds {
			if err := w.Write(medicationRow(l)); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type feedingRecord struct {
	ID            uint64  `json:"id"`
	AmountML      float64 `json:"amount_ml"`
	FlushedBefore bool    `json:"flushed_before"`
	FlushedAfter  bool    `json:"flushed_after"`
	TimeGiven     string  `json:"time_given"`
}

type medicationRecord struct {
	ID             uint64  `json:"id"`
	MedicationName string  `json:"medication_name"`
	Dosage         string  `json:"dosage"`
	AmountML       float64 `json:"amount_ml"`
	Route          string  `json:"route"`
	Notes          string  `json:"notes"`
	FlushedBefore  bool    `json:"flushed_before"`
	FlushedAfter   bool    `json:"flushed_after"`
	TimeGiven      string  `json:"time_given"`
}

func renderJSON(kind Kind, feedings []model.FeedingLog, meds []model.MedicationLog) ([]byte, error) {
	doc := map[string]any{}
	if kind == KindFeeding || kind == KindCombined {
		rows := make([]feedingRecord, 0, len(feedings))
		for _, l := range feedings {
			rows = append(rows, feedingRecord{
				ID:            l.ID,
				AmountML:      l.AmountML,
				FlushedBefore: l.FlushedBefore,
				FlushedAfter:  l.FlushedAfter,
				TimeGiven:     l.TimeGiven.Format(time.RFC3339),
			})
		}
		doc["feeding"] = rows
	}
	if kind == KindMedication || kind == KindCombined {
		rows := make([]medicationRecord, 0, len(meds))
		for _, l := range meds {
			rows = append(rows, medicationRecord{
				ID:             l.ID,
				MedicationName: l.MedicationName,
				Dosage:         l.Dosage,
				AmountML:       l.AmountML,
				Route:          l.Route,
				Notes:          l.Notes,
				FlushedBefore:  l.FlushedBefore,
				FlushedAfter:   l.FlushedAfter,
				TimeGiven:      l.TimeGiven.Format(time.RFC3339),
			})
		}
		doc["medication"] = rows
	}
	return json.MarshalIndent(doc, "", "  ")
}

func renderExcel(kind Kind, feedings []model.FeedingLog, meds []model.MedicationLog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	writeSheet := func(sheet string, header []string, rows [][]string) error {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
			return err
		}
		for i, row := range rows {
			vals := make([]any, len(row))
			for j, v := range row {
				vals[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
				return err
			}
		}
		return nil
	}

	if kind == KindFeeding || kind == KindCombined {
		rows := make([][]string, 0, len(feedings))
		for _, l := range feedings {
			rows = append(rows, feedingRow(l))
		}
		if err := writeSheet("Feeding", feedingHeader, rows); err != nil {
			return nil, err
		}
	}
	if kind == KindMedication || kind == KindCombined {
		rows := make([][]string, 0, len(meds))
		for _, l := range meds {
			rows = append(rows, medicationRow(l))
		}
		if err := writeSheet("Medication", medicationHeader, rows); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
