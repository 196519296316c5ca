package checkinapi

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/stratawell/internal/app/system/inputval"
	"github.com/dalemusser/stratawell/internal/app/system/jsonutil"
	"github.com/dalemusser/stratawell/internal/app/system/ledger"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// csvHeader lists the export columns in order.
var csvHeader = []string{
	"date",
	"mood_label", "mood_score",
	"energy_label", "energy_score",
	"appetite", "sleep_hours",
	"bloating", "bloating_severity",
	"exercised", "exercise_type", "exercise_minutes",
	"period", "period_start", "flow_level",
	"sick", "pain_areas", "sick_notes",
	"mood_tags", "note", "notable_events",
}

// ExportHandler handles GET /checkins/export.csv?user_id=u1&range=90d.
//
// Streams the user's check-ins in the range as CSV, oldest first. List
// columns are joined with "; ". Absent values are empty cells.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	in := rangeInput{
		UserID: query.Get(r, "user_id"),
		Range:  query.Get(r, "range"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, r, res.Fields())
		return
	}

	checkins, err := h.inRange(r.Context(), in.UserID, in.Range)
	if err != nil {
		h.writeStoreError(w, r, "export", in.UserID, err)
		return
	}

	filename := "checkins-" + h.now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		h.logger.Warn("csv export aborted", zap.String("user_id", in.UserID), zap.Error(err))
		return
	}
	for _, c := range checkins {
		if err := cw.Write(csvRow(c)); err != nil {
			h.logger.Warn("csv export aborted", zap.String("user_id", in.UserID), zap.Error(err))
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("csv export flush failed", zap.String("user_id", in.UserID), zap.Error(err))
		return
	}

	ledger.AddMetadata(r.Context(), "rows", len(checkins))
	h.logger.Debug("check-ins exported",
		zap.String("user_id", in.UserID),
		zap.Int("rows", len(checkins)))
}

func csvRow(c models.CheckIn) []string {
	return []string{
		c.Date,
		text(c.MoodLabel), intCell(c.MoodScore),
		text(c.EnergyLabel), intCell(c.EnergyScore),
		intCell(c.Appetite), floatCell(c.SleepHours),
		strconv.FormatBool(c.Bloating), intCell(c.BloatingSeverity),
		strconv.FormatBool(c.Exercised), text(c.ExerciseType), intCell(c.ExerciseMinutes),
		strconv.FormatBool(c.Period), strconv.FormatBool(c.PeriodStart), intCell(c.FlowLevel),
		strconv.FormatBool(c.Sick), list(c.PainAreas), text(c.SickNotes),
		list(c.MoodTags), text(c.Note), text(c.NotableEvents),
	}
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return guardFormula(*s)
}

func list(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = guardFormula(s)
	}
	return strings.Join(out, "; ")
}

// guardFormula prefixes user text that a spreadsheet would run as a formula.
func guardFormula(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
