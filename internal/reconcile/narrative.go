package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// unknownMedicine is the display placeholder for routine entries
// missing a nickname.
const unknownMedicine = "알 수 없는 약"

// Empty-result templates. Exactly one is used when reconciliation
// produced no occurrences; the choice depends on the query range.
const (
	emptyTodayTemplate = "오늘은 복용할 약 일정이 없어요."
	emptyDateTemplate  = "%s에는 복용할 약 일정이 없어요."
	emptyRangeTemplate = "%s부터 %s까지 복용할 약 일정이 없어요."
)

// Narrative renders the report into its ordered display lines. It is a
// pure function of the report: every formatting rule (HH:MM times,
// ", " list joining, placeholder text, empty-range templates) lives
// here so the reconciliation algorithm stays independent of wording.
func Narrative(r *Report) []string {
	if len(r.Occurrences) == 0 {
		return []string{emptyLine(r)}
	}

	var lines []string
	for _, occ := range r.Occurrences {
		lines = append(lines, summaryLine(occ))
		if len(occ.Unmet) > 0 {
			lines = append(lines, fmt.Sprintf("아직 복용하지 않은 약이 있어요: %s", strings.Join(occ.Unmet, ", ")))
		}
		if occ.Upcoming {
			lines = append(lines, fmt.Sprintf("곧 %s 약 드실 시간이에요 (%s)", occ.SlotName, occ.Time))
		}
	}
	return lines
}

// Render joins the narrative lines into the final message.
func Render(r *Report) string {
	return strings.Join(Narrative(r), "\n")
}

// summaryLine is the per-occurrence line: date, time, slot name, and
// the medicines scheduled in it.
func summaryLine(occ Occurrence) string {
	date, err := time.Parse("2006-01-02", occ.Date)
	day := occ.Date
	if err == nil {
		day = shortDate(date)
	}
	return fmt.Sprintf("%s %s %s: %s", day, occ.Time, occ.SlotName, medicineList(occ.Medicines))
}

// medicineList joins medicine summaries with ", ". A missing dose
// leaves the quantity blank.
func medicineList(meds []Medicine) string {
	if len(meds) == 0 {
		return "등록된 약 없음"
	}
	parts := make([]string, len(meds))
	for i, m := range meds {
		if m.Dose > 0 {
			parts[i] = fmt.Sprintf("%s %d정", m.Name, m.Dose)
		} else {
			parts[i] = m.Name
		}
	}
	return strings.Join(parts, ", ")
}

// emptyLine picks the no-schedule template: today, a specific non-today
// date, or a date range.
func emptyLine(r *Report) string {
	start := r.Start.Format("2006-01-02")
	end := r.End.Format("2006-01-02")
	today := r.Now.Format("2006-01-02")

	switch {
	case start == end && start == today:
		return emptyTodayTemplate
	case start == end:
		return fmt.Sprintf(emptyDateTemplate, fullDate(r.Start))
	default:
		return fmt.Sprintf(emptyRangeTemplate, fullDate(r.Start), fullDate(r.End))
	}
}

// shortDate formats a date as "5월 1일".
func shortDate(t time.Time) string {
	return fmt.Sprintf("%d월 %d일", int(t.Month()), t.Day())
}

// fullDate formats a date as "2025년 5월 1일".
func fullDate(t time.Time) string {
	return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
}
