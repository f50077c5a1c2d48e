// Package reconcile turns the backend's raw per-day schedule payload
// into an adherence report: which doses are overdue, which are coming
// up within the alert window, and a deterministic Korean narrative for
// the assistant to speak. The engine is a pure transform over its
// inputs — it holds no state between requests.
package reconcile

import (
	"log"
	"time"

	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

// UpcomingWindow is how far ahead of a dose time the "upcoming dose"
// alert fires.
const UpcomingWindow = 30 * time.Minute

// Medicine is one routine entry as it appears in the structured report.
type Medicine struct {
	RoutineID  int64  `json:"routine_id"`
	MedicineID string `json:"medicine_id"`
	Name       string `json:"name"`
	Dose       int    `json:"dose"`
	Taken      bool   `json:"is_taken"`
}

// Occurrence is one schedule slot realized on one calendar date, with
// the alert determinations already made.
type Occurrence struct {
	Date      string     `json:"date"` // 2006-01-02
	Time      string     `json:"time"` // HH:MM
	SlotID    int64      `json:"slot_id"`
	SlotName  string     `json:"slot_name"`
	Medicines []Medicine `json:"medicines"`

	// Unmet lists the display names of medicines not yet taken for a
	// dose whose time has passed. Empty when the dose is not due or
	// everything was taken.
	Unmet []string `json:"unmet,omitempty"`

	// Upcoming is true when the dose is today and within UpcomingWindow
	// of now.
	Upcoming bool `json:"upcoming,omitempty"`
}

// Report is the reconciliation result. It is ephemeral — recomputed per
// request and never persisted.
type Report struct {
	Start       time.Time    `json:"-"`
	End         time.Time    `json:"-"`
	Now         time.Time    `json:"-"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Engine reconciles schedule data against the current time. All
// date/time math runs in the configured location — the backend stores
// wall-clock times without offsets.
type Engine struct {
	loc *time.Location
}

// NewEngine creates an Engine for the given timezone.
func NewEngine(loc *time.Location) *Engine {
	return &Engine{loc: loc}
}

// Reconcile walks every slot occurrence in days, in input order, and
// produces the report. Malformed records (unparsable date or time) are
// logged and skipped — one bad record never aborts the reconciliation.
func (e *Engine) Reconcile(start, end, now time.Time, days []medeasy.DaySchedule) *Report {
	now = now.In(e.loc)
	report := &Report{Start: start, End: end, Now: now}
	today := now.Format("2006-01-02")

	for _, day := range days {
		date, err := time.ParseInLocation("2006-01-02", day.TakeDate, e.loc)
		if err != nil {
			log.Printf("WARNING: skipping day with unparsable date %q: %v", day.TakeDate, err)
			continue
		}

		for _, slot := range day.Schedules {
			hour, min, err := parseTakeTime(slot.TakeTime)
			if err != nil {
				log.Printf("WARNING: skipping slot %d (%s) on %s: %v", slot.ID, slot.Name, day.TakeDate, err)
				continue
			}
			at := time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, e.loc)

			occ := Occurrence{
				Date:     day.TakeDate,
				Time:     at.Format("15:04"),
				SlotID:   slot.ID,
				SlotName: slot.Name,
			}
			for _, r := range slot.Routines {
				occ.Medicines = append(occ.Medicines, Medicine{
					RoutineID:  r.RoutineID,
					MedicineID: r.MedicineID,
					Name:       medicineName(r),
					Dose:       r.Dose,
					Taken:      r.IsTaken,
				})
			}

			// Adherence: the dose time has passed on a day that is not
			// in the future, and something is still untaken.
			if !at.After(now) && day.TakeDate <= today {
				for _, m := range occ.Medicines {
					if !m.Taken {
						occ.Unmet = append(occ.Unmet, m.Name)
					}
				}
			}

			// Upcoming: today only, strictly after now, within the window.
			if day.TakeDate == today && at.After(now) && !at.After(now.Add(UpcomingWindow)) {
				occ.Upcoming = true
			}

			report.Occurrences = append(report.Occurrences, occ)
		}
	}
	return report
}

// medicineName returns the display name for a routine entry, falling
// back to the placeholder when the nickname is missing.
func medicineName(r medeasy.RoutineEntry) string {
	if r.Nickname == "" {
		return unknownMedicine
	}
	return r.Nickname
}

// parseTakeTime accepts the backend's HH:MM:SS times and the HH:MM
// short form some records carry.
func parseTakeTime(s string) (hour, min int, err error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, 0, err
		}
	}
	return t.Hour(), t.Minute(), nil
}
