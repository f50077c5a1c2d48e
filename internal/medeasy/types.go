package medeasy

// Wire types for the MedEasy medication backend. The backend wraps
// every response in an envelope with a "body" field; the types below
// describe what lives inside that body.

// ScheduleSlot is a named time-of-day bucket the user takes medicine at
// ("아침", "저녁"). Identity is the id — the name is free text the user
// typed and is neither unique nor stable in spelling.
type ScheduleSlot struct {
	ID       int64  `json:"user_schedule_id"`
	Name     string `json:"name"`
	TakeTime string `json:"take_time"`
}

// RoutineEntry is one medicine's dosing record inside a slot occurrence.
type RoutineEntry struct {
	RoutineID  int64  `json:"routine_id"`
	MedicineID string `json:"medicine_id"`
	Nickname   string `json:"nickname"`
	Dose       int    `json:"dose"`
	IsTaken    bool   `json:"is_taken"`
}

// SlotOccurrence is a schedule slot realized on one calendar date,
// carrying the routine entries nested under it.
type SlotOccurrence struct {
	ScheduleSlot
	Routines []RoutineEntry `json:"routine_dtos"`
}

// DaySchedule is one calendar date's worth of slot occurrences, in the
// order the backend returns them.
type DaySchedule struct {
	TakeDate  string           `json:"take_date"`
	Schedules []SlotOccurrence `json:"user_schedules"`
}

// RoutineCreation is the request body for registering a dosing routine.
// Bounds mirror the backend's validation: dose 1..10, total quantity
// 1..200, interval days 1..30.
type RoutineCreation struct {
	MedicineID      string  `json:"medicine_id"`
	Nickname        string  `json:"nickname,omitempty"`
	Dose            int     `json:"dose"`
	TotalQuantity   int     `json:"total_quantity"`
	IntervalDays    int     `json:"interval_days"`
	UserScheduleIDs []int64 `json:"user_schedule_ids,omitempty"`
}
