package reconcile

import (
	"strings"
	"testing"
	"time"

	"github.com/medeasy-dev/medeasy-mcp/internal/medeasy"
)

func dateIn(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, kst)
}

// --- Empty-result templates ---

func TestNarrative_EmptyToday(t *testing.T) {
	r := &Report{
		Start: dateIn(2025, 5, 1),
		End:   dateIn(2025, 5, 1),
		Now:   time.Date(2025, 5, 1, 9, 0, 0, 0, kst),
	}
	lines := Narrative(r)
	if len(lines) != 1 || lines[0] != "오늘은 복용할 약 일정이 없어요." {
		t.Errorf("lines = %q", lines)
	}
}

func TestNarrative_EmptySpecificDate(t *testing.T) {
	r := &Report{
		Start: dateIn(2025, 1, 1),
		End:   dateIn(2025, 1, 1),
		Now:   time.Date(2025, 5, 1, 9, 0, 0, 0, kst),
	}
	lines := Narrative(r)
	if len(lines) != 1 || lines[0] != "2025년 1월 1일에는 복용할 약 일정이 없어요." {
		t.Errorf("lines = %q", lines)
	}
}

func TestNarrative_EmptyRange(t *testing.T) {
	r := &Report{
		Start: dateIn(2025, 1, 1),
		End:   dateIn(2025, 1, 7),
		Now:   time.Date(2025, 5, 1, 9, 0, 0, 0, kst),
	}
	lines := Narrative(r)
	want := "2025년 1월 1일부터 2025년 1월 7일까지 복용할 약 일정이 없어요."
	if len(lines) != 1 || lines[0] != want {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

// --- Line content ---

func TestNarrative_SummaryLine(t *testing.T) {
	r := &Report{Occurrences: []Occurrence{
		{
			Date: "2025-05-01", Time: "08:00", SlotID: 37, SlotName: "아침",
			Medicines: []Medicine{
				{Name: "타이레놀", Dose: 1, Taken: true},
				{Name: "오메가3", Taken: true}, // missing dose stays blank
			},
		},
	}}
	lines := Narrative(r)
	if len(lines) != 1 {
		t.Fatalf("lines = %q", lines)
	}
	want := "5월 1일 08:00 아침: 타이레놀 1정, 오메가3"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
}

func TestNarrative_AlertLinesInterleaved(t *testing.T) {
	// Alert lines follow their own occurrence's summary line — they are
	// never grouped by alert type at the end.
	r := &Report{Occurrences: []Occurrence{
		{
			Date: "2025-05-01", Time: "08:00", SlotName: "아침",
			Medicines: []Medicine{{Name: "타이레놀", Dose: 1}},
			Unmet:     []string{"타이레놀"},
		},
		{
			Date: "2025-05-01", Time: "09:20", SlotName: "점심",
			Medicines: []Medicine{{Name: "오메가3", Dose: 2}},
			Upcoming:  true,
		},
	}}

	lines := Narrative(r)
	want := []string{
		"5월 1일 08:00 아침: 타이레놀 1정",
		"아직 복용하지 않은 약이 있어요: 타이레놀",
		"5월 1일 09:20 점심: 오메가3 2정",
		"곧 점심 약 드실 시간이에요 (09:20)",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestNarrative_MultipleUnmetJoined(t *testing.T) {
	r := &Report{Occurrences: []Occurrence{
		{
			Date: "2025-05-01", Time: "08:00", SlotName: "아침",
			Medicines: []Medicine{{Name: "타이레놀"}, {Name: "유산균"}},
			Unmet:     []string{"타이레놀", "유산균"},
		},
	}}
	lines := Narrative(r)
	if lines[1] != "아직 복용하지 않은 약이 있어요: 타이레놀, 유산균" {
		t.Errorf("line = %q", lines[1])
	}
}

func TestNarrative_EmptyMedicineList(t *testing.T) {
	r := &Report{Occurrences: []Occurrence{
		{Date: "2025-05-01", Time: "08:00", SlotName: "아침"},
	}}
	lines := Narrative(r)
	if !strings.HasSuffix(lines[0], "등록된 약 없음") {
		t.Errorf("line = %q", lines[0])
	}
}

func TestRender_JoinsWithNewlines(t *testing.T) {
	r := &Report{Occurrences: []Occurrence{
		{
			Date: "2025-05-01", Time: "08:00", SlotName: "아침",
			Medicines: []Medicine{{Name: "타이레놀", Dose: 1}},
			Unmet:     []string{"타이레놀"},
		},
	}}
	out := Render(r)
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Render = %q, want two lines joined by one newline", out)
	}
}

// --- End-to-end: engine + narrative ---

func TestNarrative_AdherenceScenario(t *testing.T) {
	e := NewEngine(kst)
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, kst)
	start := dateIn(2025, 5, 1)

	payload := []medeasy.DaySchedule{
		day("2025-05-01", "아침", "08:00:00", notTaken("타이레놀")),
	}

	out := Render(e.Reconcile(start, start, now, payload))
	if !strings.Contains(out, "아직 복용하지 않은 약이 있어요: 타이레놀") {
		t.Errorf("missing adherence line:\n%s", out)
	}

	// Flip is_taken — the adherence line must disappear.
	payload[0].Schedules[0].Routines[0].IsTaken = true
	out = Render(e.Reconcile(start, start, now, payload))
	if strings.Contains(out, "아직 복용하지 않은") {
		t.Errorf("adherence line present after taking:\n%s", out)
	}
}

func TestNarrative_OrphanAbsentFromOutput(t *testing.T) {
	e := NewEngine(kst)
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, kst)
	start := dateIn(2025, 5, 1)

	payload := []medeasy.DaySchedule{
		day("2025-05-01", "점심", "bogus", notTaken("오메가3")),
	}

	r := e.Reconcile(start, start, now, payload)
	out := Render(r)
	if strings.Contains(out, "오메가3") || strings.Contains(out, "점심") {
		t.Errorf("orphaned record leaked into narrative:\n%s", out)
	}
	// With nothing surviving, the empty-today template applies.
	if out != "오늘은 복용할 약 일정이 없어요." {
		t.Errorf("out = %q", out)
	}
}
