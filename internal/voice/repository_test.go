package voice

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeKV is an in-memory KV with scriptable failures. TTLs are
// recorded, not enforced — expiry behavior belongs to the real store.
type fakeKV struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failing bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

var errDown = errors.New("connection refused")

func (f *fakeKV) SetEx(_ context.Context, key string, ttl time.Duration, value string) error {
	if f.failing {
		return errDown
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	if f.failing {
		return "", false, errDown
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Del(_ context.Context, key string) (bool, error) {
	if f.failing {
		return false, errDown
	}
	_, ok := f.data[key]
	delete(f.data, key)
	return ok, nil
}

func (f *fakeKV) Exists(_ context.Context, key string) (bool, error) {
	if f.failing {
		return false, errDown
	}
	_, ok := f.data[key]
	return ok, nil
}

func intp(v int) *int { return &v }

func strp(s string) *string { return &s }

// --- GetOrDefault ---

func TestGetOrDefault_LazyInit(t *testing.T) {
	kv := newFakeKV()
	repo := NewRepository(kv)
	ctx := context.Background()

	got := repo.GetOrDefault(ctx, "7")
	want := Settings{Speaker: "nara", Speed: 0, Pitch: 0, Volume: 0, Format: "mp3"}
	if got != want {
		t.Errorf("GetOrDefault = %+v, want %+v", got, want)
	}

	// Defaults were persisted: a second read returns the same values
	// from the store, not a fresh default.
	if _, ok := kv.data["voice_settings:7"]; !ok {
		t.Fatal("defaults not persisted on first access")
	}
	if again := repo.GetOrDefault(ctx, "7"); again != want {
		t.Errorf("second read = %+v, want %+v", again, want)
	}
}

func TestGetOrDefault_StoreErrorFailsOpen(t *testing.T) {
	kv := newFakeKV()
	kv.failing = true
	repo := NewRepository(kv)

	got := repo.GetOrDefault(context.Background(), "7")
	if got != Defaults() {
		t.Errorf("GetOrDefault = %+v, want defaults on store error", got)
	}
}

func TestGetOrDefault_CorruptRecordFailsOpen(t *testing.T) {
	kv := newFakeKV()
	kv.data["voice_settings:7"] = "{not json"
	repo := NewRepository(kv)

	if got := repo.GetOrDefault(context.Background(), "7"); got != Defaults() {
		t.Errorf("GetOrDefault = %+v, want defaults for corrupt record", got)
	}
}

// --- Update ---

func TestUpdate_RejectsEmptyRequest(t *testing.T) {
	repo := NewRepository(newFakeKV())

	_, err := repo.Update(context.Background(), "7", UpdateRequest{})
	if !errors.Is(err, ErrNoFields) {
		t.Errorf("err = %v, want ErrNoFields", err)
	}
}

func TestUpdate_DeltaComposition(t *testing.T) {
	repo := NewRepository(newFakeKV())
	ctx := context.Background()

	// current=0 → +2 → 2
	if _, err := repo.Update(ctx, "7", UpdateRequest{SpeedDelta: intp(2)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// current=2 → +3 → clamped to 5, not 6
	res, err := repo.Update(ctx, "7", UpdateRequest{SpeedDelta: intp(3)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Current.Speed != 5 {
		t.Errorf("speed = %d, want 5", res.Current.Speed)
	}
	// current=5 → +1 → pinned at 5
	res, err = repo.Update(ctx, "7", UpdateRequest{SpeedDelta: intp(1)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Current.Speed != 5 {
		t.Errorf("speed = %d, want pinned at 5", res.Current.Speed)
	}
	if res.Previous.Speed != 5 {
		t.Errorf("previous speed = %d, want 5", res.Previous.Speed)
	}
}

func TestUpdate_ClampingInvariant(t *testing.T) {
	repo := NewRepository(newFakeKV())
	ctx := context.Background()

	deltas := []int{3, 3, -10, -4, 20, -1, 5, 5, -30}
	for _, d := range deltas {
		res, err := repo.Update(ctx, "7", UpdateRequest{
			SpeedDelta:  intp(d),
			PitchDelta:  intp(-d),
			VolumeDelta: intp(d * 2),
		})
		if err != nil {
			t.Fatalf("Update(%d): %v", d, err)
		}
		for name, v := range map[string]int{
			"speed":  res.Current.Speed,
			"pitch":  res.Current.Pitch,
			"volume": res.Current.Volume,
		} {
			if v < MinLevel || v > MaxLevel {
				t.Errorf("after delta %d, %s = %d out of [%d,%d]", d, name, v, MinLevel, MaxLevel)
			}
		}
	}
}

func TestUpdate_SpeakerIsAbsolute(t *testing.T) {
	repo := NewRepository(newFakeKV())
	ctx := context.Background()

	res, err := repo.Update(ctx, "7", UpdateRequest{Speaker: strp("vara")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Current.Speaker != "vara" {
		t.Errorf("speaker = %s, want vara", res.Current.Speaker)
	}
	if res.Previous.Speaker != "nara" {
		t.Errorf("previous speaker = %s, want nara", res.Previous.Speaker)
	}
	// Untouched fields keep their values.
	if res.Current.Speed != 0 || res.Current.Format != "mp3" {
		t.Errorf("unrelated fields changed: %+v", res.Current)
	}
}

func TestUpdate_StoreDownReturnsUnavailable(t *testing.T) {
	kv := newFakeKV()
	repo := NewRepository(kv)
	kv.failing = true

	_, err := repo.Update(context.Background(), "7", UpdateRequest{SpeedDelta: intp(1)})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestUpdate_ResetsRetentionTTL(t *testing.T) {
	kv := newFakeKV()
	repo := NewRepository(kv)

	if _, err := repo.Update(context.Background(), "7", UpdateRequest{PitchDelta: intp(-1)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ttl := kv.ttls["voice_settings:7"]; ttl != RetentionTTL {
		t.Errorf("ttl = %v, want %v", ttl, RetentionTTL)
	}
}

func TestUpdate_CalculationLog(t *testing.T) {
	repo := NewRepository(newFakeKV())

	res, err := repo.Update(context.Background(), "7", UpdateRequest{
		Speaker:    strp("vdaeseong"),
		SpeedDelta: intp(2),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(res.Log) != 2 {
		t.Fatalf("log = %v, want 2 entries", res.Log)
	}
	if res.Log[0] != "speaker: nara → vdaeseong" {
		t.Errorf("log[0] = %q", res.Log[0])
	}
	if res.Log[1] != "speed: 0 + (2) = 2" {
		t.Errorf("log[1] = %q", res.Log[1])
	}
}

// --- Delete / Exists ---

func TestDeleteAndExists(t *testing.T) {
	repo := NewRepository(newFakeKV())
	ctx := context.Background()

	if ok, err := repo.Exists(ctx, "7"); err != nil || ok {
		t.Errorf("Exists before create = (%v, %v)", ok, err)
	}

	repo.GetOrDefault(ctx, "7") // lazy init persists

	if ok, err := repo.Exists(ctx, "7"); err != nil || !ok {
		t.Errorf("Exists after create = (%v, %v)", ok, err)
	}

	existed, err := repo.Delete(ctx, "7")
	if err != nil || !existed {
		t.Errorf("Delete = (%v, %v), want (true, nil)", existed, err)
	}

	existed, err = repo.Delete(ctx, "7")
	if err != nil || existed {
		t.Errorf("second Delete = (%v, %v), want (false, nil)", existed, err)
	}
}

func TestDelete_StoreDown(t *testing.T) {
	kv := newFakeKV()
	repo := NewRepository(kv)
	kv.failing = true

	if _, err := repo.Delete(context.Background(), "7"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := repo.Exists(context.Background(), "7"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}
