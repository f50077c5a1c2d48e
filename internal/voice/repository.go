package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// RetentionTTL is how long an untouched settings record survives.
// Every successful write resets it; reads never extend it. An expired
// record is indistinguishable from one that never existed.
const RetentionTTL = 30 * 24 * time.Hour

// keyPrefix namespaces settings records in the shared store.
const keyPrefix = "voice_settings"

// Errors returned by Update.
var (
	// ErrNoFields means the update request named nothing to change.
	// Rejected before any store I/O.
	ErrNoFields = errors.New("no fields to update")

	// ErrStoreUnavailable means the key-value store could not serve the
	// write. The caller decides whether to surface service-unavailable.
	ErrStoreUnavailable = errors.New("voice settings store unavailable")
)

// UpdateRequest is a partial settings change. Speaker replaces the
// stored value; the level fields are signed deltas applied to the
// stored values. Nil fields are untouched.
type UpdateRequest struct {
	Speaker     *string
	SpeedDelta  *int
	PitchDelta  *int
	VolumeDelta *int
}

// empty reports whether the request changes nothing.
func (r UpdateRequest) empty() bool {
	return r.Speaker == nil && r.SpeedDelta == nil && r.PitchDelta == nil && r.VolumeDelta == nil
}

// UpdateResult reports what an update did: the settings before, the
// settings after clamping, and a human-readable calculation log.
type UpdateResult struct {
	Previous Settings
	Current  Settings
	Log      []string
}

// Repository is the per-user voice settings store. Updates follow
// read-modify-write with no isolation: two concurrent updates for the
// same user race and the last write wins. An atomic increment on the
// store would close that window; the observed semantics are
// last-write-wins, so the simpler pattern is kept.
type Repository struct {
	kv KV
}

// NewRepository creates a Repository on the given key-value store.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

func key(userID string) string {
	return keyPrefix + ":" + userID
}

// GetOrDefault returns the user's settings, lazily initializing and
// persisting the defaults on first access. Store failures fail open:
// the defaults come back and the error is only logged — a broken store
// must not block reading preferences.
func (r *Repository) GetOrDefault(ctx context.Context, userID string) Settings {
	raw, found, err := r.kv.Get(ctx, key(userID))
	if err != nil {
		log.Printf("WARNING: voice settings read failed for %s: %v", userID, err)
		return Defaults()
	}
	if found {
		var s Settings
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			log.Printf("WARNING: corrupt voice settings for %s, using defaults: %v", userID, err)
			return Defaults()
		}
		return s
	}

	defaults := Defaults()
	if err := r.save(ctx, userID, defaults); err != nil {
		log.Printf("WARNING: persisting default voice settings for %s: %v", userID, err)
	}
	return defaults
}

// Update applies a partial change: speaker as an absolute replacement,
// levels as deltas clamped post-addition. At least one field must be
// present. A store failure comes back as ErrStoreUnavailable.
func (r *Repository) Update(ctx context.Context, userID string, req UpdateRequest) (*UpdateResult, error) {
	if req.empty() {
		return nil, ErrNoFields
	}

	current := r.GetOrDefault(ctx, userID)
	result := &UpdateResult{Previous: current, Current: current}

	if req.Speaker != nil {
		result.Current.Speaker = *req.Speaker
		result.Log = append(result.Log, fmt.Sprintf("speaker: %s → %s", current.Speaker, *req.Speaker))
	}
	if req.SpeedDelta != nil {
		result.Current.Speed = clamp(current.Speed + *req.SpeedDelta)
		result.Log = append(result.Log, deltaLog("speed", current.Speed, *req.SpeedDelta, result.Current.Speed))
	}
	if req.PitchDelta != nil {
		result.Current.Pitch = clamp(current.Pitch + *req.PitchDelta)
		result.Log = append(result.Log, deltaLog("pitch", current.Pitch, *req.PitchDelta, result.Current.Pitch))
	}
	if req.VolumeDelta != nil {
		result.Current.Volume = clamp(current.Volume + *req.VolumeDelta)
		result.Log = append(result.Log, deltaLog("volume", current.Volume, *req.VolumeDelta, result.Current.Volume))
	}

	if err := r.save(ctx, userID, result.Current); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the user's settings, reporting whether any existed.
func (r *Repository) Delete(ctx context.Context, userID string) (bool, error) {
	existed, err := r.kv.Del(ctx, key(userID))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return existed, nil
}

// Exists reports whether the user has stored settings.
func (r *Repository) Exists(ctx context.Context, userID string) (bool, error) {
	found, err := r.kv.Exists(ctx, key(userID))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return found, nil
}

// save serializes and writes the settings, resetting the retention TTL.
func (r *Repository) save(ctx context.Context, userID string, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding voice settings: %w", err)
	}
	if err := r.kv.SetEx(ctx, key(userID), RetentionTTL, string(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func deltaLog(field string, current, delta, final int) string {
	return fmt.Sprintf("%s: %d + (%d) = %d", field, current, delta, final)
}
