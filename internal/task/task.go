package task

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"
)

// Task is a single entry in a list. Text is a one-line summary and must
// never contain a newline; the caller validates that before the store is
// invoked. ParentID is a reference, not ownership: removing the parent
// leaves it dangling and the store tolerates that.
type Task struct {
	ID         string
	Text       string
	Timestamp  float64
	ShowFullID bool
	ParentID   string
	Tags       []string
}

// metadata is the JSON object persisted after the pipe on a taskline.
// Fields are declared in alphabetical key order so the encoder emits them
// deterministically. Text is deliberately absent.
type metadata struct {
	ID         string   `json:"id"`
	ParentID   string   `json:"parent_id,omitempty"`
	ShowFullID bool     `json:"show_full_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Timestamp  float64  `json:"timestamp"`
}

func (t *Task) meta() metadata {
	return metadata{
		ID:         t.ID,
		ParentID:   t.ParentID,
		ShowFullID: t.ShowFullID,
		Tags:       t.Tags,
		Timestamp:  t.Timestamp,
	}
}

func (m metadata) task(text string) *Task {
	return &Task{
		ID:         m.ID,
		Text:       text,
		Timestamp:  m.Timestamp,
		ShowFullID: m.ShowFullID,
		ParentID:   m.ParentID,
		Tags:       m.Tags,
	}
}

// MintID derives an opaque id from the creation time and the task text.
// SHA1 keeps ids short enough to type and long enough to stay unique
// within a list's lifetime.
func MintID(text string, now time.Time) string {
	stamp := strconv.FormatFloat(float64(now.UnixNano())/1e9, 'f', 6, 64)
	sum := sha1.Sum([]byte(stamp + text))
	return hex.EncodeToString(sum[:])
}
