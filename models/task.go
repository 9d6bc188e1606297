// models/task.go
package models

import (
	"sort"
	"strings"
	"time"
)

const (
	TaskStatusPending = "Pending"
	TaskStatusDone    = "Done"
)

const (
	TaskPriorityHigh   = "High"
	TaskPriorityMedium = "Medium"
	TaskPriorityLow    = "Low"
)

const TaskFrequencyDaily = "Daily"

// AllowedTags is the fixed tag allow-list. Anything else is dropped during
// normalization; an empty result becomes TagUnknown.
var AllowedTags = []string{"airdrop", "testnet", "waitlist", "info", "update", "yapping"}

const TagUnknown = "unknown"

type Task struct {
	ID       string `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"index;not null"`
	WalletID string `json:"walletId" gorm:"index"`

	Project string   `json:"project"` // display name, max 40 chars
	Slug    string   `json:"slug"`
	Task    string   `json:"task"` // full description text
	Chain   string   `json:"chain"`
	Link    string   `json:"link" gorm:"index"` // dedup key (case-insensitive)
	Tags    []string `json:"tags" gorm:"serializer:json"`
	Source  string   `json:"source"`
	Type    string   `json:"type,omitempty"`

	Priority  string `json:"priority"`
	Status    string `json:"status" gorm:"default:'Pending'"` // Pending | Done
	Frequency string `json:"frequency" gorm:"default:'Daily'"`

	// Date carried by an imported record itself; preferred over CreatedAt
	// for display ordering when present.
	JSONDate *time.Time `json:"jsonDate"`

	CreatedAt    time.Time  `json:"createdAt"`
	LastDoneDate *time.Time `json:"lastDoneDate"`
	LastUpdated  time.Time  `json:"lastUpdated" gorm:"autoUpdateTime"`

	// Presentation-only: true when the daily reset flipped Status back to
	// Pending at read time. Never persisted.
	IsReset bool `json:"isReset,omitempty" gorm:"-"`
}

// DisplayDate returns the date used for sorting: the imported record's own
// date when it carried one, otherwise the creation timestamp.
func (t *Task) DisplayDate() time.Time {
	if t.JSONDate != nil {
		return *t.JSONDate
	}
	return t.CreatedAt
}

// NormalizeTags lowercases, strips leading '#', filters against the
// allow-list and dedupes. An empty result becomes ["unknown"].
func NormalizeTags(raw []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tag := range raw {
		tag = strings.TrimPrefix(strings.ToLower(tag), "#")
		if !isAllowedTag(tag) || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return []string{TagUnknown}
	}
	return out
}

func isAllowedTag(tag string) bool {
	for _, a := range AllowedTags {
		if tag == a {
			return true
		}
	}
	return false
}

// SameTagSet compares two tag lists as value sets, ignoring order.
func SameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// ApplyDailyReset flips Daily tasks marked Done back to Pending once the
// current local day (shifted by resetHour) no longer matches the day they
// were completed. Checked at read time only; nothing is written back.
func ApplyDailyReset(tasks []Task, now time.Time, resetHour int) []Task {
	shift := time.Duration(resetHour) * time.Hour
	for i := range tasks {
		t := &tasks[i]
		if t.Frequency != TaskFrequencyDaily || t.Status != TaskStatusDone || t.LastDoneDate == nil {
			continue
		}
		last := t.LastDoneDate.Add(-shift)
		today := now.Add(-shift)
		sameDay := last.Year() == today.Year() &&
			last.Month() == today.Month() &&
			last.Day() == today.Day()
		if !sameDay {
			t.Status = TaskStatusPending
			t.IsReset = true
		}
	}
	return tasks
}
