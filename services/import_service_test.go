package services

import (
	"testing"
	"time"

	"airdrop-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord_FullExample(t *testing.T) {
	var r RawRecord
	r.Content.FullText = "ZkSync Era: Bridge 0.01 ETH https://app.example.com/quest/1 #airdrop #scaminfo"

	parsed, ok := ParseRecord(r, "")
	require.True(t, ok)

	assert.Equal(t, "ZkSync Era", parsed.Project)
	assert.Equal(t, "https://app.example.com/quest/1", parsed.Link)
	// "scaminfo" is not allow-listed, but "airdrop" is — so no "unknown" fallback
	assert.Equal(t, []string{"airdrop"}, parsed.Tags)
}

func TestParseRecord_DescriptionRuleOrder(t *testing.T) {
	var r RawRecord
	r.Content.FullText = "from full_text"
	r.Task = "from task"
	r.Description = "from description"

	parsed, ok := ParseRecord(r, "")
	require.True(t, ok)
	assert.Equal(t, "from full_text", parsed.Task)

	r.Content.FullText = ""
	parsed, ok = ParseRecord(r, "")
	require.True(t, ok)
	assert.Equal(t, "from task", parsed.Task)

	r.Task = ""
	parsed, ok = ParseRecord(r, "")
	require.True(t, ok)
	assert.Equal(t, "from description", parsed.Task)
}

func TestParseRecord_EmptyDescriptionSkipped(t *testing.T) {
	_, ok := ParseRecord(RawRecord{}, "https://t.me/default")
	assert.False(t, ok)
}

func TestParseRecord_DefaultLinkFallback(t *testing.T) {
	r := RawRecord{Task: "Mint the weekly NFT"}
	parsed, ok := ParseRecord(r, "https://t.me/airdrop_channel")
	require.True(t, ok)
	assert.Equal(t, "https://t.me/airdrop_channel", parsed.Link)
}

func TestParseRecord_InvalidDateTreatedAsAbsent(t *testing.T) {
	r := RawRecord{Task: "Do the thing", Date: "not-a-date"}
	parsed, ok := ParseRecord(r, "")
	require.True(t, ok)
	assert.Nil(t, parsed.JSONDate)

	r.Date = "2025-11-03T10:30:00Z"
	parsed, ok = ParseRecord(r, "")
	require.True(t, ok)
	require.NotNil(t, parsed.JSONDate)
	assert.Equal(t, time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC), parsed.JSONDate.UTC())
}

func TestExtractLink_Boundaries(t *testing.T) {
	cases := map[string]string{
		"visit https://x.io/a, then rest":     "https://x.io/a",
		"see (https://x.io/b) for details":    "https://x.io/b",
		"quest [https://x.io/c] closes soon":  "https://x.io/c",
		"http://plain.example.com/path more":  "http://plain.example.com/path",
		"two https://a.io/1 and https://b.io": "https://a.io/1",
		"no links here at all":                "",
	}
	for text, want := range cases {
		assert.Equal(t, want, ExtractLink(text), "text: %s", text)
	}
}

func TestDeriveProject_Fallbacks(t *testing.T) {
	// Markdown emphasis stripped, colon terminates
	assert.Equal(t, "ZkSync Era", DeriveProject("*ZkSync Era*: bridge now"))

	// Hyphen terminates
	assert.Equal(t, "Scroll", DeriveProject("Scroll - complete quests"))

	// Newline terminates
	assert.Equal(t, "Linea Voyage", DeriveProject("Linea Voyage\nWeek 3 tasks"))

	// No delimiter pattern start: fallback 30 chars + ellipsis
	long := "-" + "abcdefghijklmnopqrstuvwxyz0123456789"
	got := DeriveProject(long)
	assert.Len(t, []rune(got), 33)
	assert.Contains(t, got, "...")

	// Truncated to 40 chars
	name := "A very long project name that keeps going and going: task"
	assert.LessOrEqual(t, len([]rune(DeriveProject(name))), 40)
}

func TestDeriveTags(t *testing.T) {
	// Hashtag scan, lowercased, allow-listed, deduped
	tags := DeriveTags("join #Airdrop now #AIRDROP #testnet #random", nil)
	assert.Equal(t, []string{"airdrop", "testnet"}, tags)

	// Zero allow-listed tags → unknown
	assert.Equal(t, []string{"unknown"}, DeriveTags("nothing here #spam", nil))
	assert.Equal(t, []string{"unknown"}, DeriveTags("no hashtags at all", nil))

	// Explicit list wins over hashtag scan, even when empty
	assert.Equal(t, []string{"waitlist"}, DeriveTags("#airdrop in text", []string{"Waitlist"}))
	assert.Equal(t, []string{"unknown"}, DeriveTags("#airdrop in text", []string{}))
}

func TestFindByLink(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", WalletID: "w1", Link: "https://App.Example.com/Quest/1"},
		{ID: "2", WalletID: "w2", Link: "https://other.example.com"},
	}

	// Case-insensitive match
	m := findByLink(tasks, "https://app.example.com/quest/1", "all")
	require.NotNil(t, m)
	assert.Equal(t, "1", m.ID)

	// Wallet scope excludes
	assert.Nil(t, findByLink(tasks, "https://app.example.com/quest/1", "w2"))
	assert.NotNil(t, findByLink(tasks, "https://app.example.com/quest/1", "w1"))

	// Empty link never matches
	assert.Nil(t, findByLink(tasks, "", "all"))
}

func TestDiffRecord(t *testing.T) {
	existing := &models.Task{
		Task:   "Bridge 0.01 ETH",
		Tags:   []string{"airdrop", "testnet"},
		Source: "channel-a",
		Status: models.TaskStatusDone,
	}

	// Nothing differs (tag order is irrelevant) → skip
	changed, _ := diffRecord(existing, ParsedRecord{
		Task: "Bridge 0.01 ETH", Tags: []string{"testnet", "airdrop"}, Source: "channel-a",
	})
	assert.False(t, changed)

	// Tag-only change updates but keeps Done
	changed, status := diffRecord(existing, ParsedRecord{
		Task: "Bridge 0.01 ETH", Tags: []string{"airdrop"}, Source: "channel-a",
	})
	assert.True(t, changed)
	assert.Equal(t, models.TaskStatusDone, status)

	// Source-only change also keeps Done
	changed, status = diffRecord(existing, ParsedRecord{
		Task: "Bridge 0.01 ETH", Tags: []string{"airdrop", "testnet"}, Source: "channel-b",
	})
	assert.True(t, changed)
	assert.Equal(t, models.TaskStatusDone, status)

	// Text change resets to Pending
	changed, status = diffRecord(existing, ParsedRecord{
		Task: "Bridge 0.02 ETH", Tags: []string{"airdrop", "testnet"}, Source: "channel-a",
	})
	assert.True(t, changed)
	assert.Equal(t, models.TaskStatusPending, status)
}

// Re-importing a batch against its own previous output must only skip.
func TestReimportUnchangedBatchSkips(t *testing.T) {
	records := []RawRecord{
		{Task: "ZkSync Era: Bridge https://app.zk.io/q1 #airdrop"},
		{Task: "Scroll: Swap https://scroll.io/q2 #testnet"},
	}

	var existing []models.Task
	for _, r := range records {
		parsed, ok := ParseRecord(r, "")
		require.True(t, ok)
		existing = append(existing, models.Task{
			WalletID: "w1",
			Task:     parsed.Task,
			Link:     parsed.Link,
			Tags:     parsed.Tags,
			Source:   parsed.Source,
			Status:   models.TaskStatusPending,
		})
	}

	for _, r := range records {
		parsed, ok := ParseRecord(r, "")
		require.True(t, ok)
		match := findByLink(existing, parsed.Link, "all")
		require.NotNil(t, match)
		changed, _ := diffRecord(match, parsed)
		assert.False(t, changed, "record %q should be skipped", parsed.Project)
	}
}
