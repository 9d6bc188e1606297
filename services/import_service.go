// services/import_service.go
package services

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"time"

	"airdrop-tracker/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ImportService merges externally-sourced record batches into the task
// collection without creating duplicates.
type ImportService struct {
	DB    *gorm.DB
	Tasks *TaskService
}

func NewImportService(db *gorm.DB, tasks *TaskService) *ImportService {
	return &ImportService{DB: db, Tasks: tasks}
}

// RawRecord is one loosely structured import entry. The description may live
// under any of several field names; everything else is optional.
type RawRecord struct {
	Content struct {
		FullText string `json:"full_text"`
	} `json:"content"`
	Task         string   `json:"task"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	Source       string   `json:"source"`
	Chain        string   `json:"chain"`
	TagsDetected []string `json:"tags_detected"`
}

// descriptionRules is the ordered list of extraction rules; the first rule
// yielding non-empty text wins.
var descriptionRules = []struct {
	name    string
	extract func(r RawRecord) string
}{
	{"content.full_text", func(r RawRecord) string { return r.Content.FullText }},
	{"task", func(r RawRecord) string { return r.Task }},
	{"description", func(r RawRecord) string { return r.Description }},
}

func resolveDescription(r RawRecord) string {
	for _, rule := range descriptionRules {
		if text := rule.extract(r); text != "" {
			return text
		}
	}
	return ""
}

var urlPattern = regexp.MustCompile(`https?://[^\s,\])]+`)
var hashtagPattern = regexp.MustCompile(`#\w+`)
var projectPattern = regexp.MustCompile(`^([^:\n-]+)`)

// ExtractLink returns the first well-formed http(s) URL in the text, or "".
func ExtractLink(text string) string {
	return urlPattern.FindString(text)
}

// DeriveProject extracts a short display name from the description: the
// text before the first colon/newline/hyphen of the first line, truncated
// to 40 chars; failing that, the first 30 chars of the first line plus an
// ellipsis marker.
func DeriveProject(description string) string {
	clean := strings.TrimSpace(strings.NewReplacer("*", "", "_", "").Replace(description))
	firstLine := clean
	if idx := strings.Index(clean, "\n"); idx >= 0 {
		firstLine = clean[:idx]
	}

	if m := projectPattern.FindStringSubmatch(firstLine); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(truncateRunes(m[1], 40))
	}

	return truncateRunes(firstLine, 30) + "..."
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// DeriveTags prefers an explicitly supplied tag list; otherwise it scans the
// description for #word tokens. The result is normalized via the allow-list.
func DeriveTags(description string, explicit []string) []string {
	raw := explicit
	if raw == nil {
		raw = hashtagPattern.FindAllString(description, -1)
	}
	return models.NormalizeTags(raw)
}

// dateLayouts accepted for an imported record's own date field.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseRecordDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return &d
		}
	}
	return nil // unparseable dates are treated as absent
}

// ParsedRecord is the canonical form of one import entry.
type ParsedRecord struct {
	Project  string
	Task     string
	Chain    string
	Link     string
	Tags     []string
	Source   string
	JSONDate *time.Time
}

// ParseRecord normalizes one raw entry. ok is false when the record carries
// no description under any known field name.
func ParseRecord(r RawRecord, defaultLink string) (ParsedRecord, bool) {
	description := resolveDescription(r)
	if description == "" {
		return ParsedRecord{}, false
	}

	link := ExtractLink(description)
	if link == "" {
		link = defaultLink
	}

	chain := r.Chain
	if chain == "" {
		chain = "Unknown"
	}

	return ParsedRecord{
		Project:  DeriveProject(description),
		Task:     description,
		Chain:    chain,
		Link:     link,
		Tags:     DeriveTags(description, r.TagsDetected),
		Source:   r.Source,
		JSONDate: parseRecordDate(r.Date),
	}, true
}

// ImportOutcome reports the three reconciliation counts back to the caller.
type ImportOutcome struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Reconcile merges the batch against the existing tasks, in input order.
// walletScope is a wallet ID or "all"; fallbackWalletID is assigned to new
// tasks when the scope is "all". Write failures are logged per record and
// never abort the batch.
func (s *ImportService) Reconcile(userID string, records []RawRecord, walletScope, fallbackWalletID, defaultLink string) ImportOutcome {
	var outcome ImportOutcome

	var existing []models.Task
	if err := s.DB.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		log.Printf("❌ [IMPORT] failed to load existing tasks for %s: %v", userID, err)
		return outcome
	}

	for _, record := range records {
		parsed, ok := ParseRecord(record, defaultLink)
		if !ok {
			continue
		}

		match := findByLink(existing, parsed.Link, walletScope)
		if match != nil {
			changed, status := diffRecord(match, parsed)
			if !changed {
				outcome.Skipped++
				continue
			}

			match.Project = parsed.Project
			match.Slug = slug.Make(parsed.Project)
			match.Task = parsed.Task
			match.Tags = parsed.Tags
			match.Source = parsed.Source
			match.JSONDate = parsed.JSONDate
			match.Status = status
			if err := s.DB.Save(match).Error; err != nil {
				log.Printf("❌ [IMPORT] failed to update task %s: %v", match.ID, err)
				continue
			}
			outcome.Updated++
			continue
		}

		walletID := walletScope
		if walletScope == "all" {
			walletID = fallbackWalletID
		}

		task := models.Task{
			ID:        uuid.NewString(),
			UserID:    userID,
			WalletID:  walletID,
			Project:   parsed.Project,
			Slug:      slug.Make(parsed.Project),
			Task:      parsed.Task,
			Chain:     parsed.Chain,
			Link:      parsed.Link,
			Tags:      parsed.Tags,
			Source:    parsed.Source,
			Priority:  models.TaskPriorityMedium,
			Status:    models.TaskStatusPending,
			Frequency: models.TaskFrequencyDaily,
			JSONDate:  parsed.JSONDate,
			CreatedAt: time.Now(),
		}
		if err := s.DB.Create(&task).Error; err != nil {
			log.Printf("❌ [IMPORT] failed to insert task %q: %v", parsed.Project, err)
			continue
		}
		existing = append(existing, task)
		outcome.Added++
	}

	return outcome
}

// diffRecord decides whether an existing task needs updating and what its
// resulting status is. Only a change to the task text itself re-surfaces a
// completed task; re-tagging or a new source label keeps its Done state.
func diffRecord(match *models.Task, parsed ParsedRecord) (changed bool, status string) {
	taskChanged := match.Task != parsed.Task
	tagsChanged := !models.SameTagSet(match.Tags, parsed.Tags)
	sourceChanged := match.Source != parsed.Source

	status = match.Status
	if taskChanged {
		status = models.TaskStatusPending
	}
	return taskChanged || tagsChanged || sourceChanged, status
}

// findByLink matches case-insensitively on link within the wallet scope.
func findByLink(tasks []models.Task, link, walletScope string) *models.Task {
	if link == "" {
		return nil
	}
	for i := range tasks {
		t := &tasks[i]
		if t.Link == "" {
			continue
		}
		if !strings.EqualFold(t.Link, link) {
			continue
		}
		if walletScope == "all" || t.WalletID == walletScope {
			return t
		}
	}
	return nil
}

// ImportTasks handles POST /s/tasks/import. The body must be a JSON array of
// objects; anything else aborts before any write.
func (s *ImportService) ImportTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var records []RawRecord
	if err := json.Unmarshal(c.Body(), &records); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON: body must be an array of objects",
		})
	}

	walletScope := c.Query("wallet", "all")

	setting := s.Tasks.settingsFor(userID)
	fallbackWalletID := s.fallbackWalletID(userID)

	outcome := s.Reconcile(userID, records, walletScope, fallbackWalletID, setting.DefaultLink)
	log.Printf("✅ [IMPORT] user %s: %d added, %d updated, %d skipped",
		userID, outcome.Added, outcome.Updated, outcome.Skipped)

	s.Tasks.publishSnapshot(userID)
	return c.JSON(outcome)
}

// fallbackWalletID picks the user's oldest wallet for records imported under
// the "all" scope. Empty when the user has no wallets yet.
func (s *ImportService) fallbackWalletID(userID string) string {
	var wallet models.Wallet
	if err := s.DB.Where("user_id = ?", userID).Order("created_at ASC").First(&wallet).Error; err != nil {
		return ""
	}
	return wallet.ID
}
