// services/task_service.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"airdrop-tracker/models"
	"airdrop-tracker/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TaskService struct {
	DB   *gorm.DB
	Feed *Feed[models.Task]
}

func NewTaskService(db *gorm.DB, feed *Feed[models.Task]) *TaskService {
	return &TaskService{DB: db, Feed: feed}
}

func (s *TaskService) settingsFor(userID string) models.Setting {
	var setting models.Setting
	if err := s.DB.Where("user_id = ?", userID).First(&setting).Error; err != nil {
		return models.Setting{UserID: userID}
	}
	return setting
}

// loadSnapshot returns the user's full task list with the daily reset
// applied, ordered by display date descending.
func (s *TaskService) loadSnapshot(userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.DB.Where("user_id = ?", userID).Find(&tasks).Error; err != nil {
		return nil, err
	}

	setting := s.settingsFor(userID)
	tasks = models.ApplyDailyReset(tasks, time.Now(), setting.DailyResetHour)

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DisplayDate().After(tasks[j].DisplayDate())
	})
	return tasks, nil
}

// publishSnapshot pushes the user's current task list to stream subscribers.
// Called after every write path, including imports.
func (s *TaskService) publishSnapshot(userID string) {
	tasks, err := s.loadSnapshot(userID)
	if err != nil {
		log.Printf("❌ [TASKS] failed to load snapshot for %s: %v", userID, err)
		return
	}
	s.Feed.Publish(userID, tasks)
}

// GetTasks lists tasks with optional wallet/tag/type/status/search filters.
func (s *TaskService) GetTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	tasks, err := s.loadSnapshot(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load tasks", "cause": err.Error(),
		})
	}

	wallet := c.Query("wallet", "all")
	tag := c.Query("tag")
	taskType := c.Query("type")
	status := c.Query("status")
	search := strings.ToLower(c.Query("search"))

	filtered := tasks[:0:0]
	for _, t := range tasks {
		if wallet != "all" && t.WalletID != wallet {
			continue
		}
		if tag != "" && !hasTag(t.Tags, tag) {
			continue
		}
		if taskType != "" && t.Type != taskType {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Project), search) &&
			!strings.Contains(strings.ToLower(t.Task), search) &&
			!strings.Contains(strings.ToLower(t.Chain), search) {
			continue
		}
		filtered = append(filtered, t)
	}

	if c.Query("sort") == "priority" {
		sort.SliceStable(filtered, func(i, j int) bool {
			return priorityRank(filtered[i].Priority) < priorityRank(filtered[j].Priority)
		})
	}

	return c.JSON(filtered)
}

func priorityRank(p string) int {
	switch p {
	case models.TaskPriorityHigh:
		return 0
	case models.TaskPriorityMedium:
		return 1
	case models.TaskPriorityLow:
		return 2
	default:
		return 3
	}
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

type taskInput struct {
	WalletID  string   `json:"walletId"`
	Project   string   `json:"project"`
	Task      string   `json:"task"`
	Chain     string   `json:"chain"`
	Link      string   `json:"link"`
	Tags      []string `json:"tags"`
	Source    string   `json:"source"`
	Type      string   `json:"type"`
	Priority  string   `json:"priority"`
	Frequency string   `json:"frequency"`
}

// CreateTask adds a manually entered task.
func (s *TaskService) CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var in taskInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if in.Task == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "task is required"})
	}

	if in.Frequency == "" {
		in.Frequency = models.TaskFrequencyDaily
	}
	if in.Source == "" {
		in.Source = "manual"
	}
	if in.Project == "" {
		in.Project = DeriveProject(in.Task)
	}

	task := models.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		WalletID:  in.WalletID,
		Project:   in.Project,
		Slug:      slug.Make(in.Project),
		Task:      in.Task,
		Chain:     in.Chain,
		Link:      in.Link,
		Tags:      models.NormalizeTags(in.Tags),
		Source:    in.Source,
		Type:      in.Type,
		Priority:  in.Priority,
		Status:    models.TaskStatusPending,
		Frequency: in.Frequency,
		CreatedAt: time.Now(),
	}

	if err := s.DB.Create(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create task", "cause": err.Error(),
		})
	}

	s.publishSnapshot(userID)
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask overwrites the editable fields of one task.
func (s *TaskService) UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	taskID := c.Params("id")

	var task models.Task
	if err := s.DB.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var in taskInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if in.Project != "" {
		task.Project = in.Project
		task.Slug = slug.Make(in.Project)
	}
	if in.Task != "" {
		task.Task = in.Task
	}
	if in.Chain != "" {
		task.Chain = in.Chain
	}
	if in.Link != "" {
		task.Link = in.Link
	}
	if in.Tags != nil {
		task.Tags = models.NormalizeTags(in.Tags)
	}
	if in.Type != "" {
		task.Type = in.Type
	}
	if in.Priority != "" {
		task.Priority = in.Priority
	}
	if in.Frequency != "" {
		task.Frequency = in.Frequency
	}
	if in.WalletID != "" {
		task.WalletID = in.WalletID
	}

	if err := s.DB.Save(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update task", "cause": err.Error(),
		})
	}

	s.publishSnapshot(userID)
	return c.JSON(task)
}

// ToggleTaskStatus flips Pending↔Done; completing stamps LastDoneDate.
func (s *TaskService) ToggleTaskStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	taskID := c.Params("id")

	var task models.Task
	if err := s.DB.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if task.Status == models.TaskStatusPending {
		task.Status = models.TaskStatusDone
		now := time.Now()
		task.LastDoneDate = &now
	} else {
		task.Status = models.TaskStatusPending
	}

	if err := s.DB.Save(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update task status", "cause": err.Error(),
		})
	}

	s.publishSnapshot(userID)
	return c.JSON(task)
}

// DeleteTask removes one task.
func (s *TaskService) DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	taskID := c.Params("id")

	res := s.DB.Where("id = ? AND user_id = ?", taskID, userID).Delete(&models.Task{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
	}

	s.publishSnapshot(userID)
	return c.JSON(fiber.Map{"deleted": taskID})
}

// DeleteAllTasks wipes the user's whole task collection in one transaction.
// Irreversible; the UI confirms before calling.
func (s *TaskService) DeleteAllTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var deleted int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", userID).Delete(&models.Task{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete tasks", "cause": err.Error(),
		})
	}

	s.publishSnapshot(userID)
	return c.JSON(fiber.Map{"deleted": deleted})
}

// taskExport renders timestamps as ISO-8601 strings, null for absent dates.
type taskExport struct {
	Project      string   `json:"project"`
	Task         string   `json:"task"`
	Chain        string   `json:"chain"`
	Link         string   `json:"link"`
	Tags         []string `json:"tags"`
	Type         string   `json:"type"`
	Priority     string   `json:"priority"`
	Status       string   `json:"status"`
	WalletID     string   `json:"walletId"`
	Source       string   `json:"source"`
	CreatedAt    string   `json:"createdAt"`
	LastDoneDate *string  `json:"lastDoneDate"`
}

// ExportTasks emits the user's tasks as a JSON array and, when R2 is
// configured, stores a backup snapshot of the same bytes.
func (s *TaskService) ExportTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	tasks, err := s.loadSnapshot(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load tasks", "cause": err.Error(),
		})
	}

	out := make([]taskExport, 0, len(tasks))
	for _, t := range tasks {
		source := t.Source
		if source == "" {
			source = "Manual"
		}
		entry := taskExport{
			Project:   t.Project,
			Task:      t.Task,
			Chain:     t.Chain,
			Link:      t.Link,
			Tags:      t.Tags,
			Type:      t.Type,
			Priority:  t.Priority,
			Status:    t.Status,
			WalletID:  t.WalletID,
			Source:    source,
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if t.LastDoneDate != nil {
			done := t.LastDoneDate.UTC().Format(time.RFC3339)
			entry.LastDoneDate = &done
		}
		out = append(out, entry)
	}

	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encode export"})
	}

	if utils.R2Enabled() {
		key := fmt.Sprintf("exports/%s/%s.json", userID,
			slug.Make("airdrops "+time.Now().Format("2006-01-02")))
		if url, err := utils.UploadBytesToR2(payload, key, "application/json"); err != nil {
			log.Printf("⚠️ [EXPORT] backup upload failed for %s: %v", userID, err)
		} else {
			log.Printf("✅ [EXPORT] backup stored at %s", url)
		}
	}

	c.Set("Content-Type", "application/json")
	c.Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="airdrops_%s.json"`, time.Now().Format("2006-01-02")))
	return c.Send(payload)
}
