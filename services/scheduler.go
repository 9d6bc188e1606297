// services/scheduler.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"airdrop-tracker/models"
	"airdrop-tracker/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
)

// StartBackupScheduler runs a nightly job that snapshots every user's task
// collection to R2. No-op when R2 is not configured.
func (s *TaskService) StartBackupScheduler() {
	if !utils.R2Enabled() {
		log.Println("⚠️  R2 not configured — nightly export backups disabled")
		return
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Daily at 03:00: snapshot each user's tasks
	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(func() {
			var userIDs []string
			if err := s.DB.Model(&models.Task{}).Distinct("user_id").Pluck("user_id", &userIDs).Error; err != nil {
				log.Printf("[Backup] DB error: %v", err)
				return
			}

			for _, userID := range userIDs {
				tasks, err := s.loadSnapshot(userID)
				if err != nil {
					log.Printf("[Backup] failed to load tasks for %s: %v", userID, err)
					continue
				}

				payload, err := json.Marshal(tasks)
				if err != nil {
					log.Printf("[Backup] failed to encode tasks for %s: %v", userID, err)
					continue
				}

				key := fmt.Sprintf("backups/%s/%s.json", userID,
					slug.Make("tasks "+time.Now().Format("2006-01-02")))
				if _, err := utils.UploadBytesToR2(payload, key, "application/json"); err != nil {
					log.Printf("[Backup] upload failed for %s: %v", userID, err)
					continue
				}
				log.Printf("✅ Nightly backup stored for user %s (%d task(s))", userID, len(tasks))
			}
		}),
	)
}
