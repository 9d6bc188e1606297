// services/stream.go
package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"airdrop-tracker/models"

	"github.com/gofiber/fiber/v2"
)

// StreamTasksSSE pushes the authenticated user's full task snapshot on
// every change, Server-Sent Events framing. An initial snapshot is sent on
// connect so the client never starts empty.
func (s *TaskService) StreamTasksSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	updates := make(chan []models.Task, 4)
	cancel := s.Feed.Subscribe(userID, func(snapshot []models.Task) {
		select {
		case updates <- snapshot:
		default: // slow client, drop — next publish carries the full state anyway
		}
	})

	if snapshot, err := s.loadSnapshot(userID); err == nil {
		updates <- snapshot
	}

	ctx := c.Context()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		log.Printf("📡 [STREAM] tasks stream opened for %s (%d subscriber(s))",
			userID, s.Feed.SubscriberCount(userID))

		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case snapshot := <-updates:
				if err := writeSSE(w, "tasks", snapshot); err != nil {
					return // client disconnected
				}
			case <-ticker.C:
				w.WriteString(":\n\n") // keepalive comment
				if err := w.Flush(); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

// StreamWalletsSSE is the wallet-collection counterpart of StreamTasksSSE.
func (s *WalletService) StreamWalletsSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	updates := make(chan []models.Wallet, 4)
	cancel := s.Feed.Subscribe(userID, func(snapshot []models.Wallet) {
		select {
		case updates <- snapshot:
		default:
		}
	})

	if snapshot, err := s.loadSnapshot(userID); err == nil {
		updates <- snapshot
	}

	ctx := c.Context()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case snapshot := <-updates:
				if err := writeSSE(w, "wallets", snapshot); err != nil {
					return
				}
			case <-ticker.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func writeSSE(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
