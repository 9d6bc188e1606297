// services/social_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"airdrop-tracker/models"
	"airdrop-tracker/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SocialService tracks linked social accounts (Twitter/X handles) and
// resolves profile photos from public mirrors.
type SocialService struct {
	DB         *gorm.DB
	HTTPClient *http.Client
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{DB: db, HTTPClient: utils.HTTPClient}
}

// usernamePatterns handles the common Twitter URL forms plus a bare handle.
var usernamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`twitter\.com/@?(\w+)`),
	regexp.MustCompile(`x\.com/@?(\w+)`),
	regexp.MustCompile(`^@?(\w+)$`),
}

// ExtractTwitterUsername pulls the handle out of a profile URL or bare
// @handle; empty when nothing matches.
func ExtractTwitterUsername(input string) string {
	for _, p := range usernamePatterns {
		if m := p.FindStringSubmatch(input); m != nil {
			return m[1]
		}
	}
	return ""
}

var nitterImagePattern = regexp.MustCompile(`image url="([^"]+)"`)

// resolveProfilePhoto tries the nitter RSS mirror first and falls back to
// unavatar. Never fails hard — the fallback URL always renders something.
func (s *SocialService) resolveProfilePhoto(ctx context.Context, username string) (photoURL, source string) {
	url := fmt.Sprintf("https://nitter.net/%s/rss", username)
	if req, err := http.NewRequestWithContext(ctx, "GET", url, nil); err == nil {
		if resp, err := s.HTTPClient.Do(req); err == nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
				if m := nitterImagePattern.FindSubmatch(body); m != nil {
					return string(m[1]), "nitter"
				}
			}
		} else {
			log.Printf("⚠️ [SOCIAL] nitter fetch failed for %s, falling back: %v", username, err)
		}
	}

	return fmt.Sprintf("https://unavatar.io/twitter/%s", username), "unavatar"
}

func (s *SocialService) GetAccounts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var accounts []models.SocialAccount
	if err := s.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(accounts)
}

// CreateAccount links a handle; accepts full profile URLs or bare handles.
func (s *SocialService) CreateAccount(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var in struct {
		URL      string `json:"url"`
		Platform string `json:"platform"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	username := ExtractTwitterUsername(in.URL)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "could not extract a username from the given URL",
		})
	}
	if in.Platform == "" {
		in.Platform = models.SocialPlatformTwitter
	}

	photoURL, source := s.resolveProfilePhoto(c.Context(), username)

	account := models.SocialAccount{
		ID:         uuid.NewString(),
		UserID:     userID,
		Platform:   in.Platform,
		Username:   username,
		ProfileURL: fmt.Sprintf("https://twitter.com/%s", username),
		PhotoURL:   photoURL,
		Source:     source,
		CreatedAt:  time.Now(),
	}
	if err := s.DB.Create(&account).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (s *SocialService) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	accountID := c.Params("id")

	res := s.DB.Where("id = ? AND user_id = ?", accountID, userID).Delete(&models.SocialAccount{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
	}
	return c.JSON(fiber.Map{"deleted": accountID})
}
