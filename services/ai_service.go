// services/ai_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"airdrop-tracker/models"
	"airdrop-tracker/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AIService stores chat-completion credentials and proxies chat requests to
// the provider selected by each credential's type tag. Unlike balance
// lookups, failures here surface to the caller — the chat is interactive.
type AIService struct {
	DB         *gorm.DB
	HTTPClient *http.Client
}

func NewAIService(db *gorm.DB) *AIService {
	return &AIService{DB: db, HTTPClient: utils.HTTPClient}
}

// GetProviders lists stored credentials (API keys never serialized).
func (s *AIService) GetProviders(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var providers []models.AIProvider
	if err := s.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&providers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(providers)
}

func (s *AIService) CreateProvider(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var in struct {
		Name   string `json:"name"`
		Type   string `json:"type"`
		APIKey string `json:"apiKey"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if in.Name == "" || in.APIKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and apiKey are required"})
	}

	switch in.Type {
	case models.AIProviderOpenAI, models.AIProviderGroq, models.AIProviderAnthropic,
		models.AIProviderCohere, models.AIProviderHuggingFace:
	case "":
		in.Type = models.AIProviderOpenAI
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unknown provider type %q", in.Type),
		})
	}

	provider := models.AIProvider{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Type:      in.Type,
		APIKey:    in.APIKey,
		CreatedAt: time.Now(),
	}
	if err := s.DB.Create(&provider).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(provider)
}

func (s *AIService) DeleteProvider(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	providerID := c.Params("id")

	res := s.DB.Where("id = ? AND user_id = ?", providerID, userID).Delete(&models.AIProvider{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "provider not found"})
	}
	return c.JSON(fiber.Map{"deleted": providerID})
}

// Chat handles POST /s/ai/chat — dispatches the message to the stored
// provider's endpoint using that provider family's wire shape.
func (s *AIService) Chat(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var in struct {
		ProviderID string `json:"provider_id"`
		Message    string `json:"message"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if in.ProviderID == "" || in.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "provider_id and message are required"})
	}

	var provider models.AIProvider
	if err := s.DB.Where("id = ? AND user_id = ?", in.ProviderID, userID).First(&provider).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "provider not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	reply, err := s.callProvider(c.Context(), provider, in.Message)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": fmt.Sprintf("API error (%s): %v", provider.Name, err),
		})
	}

	return c.JSON(fiber.Map{"provider": provider.Name, "reply": reply})
}

func (s *AIService) callProvider(ctx context.Context, provider models.AIProvider, message string) (string, error) {
	switch provider.Type {
	case models.AIProviderOpenAI:
		return s.callOpenAIStyle(ctx, "https://api.openai.com/v1/chat/completions",
			"gpt-3.5-turbo", provider.APIKey, message)
	case models.AIProviderGroq:
		return s.callOpenAIStyle(ctx, "https://api.groq.com/openai/v1/chat/completions",
			"llama-3.3-70b-versatile", provider.APIKey, message)
	case models.AIProviderAnthropic:
		return s.callAnthropic(ctx, provider.APIKey, message)
	case models.AIProviderCohere:
		return s.callCohere(ctx, provider.APIKey, message)
	case models.AIProviderHuggingFace:
		return s.callHuggingFace(ctx, provider.APIKey, message)
	default:
		return "", fmt.Errorf("unknown provider type %q", provider.Type)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *AIService) postJSON(ctx context.Context, url string, headers map[string]string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// callOpenAIStyle covers OpenAI and Groq — same chat-completions shape,
// different endpoint and model.
func (s *AIService) callOpenAIStyle(ctx context.Context, url, model, apiKey, message string) (string, error) {
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	err := s.postJSON(ctx, url,
		map[string]string{"Authorization": "Bearer " + apiKey},
		map[string]any{
			"model":      model,
			"messages":   []chatMessage{{Role: "user", Content: message}},
			"max_tokens": 1000,
		}, &out)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

func (s *AIService) callAnthropic(ctx context.Context, apiKey, message string) (string, error) {
	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	err := s.postJSON(ctx, "https://api.anthropic.com/v1/messages",
		map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": "2023-06-01",
		},
		map[string]any{
			"model":      "claude-3-sonnet-20240229",
			"max_tokens": 1000,
			"messages":   []chatMessage{{Role: "user", Content: message}},
		}, &out)
	if err != nil {
		return "", err
	}
	if len(out.Content) == 0 {
		return "", fmt.Errorf("empty content in response")
	}
	return out.Content[0].Text, nil
}

func (s *AIService) callCohere(ctx context.Context, apiKey, message string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	err := s.postJSON(ctx, "https://api.cohere.ai/v1/chat",
		map[string]string{"Authorization": "Bearer " + apiKey},
		map[string]any{
			"message": message,
			"model":   "command-light",
		}, &out)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (s *AIService) callHuggingFace(ctx context.Context, apiKey, message string) (string, error) {
	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	err := s.postJSON(ctx, "https://api-inference.huggingface.co/models/gpt2",
		map[string]string{"Authorization": "Bearer " + apiKey},
		map[string]any{
			"inputs":  message,
			"options": map[string]any{"use_cache": false},
		}, &out)
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return out[0].GeneratedText, nil
}
