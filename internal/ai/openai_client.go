package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

const (
	openAIAPIURL = "https://api.openai.com/v1/chat/completions"
	openAIModel  = "gpt-4o-mini"
)

// OpenAIEmotionClassifier asks a vision model for an emotion distribution of
// a face crop.
type OpenAIEmotionClassifier struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

func NewOpenAIEmotionClassifier(apiKey string) *OpenAIEmotionClassifier {
	return &OpenAIEmotionClassifier{
		apiKey: apiKey,
		apiURL: openAIAPIURL,
		model:  openAIModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
	Temperature    float64               `json:"temperature"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func emotionPrompt() string {
	return "This image is a cropped face of a student attending a lecture. " +
		"Estimate the facial expression as a probability distribution over exactly these labels: " +
		strings.Join(models.EmotionLabels, ", ") + ". " +
		"Respond with a single JSON object mapping each label to a number between 0 and 1, summing to 1, and nothing else."
}

func (c *OpenAIEmotionClassifier) Classify(ctx context.Context, face Image) (Prediction, error) {
	imageData, err := face.EncodeJPEG()
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to encode face: %w", err)
	}
	imageBase64 := base64.StdEncoding.EncodeToString(imageData)

	reqBody := openAIRequest{
		Model:          c.model,
		ResponseFormat: &openAIResponseFormat{Type: "json_object"},
		Messages: []openAIMessage{
			{
				Role: "user",
				Content: []openAIContentPart{
					{
						Type: "text",
						Text: emotionPrompt(),
					},
					{
						Type: "image_url",
						ImageURL: &openAIImageURL{
							URL: fmt.Sprintf("data:image/jpeg;base64,%s", imageBase64),
						},
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to read response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return Prediction{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if openAIResp.Error != nil {
		return Prediction{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}
	if len(openAIResp.Choices) == 0 {
		return Prediction{}, fmt.Errorf("no response from OpenAI")
	}

	var scores map[string]float64
	content := strings.TrimSpace(openAIResp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &scores); err != nil {
		return Prediction{}, fmt.Errorf("failed to parse emotion scores: %w", err)
	}
	return NewPrediction(scores)
}
