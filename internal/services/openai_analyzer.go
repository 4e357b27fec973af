package services

import (
	"context"
	"encoding/base64"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
)

// OpenAIAnalyzer sends the image as a data URL to a vision-capable chat model.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnalyzer(apiKey, model string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{client: openai.NewClient(apiKey), model: model}
}

// NewOpenAIAnalyzerWithConfig allows a custom base URL or HTTP client.
func NewOpenAIAnalyzerWithConfig(cfg openai.ClientConfig, model string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (a *OpenAIAnalyzer) Name() string { return "openai" }

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: nutritionistPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailAuto,
					}},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		MaxTokens:      1500,
		Temperature:    0.2,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", apperr.Upstream(err, "AI analysis failed")
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Upstream(nil, "AI analysis returned no result")
	}
	return resp.Choices[0].Message.Content, nil
}
