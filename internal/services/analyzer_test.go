package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
)

const sampleAnalysis = `{
  "food_items": ["grilled chicken", " rice ", ""],
  "calories": 520,
  "macros": {"protein": 42, "carbs": 55, "fats": 12, "fiber": 3, "sugar": -2},
  "micronutrients": {"sodium": 640, "iron": 2.5, "caffeine": 80, "zinc": -1},
  "health_score": 78.6,
  "recommendations": ["Add a side of greens"]
}`

func TestParseNutrition(t *testing.T) {
	est, err := ParseNutrition(sampleAnalysis)
	require.NoError(t, err)

	assert.Equal(t, []string{"grilled chicken", "rice"}, est.FoodItems)
	assert.Equal(t, 520.0, est.Calories)
	assert.Equal(t, 42.0, est.Macros.Protein)
	assert.Equal(t, 0.0, est.Macros.Sugar)
	assert.Equal(t, map[string]float64{"sodium": 640, "iron": 2.5, "zinc": 0}, est.Micronutrients)
	assert.Equal(t, 79, est.HealthScore)
	assert.Equal(t, []string{"Add a side of greens"}, est.Recommendations)
}

func TestParseNutritionStripsFencesAndProse(t *testing.T) {
	text := "Here is the analysis:\n```json\n" + sampleAnalysis + "\n```\nEnjoy!"
	est, err := ParseNutrition(text)
	require.NoError(t, err)
	assert.Equal(t, 520.0, est.Calories)
}

func TestParseNutritionDefaultsAndClamp(t *testing.T) {
	est, err := ParseNutrition(`{"health_score": 140}`)
	require.NoError(t, err)
	assert.Equal(t, 100, est.HealthScore)
	assert.Empty(t, est.FoodItems)
	assert.NotNil(t, est.FoodItems)
	assert.NotNil(t, est.Micronutrients)
	assert.Zero(t, est.Calories)
}

func TestParseNutritionQuotedNumbers(t *testing.T) {
	est, err := ParseNutrition(`{"food_items":["toast"],"calories":"450","macros":{"protein":"12g","carbs":60,"fats":null},` +
		`"micronutrients":{"sodium":"300 mg","iron":"n/a"},"health_score":"70"}`)
	require.NoError(t, err)
	assert.Equal(t, 450.0, est.Calories)
	assert.Equal(t, 12.0, est.Macros.Protein)
	assert.Equal(t, 60.0, est.Macros.Carbs)
	assert.Zero(t, est.Macros.Fats)
	assert.Equal(t, map[string]float64{"sodium": 300, "iron": 0}, est.Micronutrients)
	assert.Equal(t, 70, est.HealthScore)
}

func TestParseNutritionRejectsNonJSON(t *testing.T) {
	_, err := ParseNutrition("I could not see any food in this picture.")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, "Could not parse AI response as JSON", apperr.Message(err))
}

func TestGeminiAnalyzer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "certified nutritionist")
		require.NotNil(t, req.Contents[0].Parts[1].InlineData)
		assert.Equal(t, "image/png", req.Contents[0].Parts[1].InlineData.MimeType)
		assert.Equal(t, "aGVsbG8=", req.Contents[0].Parts[1].InlineData.Data)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{
					map[string]any{"text": `{"calories": `},
					map[string]any{"text": `300}`},
				}},
			}},
		})
	}))
	defer srv.Close()

	g := NewGeminiAnalyzer("test-key", "gemini-test").WithBaseURL(srv.URL + "/")
	text, err := g.Analyze(context.Background(), []byte("hello"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, `{"calories": 300}`, text)
}

func TestGeminiAnalyzerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := NewGeminiAnalyzer("bad", "m").WithBaseURL(srv.URL).Analyze(context.Background(), []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGeminiAnalyzerNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	_, err := NewGeminiAnalyzer("k", "m").WithBaseURL(srv.URL).Analyze(context.Background(), []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, "AI analysis returned no result", apperr.Message(err))
}

func TestOpenAIAnalyzer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req["model"])
		body, _ := json.Marshal(req["messages"])
		assert.Contains(t, string(body), "data:image/jpeg;base64,aGVsbG8=")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-test",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": `{"calories": 410}`},
			}},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	a := NewOpenAIAnalyzerWithConfig(cfg, "gpt-test")

	text, err := a.Analyze(context.Background(), []byte("hello"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, `{"calories": 410}`, text)
}
