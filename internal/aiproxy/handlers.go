package aiproxy

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GokhanOfficial/CaloriX/internal/ai"
)

type recognizeRequest struct {
	ImageBase64    string `json:"image_base64"`
	AdditionalText string `json:"additional_text"`
}

type recognizeTextRequest struct {
	Text string `json:"text"`
}

func (s *Server) configured(c *gin.Context) bool {
	if s.cfg.APIKey == "" {
		s.log.Error("upstream api key is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service not configured"})
		return false
	}
	return true
}

func (s *Server) recognizeFood(c *gin.Context) {
	if !s.configured(c) {
		return
	}
	var req recognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageBase64) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	parts := make([]contentPart, 0, 3)
	if note := strings.TrimSpace(req.AdditionalText); note != "" {
		parts = append(parts, contentPart{Type: "text", Text: "User note: " + note})
	}
	parts = append(parts,
		contentPart{Type: "text", Text: "Analyze the foods in this photo and estimate their nutrition."},
		contentPart{Type: "image_url", ImageURL: &imageURL{URL: imageData(req.ImageBase64)}},
	)

	var out ai.Recognition
	err := s.complete(c.Request.Context(), []chatMessage{
		{Role: "system", Content: imagePrompt},
		{Role: "user", Content: parts},
	}, 1500, 0.3, &out)
	if err != nil {
		s.upstreamFailed(c, "recognize-food", err)
		return
	}
	s.log.Debug("foods recognized", "count", len(out.Foods))
	c.JSON(http.StatusOK, normalizeRecognition(out))
}

func (s *Server) recognizeFoodText(c *gin.Context) {
	if !s.configured(c) {
		return
	}
	var req recognizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	var out ai.Recognition
	err := s.complete(c.Request.Context(), []chatMessage{
		{Role: "system", Content: textPrompt},
		{Role: "user", Content: req.Text},
	}, 1500, 0.3, &out)
	if err != nil {
		s.upstreamFailed(c, "recognize-food-text", err)
		return
	}
	c.JSON(http.StatusOK, normalizeRecognition(out))
}

func (s *Server) calculateMacros(c *gin.Context) {
	if !s.configured(c) {
		return
	}
	var req ai.MacroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.CurrentWeightKg <= 0 || req.HeightCm <= 0 || req.Age <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "age, height_cm and current_weight_kg are required"})
		return
	}

	var out ai.MacroResult
	err := s.complete(c.Request.Context(), []chatMessage{
		{Role: "system", Content: macroPrompt},
		{Role: "user", Content: macroUserPrompt(req)},
	}, 500, 0.7, &out)
	if err != nil {
		s.upstreamFailed(c, "calculate-macros", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) upstreamFailed(c *gin.Context, function string, err error) {
	s.log.Error("upstream call failed", "function", function, "err", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "AI service error"})
}

func normalizeRecognition(r ai.Recognition) ai.Recognition {
	if r.Foods == nil {
		r.Foods = []ai.RecognizedFood{}
	}
	return r
}
