package services

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

const defaultImageMimeType = "image/jpeg"

type AnalyzeInput struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// AnalysisService turns a food photo into a nutrition estimate. Without an
// analyzer every call is Unconfigured; the uploader is optional.
type AnalysisService struct {
	analyzer Analyzer
	uploader ImageUploader
	cache    EstimateCache
	logger   *zap.Logger
}

type AnalysisOption func(*AnalysisService)

// WithEstimateCache serves repeated images from c. Cache failures are logged
// and otherwise ignored.
func WithEstimateCache(c EstimateCache) AnalysisOption {
	return func(s *AnalysisService) { s.cache = c }
}

func NewAnalysisService(analyzer Analyzer, uploader ImageUploader, logger *zap.Logger, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{analyzer: analyzer, uploader: uploader, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AnalysisService) Configured() bool { return s.analyzer != nil }

func (s *AnalysisService) Analyze(ctx context.Context, in AnalyzeInput) (*models.NutritionEstimate, error) {
	if s.analyzer == nil {
		return nil, apperr.Unconfigured("AI analysis is not configured")
	}

	data, mimeType := splitDataURL(strings.TrimSpace(in.ImageBase64), in.MimeType)
	if data == "" {
		return nil, apperr.Validation("Image data is required")
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, apperr.Validation("Image data must be base64 encoded")
	}

	cacheKey := analysisCacheKey(s.analyzer.Name(), mimeType, image)
	if s.cache != nil {
		est, ok, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("analysis cache read failed", zap.Error(err))
		}
		if ok {
			return est, nil
		}
	}

	var (
		wg       sync.WaitGroup
		imageURL string
	)
	if s.uploader != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := s.uploader.UploadImage(ctx, image)
			if err != nil {
				s.logger.Warn("image upload failed, returning analysis without imageUrl", zap.Error(err))
				return
			}
			imageURL = url
		}()
	}

	text, err := s.analyzer.Analyze(ctx, image, mimeType)
	wg.Wait()
	if err != nil {
		s.logger.Error("AI analysis failed", zap.String("provider", s.analyzer.Name()), zap.Error(err))
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.Upstream(err, "AI analysis failed")
		}
		return nil, err
	}

	est, err := ParseNutrition(text)
	if err != nil {
		s.logger.Error("AI response was not valid nutrition JSON", zap.String("provider", s.analyzer.Name()), zap.Error(err))
		return nil, err
	}
	est.ImageURL = imageURL

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, est); err != nil {
			s.logger.Warn("analysis cache write failed", zap.Error(err))
		}
	}
	return est, nil
}

// splitDataURL accepts either bare base64 or a data URL. A mime type in the
// data URL wins over the explicit one; the default is image/jpeg.
func splitDataURL(s, mimeType string) (string, string) {
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		if meta, payload, found := strings.Cut(rest, ","); found {
			if mt, _, _ := strings.Cut(meta, ";"); mt != "" {
				mimeType = mt
			}
			s = payload
		}
	}
	if mimeType == "" {
		mimeType = defaultImageMimeType
	}
	return s, mimeType
}
