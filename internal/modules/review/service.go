package review

import (
	"context"
	"errors"

	"github.com/codelens/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service runs the review pipeline's analysis step and owns the review store.
type Service struct {
	db       *gorm.DB
	analyzer *Analyzer
	logger   *zap.Logger
}

func NewService(db *gorm.DB, analyzer *Analyzer, logger *zap.Logger) *Service {
	return &Service{db: db, analyzer: analyzer, logger: logger}
}

// Analyze invokes the provider and substitutes the neutral fallback on any
// internal failure. This step never fails outward.
func (s *Service) Analyze(ctx context.Context, code, filename, language string) models.AnalysisResult {
	result, err := s.analyzer.Analyze(ctx, code, filename, language)
	if err != nil {
		s.logger.Warn("code analysis failed, using fallback result",
			zap.String("filename", filename),
			zap.String("language", language),
			zap.Error(err),
		)
		return fallbackResult()
	}
	return *result
}

// Create persists a completed review. The scalar score columns are copied
// out of the analysis result at write time; the row is immutable afterwards.
func (s *Service) Create(userID *string, filename, language, code string, result models.AnalysisResult) (*models.ReviewModel, error) {
	result.Normalize()
	r := models.ReviewModel{
		UserID:           userID,
		Filename:         filename,
		Language:         language,
		CodeContent:      code,
		OverallScore:     result.OverallScore,
		ReadabilityScore: result.Readability.Score,
		ModularityScore:  result.Modularity.Score,
		BugsCount:        len(result.PotentialBugs),
		AnalysisResult:   result,
	}
	if err := s.db.Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByUser returns the user's review summaries, newest first. Only the
// denormalized scalar columns are selected; code and the full analysis stay
// out of the listing.
func (s *Service) ListByUser(userID string) ([]models.ReviewModel, error) {
	var items []models.ReviewModel
	err := s.db.Model(&models.ReviewModel{}).
		Select("id, filename, language, overall_score, readability_score, modularity_score, bugs_count, created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	return items, err
}

// GetByID returns the full review only when it belongs to the requesting
// user. A miss and a foreign owner are indistinguishable to the caller.
func (s *Service) GetByID(id, userID string) (*models.ReviewModel, error) {
	var r models.ReviewModel
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
