package review

import (
	"errors"
	"time"

	"github.com/codelens/core/internal/models"
)

const (
	// uploadFieldName is the multipart field carrying the code file.
	uploadFieldName = "codeFile"
	// maxUploadBytes caps one submission at 5 MiB.
	maxUploadBytes = 5 * 1024 * 1024
)

var allowedExtensions = map[string]struct{}{
	".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {},
	".py": {}, ".java": {}, ".cpp": {}, ".c": {},
	".go": {}, ".rs": {},
}

var (
	errInvalidExtension = errors.New("invalid file type")
	errFileTooLarge     = errors.New("file size must not exceed 5MB")
)

// reviewResponse is the wire shape of a full persisted review.
type reviewResponse struct {
	ID               string                `json:"id"`
	UserID           *string               `json:"user_id,omitempty"`
	Filename         string                `json:"filename"`
	Language         string                `json:"language"`
	CodeContent      string                `json:"code_content"`
	OverallScore     int                   `json:"overall_score"`
	ReadabilityScore int                   `json:"readability_score"`
	ModularityScore  int                   `json:"modularity_score"`
	BugsCount        int                   `json:"bugs_count"`
	AnalysisResult   models.AnalysisResult `json:"analysis_result"`
	CreatedAt        time.Time             `json:"created_at"`
}

// reviewSummary is the wire shape of one history entry: the denormalized
// scalars without code or the full analysis.
type reviewSummary struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	Language         string    `json:"language"`
	OverallScore     int       `json:"overall_score"`
	ReadabilityScore int       `json:"readability_score"`
	ModularityScore  int       `json:"modularity_score"`
	BugsCount        int       `json:"bugs_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// guestReviewResponse is the ephemeral result of a guest analysis. There is
// no identity and no timestamp: guest reviews are never retrievable.
type guestReviewResponse struct {
	Filename         string                `json:"filename"`
	Language         string                `json:"language"`
	OverallScore     int                   `json:"overall_score"`
	ReadabilityScore int                   `json:"readability_score"`
	ModularityScore  int                   `json:"modularity_score"`
	BugsCount        int                   `json:"bugs_count"`
	AnalysisResult   models.AnalysisResult `json:"analysis_result"`
}

func toReviewResponse(r *models.ReviewModel) reviewResponse {
	return reviewResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		Filename:         r.Filename,
		Language:         r.Language,
		CodeContent:      r.CodeContent,
		OverallScore:     r.OverallScore,
		ReadabilityScore: r.ReadabilityScore,
		ModularityScore:  r.ModularityScore,
		BugsCount:        r.BugsCount,
		AnalysisResult:   r.AnalysisResult,
		CreatedAt:        r.CreatedAt,
	}
}

func toReviewSummary(r *models.ReviewModel) reviewSummary {
	return reviewSummary{
		ID:               r.ID,
		Filename:         r.Filename,
		Language:         r.Language,
		OverallScore:     r.OverallScore,
		ReadabilityScore: r.ReadabilityScore,
		ModularityScore:  r.ModularityScore,
		BugsCount:        r.BugsCount,
		CreatedAt:        r.CreatedAt,
	}
}

func toGuestResponse(filename, language string, result models.AnalysisResult) guestReviewResponse {
	return guestReviewResponse{
		Filename:         filename,
		Language:         language,
		OverallScore:     result.OverallScore,
		ReadabilityScore: result.Readability.Score,
		ModularityScore:  result.Modularity.Score,
		BugsCount:        len(result.PotentialBugs),
		AnalysisResult:   result,
	}
}
