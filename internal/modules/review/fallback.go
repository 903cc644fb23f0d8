package review

import "github.com/codelens/core/internal/models"

// fallbackResult builds the deterministic neutral assessment substituted
// when the analysis provider cannot be used. The pipeline degrades
// gracefully instead of failing the whole request.
func fallbackResult() models.AnalysisResult {
	return models.AnalysisResult{
		OverallScore: 5,
		Readability: models.CategoryResult{
			Score:       5,
			Issues:      []string{"Automated analysis is temporarily unavailable"},
			Suggestions: []string{"Resubmit the file later for a full review"},
		},
		Modularity: models.CategoryResult{
			Score:       5,
			Issues:      []string{"Automated analysis is temporarily unavailable"},
			Suggestions: []string{"Resubmit the file later for a full review"},
		},
		PotentialBugs: []models.BugFinding{},
		BestPractices: []string{"Analysis temporarily unavailable"},
		Summary:       "The automated code analysis service could not be reached, so neutral scores were assigned. Please try again later for a detailed review.",
	}
}
