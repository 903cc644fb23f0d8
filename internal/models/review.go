package models

// AnalysisResult is the structured quality assessment produced by the
// analysis provider, or by the neutral fallback when the provider is
// unusable. List fields are never nil after Normalize.
type AnalysisResult struct {
	OverallScore  int            `json:"overallScore"`
	Readability   CategoryResult `json:"readability"`
	Modularity    CategoryResult `json:"modularity"`
	PotentialBugs []BugFinding   `json:"potentialBugs"`
	BestPractices []string       `json:"bestPractices"`
	Summary       string         `json:"summary"`
}

// CategoryResult scores one review dimension with its findings.
type CategoryResult struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// BugFinding is a single bug candidate reported by the provider.
type BugFinding struct {
	Line        *int   `json:"line,omitempty"`
	Severity    string `json:"severity"` // high | medium | low
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// Normalize replaces nil list fields with empty slices so consumers and
// serialized rows never carry null arrays. A provider payload that omits
// optional arrays is still a valid result.
func (r *AnalysisResult) Normalize() {
	if r.Readability.Issues == nil {
		r.Readability.Issues = []string{}
	}
	if r.Readability.Suggestions == nil {
		r.Readability.Suggestions = []string{}
	}
	if r.Modularity.Issues == nil {
		r.Modularity.Issues = []string{}
	}
	if r.Modularity.Suggestions == nil {
		r.Modularity.Suggestions = []string{}
	}
	if r.PotentialBugs == nil {
		r.PotentialBugs = []BugFinding{}
	}
	if r.BestPractices == nil {
		r.BestPractices = []string{}
	}
}

// ReviewModel is a persisted code review. Rows are immutable after creation;
// the scalar score columns are denormalized out of AnalysisResult at write
// time for cheap history listing.
type ReviewModel struct {
	Base
	UserID           *string        `json:"user_id"           gorm:"index"`
	Filename         string         `json:"filename"          gorm:"not null"`
	Language         string         `json:"language"`
	CodeContent      string         `json:"code_content"      gorm:"type:longtext"`
	OverallScore     int            `json:"overall_score"`
	ReadabilityScore int            `json:"readability_score"`
	ModularityScore  int            `json:"modularity_score"`
	BugsCount        int            `json:"bugs_count"`
	AnalysisResult   AnalysisResult `json:"analysis_result"   gorm:"type:longtext;serializer:json"`
}

func (ReviewModel) TableName() string { return "reviews" }
