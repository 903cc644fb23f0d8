package review

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	appcfg "github.com/codelens/core/internal/config"
	"github.com/codelens/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.UserSession{}, &models.ReviewModel{}))
	return db
}

func newTestService(t *testing.T, analyzer *Analyzer) (*Service, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	if analyzer == nil {
		analyzer = NewAnalyzer(appcfg.AIConfig{}, zap.NewNop())
	}
	return NewService(db, analyzer, zap.NewNop()), db
}

func TestServiceAnalyze_FallbackOnProviderFailure(t *testing.T) {
	// No providers configured, so every analysis fails internally.
	svc, _ := newTestService(t, nil)

	result := svc.Analyze(context.Background(), "fn main() {}", "lib.rs", "rust")
	assert.Equal(t, 5, result.OverallScore)
	assert.Equal(t, 5, result.Readability.Score)
	assert.Equal(t, 5, result.Modularity.Score)
	assert.Empty(t, result.PotentialBugs)
	assert.NotNil(t, result.PotentialBugs)
	assert.Equal(t, []string{"Analysis temporarily unavailable"}, result.BestPractices)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Readability.Issues)
	assert.NotEmpty(t, result.Modularity.Suggestions)
}

func TestServiceCreate_DenormalizesScores(t *testing.T) {
	svc, db := newTestService(t, nil)

	line := 7
	result := models.AnalysisResult{
		OverallScore: 9,
		Readability:  models.CategoryResult{Score: 8},
		Modularity:   models.CategoryResult{Score: 7},
		PotentialBugs: []models.BugFinding{
			{Line: &line, Severity: "low", Description: "shadowed variable"},
			{Severity: "medium", Description: "unchecked error"},
		},
		Summary: "fine",
	}

	userID := "user-1"
	r, err := svc.Create(&userID, "main.go", "go", "package main", result)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 9, r.OverallScore)
	assert.Equal(t, 8, r.ReadabilityScore)
	assert.Equal(t, 7, r.ModularityScore)
	assert.Equal(t, 2, r.BugsCount)

	var stored models.ReviewModel
	require.NoError(t, db.First(&stored, "id = ?", r.ID).Error)
	assert.Equal(t, "main.go", stored.Filename)
	assert.Equal(t, "package main", stored.CodeContent)
	assert.Equal(t, 2, len(stored.AnalysisResult.PotentialBugs))
	assert.NotNil(t, stored.AnalysisResult.BestPractices)
}

func TestServiceListByUser_NewestFirstAndScalarOnly(t *testing.T) {
	svc, db := newTestService(t, nil)

	userID := "user-1"
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"old.go", "mid.go", "new.go"} {
		r := models.ReviewModel{
			UserID:       &userID,
			Filename:     name,
			Language:     "go",
			CodeContent:  "package main",
			OverallScore: i + 1,
			AnalysisResult: models.AnalysisResult{
				OverallScore: i + 1,
				Summary:      "s",
			},
		}
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&r).Error)
	}

	other := "user-2"
	require.NoError(t, db.Create(&models.ReviewModel{UserID: &other, Filename: "theirs.go"}).Error)

	items, err := svc.ListByUser(userID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "new.go", items[0].Filename)
	assert.Equal(t, "mid.go", items[1].Filename)
	assert.Equal(t, "old.go", items[2].Filename)
	// code and the full analysis stay out of listings
	assert.Empty(t, items[0].CodeContent)
	assert.Equal(t, models.AnalysisResult{}, items[0].AnalysisResult)
}

func TestServiceGetByID_OwnershipScoped(t *testing.T) {
	svc, _ := newTestService(t, nil)

	owner := "owner"
	r, err := svc.Create(&owner, "a.py", "python", "pass", models.AnalysisResult{OverallScore: 6})
	require.NoError(t, err)

	got, err := svc.GetByID(r.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a.py", got.Filename)
	assert.Equal(t, 6, got.AnalysisResult.OverallScore)

	// a foreign owner and a missing id are indistinguishable
	got, err = svc.GetByID(r.ID, "intruder")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.GetByID("no-such-id", owner)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestValidateSubmission(t *testing.T) {
	assert.NoError(t, validateSubmission("main.go", 1024))
	assert.NoError(t, validateSubmission("UPPER.JS", 1024))
	assert.NoError(t, validateSubmission("edge.py", maxUploadBytes))
	assert.ErrorIs(t, validateSubmission("huge.py", maxUploadBytes+1), errFileTooLarge)
	assert.ErrorIs(t, validateSubmission("notes.txt", 10), errInvalidExtension)
	assert.ErrorIs(t, validateSubmission("noext", 10), errInvalidExtension)
	// extension is checked before size
	assert.ErrorIs(t, validateSubmission("huge.txt", maxUploadBytes+1), errInvalidExtension)
}
