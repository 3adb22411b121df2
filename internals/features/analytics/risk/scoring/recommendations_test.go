package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kampusku_backend/internals/features/analytics/risk/model"
)

func TestRecommendations(t *testing.T) {
	assert.Len(t, Recommendations(model.RiskLevelLow), 1)
	assert.Len(t, Recommendations(model.RiskLevelMedium), 3)
	assert.Len(t, Recommendations(model.RiskLevelHigh), 3)
	assert.Len(t, Recommendations(model.RiskLevelCritical), 3)
	assert.Empty(t, Recommendations(model.RiskLevel("unknown")))
}

func TestRecommendations_ReturnsCopy(t *testing.T) {
	got := Recommendations(model.RiskLevelCritical)
	got[0] = "changed"
	assert.Equal(t, "Urgent intervention by the faculty", Recommendations(model.RiskLevelCritical)[0])
}

func TestLevelPresentation(t *testing.T) {
	assert.Equal(t, "danger", LevelPresentation(model.RiskLevelCritical).Color)
	assert.Equal(t, "warning", LevelPresentation(model.RiskLevelHigh).Color)
	assert.Equal(t, "Unknown", LevelPresentation("").Label)
}
