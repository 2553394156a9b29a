package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 93.5, Round2(95.5-2.0))
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 12.35, Round2(12.345))
	assert.Equal(t, -1.5, Round2(-1.499999999))
}

func TestNewRecommendation_ProfitFromRoundedValues(t *testing.T) {
	rec := NewRecommendation(97.0000000001, 84.5, 19500.126)

	assert.Equal(t, 97.0, rec.RecommendedPrice)
	assert.Equal(t, 19500.13, rec.ExpectedVolume)
	assert.InDelta(t, Round2((rec.RecommendedPrice-84.5)*rec.ExpectedVolume), rec.ExpectedProfit, 1e-6)
}

func TestReport_Margin(t *testing.T) {
	r := Report{
		Conditions:     Conditions{Cost: 84.5},
		Recommendation: Recommendation{RecommendedPrice: 96.1},
	}
	assert.Equal(t, 11.6, r.Margin())
}
