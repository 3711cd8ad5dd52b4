package engagement

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

func TestAffect(t *testing.T) {
	tests := []struct {
		name string
		dist models.Distribution
		want float64
	}{
		{"happy", models.Distribution{models.EmotionHappy: 1}, 1.0},
		{"surprise", models.Distribution{models.EmotionSurprise: 1}, 0.6},
		{"neutral", models.NeutralDistribution(), 0.1},
		{"sad", models.Distribution{models.EmotionSad: 1}, 0},
		{"mixed", models.Distribution{models.EmotionHappy: 0.5, models.EmotionNeutral: 0.5}, 0.4 + 0.75*0.2},
		{"empty", models.Distribution{}, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Affect(tt.dist), 1e-9)
		})
	}
}

func TestAffectBoundedForRandomDistributions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		d := models.Distribution{}
		total := 0.0
		for _, label := range models.EmotionLabels {
			v := rng.Float64()
			d[label] = v
			total += v
		}
		for label := range d {
			d[label] /= total
		}
		a := Affect(d)
		assert.GreaterOrEqual(t, a, 0.0)
		assert.LessOrEqual(t, a, 1.0)
	}
}
