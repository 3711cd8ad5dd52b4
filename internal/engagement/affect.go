package engagement

import (
	"math"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

// Affect maps an emotion distribution to emotional positivity in [0,1].
// Positive mass is rewarded strongly while neutral and negative mass only
// trim the 0.2 baseline.
func Affect(d models.Distribution) float64 {
	positive := d[models.EmotionHappy] + 0.5*d[models.EmotionSurprise]
	negative := d[models.EmotionAngry] + d[models.EmotionDisgust] + d[models.EmotionFear] + d[models.EmotionSad]
	neutral := 0.5 * d[models.EmotionNeutral]
	return clamp01(positive*0.8 + (1-math.Min(1, negative+neutral))*0.2)
}
