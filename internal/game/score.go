package game

import (
	"math"

	"github.com/samber/lo"
)

const (
	WordBasePoints = 10
	HintPenalty    = 2
	TimeDecayRate  = 0.05 // points lost per second
)

// ComputeScore scores a snapshot of word progress. It is a pure function of
// its inputs: hints count only on completed words, the time penalty is
// floored and the result never drops below zero.
func ComputeScore(words []Progress, elapsedSeconds float64) Score {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	correct := lo.CountBy(words, func(w Progress) bool { return w.Completed })
	hints := lo.SumBy(words, func(w Progress) int {
		if !w.Completed {
			return 0
		}
		return w.RevealedHints
	})

	timePenalty := int(math.Floor(elapsedSeconds * TimeDecayRate))
	final := correct*WordBasePoints - hints*HintPenalty - timePenalty

	return Score{
		CorrectWords:          correct,
		TotalHintsUsed:        hints,
		CompletionTimeSeconds: int(math.Floor(elapsedSeconds)),
		FinalScore:            max(0, final),
	}
}
