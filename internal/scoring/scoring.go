// Package scoring turns the answers recorded during an interview into a final
// performance summary. Everything here is pure.
package scoring

import (
	"fmt"
	"math"
)

// MinAnswers is the smallest number of answers a summary is computed from.
const MinAnswers = 2

const (
	strongThreshold  = 7.0
	averageThreshold = 5.0
)

// Verdict classifies overall interview performance.
type Verdict string

const (
	VerdictStrong           Verdict = "strong"
	VerdictAverage          Verdict = "average"
	VerdictNeedsImprovement Verdict = "needs improvement"
	VerdictInsufficientData Verdict = "insufficient data"
)

// Message returns the human readable form of the verdict.
func (v Verdict) Message() string {
	switch v {
	case VerdictStrong:
		return "Strong performance"
	case VerdictAverage:
		return "Average performance"
	case VerdictNeedsImprovement:
		return "Needs improvement"
	case VerdictInsufficientData:
		return "Not enough data to evaluate. Please answer more questions."
	default:
		return string(v)
	}
}

// Answer is a scored answer as recorded in a session.
type Answer struct {
	Question string
	Score    int
}

// Summary is the end-of-interview report. AverageScore is nil when there is
// not enough data to compute it.
type Summary struct {
	TotalQuestions int      `json:"total_questions"`
	AverageScore   *float64 `json:"average_score"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Verdict        Verdict  `json:"verdict"`
	Message        string   `json:"message"`
}

// Insufficient is the summary returned when fewer than MinAnswers answers exist.
func Insufficient(total int) Summary {
	return Summary{
		TotalQuestions: total,
		Strengths:      []string{},
		Weaknesses:     []string{},
		Verdict:        VerdictInsufficientData,
		Message:        VerdictInsufficientData.Message(),
	}
}

// Summarize computes the average score, strengths, weaknesses and verdict.
// Inputs shorter than MinAnswers yield Insufficient.
func Summarize(answers []Answer) Summary {
	if len(answers) < MinAnswers {
		return Insufficient(len(answers))
	}

	total := 0
	strengths := make([]string, 0, len(answers))
	weaknesses := make([]string, 0, len(answers))
	for _, a := range answers {
		total += a.Score
		if float64(a.Score) >= strongThreshold {
			strengths = append(strengths, fmt.Sprintf("Good understanding of %s", a.Question))
		} else {
			weaknesses = append(weaknesses, fmt.Sprintf("Needs improvement in %s", a.Question))
		}
	}

	avg := Round2(float64(total) / float64(len(answers)))
	verdict := VerdictFor(avg)

	return Summary{
		TotalQuestions: len(answers),
		AverageScore:   &avg,
		Strengths:      Dedupe(strengths),
		Weaknesses:     Dedupe(weaknesses),
		Verdict:        verdict,
		Message:        verdict.Message(),
	}
}

// VerdictFor maps an average score to a verdict.
func VerdictFor(avg float64) Verdict {
	switch {
	case avg >= strongThreshold:
		return VerdictStrong
	case avg >= averageThreshold:
		return VerdictAverage
	default:
		return VerdictNeedsImprovement
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Dedupe drops repeated items, keeping the first occurrence of each.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
