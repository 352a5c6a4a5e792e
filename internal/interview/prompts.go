package interview

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/PratikChakraborty015/ai-interview-simulator/internal/utils"
)

//go:embed question_prompt.md
var questionTemplate string

//go:embed evaluation_prompt.md
var evaluationTemplate string

func buildQuestionPrompt(interviewType string, number int, previous []string) string {
	return strings.NewReplacer(
		"{{INTERVIEW_TYPE}}", strings.ToUpper(strings.TrimSpace(interviewType)),
		"{{PREVIOUS_QUESTIONS}}", utils.BulletList(previous, "None"),
		"{{QUESTION_NUMBER}}", strconv.Itoa(number),
	).Replace(questionTemplate)
}

func buildEvaluationPrompt(question, answer string) string {
	return strings.NewReplacer(
		"{{QUESTION}}", strings.TrimSpace(question),
		"{{ANSWER}}", strings.TrimSpace(answer),
	).Replace(evaluationTemplate)
}
