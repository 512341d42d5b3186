package service

import (
	"course_platform_backend/internal/model"
	"math"
)

// QuestionFeedback 单题判分结果
type QuestionFeedback struct {
	QuestionID      uint               `json:"questionId"`
	Content         string             `json:"content"`
	QuestionType    model.QuestionType `json:"questionType"`
	Grade           int                `json:"grade"`
	IsCorrect       bool               `json:"isCorrect"`
	SelectedChoices []model.Choice     `json:"selectedChoices"`
	Feedback        string             `json:"feedback,omitempty"`
}

// ExamResult 整卷评分结果，Grade 为 0-100 的百分制成绩
type ExamResult struct {
	TotalScore int                `json:"totalScore"`
	MaxScore   int                `json:"maxScore"`
	Grade      int                `json:"grade"`
	Questions  []QuestionFeedback `json:"questions"`
}

// IsQuestionCorrect 判断一道题是否得分。
// 多选题要求选中全部正确项且没有错误项；其他题型只要求选中全部正确项，
// 额外勾选的错误项不会扣分。
func IsQuestionCorrect(q *model.Question, selectedIDs []uint) bool {
	selected := make(map[uint]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	correctTotal, selectedCorrect, selectedWrong := 0, 0, 0
	for _, c := range q.Choices {
		if c.IsCorrect {
			correctTotal++
			if selected[c.ID] {
				selectedCorrect++
			}
		} else if selected[c.ID] {
			selectedWrong++
		}
	}

	if q.QuestionType == model.MultipleSelect {
		return selectedCorrect == correctTotal && selectedWrong == 0
	}
	return selectedCorrect == correctTotal
}

// PercentageGrade 四舍五入（0.5 进位）到整数百分比，满分为 0 时返回 0
func PercentageGrade(totalScore, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Floor(float64(totalScore)*100/float64(maxScore) + 0.5))
}

// GradeExam 对启用的题目逐题判分。纯函数：相同的题目与选项总是得到相同结果，
// 提交时与查看结果时各调用一次。
func GradeExam(questions []model.Question, selected []model.Choice) *ExamResult {
	byQuestion := make(map[uint][]model.Choice)
	for _, c := range selected {
		byQuestion[c.QuestionID] = append(byQuestion[c.QuestionID], c)
	}

	result := &ExamResult{Questions: make([]QuestionFeedback, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		if !q.IsActive {
			continue
		}

		chosen := byQuestion[q.ID]
		ids := make([]uint, 0, len(chosen))
		for _, c := range chosen {
			ids = append(ids, c.ID)
		}

		correct := IsQuestionCorrect(q, ids)
		result.MaxScore += q.Grade
		if correct {
			result.TotalScore += q.Grade
		}

		if chosen == nil {
			chosen = []model.Choice{}
		}
		result.Questions = append(result.Questions, QuestionFeedback{
			QuestionID:      q.ID,
			Content:         q.Content,
			QuestionType:    q.QuestionType,
			Grade:           q.Grade,
			IsCorrect:       correct,
			SelectedChoices: chosen,
			Feedback:        q.Feedback,
		})
	}

	result.Grade = PercentageGrade(result.TotalScore, result.MaxScore)
	return result
}
