package service

import (
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const DefaultAnswerPrefix = "choice_"

// ParseChoiceIDs 从表单中取出以 prefix 开头的字段值作为选项 ID。
// 非数字的值直接丢弃，不视为错误。同名字段取最后一个值。
func ParseChoiceIDs(form url.Values, prefix string) []uint {
	keys := make([]string, 0, len(form))
	for key := range form {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	seen := make(map[uint]bool, len(keys))
	ids := make([]uint, 0, len(keys))
	for _, key := range keys {
		values := form[key]
		if len(values) == 0 {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSpace(values[len(values)-1]), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if !seen[uint(id)] {
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}
	}
	return ids
}

// AnswerExtractor 把表单解析为已存在的选项，找不到的选项静默忽略
type AnswerExtractor struct {
	ChoiceRepo *repository.ChoiceRepository
	Prefix     string
}

func NewAnswerExtractor(choiceRepo *repository.ChoiceRepository, prefix string) *AnswerExtractor {
	if prefix == "" {
		prefix = DefaultAnswerPrefix
	}
	return &AnswerExtractor{ChoiceRepo: choiceRepo, Prefix: prefix}
}

func (e *AnswerExtractor) WithRepo(choiceRepo *repository.ChoiceRepository) *AnswerExtractor {
	return &AnswerExtractor{ChoiceRepo: choiceRepo, Prefix: e.Prefix}
}

func (e *AnswerExtractor) Extract(form url.Values) ([]model.Choice, error) {
	return e.ChoiceRepo.FindByIDs(ParseChoiceIDs(form, e.Prefix))
}
