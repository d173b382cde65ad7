package enrichment

import (
	"sigmaq/normalization"
)

// Suggestion — нечеткая подсказка для нерезолвящегося поля.
// Подсказки нужны только для объяснимости диагностики; в confidence
// обогащения они не входят принципиально — эти две ответственности
// разведены.
type Suggestion struct {
	Field     string  `json:"field"`
	Query     string  `json:"query"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// Thresholds — пороги принятия подсказок по типам справочников.
// Выносятся в конфигурацию: качество справочников со временем меняется.
type Thresholds struct {
	Model   float64 `json:"model"`
	Failure float64 `json:"failure"`
}

// DefaultThresholds — пороги по умолчанию (см. normalization).
func DefaultThresholds() Thresholds {
	return Thresholds{
		Model:   normalization.DefaultModelThreshold,
		Failure: normalization.DefaultFailureThreshold,
	}
}

// Suggest строит нечеткие подсказки для нерезолвящихся полей записи.
// Вызывается точечно на записях с issues — полный прогон по базе был бы
// квадратичным по справочнику.
func (e *Enricher) Suggest(rec EnrichedRecord, thresholds Thresholds) []Suggestion {
	var suggestions []Suggestion

	if rec.MatchedModel == nil && rec.Model != "" {
		candidates := make([]string, 0, len(e.bundle.Models))
		for _, m := range e.bundle.Models {
			if m.Model != "" {
				candidates = append(candidates, m.Model)
			}
		}
		if m := normalization.BestMatch(rec.Model, candidates, thresholds.Model); m != nil {
			suggestions = append(suggestions, Suggestion{
				Field:     "model",
				Query:     rec.Model,
				Candidate: m.Value,
				Score:     m.Score,
			})
		}
	}

	if rec.MatchedFailure == nil && rec.FailureCode != "" {
		candidates := make([]string, 0, len(e.bundle.Failures))
		for _, f := range e.bundle.Failures {
			if f.Code != "" {
				candidates = append(candidates, f.Code)
			}
		}
		if m := normalization.BestMatch(rec.FailureCode, candidates, thresholds.Failure); m != nil {
			suggestions = append(suggestions, Suggestion{
				Field:     "failure_code",
				Query:     rec.FailureCode,
				Candidate: m.Value,
				Score:     m.Score,
			})
		}
	}

	return suggestions
}
