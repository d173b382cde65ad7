package ppm

import (
	"math"
	"strings"

	"sigmaq/enrichment"
	"sigmaq/feed"
	"sigmaq/normalization"
)

// Статусы сопоставления строки производства с базой дефектов.
const (
	MatchExact    = "exact"
	MatchPartial  = "partial"
	MatchFuzzy    = "fuzzy"
	MatchCategory = "category"
	MatchNone     = "none"
)

// Порог нечеткого этапа ниже каталожных порогов: здесь цена ошибки
// ниже, результат чисто справочный.
const fuzzyMatchThreshold = 0.65

const matchedModelsLimit = 5

// LineMatch — результат сопоставления одной строки производства.
type LineMatch struct {
	Status        string   `json:"status"`
	MatchedCount  int      `json:"matchedCount"`
	MatchedModels []string `json:"matchedModels"`
	Confidence    float64  `json:"confidence"`
	Reason        string   `json:"reason"`
}

// MatchProductionLine ищет строку производства в обогащенной базе
// дефектов каскадом из четырех этапов: точная модель, подстрока в той
// же категории, нечеткое совпадение, совпадение только категории.
// Каждый следующий этап слабее и дает меньшую уверенность.
func MatchProductionLine(line feed.RawRow, pool []enrichment.EnrichedRecord) LineMatch {
	model := line.Normalized(feed.FieldModel)
	category := line.Normalized(feed.FieldCategory)

	// Пул кандидатов: при известной категории строки чужие категории
	// отбрасываются, записи без категории остаются
	candidates := make([]enrichment.EnrichedRecord, 0, len(pool))
	for _, d := range pool {
		if category != "" && d.Category != "" && d.Category != category {
			continue
		}
		candidates = append(candidates, d)
	}

	// 1. Точное совпадение модели
	matched := filterRecords(candidates, func(d enrichment.EnrichedRecord) bool {
		return d.Model != "" && d.Model == model
	})
	if len(matched) > 0 {
		return LineMatch{
			Status:        MatchExact,
			MatchedCount:  len(matched),
			MatchedModels: collectModels(matched),
			Confidence:    1.0,
			Reason:        "Modelo exato encontrado",
		}
	}

	// 2. Подстрока (без пробелов) при совпадающей категории
	if model != "" && category != "" {
		compact := strings.ReplaceAll(model, " ", "")
		matched = filterRecords(candidates, func(d enrichment.EnrichedRecord) bool {
			if d.Model == "" {
				return false
			}
			other := strings.ReplaceAll(d.Model, " ", "")
			return strings.Contains(other, compact) || strings.Contains(compact, other)
		})
		if len(matched) > 0 {
			return LineMatch{
				Status:        MatchPartial,
				MatchedCount:  len(matched),
				MatchedModels: collectModels(matched),
				Confidence:    0.8,
				Reason:        "Modelo parcialmente igual (substring) com mesma categoria",
			}
		}
	}

	// 3. Нечеткое совпадение по модели: берутся все кандидаты с
	// максимальным счетом
	if model != "" {
		var best []enrichment.EnrichedRecord
		bestScore := 0.0
		for _, d := range candidates {
			if d.Model == "" {
				continue
			}
			score := normalization.Similarity(model, d.Model)
			if score > bestScore {
				bestScore = score
				best = []enrichment.EnrichedRecord{d}
			} else if score == bestScore && score > 0 {
				best = append(best, d)
			}
		}
		if bestScore >= fuzzyMatchThreshold && len(best) > 0 {
			return LineMatch{
				Status:        MatchFuzzy,
				MatchedCount:  len(best),
				MatchedModels: collectModels(best),
				Confidence:    round3(bestScore),
				Reason:        "Correspondência aproximada por modelo",
			}
		}
	}

	// 4. Хотя бы категория: берется весь исходный пул, без фильтра
	// "пустая категория проходит"
	if category != "" {
		matched = filterRecords(pool, func(d enrichment.EnrichedRecord) bool {
			return d.Category == category
		})
		if len(matched) > 0 {
			return LineMatch{
				Status:        MatchCategory,
				MatchedCount:  len(matched),
				MatchedModels: collectModels(matched),
				Confidence:    0.5,
				Reason:        "Categoria encontrada, modelo não localizado",
			}
		}
	}

	return LineMatch{
		Status:        MatchNone,
		MatchedModels: []string{},
		Reason:        "Nenhuma correspondência encontrada",
	}
}

func filterRecords(pool []enrichment.EnrichedRecord, keep func(enrichment.EnrichedRecord) bool) []enrichment.EnrichedRecord {
	var out []enrichment.EnrichedRecord
	for _, d := range pool {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// collectModels собирает до пяти уникальных идентификаторов модели:
// код продукта из справочника, если запись была обогащена, иначе
// модель из строки.
func collectModels(records []enrichment.EnrichedRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, matchedModelsLimit)

	for _, d := range records {
		id := d.Model
		if d.MatchedModel != nil && d.MatchedModel.ProductCode != "" {
			id = d.MatchedModel.ProductCode
		}
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == matchedModelsLimit {
			break
		}
	}

	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
