package normalization

// Пороги принятия нечеткого совпадения по умолчанию. Значения подобраны
// под фактическое качество справочников и выносятся в конфигурацию —
// вызывающий код обязан передавать порог явно, а не полагаться на константу.
const (
	// DefaultModelThreshold — порог для коррекции названий моделей.
	DefaultModelThreshold = 0.85
	// DefaultFailureThreshold — порог для коррекции кодов отказов.
	DefaultFailureThreshold = 0.75
)

// Match — результат поиска по справочнику.
type Match struct {
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

// BestMatch сканирует всех кандидатов и возвращает лучшее совпадение с
// запросом, если его score не ниже threshold. При равных score побеждает
// кандидат, встреченный первым — порядок справочника стабилен и служит
// детерминированным tie-break. Ранний выход только на точном совпадении.
//
// Возвращает nil, если ни один кандидат не дотянул до порога.
func BestMatch(query string, candidates []string, threshold float64) *Match {
	if query == "" || len(candidates) == 0 {
		return nil
	}

	best := Match{Score: -1}
	for _, candidate := range candidates {
		score := Similarity(query, candidate)
		if score > best.Score {
			best = Match{Value: candidate, Score: score}
			if score == 1 {
				break
			}
		}
	}

	if best.Score < threshold {
		return nil
	}
	return &best
}
