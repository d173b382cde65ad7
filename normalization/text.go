package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer раскладывает текст в NFD, удаляет диакритические знаки
// и собирает обратно в NFC. Создается один раз — transform.Chain безопасен
// для конкурентного использования через transform.String.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeText приводит произвольное текстовое значение к каноническому
// ключу: удаляет диакритику, переводит в верхний регистр, схлопывает
// внутренние пробелы и обрезает края. Пустое значение дает "".
func NormalizeText(value string) string {
	if value == "" {
		return ""
	}

	folded, _, err := transform.String(foldTransformer, value)
	if err != nil {
		// Транслитерация не удалась (битый UTF-8) — работаем с исходной строкой
		folded = value
	}

	folded = strings.ToUpper(folded)

	// Схлопывание внутренних пробелов + trim одним проходом
	fields := strings.Fields(folded)
	return strings.Join(fields, " ")
}
