package normalization

// LevenshteinDistance вычисляет классическое расстояние Левенштейна
// между двумя строками. Работает по рунам, а не байтам.
func LevenshteinDistance(a, b string) int {
	r1 := []rune(a)
	r2 := []rune(b)
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	// Оптимизация по памяти: одна колонка вместо полной матрицы
	column := make([]int, len1+1)
	for i := 1; i <= len1; i++ {
		column[i] = i
	}

	for x := 1; x <= len2; x++ {
		column[0] = x
		lastDiag := x - 1
		for y := 1; y <= len1; y++ {
			oldDiag := column[y]
			cost := 0
			if r1[y-1] != r2[x-1] {
				cost = 1
			}
			column[y] = min3(column[y]+1, column[y-1]+1, lastDiag+cost)
			lastDiag = oldDiag
		}
	}

	return column[len1]
}

// Similarity вычисляет схожесть строк на основе расстояния Левенштейна:
// 1 - dist / max(len). Возвращает значение из [0, 1].
//
// Пара пустых строк дает 0, а не 1: после нормализации пустота означает
// "нет полезного сигнала", считать её точным совпадением нельзя.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	distance := LevenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
