package normalization

import (
	"math"
	"testing"
)

// TestLevenshteinDistance проверяет базовые случаи расстояния
func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"ABC", "", 3},
		{"", "ABC", 3},
		{"ABC", "ABC", 0},
		{"KITTEN", "SITTING", 3},
		{"SANSUNG-500", "SAMSUNG-500", 1},
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.expected {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

// TestSimilarity_ModelTypo проверяет сценарий из практики: одна опечатка
// в модели из 11 символов должна проходить порог 0.85
func TestSimilarity_ModelTypo(t *testing.T) {
	got := Similarity("SANSUNG-500", "SAMSUNG-500")
	want := 1.0 - 1.0/11.0 // ≈ 0.909

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}
	if got < DefaultModelThreshold {
		t.Errorf("опечатка в модели должна проходить порог %v, score = %v", DefaultModelThreshold, got)
	}
}

// TestSimilarity_Empty проверяет, что пустота — не совпадение
func TestSimilarity_Empty(t *testing.T) {
	if got := Similarity("", ""); got != 0 {
		t.Errorf("Similarity(\"\", \"\") = %v, want 0: пустые строки не сигнал", got)
	}
	if got := Similarity("ABC", ""); got != 0 {
		t.Errorf("Similarity(\"ABC\", \"\") = %v, want 0", got)
	}
}

// TestBestMatch проверяет выбор лучшего кандидата и пороги
func TestBestMatch(t *testing.T) {
	candidates := []string{"SAMSUNG-500", "SAMSUNG-550", "LG-500"}

	m := BestMatch("SANSUNG-500", candidates, DefaultModelThreshold)
	if m == nil {
		t.Fatal("ожидалось совпадение")
	}
	if m.Value != "SAMSUNG-500" {
		t.Errorf("match = %q, want SAMSUNG-500", m.Value)
	}

	// Ниже порога — nil
	if m := BestMatch("XYZ", candidates, DefaultModelThreshold); m != nil {
		t.Errorf("ожидался nil для непохожего запроса, получено %+v", m)
	}

	// Пустой запрос и пустой справочник — nil
	if m := BestMatch("", candidates, 0.5); m != nil {
		t.Error("пустой запрос должен давать nil")
	}
	if m := BestMatch("SAMSUNG-500", nil, 0.5); m != nil {
		t.Error("пустой справочник должен давать nil")
	}
}

// TestBestMatch_StableTie проверяет, что при равных score побеждает
// первый по порядку справочника кандидат
func TestBestMatch_StableTie(t *testing.T) {
	// Оба кандидата на расстоянии 1 от запроса
	candidates := []string{"AAAB", "AAAC"}

	m := BestMatch("AAAA", candidates, 0.5)
	if m == nil {
		t.Fatal("ожидалось совпадение")
	}
	if m.Value != "AAAB" {
		t.Errorf("tie-break должен сохранять порядок справочника: %q", m.Value)
	}
}

// TestBestMatch_ExactShortCircuit проверяет ранний выход на точном совпадении
func TestBestMatch_ExactShortCircuit(t *testing.T) {
	m := BestMatch("TV-100", []string{"TV-200", "TV-100", "TV-100X"}, 0.9)
	if m == nil || m.Score != 1 || m.Value != "TV-100" {
		t.Errorf("точное совпадение должно давать score 1: %+v", m)
	}
}
