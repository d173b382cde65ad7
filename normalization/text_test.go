package normalization

import (
	"testing"
	"time"
)

// TestNormalizeText проверяет каноникализацию текста
func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"пустая строка", "", ""},
		{"только пробелы", "   ", ""},
		{"верхний регистр", "tv led", "TV LED"},
		{"диакритика", "ocorrência crítica", "OCORRENCIA CRITICA"},
		{"диакритика в верхнем регистре", "ANÁLISE DA FALHA", "ANALISE DA FALHA"},
		{"внутренние пробелы", "  TV   55\tPOL ", "TV 55 POL"},
		{"уже нормализовано", "SAMSUNG-500", "SAMSUNG-500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestParseFlexibleDate_Formats проверяет все поддерживаемые представления дат
func TestParseFlexibleDate_Formats(t *testing.T) {
	want := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
	}{
		{"нативная дата", time.Date(2025, 3, 14, 23, 55, 0, 0, time.UTC)},
		{"серийный номер Excel", 45730.0},
		{"серийный номер строкой", "45730"},
		{"D/M/Y", "14/3/2025"},
		{"D-M-Y", "14-03-2025"},
		{"ISO строка", "2025-03-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFlexibleDate(tt.input)
			if !ok {
				t.Fatalf("ParseFlexibleDate(%v) ok = false, want true", tt.input)
			}
			if !got.Equal(want) {
				t.Errorf("ParseFlexibleDate(%v) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

// TestParseFlexibleDate_Midday проверяет фиксацию времени на 12:00
func TestParseFlexibleDate_Midday(t *testing.T) {
	got, ok := ParseFlexibleDate("1/1/2025")
	if !ok {
		t.Fatal("ожидалась валидная дата")
	}
	if got.Hour() != 12 || got.Minute() != 0 {
		t.Errorf("дата не зафиксирована на 12:00: %v", got)
	}
}

// TestParseFlexibleDate_Invalid проверяет деградацию без паники
func TestParseFlexibleDate_Invalid(t *testing.T) {
	invalid := []any{nil, "", "не дата", "32/13/2025", "1/2", -5.0, 0, struct{}{}, time.Time{}}

	for _, v := range invalid {
		if _, ok := ParseFlexibleDate(v); ok {
			t.Errorf("ParseFlexibleDate(%v) ok = true, want false", v)
		}
	}
}
