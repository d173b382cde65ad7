package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRawRow_AliasAccess проверяет доступ к полю по списку альтернативных имен
func TestRawRow_AliasAccess(t *testing.T) {
	row := RawRow{
		"MODEL":      "tv-500",
		"QUANTIDADE": 12.0,
	}

	// MODELO отсутствует, MODEL — второй алиас
	assert.Equal(t, "tv-500", row.String(FieldModel))
	assert.Equal(t, "TV-500", row.Normalized(FieldModel))
	assert.Equal(t, 12.0, row.Number(FieldDefectQty))
}

// TestRawRow_AliasOrder проверяет, что побеждает первый присутствующий алиас
func TestRawRow_AliasOrder(t *testing.T) {
	row := RawRow{
		"QTY_GERAL": 100.0,
		"QTY":       5.0,
	}
	assert.Equal(t, 100.0, row.Number(FieldProducedQty))
}

// TestRawRow_NumberCoercion проверяет типизацию числовых полей
func TestRawRow_NumberCoercion(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float64
	}{
		{"float64", 7.5, 7.5},
		{"int", 7, 7},
		{"строка", "42", 42},
		{"строка с запятой", "3,5", 3.5},
		{"мусор", "abc", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := RawRow{"QUANTIDADE": tt.value}
			assert.Equal(t, tt.expected, row.Number(FieldDefectQty))
		})
	}
}

// TestRawRow_Date проверяет разбор даты через аксессор
func TestRawRow_Date(t *testing.T) {
	row := RawRow{"DATA": "14/3/2025"}

	d, ok := row.Date(FieldDate)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), d)

	// Отсутствующая дата — деградация без паники
	_, ok = RawRow{}.Date(FieldDate)
	assert.False(t, ok)
}

// TestRawRow_NilSafe проверяет работу с nil-строкой
func TestRawRow_NilSafe(t *testing.T) {
	var row RawRow
	assert.Equal(t, "", row.String(FieldModel))
	assert.Equal(t, 0.0, row.Number(FieldDefectQty))
}
