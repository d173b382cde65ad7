package normalization

import (
	"strconv"
	"strings"
	"time"
)

// excelEpoch — точка отсчета серийных дат Excel (30.12.1899).
// Смещение в -2 дня относительно 01.01.1900 компенсирует историческую
// ошибку Excel с високосным 1900 годом.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// genericDateLayouts — запасные форматы для строковых дат, когда значение
// не похоже на D/M/Y.
var genericDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseFlexibleDate разбирает дату из любого представления, встречающегося
// в производственных выгрузках: готовый time.Time, серийный номер Excel,
// строка вида D/M/Y (или D-M-Y) либо один из общих форматов.
//
// Результат всегда фиксируется на 12:00 — так недельная и месячная
// агрегация не уезжает на сутки из-за часовых поясов и переходов DST.
// Неразборчивое значение дает ok=false, паники и ошибки не бывает.
func ParseFlexibleDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return atMidday(v), true
	case float64:
		return fromExcelSerial(v)
	case float32:
		return fromExcelSerial(float64(v))
	case int:
		return fromExcelSerial(float64(v))
	case int64:
		return fromExcelSerial(float64(v))
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, false
	}
}

// fromExcelSerial переводит серийный день Excel в календарную дату.
func fromExcelSerial(serial float64) (time.Time, bool) {
	if serial <= 0 {
		return time.Time{}, false
	}
	d := excelEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
	return atMidday(d), true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Числовая строка — серийный номер Excel, выгруженный как текст
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromExcelSerial(serial)
	}

	// D/M/Y или D-M-Y — основной формат производственных планшетов
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) == 3 {
		day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD == nil && errM == nil && errY == nil && validCivilDate(day, month, year) {
			return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC), true
		}
	}

	for _, layout := range genericDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return atMidday(d), true
		}
	}

	return time.Time{}, false
}

func validCivilDate(day, month, year int) bool {
	if year < 1900 || year > 9999 {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}
	// time.Date нормализует переполнение (32 января -> 1 февраля) —
	// проверяем, что дата не "переехала"
	d := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	return d.Day() == day && d.Month() == time.Month(month) && d.Year() == year
}

// atMidday фиксирует календарный день на 12:00 UTC.
func atMidday(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}
