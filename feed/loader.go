package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook читает первый лист xlsx-файла в срез RawRow.
// Первая строка листа трактуется как заголовки колонок; значения ячеек
// остаются строками (типизация выполняется аксессорами RawRow).
func LoadWorkbook(path string) ([]RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл %s: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("в файле %s нет листов", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать строки %s: %w", path, err)
	}
	if len(rows) < 2 {
		// Только заголовок или пусто — валидный файл без данных
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	result := make([]RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(RawRow, len(headers))
		empty := true
		for i, cell := range cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			empty = false
			row[headers[i]] = coerceCell(cell)
		}
		if !empty {
			result = append(result, row)
		}
	}

	return result, nil
}

// coerceCell переводит числовые ячейки в float64; excelize отдает всё
// строками, а даты-серийники и количества нужны числами.
func coerceCell(cell string) any {
	if n, err := strconv.ParseFloat(cell, 64); err == nil {
		return n
	}
	return cell
}
