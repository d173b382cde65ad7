package ppm

import (
	"fmt"
	"sort"

	"sigmaq/feed"
	"sigmaq/normalization"
)

// MonthlyPoint — агрегат производства и дефектов за один календарный
// месяц (ключ YYYY-MM).
type MonthlyPoint struct {
	Month      string   `json:"month"`
	Production float64  `json:"production"`
	Defects    float64  `json:"defects"`
	PPM        *float64 `json:"ppm"`
}

// MonthlyTrend строит помесячный ряд PPM по сырым строкам.
// Ocorrências исключаются из дефектов так же, как в основном движке;
// строки без валидной даты в ряд не попадают.
func MonthlyTrend(productionRows, defectRows []feed.RawRow, exclusions map[string]struct{}) []MonthlyPoint {
	productionByMonth := make(map[string]float64)
	defectsByMonth := make(map[string]float64)

	for _, r := range productionRows {
		qty := r.Number(feed.FieldProducedQty)
		if qty <= 0 {
			continue
		}
		date, ok := r.Date(feed.FieldDate)
		if !ok {
			continue
		}
		productionByMonth[monthKey(date.Year(), int(date.Month()))] += qty
	}

	for _, r := range defectRows {
		qty := r.Number(feed.FieldDefectQty)
		if qty <= 0 {
			continue
		}

		supplierCode := normalization.NormalizeText(r.String(feed.FieldSupplierCode))
		if _, excluded := exclusions[supplierCode]; excluded && supplierCode != "" {
			continue
		}

		date, ok := r.Date(feed.FieldDate)
		if !ok {
			continue
		}
		defectsByMonth[monthKey(date.Year(), int(date.Month()))] += qty
	}

	months := make(map[string]struct{})
	for m := range productionByMonth {
		months[m] = struct{}{}
	}
	for m := range defectsByMonth {
		months[m] = struct{}{}
	}

	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	trend := make([]MonthlyPoint, 0, len(keys))
	for _, m := range keys {
		point := MonthlyPoint{
			Month:      m,
			Production: productionByMonth[m],
			Defects:    defectsByMonth[m],
		}
		if point.Production > 0 {
			v := round2(point.Defects / point.Production * 1_000_000)
			point.PPM = &v
		}
		trend = append(trend, point)
	}

	return trend
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
