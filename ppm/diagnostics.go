package ppm

// Причина расхождения PPM по конкретной группе.
type DiagnosticReason string

const (
	ReasonNoProduction   DiagnosticReason = "SEM_PRODUCAO"
	ReasonNoDefects      DiagnosticReason = "SEM_DEFEITOS"
	ReasonZeroPpm        DiagnosticReason = "PPM_ZERADO"
	ReasonIncompleteData DiagnosticReason = "DADOS_INCOMPLETOS"
	ReasonOK             DiagnosticReason = "OK"
)

// DiagnosticItem объясняет, почему у группы именно такой PPM.
type DiagnosticItem struct {
	GroupKey string `json:"groupKey"`
	Model    string `json:"modelo"`
	Category string `json:"categoria"`

	ProducedQty float64 `json:"produzido"`
	DefectQty   float64 `json:"defeitos"`
	PPM         float64 `json:"ppm"`

	Precision int              `json:"precision"`
	Reason    DiagnosticReason `json:"reason"`
}

// Diagnose строит построчное объяснение результата расчета.
// Порядок проверок повторяет порядок классификации расчета, плюс
// отдельный случай нулевого PPM при ненулевых дефектах.
func Diagnose(rows []CalculatedGroup) []DiagnosticItem {
	result := make([]DiagnosticItem, 0, len(rows))

	for _, r := range rows {
		reason := ReasonOK

		switch {
		case r.ProducedQty == 0 && r.DefectQty > 0:
			reason = ReasonNoProduction
		case r.ProducedQty > 0 && r.DefectQty == 0:
			reason = ReasonNoDefects
		case r.PPM == 0 && r.DefectQty > 0:
			reason = ReasonZeroPpm
		case r.CalculationStatus != StatusOK:
			reason = ReasonIncompleteData
		}

		precision := 0
		if r.CalculationStatus == StatusOK && r.ProducedQty > 0 {
			precision = 100
		}

		result = append(result, DiagnosticItem{
			GroupKey:    r.GroupKey,
			Model:       r.Model,
			Category:    r.Category,
			ProducedQty: r.ProducedQty,
			DefectQty:   r.DefectQty,
			PPM:         r.PPM,
			Precision:   precision,
			Reason:      reason,
		})
	}

	return result
}
