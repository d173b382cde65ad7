package ppm

// Причины валидации, видимые пользователю дашборда.
const (
	reasonExcluded     = "Ocorrência — item ignorado nos índices e PPM"
	reasonNoDefect     = "Produção sem defeitos — cenário ideal"
	reasonInsufficient = "Dados insuficientes para cálculo de PPM"
)

// Validate присваивает каждой группе финальный вердикт.
//
// Приоритет строгий: ocorrência перекрывает все и всегда VALID
// (и при этом исключается из всех сумм PPM и точности); статус OK и
// NO_DEFECT валидны; остальное INVALID с пояснением.
func Validate(rows []CalculatedGroup) []ValidatedGroup {
	result := make([]ValidatedGroup, 0, len(rows))

	for _, r := range rows {
		v := ValidatedGroup{CalculatedGroup: r}

		switch {
		case r.IsExcludedOccurrence || r.RecordKind == RecordKindOccurrence:
			v.IsExcludedOccurrence = true
			v.ValidationStatus = ValidationValid
			v.ValidationReason = reasonExcluded
		case r.CalculationStatus == StatusOK:
			v.ValidationStatus = ValidationValid
		case r.CalculationStatus == StatusNoDefect:
			v.ValidationStatus = ValidationValid
			v.ValidationReason = reasonNoDefect
		default:
			v.ValidationStatus = ValidationInvalid
			v.ValidationReason = reasonInsufficient
		}

		result = append(result, v)
	}

	return result
}
