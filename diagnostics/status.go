package diagnostics

// Уровни светофора процесса.
const (
	StatusLevelOK       = "ok"
	StatusLevelAlert    = "alerta"
	StatusLevelCritical = "critico"
)

// Границы полос по NPR.
const (
	nprAlertThreshold    = 25
	nprCriticalThreshold = 40
)

// OverallStatusFromNpr переводит максимальный NPR периода в светофор.
func OverallStatusFromNpr(maxNpr int) OverallStatus {
	switch {
	case maxNpr < nprAlertThreshold:
		return OverallStatus{
			Level:        StatusLevelOK,
			Message:      "Processo sob controle",
			ReferenceNPR: maxNpr,
		}
	case maxNpr < nprCriticalThreshold:
		return OverallStatus{
			Level:        StatusLevelAlert,
			Message:      "Atenção: risco moderado identificado",
			ReferenceNPR: maxNpr,
		}
	default:
		return OverallStatus{
			Level:        StatusLevelCritical,
			Message:      "Situação crítica: ação imediata necessária",
			ReferenceNPR: maxNpr,
		}
	}
}
