package diagnostics

import "time"

// Тип периода анализа.
type PeriodType string

const (
	PeriodWeek  PeriodType = "semana"
	PeriodMonth PeriodType = "mes"
)

// WeekRef — ссылка на ISO-неделю конкретного года.
type WeekRef struct {
	Week int `json:"semana"`
	Year int `json:"ano"`
}

// FilteredDefect — строка дефекта, прошедшая воронку фильтров:
// все текстовые поля уже нормализованы, дата валидна.
type FilteredDefect struct {
	Date time.Time `json:"data"`
	Week int       `json:"semana"`
	Year int       `json:"ano"`

	Model          string `json:"modelo"`
	Category       string `json:"categoria"`
	Responsibility string `json:"responsabilidade"`
	Shift          string `json:"turno"`

	Analysis           string `json:"analise"`
	FailureCode        string `json:"codigoFalha"`
	FailureDescription string `json:"descricaoFalha"`

	Qty float64 `json:"quantidade"`
}

// NamedCount — имя с числом вхождений: главная причина, главный дефект.
type NamedCount struct {
	Name        string  `json:"nome"`
	Occurrences float64 `json:"ocorrencias"`
}

// CriticalDefect — запись FMEA с рейтингом риска.
type CriticalDefect struct {
	Code        string `json:"codigo"`
	Description string `json:"descricao"`
	Severity    int    `json:"severidade"`
	Occurrence  int    `json:"ocorrencia"`
	Detection   int    `json:"deteccao"`
	NPR         int    `json:"npr"`
}

// ModelCount — модель с числом вхождений внутри детали группы.
type ModelCount struct {
	Name        string  `json:"nome"`
	Occurrences float64 `json:"ocorrencias"`
}

// CauseDetail — конкретный анализ внутри группы причин с разбивкой
// по моделям.
type CauseDetail struct {
	Name        string       `json:"nome"`
	Occurrences float64      `json:"ocorrencias"`
	Models      []ModelCount `json:"modelos"`
}

// CauseGroup — группа причин с риском и полным drill-down.
//
// Инвариант сохранности: сумма Occurrences по Details всегда равна
// Occurrences группы, и сумма по Models каждой детали равна
// Occurrences этой детали. Родительский итог считается от детей,
// двойного представления нет.
type CauseGroup struct {
	Name        string        `json:"nome"`
	Occurrences float64       `json:"ocorrencias"`
	RiskScore   float64       `json:"scoreRisco"`
	MeanNPR     float64       `json:"nprMedio"`
	Details     []CauseDetail `json:"detalhes"`
}

// SpikeAlert — наибольшее по модулю изменение PPM между T-1 и T,
// знак сохраняется.
type SpikeAlert struct {
	Name        string  `json:"nome"`
	PpmCurrent  float64 `json:"ppmAtual"`
	PpmPrevious float64 `json:"ppmAnterior"`
	Delta       float64 `json:"delta"`
}

// VCurveAlert — паттерн «провал и откат»: T-2 высоко, T-1 низко,
// T снова высоко.
type VCurveAlert struct {
	Name string `json:"nome"`

	PpmT  float64 `json:"ppmT"`
	PpmT1 float64 `json:"ppmT1"`
	PpmT2 float64 `json:"ppmT2"`

	QtyT  float64 `json:"qtdT"`
	QtyT1 float64 `json:"qtdT1"`
	QtyT2 float64 `json:"qtdT2"`

	Score float64 `json:"score"`
}

// TrendAlert — устойчивый рост PPM группы три периода подряд.
type TrendAlert struct {
	CauseGroup string `json:"agrupamento"`

	PpmStart float64 `json:"ppmInicial"`
	PpmEnd   float64 `json:"ppmFinal"`
	QtyStart float64 `json:"qtdInicial"`
	QtyEnd   float64 `json:"qtdFinal"`

	GrowthPercent   float64 `json:"crescimentoPercentual"`
	PeriodsOfGrowth int     `json:"mesesCrescimento"`
}

// RecurrenceInfo — серия лидерства главной причины.
type RecurrenceInfo struct {
	IsRecurrent        bool   `json:"isReincidente"`
	ConsecutivePeriods int    `json:"periodosConsecutivos"`
	PreviousTopCause   string `json:"principalCausaAnterior"`
}

// OverallStatus — светофор по максимальному NPR.
type OverallStatus struct {
	Level        string `json:"nivel"`
	Message      string `json:"mensagem"`
	ReferenceNPR int    `json:"nprReferencia"`
}
