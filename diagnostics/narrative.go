package diagnostics

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Направление тренда PPM между соседними периодами.
const (
	TrendImproving = "melhora"
	TrendWorsening = "piora"
	TrendStable    = "estavel"
	TrendUnknown   = "indefinido"
)

// Порог процентного изменения, ниже которого тренд считается стабильным.
const trendStablePercent = 5

// Порог абсолютного скачка PPM, после которого спайк считается критичным.
const spikeCriticalPpm = 100

// NarrativeInput — структурированный вход генератора: только готовые
// агрегаты, никаких сырых строк.
type NarrativeInput struct {
	WeekStart int
	WeekEnd   int

	PrincipalCause  NamedCount
	PrincipalDefect NamedCount
	CriticalDefect  CriticalDefect

	PpmCurrent        float64
	PpmPrevious       float64
	ProductionCurrent float64

	VCurve     *VCurveAlert
	Spike      *SpikeAlert
	Recurrence *RecurrenceInfo

	ShiftFocus  string
	ModelFocus  string
	TrendAlerts []TrendAlert
}

// Narrative — итоговый авто-диагноз периода.
type Narrative struct {
	Title            string   `json:"titulo"`
	Text             string   `json:"texto"`
	Trend            string   `json:"tendencia"`
	VariationPercent float64  `json:"variacaoPercentual"`
	KeyIndicators    []string `json:"indicadoresChave"`
}

// числа в тексте форматируются по бразильской локали
var ptBR = message.NewPrinter(language.BrazilianPortuguese)

func fmtQty(v float64) string {
	return ptBR.Sprintf("%.0f", v)
}

func fmtPpm(v float64) string {
	return ptBR.Sprintf("%.2f", v)
}

// BuildNarrative собирает человекочитаемый диагноз периода из
// структурированных сигналов.
func BuildNarrative(in NarrativeInput) Narrative {
	// Нет производства: дружелюбный пустой экран вместо диагноза
	if in.ProductionCurrent == 0 {
		return Narrative{
			Title: "Sem Produção Registrada",
			Text: fmt.Sprintf(
				"Não identificamos apontamentos de produção para o período (Semana %d a %d) com os filtros selecionados.\n\n"+
					"Para visualizar o diagnóstico de qualidade, selecione um período ou modelo que possua volume produtivo registrado.",
				in.WeekStart, in.WeekEnd),
			Trend:         TrendUnknown,
			KeyIndicators: []string{},
		}
	}

	// Производство есть, дефектов нет: максимум похвалы
	if in.PpmCurrent == 0 {
		return Narrative{
			Title: "Excelência em Qualidade",
			Text: fmt.Sprintf(
				"Parabéns! Houve produção de **%s peças** neste período sem nenhum registro de falha.\n\n"+
					"O processo está sob controle total e demonstra robustez nos filtros selecionados.",
				fmtQty(in.ProductionCurrent)),
			Trend:            TrendImproving,
			VariationPercent: -100,
			KeyIndicators:    []string{"Zero Defeitos", "PPM 0,00"},
		}
	}

	trend, variation, deltaAbs := classifyTrend(in.PpmCurrent, in.PpmPrevious)

	var lines []string
	indicators := []string{fmt.Sprintf("PPM Atual: %s", fmtPpm(in.PpmCurrent))}

	lines = append(lines, fmt.Sprintf(
		"No período analisado (semanas **%d a %d**), o agrupamento **%s** foi o principal ofensor, concentrando **%s** ocorrências.",
		in.WeekStart, in.WeekEnd, in.PrincipalCause.Name, fmtQty(in.PrincipalCause.Occurrences)))

	lines = append(lines, trendLine(trend, variation, deltaAbs, in.PpmCurrent, in.PpmPrevious))

	if in.PrincipalDefect.Name != "" && in.PrincipalDefect.Name != emptyName {
		lines = append(lines, fmt.Sprintf(
			"O defeito específico **%s** liderou os registros. Foque a análise de causa raiz (Ishikawa/5 Porquês) prioritariamente neste item.",
			in.PrincipalDefect.Name))
	}

	lines = append(lines, fmt.Sprintf(
		"O item de maior risco identificado foi **%s** (NPR **%d**), exigindo monitoramento rigoroso.",
		in.CriticalDefect.Description, in.CriticalDefect.NPR))

	if line, indicator := spikeLine(in.Spike); line != "" {
		lines = append(lines, line)
		if indicator != "" {
			indicators = append(indicators, indicator)
		}
	}

	if line, indicator := recurrenceLine(in.Recurrence, in.PrincipalCause.Name); line != "" {
		lines = append(lines, line)
		if indicator != "" {
			indicators = append(indicators, indicator)
		}
	}

	if in.VCurve != nil {
		lines = append(lines, fmt.Sprintf(
			"**Falha na Sustentação (Efeito Rebote):** Identificamos um padrão crítico no defeito **\"%s\"**. "+
				"Este item era alto em T-2 (%s PPM), reduziu significativamente no período anterior (%s PPM), "+
				"mas **voltou a subir drasticamente agora** para %s PPM. "+
				"Diagnóstico provável: A ação corretiva anterior perdeu eficácia ou houve relaxamento no controle.",
			in.VCurve.Name, fmtPpm(in.VCurve.PpmT2), fmtPpm(in.VCurve.PpmT1), fmtPpm(in.VCurve.PpmT)))
		indicators = append(indicators, "Efeito Rebote: "+in.VCurve.Name)
	}

	if line, indicator := emergingRiskLine(in.TrendAlerts, in.PrincipalCause.Name); line != "" {
		lines = append(lines, line)
		indicators = append(indicators, indicator)
	}

	if in.ShiftFocus != "" {
		lines = append(lines, fmt.Sprintf(
			"A maior concentração dos defeitos ocorreu no turno **%s**. Recomenda-se auditoria escalonada de processo neste horário.",
			in.ShiftFocus))
	}
	if in.ModelFocus != "" {
		lines = append(lines, fmt.Sprintf(
			"O modelo **%s** foi o mais impactado, indicando possível sensibilidade deste produto ou lote de material.",
			in.ModelFocus))
	}

	return Narrative{
		Title:            "Diagnóstico do SIGMA-Q AI",
		Text:             strings.Join(lines, "\n\n"),
		Trend:            trend,
		VariationPercent: variation,
		KeyIndicators:    indicators,
	}
}

// classifyTrend сравнивает PPM периодов: изменение меньше 5% в любую
// сторону считается стабильностью.
func classifyTrend(current, previous float64) (trend string, variationPercent, deltaAbs float64) {
	switch {
	case previous > 0:
		deltaAbs = current - previous
		variationPercent = deltaAbs / previous * 100
		switch {
		case variationPercent <= -trendStablePercent:
			trend = TrendImproving
		case variationPercent >= trendStablePercent:
			trend = TrendWorsening
		default:
			trend = TrendStable
		}
	case current > 0:
		trend = TrendWorsening
		variationPercent = 100
		deltaAbs = current
	default:
		trend = TrendUnknown
	}
	return trend, variationPercent, deltaAbs
}

func trendLine(trend string, variation, deltaAbs, current, previous float64) string {
	if trend == TrendUnknown {
		return fmt.Sprintf("O PPM atual do período foi calculado em **%s**. Estabeleça este valor como linha de base.", fmtPpm(current))
	}

	sign := ""
	if deltaAbs > 0 {
		sign = "+"
	}
	percentText := fmt.Sprintf("%s%.1f%%", sign, variation)
	absText := sign + fmtPpm(deltaAbs)
	curText := fmtPpm(current)
	prevText := fmtPpm(previous)

	switch trend {
	case TrendImproving:
		return fmt.Sprintf(
			"**Cenário Positivo (Efetividade):** Houve redução expressiva de **%s PPM** (%s) comparado ao período anterior (%s ➝ %s). Recomenda-se investigar quais ações deram certo para padronizá-las.",
			absText, percentText, prevText, curText)
	case TrendWorsening:
		return fmt.Sprintf(
			"**Atenção (Degradação):** O processo apresentou instabilidade, com aumento de **%s PPM** (%s) em relação ao histórico (%s ➝ %s). É urgente revisar as mudanças recentes no processo (4M).",
			absText, percentText, prevText, curText)
	default:
		return fmt.Sprintf(
			"**Estabilidade:** O PPM manteve-se estável com variação de **%s PPM** (%s), oscilando de %s para %s. O processo demonstra consistência, mas requer novas ações para quebra de nível.",
			absText, percentText, prevText, curText)
	}
}

func spikeLine(spike *SpikeAlert) (line, indicator string) {
	if spike == nil {
		return "", ""
	}

	delta := spike.Delta
	abs := delta
	sign := ""
	if delta > 0 {
		sign = "+"
	} else {
		abs = -abs
	}

	switch {
	case delta > 0 && abs > spikeCriticalPpm:
		return fmt.Sprintf(
			"**Instabilidade Detectada (Mudança Brusca):** O defeito **\"%s\"** apresentou a maior variação negativa do período. "+
				"Saltou de **%s PPM** para **%s PPM** (%s%s de variação). "+
				"Isso sugere uma quebra de processo recente, entrada de lote defeituoso ou falha de ferramenta.",
			spike.Name, fmtPpm(spike.PpmPrevious), fmtPpm(spike.PpmCurrent), sign, fmtPpm(delta)), "Spike: " + spike.Name
	case delta > 0:
		return fmt.Sprintf(
			"**Oscilação de Processo:** A maior variação registrada foi no defeito **\"%s\"**, com aumento de **%s PPM** (%s ➝ %s PPM). Embora abaixo do limiar crítico, monitore este item.",
			spike.Name, fmtPpm(delta), fmtPpm(spike.PpmPrevious), fmtPpm(spike.PpmCurrent)), ""
	case delta < 0 && abs > spikeCriticalPpm:
		return fmt.Sprintf(
			"**Melhoria Significativa:** O defeito **\"%s\"** teve a maior redução do período. "+
				"Caiu de **%s PPM** para **%s PPM** (%s de variação). Verifique se houve mudança positiva no processo para padronizá-la.",
			spike.Name, fmtPpm(spike.PpmPrevious), fmtPpm(spike.PpmCurrent), fmtPpm(delta)), "Melhoria: " + spike.Name
	case delta < 0:
		return fmt.Sprintf(
			"**Tendência de Melhoria:** O defeito **\"%s\"** apresentou a redução mais relevante do período, caindo **%s PPM** (%s ➝ %s PPM), contribuindo para a estabilidade geral.",
			spike.Name, fmtPpm(delta), fmtPpm(spike.PpmPrevious), fmtPpm(spike.PpmCurrent)), ""
	default:
		return "", ""
	}
}

func recurrenceLine(rec *RecurrenceInfo, currentTop string) (line, indicator string) {
	if rec == nil {
		return "", ""
	}

	switch {
	case rec.IsRecurrent:
		return fmt.Sprintf(
			"**ALERTA CRÍTICO DE REINCIDÊNCIA:** O agrupamento **\"%s\"** lidera as falhas por **%d períodos consecutivos**. "+
				"Isso caracteriza um problema sistêmico. É mandatória a abertura de RNC e revisão profunda do processo.",
			currentTop, rec.ConsecutivePeriods), fmt.Sprintf("Reincidência Crítica: %dx Top 1", rec.ConsecutivePeriods)
	case rec.PreviousTopCause == currentTop:
		return fmt.Sprintf(
			"**Atenção:** O grupo **\"%s\"** repetiu a liderança do ranking em relação ao período anterior. Aja agora para evitar que este problema se torne crônico.",
			currentTop), ""
	case rec.PreviousTopCause != "" && rec.PreviousTopCause != emptyName:
		return fmt.Sprintf(
			"**Mudança de Cenário:** O perfil de falhas mudou (Anterior: \"%s\"). Verifique se houve alteração de mix de produto ou setup.",
			rec.PreviousTopCause), ""
	default:
		return "", ""
	}
}

// emergingRiskLine подсвечивает растущую группу, которая еще не стала
// главным Pareto, но идет к этому.
func emergingRiskLine(alerts []TrendAlert, currentTop string) (line, indicator string) {
	for _, a := range alerts {
		if a.CauseGroup == currentTop || a.GrowthPercent <= 0 {
			continue
		}
		return fmt.Sprintf(
			"**Risco Emergente Detectado:** O agrupamento **%s** não figura como o maior ofensor hoje, mas apresenta uma curva de crescimento contínua nos últimos 3 meses, "+
				"saltando de **%s** para **%s ocorrências** (de %s para %s PPM). Intervenha antes que ele se torne o Pareto principal.",
			a.CauseGroup, fmtQty(a.QtyStart), fmtQty(a.QtyEnd), fmtPpm(a.PpmStart), fmtPpm(a.PpmEnd)), "Tendência Alta: " + a.CauseGroup
	}
	return "", ""
}
