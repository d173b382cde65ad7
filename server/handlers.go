package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sigmaq/catalog"
	"sigmaq/database"
	"sigmaq/diagnostics"
	"sigmaq/enrichment"
	"sigmaq/feed"
	"sigmaq/ppm"
	apperrors "sigmaq/server/errors"
	"sigmaq/server/middleware"
)

// handleHealth отвечает статусом сервиса и доступностью справочников.
func (s *Server) handleHealth(c *gin.Context) {
	catalogsOK := true
	if _, err := s.catalogs.Load(); err != nil {
		catalogsOK = false
	}

	status := "ok"
	code := http.StatusOK
	if !catalogsOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"catalogos": catalogsOK,
		"snapshots": s.snapshots != nil,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// loadInputs читает обе рабочие книги и снимок справочников.
func (s *Server) loadInputs() (production, defects []feed.RawRow, bundle *catalog.Bundle, err error) {
	bundle, err = s.catalogs.Load()
	if err != nil {
		return nil, nil, nil, apperrors.NewUnavailableError("Catálogos indisponíveis", err)
	}

	production, err = s.source.ProductionRows()
	if err != nil {
		return nil, nil, nil, apperrors.NewInternalError("failed to load production rows", err)
	}

	defects, err = s.source.DefectRows()
	if err != nil {
		return nil, nil, nil, apperrors.NewInternalError("failed to load defect rows", err)
	}

	return production, defects, bundle, nil
}

// handlePpm считает полный PPM результат по текущим рабочим книгам.
func (s *Server) handlePpm(c *gin.Context) {
	production, defects, bundle, err := s.loadInputs()
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	result := ppm.Run(production, defects, bundle.ExclusionCodes)
	c.JSON(http.StatusOK, result)
}

// handlePpmTrend отдает помесячный ряд PPM.
func (s *Server) handlePpmTrend(c *gin.Context) {
	production, defects, bundle, err := s.loadInputs()
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	trend := ppm.MonthlyTrend(production, defects, bundle.ExclusionCodes)
	c.JSON(http.StatusOK, gin.H{"meses": trend})
}

// handleDiagnosticsSummary считает полный диагноз периода.
//
// Параметры: periodoTipo (semana|mes), periodoValor, ano, опциональные
// списки modelos/categorias/responsabilidades/turnos и флаг salvar для
// записи снимка в историю.
func (s *Server) handleDiagnosticsSummary(c *gin.Context) {
	req, err := parseSummaryRequest(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	production, defects, bundle, loadErr := s.loadInputs()
	if loadErr != nil {
		middleware.AbortWithError(c, loadErr)
		return
	}

	summary := diagnostics.Summarize(*req, defects, production, bundle)

	var snapshotID string
	if c.Query("salvar") == "true" {
		if s.snapshots == nil {
			middleware.AbortWithError(c, apperrors.NewUnavailableError("Histórico de snapshots desabilitado", nil))
			return
		}
		snapshotID, err = s.snapshots.Save(c.Request.Context(), string(req.PeriodType), req.Value, req.Year, summary)
		if err != nil {
			middleware.AbortWithError(c, apperrors.NewInternalError("failed to save snapshot", err))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"resumo":     summary,
		"snapshotId": snapshotID,
	})
}

func parseSummaryRequest(c *gin.Context) (*diagnostics.SummaryRequest, error) {
	periodType := diagnostics.PeriodType(c.DefaultQuery("periodoTipo", string(diagnostics.PeriodWeek)))
	if periodType != diagnostics.PeriodWeek && periodType != diagnostics.PeriodMonth {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("periodoTipo inválido: %s", periodType), nil)
	}

	value, err := strconv.Atoi(c.Query("periodoValor"))
	if err != nil {
		return nil, apperrors.NewValidationError("periodoValor deve ser um número", err)
	}

	year, err := strconv.Atoi(c.Query("ano"))
	if err != nil {
		return nil, apperrors.NewValidationError("ano deve ser um número", err)
	}

	switch {
	case periodType == diagnostics.PeriodWeek && (value < 1 || value > 53):
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("periodoValor fora do intervalo de semanas: %d", value), nil)
	case periodType == diagnostics.PeriodMonth && (value < 1 || value > 12):
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("periodoValor fora do intervalo de meses: %d", value), nil)
	case year < 2000 || year > 2100:
		return nil, apperrors.NewValidationError(fmt.Sprintf("ano fora do intervalo: %d", year), nil)
	}

	return &diagnostics.SummaryRequest{
		PeriodType:       periodType,
		Value:            value,
		Year:             year,
		Models:           queryList(c, "modelos"),
		Categories:       queryList(c, "categorias"),
		Responsibilities: queryList(c, "responsabilidades"),
		Shifts:           queryList(c, "turnos"),
	}, nil
}

// queryList собирает многозначный параметр: и повторы, и значения через запятую.
func queryList(c *gin.Context, name string) []string {
	var result []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}

// handleEnrichedDefects отдает обогащенную базу дефектов через кэш.
//
// Флаги modelos/falhas/responsabilidades включают справочники
// (по умолчанию все), sugestoes=true добавляет нечеткие подсказки для
// нерезолвящихся строк.
func (s *Server) handleEnrichedDefects(c *gin.Context) {
	opts := enrichment.Options{
		UseModels:           c.DefaultQuery("modelos", "true") == "true",
		UseFailures:         c.DefaultQuery("falhas", "true") == "true",
		UseResponsibilities: c.DefaultQuery("responsabilidades", "true") == "true",
	}

	bundle, err := s.catalogs.Load()
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewUnavailableError("Catálogos indisponíveis", err))
		return
	}
	enricher := enrichment.NewEnricher(bundle)

	records, err := s.cache.GetOrBuild(opts, func() ([]enrichment.EnrichedRecord, error) {
		rows, err := s.source.DefectRows()
		if err != nil {
			return nil, err
		}
		return enricher.EnrichAll(rows, opts), nil
	})
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewInternalError("failed to enrich defects", err))
		return
	}

	response := gin.H{
		"registros": records,
		"total":     len(records),
		"cache":     s.cache.Stats(),
	}

	if c.Query("sugestoes") == "true" {
		thresholds := enrichment.Thresholds{
			Model:   s.config.ModelMatchThreshold,
			Failure: s.config.FailureMatchThreshold,
		}

		suggestions := make(map[int][]enrichment.Suggestion)
		for i, rec := range records {
			if len(rec.Issues) == 0 {
				continue
			}
			if found := enricher.Suggest(rec, thresholds); len(found) > 0 {
				suggestions[i] = found
			}
		}
		response["sugestoes"] = suggestions
	}

	c.JSON(http.StatusOK, response)
}

// handleProductionMatch сопоставляет строку производства с обогащенной
// базой дефектов каскадом точное → подстрока → нечеткое → категория.
func (s *Server) handleProductionMatch(c *gin.Context) {
	var line feed.RawRow
	if err := c.ShouldBindJSON(&line); err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("Corpo da requisição inválido", err))
		return
	}

	bundle, err := s.catalogs.Load()
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewUnavailableError("Catálogos indisponíveis", err))
		return
	}
	enricher := enrichment.NewEnricher(bundle)

	// Пул для сопоставления: все справочники включены
	opts := enrichment.Options{UseModels: true, UseFailures: true, UseResponsibilities: true}
	pool, err := s.cache.GetOrBuild(opts, func() ([]enrichment.EnrichedRecord, error) {
		rows, err := s.source.DefectRows()
		if err != nil {
			return nil, err
		}
		return enricher.EnrichAll(rows, opts), nil
	})
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewInternalError("failed to build match pool", err))
		return
	}

	c.JSON(http.StatusOK, ppm.MatchProductionLine(line, pool))
}

func (s *Server) handleListSnapshots(c *gin.Context) {
	if s.snapshots == nil {
		middleware.AbortWithError(c, apperrors.NewUnavailableError("Histórico de snapshots desabilitado", nil))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limite", "50"))
	list, err := s.snapshots.List(c.Request.Context(), limit)
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewInternalError("failed to list snapshots", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": list, "total": len(list)})
}

func (s *Server) handleGetSnapshot(c *gin.Context) {
	if s.snapshots == nil {
		middleware.AbortWithError(c, apperrors.NewUnavailableError("Histórico de snapshots desabilitado", nil))
		return
	}

	snap, err := s.snapshots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrSnapshotNotFound) {
			middleware.AbortWithError(c, apperrors.NewNotFoundError("Snapshot não encontrado", err))
			return
		}
		middleware.AbortWithError(c, apperrors.NewInternalError("failed to load snapshot", err))
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(c *gin.Context) {
	if s.snapshots == nil {
		middleware.AbortWithError(c, apperrors.NewUnavailableError("Histórico de snapshots desabilitado", nil))
		return
	}

	err := s.snapshots.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrSnapshotNotFound) {
			middleware.AbortWithError(c, apperrors.NewNotFoundError("Snapshot não encontrado", err))
			return
		}
		middleware.AbortWithError(c, apperrors.NewInternalError("failed to delete snapshot", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deletado": true})
}
