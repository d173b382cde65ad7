package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigmaq/catalog"
	"sigmaq/database"
	"sigmaq/feed"
	"sigmaq/internal/config"
)

type stubCatalogs struct {
	bundle *catalog.Bundle
	err    error
}

func (s *stubCatalogs) Load() (*catalog.Bundle, error) {
	return s.bundle, s.err
}

type stubSource struct {
	production []feed.RawRow
	defects    []feed.RawRow
	err        error
}

func (s *stubSource) ProductionRows() ([]feed.RawRow, error) { return s.production, s.err }
func (s *stubSource) DefectRows() ([]feed.RawRow, error)     { return s.defects, s.err }

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "8080",
		DataDir:               "data",
		CatalogDir:            "data",
		SnapshotDBPath:        ":memory:",
		ModelMatchThreshold:   0.85,
		FailureMatchThreshold: 0.75,
		RateLimitRPS:          1000,
		RateLimitBurst:        1000,
		ShutdownTimeout:       10 * time.Second,
	}
}

func testBundle() *catalog.Bundle {
	return &catalog.Bundle{
		Models: []catalog.ModelEntry{
			{ProductCode: "P-001", Model: "SAMSUNG-500", Category: "TV"},
		},
		Failures: []catalog.FailureEntry{
			{Code: "F-1", Description: "SOLDA FRIA"},
		},
		ExclusionCodes: map[string]struct{}{"OC": {}},
		Taxonomy: []catalog.TaxonomyEntry{
			{Analysis: "SOLDA FRIA", Group: "SOLDA"},
		},
		Fmea: []catalog.FmeaEntry{
			{Code: "F-1", Description: "SOLDA FRIA", Severity: 8, Detection: 3},
		},
	}
}

func newTestServer(t *testing.T, catalogs CatalogSource, source DataSource, withSnapshots bool) *Server {
	t.Helper()

	var store *database.SnapshotStore
	if withSnapshots {
		var err error
		store, err = database.NewSnapshotStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
	}

	return New(testConfig(), catalogs, source, store)
}

func defaultSource() *stubSource {
	return &stubSource{
		production: []feed.RawRow{
			{"DATA": "12/03/2025", "MODELO": "SAMSUNG-500", "CATEGORIA": "TV", "QTY_GERAL": 3000.0},
		},
		defects: []feed.RawRow{
			{"DATA": "12/03/2025", "MODELO": "SAMSUNG-500", "CATEGORIA": "TV", "QUANTIDADE": 6.0,
				"ANÁLISE": "SOLDA FRIA", "CÓDIGO DA FALHA": "F-1", "DESCRIÇÃO DA FALHA": "SOLDA FRIA",
				"CÓDIGO DO PRODUTO": "P-001"},
		},
	}
}

func doRequest(t *testing.T, srv *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), true)

	w := doRequest(t, srv, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["snapshots"])
}

func TestHandleHealth_DegradedWithoutCatalogs(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{err: assert.AnError}, defaultSource(), false)

	w := doRequest(t, srv, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandlePpm(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), false)

	w := doRequest(t, srv, http.MethodGet, "/api/ppm", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Meta struct {
			TotalProduction float64  `json:"totalProduction"`
			TotalDefects    float64  `json:"totalDefects"`
			OverallPPM      *float64 `json:"ppmGeral"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3000.0, body.Meta.TotalProduction)
	assert.Equal(t, 6.0, body.Meta.TotalDefects)
	require.NotNil(t, body.Meta.OverallPPM)
	assert.InDelta(t, 2000, *body.Meta.OverallPPM, 0.01)
}

func TestHandlePpmTrend(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), false)

	w := doRequest(t, srv, http.MethodGet, "/api/ppm/trend", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2025-03")
}

func TestHandleDiagnosticsSummary(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), true)

	w := doRequest(t, srv, http.MethodGet,
		"/api/diagnostics/summary?periodoTipo=semana&periodoValor=11&ano=2025&salvar=true", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Resumo struct {
			PrincipalCause struct {
				Name string `json:"nome"`
			} `json:"principalCausa"`
		} `json:"resumo"`
		SnapshotID string `json:"snapshotId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SOLDA", body.Resumo.PrincipalCause.Name)
	require.NotEmpty(t, body.SnapshotID)

	// Сохраненный снимок доступен по id
	w = doRequest(t, srv, http.MethodGet, "/api/snapshots/"+body.SnapshotID, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleDiagnosticsSummary_Validation(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), false)

	tests := []struct {
		name  string
		query string
	}{
		{"Bad period type", "periodoTipo=dia&periodoValor=1&ano=2025"},
		{"Week out of range", "periodoTipo=semana&periodoValor=60&ano=2025"},
		{"Month out of range", "periodoTipo=mes&periodoValor=13&ano=2025"},
		{"Missing value", "periodoTipo=semana&ano=2025"},
		{"Bad year", "periodoTipo=semana&periodoValor=11&ano=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, srv, http.MethodGet, "/api/diagnostics/summary?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleEnrichedDefects(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), false)

	w := doRequest(t, srv, http.MethodGet, "/api/defects/enriched", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Total     int `json:"total"`
		Registros []struct {
			Confidence float64  `json:"confidence"`
			Issues     []string `json:"issues"`
		} `json:"registros"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	// Модель и отказ резолвятся, ответственность нет: 2/3
	assert.InDelta(t, 0.67, body.Registros[0].Confidence, 0.01)
}

func TestHandleProductionMatch(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), false)

	w := doRequest(t, srv, http.MethodPost, "/api/production/match",
		`{"MODELO": "SAMSUNG-500", "CATEGORIA": "TV"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status     string  `json:"status"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "exact", body.Status)
	assert.Equal(t, 1.0, body.Confidence)
}

func TestHandleProductionMatch_BadBody(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), false)

	w := doRequest(t, srv, http.MethodPost, "/api/production/match", `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSnapshots_DisabledStore(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), false)

	w := doRequest(t, srv, http.MethodGet, "/api/snapshots", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleSnapshots_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubCatalogs{bundle: testBundle()}, defaultSource(), true)

	w := doRequest(t, srv, http.MethodGet, "/api/snapshots/nao-existe", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, srv, http.MethodDelete, "/api/snapshots/nao-existe", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
