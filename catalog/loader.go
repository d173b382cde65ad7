package catalog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"sigmaq/feed"
	"sigmaq/normalization"
)

// Имена файлов справочников. Пути до директорий задаются конфигурацией.
const (
	FileModels           = "catalogo_codigos.xlsx"
	FileFailures         = "catalogo_codigos_defeitos.xlsx"
	FileResponsibilities = "catalogo_responsabilidades.xlsx"
	FileExclusions       = "ocorrencias.xlsx"
	FileTaxonomy         = "agrupamento_analise.xlsx"
	FileFmea             = "fmea.xlsx"
)

// Алиасы колонок справочников (не совпадают с алиасами фидов).
var (
	colTaxonomyAnalysis = []string{"ANÁLISE", "ANALISE"}
	colTaxonomyGroup    = []string{"AGRUPAMENTO", "GRUPO"}
	colSeverity         = []string{"SEVERIDADE", "SEVERITY"}
	colOccurrence       = []string{"OCORRÊNCIA", "OCORRENCIA", "OCCURRENCE"}
	colDetection        = []string{"DETECÇÃO", "DETECCAO", "DETECTION"}
	colNPR              = []string{"NPR"}
	colClassification   = []string{"CLASSIFICAÇÃO DO FORNECEDOR", "CLASSIFICACAO DO FORNECEDOR", "CLASSIFICAÇÃO", "CLASSIFICACAO"}
)

// Loader загружает и кэширует справочники. Снимок строится один раз
// и далее раздается как неизменяемый; Reload сбрасывает кэш.
type Loader struct {
	// SearchDirs — директории, в которых ищется каждый файл (по порядку)
	SearchDirs []string

	mu     sync.Mutex
	cached *Bundle
}

// NewLoader создает загрузчик справочников.
func NewLoader(searchDirs ...string) *Loader {
	return &Loader{SearchDirs: searchDirs}
}

// Load возвращает снимок справочников (с кэшированием).
//
// Отсутствие одного из трех основных каталогов (модели, отказы,
// ответственности) — жесткая ошибка: разумного значения по умолчанию
// для них нет. Вспомогательные каталоги (исключения, таксономия, FMEA)
// деградируют до пустых с предупреждением в лог.
func (l *Loader) Load() (*Bundle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}

	models, err := l.loadModels()
	if err != nil {
		return nil, err
	}
	failures, err := l.loadFailures()
	if err != nil {
		return nil, err
	}
	responsibilities, err := l.loadResponsibilities()
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{
		Models:           models,
		Failures:         failures,
		Responsibilities: responsibilities,
		ExclusionCodes:   l.loadExclusions(),
		Taxonomy:         l.loadTaxonomy(),
		Fmea:             l.loadFmea(),
	}

	l.cached = bundle
	return bundle, nil
}

// Reload сбрасывает кэш; следующий Load перечитает файлы.
func (l *Loader) Reload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}

// readRequired ищет файл по директориям и читает его; отсутствие — ошибка.
func (l *Loader) readRequired(filename string) ([]feed.RawRow, error) {
	for _, dir := range l.SearchDirs {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return feed.LoadWorkbook(path)
		}
	}
	return nil, fmt.Errorf("справочник %s не найден ни в одной из директорий %v", filename, l.SearchDirs)
}

// readOptional читает файл, если он есть; иначе возвращает nil без ошибки.
func (l *Loader) readOptional(filename string) []feed.RawRow {
	rows, err := l.readRequired(filename)
	if err != nil {
		log.Printf("⚠️ Вспомогательный справочник %s недоступен: %v", filename, err)
		return nil
	}
	return rows
}

func (l *Loader) loadModels() ([]ModelEntry, error) {
	rows, err := l.readRequired(FileModels)
	if err != nil {
		return nil, err
	}

	entries := make([]ModelEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, ModelEntry{
			ProductCode: r.Normalized(feed.FieldProductCode),
			Model:       r.Normalized(feed.FieldModel),
			Category:    r.Normalized(feed.FieldCategory),
		})
	}
	return entries, nil
}

func (l *Loader) loadFailures() ([]FailureEntry, error) {
	rows, err := l.readRequired(FileFailures)
	if err != nil {
		return nil, err
	}

	entries := make([]FailureEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, FailureEntry{
			Code:        r.Normalized(feed.FieldFailureCode),
			Description: r.Normalized(feed.FieldFailureDescription),
		})
	}
	return entries, nil
}

func (l *Loader) loadResponsibilities() ([]ResponsibilityEntry, error) {
	rows, err := l.readRequired(FileResponsibilities)
	if err != nil {
		return nil, err
	}

	entries := make([]ResponsibilityEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, ResponsibilityEntry{
			SupplierCode:   r.Normalized(feed.FieldSupplierCode),
			Classification: r.Normalized(colClassification),
			Responsibility: r.Normalized(feed.FieldResponsibility),
		})
	}
	return entries, nil
}

func (l *Loader) loadExclusions() map[string]struct{} {
	rows := l.readOptional(FileExclusions)

	codes := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		code := r.Normalized(feed.FieldProductCode)
		if code != "" {
			codes[code] = struct{}{}
		}
	}
	return codes
}

func (l *Loader) loadTaxonomy() []TaxonomyEntry {
	rows := l.readOptional(FileTaxonomy)

	entries := make([]TaxonomyEntry, 0, len(rows))
	for _, r := range rows {
		analysis := r.Normalized(colTaxonomyAnalysis)
		if analysis == "" {
			continue
		}
		group := r.Normalized(colTaxonomyGroup)
		if group == "" {
			group = UnclassifiedGroup
		}
		entries = append(entries, TaxonomyEntry{Analysis: analysis, Group: group})
	}
	return entries
}

func (l *Loader) loadFmea() []FmeaEntry {
	rows := l.readOptional(FileFmea)

	entries := make([]FmeaEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, FmeaEntry{
			Code:        r.Normalized(feed.FieldProductCode),
			Description: r.Normalized(feed.FieldFailureDescription),
			Severity:    int(r.Number(colSeverity)),
			Occurrence:  int(r.Number(colOccurrence)),
			Detection:   int(r.Number(colDetection)),
			NPR:         int(r.Number(colNPR)),
		})
	}
	return entries
}

// UnclassifiedGroup — группа причин для анализов, не попавших в таксономию.
// Такие записи никогда не выбрасываются молча.
var UnclassifiedGroup = normalization.NormalizeText("NÃO CLASSIFICADO")
