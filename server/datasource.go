package server

import (
	"fmt"
	"path/filepath"

	"sigmaq/feed"
)

// Имена рабочих книг в каталоге данных.
const (
	productionWorkbook = "producao.xlsx"
	defectsWorkbook    = "defeitos.xlsx"
)

// DataSource выдает сырые строки производства и дефектов. Каждый запрос
// читает данные заново: состояния между запросами нет.
type DataSource interface {
	ProductionRows() ([]feed.RawRow, error)
	DefectRows() ([]feed.RawRow, error)
}

// FileDataSource читает рабочие книги из каталога данных.
type FileDataSource struct {
	productionPath string
	defectsPath    string
}

// NewFileDataSource создает источник данных поверх каталога.
func NewFileDataSource(dataDir string) *FileDataSource {
	return &FileDataSource{
		productionPath: filepath.Join(dataDir, productionWorkbook),
		defectsPath:    filepath.Join(dataDir, defectsWorkbook),
	}
}

func (f *FileDataSource) ProductionRows() ([]feed.RawRow, error) {
	rows, err := feed.LoadWorkbook(f.productionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load production workbook: %w", err)
	}
	return rows, nil
}

func (f *FileDataSource) DefectRows() ([]feed.RawRow, error) {
	rows, err := feed.LoadWorkbook(f.defectsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load defects workbook: %w", err)
	}
	return rows, nil
}
