package etl

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shakinm/xlsReader/xls"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
)

// ProcessExcelFile extrai os registros de todas as abas de uma planilha.
// Boletins de 2003 a 2017 vêm no formato OLE antigo (.xls) e passam pelo
// leitor BIFF; os demais são abertos como OOXML.
func ProcessExcelFile(path string) ([]domain.Cotacao, error) {
	filename := filepath.Base(path)
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	if strings.EqualFold(filepath.Ext(filename), ".xls") {
		return processXLSFile(path, filename, stem)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		logrus.WithError(err).WithField("arquivo", filename).Error("etl: erro ao abrir planilha")
		return nil, err
	}
	defer f.Close()

	var allRecords []domain.Cotacao

	for _, sheetName := range f.GetSheetList() {
		date := sheetDate(sheetName, stem)

		rows, err := f.GetRows(sheetName)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"arquivo": filename,
				"aba":     sheetName,
			}).Warn("etl: erro ao ler aba, pulando")
			continue
		}

		allRecords = append(allRecords, ProcessSheet(rows, date, filename)...)
	}

	return allRecords, nil
}

// processXLSFile lê uma planilha BIFF e alimenta o mesmo ProcessSheet usado
// para os arquivos OOXML
func processXLSFile(path, filename, stem string) ([]domain.Cotacao, error) {
	workbook, err := xls.OpenFile(path)
	if err != nil {
		logrus.WithError(err).WithField("arquivo", filename).Error("etl: erro ao abrir planilha .xls")
		return nil, err
	}

	var allRecords []domain.Cotacao

	for i := 0; i < workbook.GetNumberSheets(); i++ {
		sheet, err := workbook.GetSheet(i)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"arquivo": filename,
				"aba":     i,
			}).Warn("etl: erro ao ler aba .xls, pulando")
			continue
		}

		date := sheetDate(sheet.GetName(), stem)

		rows := make([][]string, 0, sheet.GetNumberRows())
		for r := 0; r < sheet.GetNumberRows(); r++ {
			sheetRow, err := sheet.GetRow(r)
			if err != nil {
				rows = append(rows, nil)
				continue
			}

			// ProcessSheet lê até a coluna 21 (preços das dez praças)
			cells := make([]string, 0, priceColumnEnd)
			for c := 0; c < priceColumnEnd; c++ {
				cell, err := sheetRow.GetCol(c)
				if err != nil {
					cells = append(cells, "")
					continue
				}
				cells = append(cells, cell.GetString())
			}
			rows = append(rows, cells)
		}

		allRecords = append(allRecords, ProcessSheet(rows, date, filename)...)
	}

	return allRecords, nil
}

// sheetDate resolve a data de uma aba, caindo para 1º de janeiro do ano do
// nome do arquivo quando a aba não traz data
func sheetDate(sheetName, stem string) *time.Time {
	if date := ParseDateFromSheet(sheetName, stem); date != nil {
		return date
	}

	if yearMatch := yearPattern.FindString(stem); yearMatch != "" {
		year, _ := strconv.Atoi(yearMatch)
		fallback := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &fallback
	}

	return nil
}

// ProcessAllFiles processa todas as planilhas sob o diretório de extração,
// devolvendo também quantos arquivos falharam na leitura
func ProcessAllFiles(extractedDir string) ([]domain.Cotacao, int) {
	var files []string

	err := filepath.WalkDir(extractedDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xls", ".xlsm":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("diretorio", extractedDir).Warn("etl: erro ao listar planilhas")
	}

	sort.Strings(files)
	logrus.WithField("planilhas", len(files)).Info("etl: planilhas encontradas para processar")

	var allRecords []domain.Cotacao
	filesWithData := 0
	parseErrors := 0

	for i, path := range files {
		if i == 0 || (i+1)%50 == 0 {
			logrus.Infof("etl: processando arquivo %d/%d", i+1, len(files))
		}

		records, err := ProcessExcelFile(path)
		if err != nil {
			parseErrors++
			continue
		}
		if len(records) > 0 {
			allRecords = append(allRecords, records...)
			filesWithData++
		}
	}

	logrus.WithFields(logrus.Fields{
		"arquivos_com_dados": filesWithData,
		"falhas_de_leitura":  parseErrors,
		"registros":          len(allRecords),
	}).Info("etl: extração concluída")

	return allRecords, parseErrors
}
