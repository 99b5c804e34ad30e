package etl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestProcessExcelFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2024-03-15_15-03-2024-impressao.xlsx")
	writeBulletinFixture(t, path)

	records, err := ProcessExcelFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	soja := records[0]
	assert.Equal(t, "Soja industrial tipo 1", soja.Produto)
	assert.Equal(t, "sc 60 Kg", soja.Unidade)
	assert.Equal(t, "2024-03-15", soja.Data)
	assert.Equal(t, 121.0, soja.PrecoMedio)

	assert.Equal(t, "Boi em pé", records[1].Produto)
}

func TestProcessExcelFileXLSCorrompido(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boletim-2009.xls")
	require.NoError(t, os.WriteFile(path, []byte("isto não é um arquivo OLE"), 0o644))

	// O leitor BIFF tenta abrir o arquivo e reporta a falha de leitura,
	// em vez de descartar a extensão de antemão
	_, err := ProcessExcelFile(path)
	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "não suportado")
}

func TestProcessAllFilesContabilizaFalhasDeLeitura(t *testing.T) {
	dir := t.TempDir()
	writeBulletinFixture(t, filepath.Join(dir, "2024-03-15_15-03-2024-impressao.xlsx"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boletim-2005.xls"), []byte("lixo"), 0o644))

	records, parseErrors := ProcessAllFiles(dir)
	assert.Equal(t, 1, parseErrors)
	assert.Len(t, records, 2)
}

func TestSheetDate(t *testing.T) {
	completa := sheetDate("15-03-24", "2024-03-15_15-03-2024-impressao")
	require.NotNil(t, completa)
	assert.Equal(t, *timePtr(2024, 3, 15), *completa)

	// Aba sem data cai em 1º de janeiro do ano do nome do arquivo
	anual := sheetDate("resumo", "cotacoes_2011")
	require.NotNil(t, anual)
	assert.Equal(t, *timePtr(2011, 1, 1), *anual)

	assert.Nil(t, sheetDate("resumo", "cotacoes"))
}

// writeBulletinFixture grava uma planilha no formato novo do boletim, com a
// data no nome da aba e os marcadores MIN/M_C/MAX na segunda coluna
func writeBulletinFixture(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "15-03-24"))

	rows := [][]interface{}{
		{"PRODUTOS", "", "CURITIBA", "LONDRINA", "MARINGA"},
		{"", "", "", "", ""},
		{"Soja industrial tipo 1    sc 60 Kg", "MIN", "120,00", "119,00", `\\\`},
		{"", "M_C", "121,50", "120,50", "SINF"},
		{"", "MAX", "123,00", "122,00", "AUS"},
		{"Boi em pé arroba", "MIN", "240,00", "238,00", ""},
		{"", "M_C", "245,00", "243,00", ""},
		{"", "MAX", "250,00", "248,00", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("15-03-24", cell, &row))
	}

	require.NoError(t, f.SaveAs(path))
}
