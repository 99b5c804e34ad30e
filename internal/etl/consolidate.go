package etl

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
)

// Consolidate normaliza os nomes de produto, fixa as unidades canônicas,
// remove duplicados pela chave (data, produto, preco_medio) e ordena por
// ano, mês, dia e produto.
func Consolidate(records []domain.Cotacao) []domain.Cotacao {
	logrus.Info("etl: consolidando registros")

	seen := make(map[string]bool, len(records))
	consolidated := make([]domain.Cotacao, 0, len(records))

	for _, record := range records {
		produto := NormalizeProductName(record.Produto)
		if produto == "" {
			continue
		}
		record.Produto = produto
		record.Unidade = CanonicalUnit(produto)

		key := fmt.Sprintf("%s|%s|%.2f", record.Data, record.Produto, record.PrecoMedio)
		if seen[key] {
			continue
		}
		seen[key] = true

		consolidated = append(consolidated, record)
	}

	sort.SliceStable(consolidated, func(i, j int) bool {
		a, b := consolidated[i], consolidated[j]
		if a.Ano != b.Ano {
			return a.Ano < b.Ano
		}
		if a.Mes != b.Mes {
			return a.Mes < b.Mes
		}
		if a.Dia != b.Dia {
			return a.Dia < b.Dia
		}
		return a.Produto < b.Produto
	})

	logrus.WithField("registros", len(consolidated)).Info("etl: consolidação concluída")
	return consolidated
}

var csvHeader = []string{
	"data", "ano", "mes", "dia", "produto", "unidade", "categoria",
	"preco_medio", "preco_minimo", "preco_maximo", "num_cotacoes", "arquivo",
}

// ExportCSV grava o dataset consolidado com BOM UTF-8, legível direto no Excel
func ExportCSV(records []domain.Cotacao, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "erro ao criar diretório de saída")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "erro ao criar %s", path)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.Wrap(err, "erro ao gravar BOM")
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.Wrap(err, "erro ao gravar cabeçalho")
	}

	for _, r := range records {
		row := []string{
			r.Data,
			strconv.Itoa(r.Ano),
			strconv.Itoa(r.Mes),
			strconv.Itoa(r.Dia),
			r.Produto,
			r.Unidade,
			r.Categoria,
			strconv.FormatFloat(r.PrecoMedio, 'f', 2, 64),
			strconv.FormatFloat(r.PrecoMinimo, 'f', 2, 64),
			strconv.FormatFloat(r.PrecoMaximo, 'f', 2, 64),
			strconv.Itoa(r.NumCotacoes),
			r.Arquivo,
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "erro ao gravar linha")
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "erro ao finalizar CSV")
}

// CotacaoParquet é a projeção do registro para o export Parquet
type CotacaoParquet struct {
	Data        string  `parquet:"name=data, type=BYTE_ARRAY, convertedtype=UTF8"`
	Ano         int32   `parquet:"name=ano, type=INT32"`
	Mes         int32   `parquet:"name=mes, type=INT32"`
	Dia         int32   `parquet:"name=dia, type=INT32"`
	Produto     string  `parquet:"name=produto, type=BYTE_ARRAY, convertedtype=UTF8"`
	Unidade     string  `parquet:"name=unidade, type=BYTE_ARRAY, convertedtype=UTF8"`
	Categoria   string  `parquet:"name=categoria, type=BYTE_ARRAY, convertedtype=UTF8"`
	PrecoMedio  float64 `parquet:"name=preco_medio, type=DOUBLE"`
	PrecoMinimo float64 `parquet:"name=preco_minimo, type=DOUBLE"`
	PrecoMaximo float64 `parquet:"name=preco_maximo, type=DOUBLE"`
	NumCotacoes int32   `parquet:"name=num_cotacoes, type=INT32"`
	Arquivo     string  `parquet:"name=arquivo, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ExportParquet grava uma cópia colunar do dataset para uso analítico
func ExportParquet(records []domain.Cotacao, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "erro ao criar diretório de saída")
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "erro ao criar %s", path)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(CotacaoParquet), 4)
	if err != nil {
		return errors.Wrap(err, "erro ao criar escritor parquet")
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range records {
		row := CotacaoParquet{
			Data:        r.Data,
			Ano:         int32(r.Ano),
			Mes:         int32(r.Mes),
			Dia:         int32(r.Dia),
			Produto:     r.Produto,
			Unidade:     r.Unidade,
			Categoria:   r.Categoria,
			PrecoMedio:  r.PrecoMedio,
			PrecoMinimo: r.PrecoMinimo,
			PrecoMaximo: r.PrecoMaximo,
			NumCotacoes: int32(r.NumCotacoes),
			Arquivo:     r.Arquivo,
		}
		if err := pw.Write(row); err != nil {
			return errors.Wrap(err, "erro ao gravar registro parquet")
		}
	}

	return errors.Wrap(pw.WriteStop(), "erro ao finalizar parquet")
}
