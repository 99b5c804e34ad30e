package etl

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
)

var (
	sheetDateDash  = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{2,4})`)
	sheetDateUnder = regexp.MustCompile(`(\d{2})_(\d{2})_(\d{2,4})`)
	sheetDayOnly   = regexp.MustCompile(`^(\d{2})$`)
	yearPattern    = regexp.MustCompile(`(19|20)\d{2}`)
)

var monthNames = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June,
	"julho": time.July, "agosto": time.August, "setembro": time.September,
	"outubro": time.October, "novembro": time.November, "dezembro": time.December,
}

// ParseDateFromSheet extrai a data do nome da aba; abas com só o dia usam o
// mês (por extenso) e o ano do nome do arquivo
func ParseDateFromSheet(sheetName, filename string) *time.Time {
	for _, pattern := range []*regexp.Regexp{sheetDateDash, sheetDateUnder} {
		if match := pattern.FindStringSubmatch(sheetName); match != nil {
			day, _ := strconv.Atoi(match[1])
			month, _ := strconv.Atoi(match[2])
			year, _ := strconv.Atoi(match[3])
			if year < 100 {
				if year < 50 {
					year += 2000
				} else {
					year += 1900
				}
			}
			if date := safeDate(year, month, day); date != nil {
				return date
			}
		}
	}

	if match := sheetDayOnly.FindStringSubmatch(strings.TrimSpace(sheetName)); match != nil {
		day, _ := strconv.Atoi(match[1])

		yearMatch := yearPattern.FindString(filename)
		filenameLower := strings.ToLower(filename)

		var month time.Month
		for name, m := range monthNames {
			if strings.Contains(filenameLower, name) {
				month = m
				break
			}
		}

		if yearMatch != "" && month != 0 {
			year, _ := strconv.Atoi(yearMatch)
			if date := safeDate(year, int(month), day); date != nil {
				return date
			}
		}
	}

	return nil
}

func safeDate(year, month, day int) *time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month {
		return nil
	}
	return &date
}

// findDataStartRow acha a linha em que os dados começam, pulando o cabeçalho
func findDataStartRow(rows [][]string) int {
	limit := 10
	if len(rows) < limit {
		limit = len(rows)
	}
	for idx := 0; idx < limit; idx++ {
		if len(rows[idx]) > 0 && strings.Contains(strings.ToUpper(rows[idx][0]), "PRODUTO") {
			return idx + 2
		}
	}
	return 5
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// priceColumnEnd delimita as colunas de preço: colunas 2 a 21 trazem as
// cotações das praças regionais
const priceColumnEnd = 22

// ProcessSheet percorre as linhas de uma aba e emite os registros de cotação.
//
// A coluna 1 marca o papel da linha (MIN, M_C ou MAX) e o registro só é
// gerado na linha M_C, com preços lidos das colunas regionais 2 a 21.
// No formato antigo o produto ocupa três linhas (nome, variedade e unidade),
// acompanhadas pelos marcadores na mesma ordem.
func ProcessSheet(rows [][]string, date *time.Time, filename string) []domain.Cotacao {
	var records []domain.Cotacao

	if len(rows) < 6 {
		return records
	}

	dataStart := findDataStartRow(rows)

	var currentBaseProduct, currentType, currentUnit string

	for rowIdx := dataStart; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]

		cell0 := cellAt(row, 0)
		cell1 := strings.ToUpper(cellAt(row, 1))

		isMin := cell1 == "MIN"
		isMC := cell1 == "M_C"
		isMax := cell1 == "MAX" || cell1 == "MÁX" || cell1 == "M�X"

		if !isMin && !isMC && !isMax {
			continue
		}

		var prices []float64
		limit := len(row)
		if limit > priceColumnEnd {
			limit = priceColumnEnd
		}
		for colIdx := 2; colIdx < limit; colIdx++ {
			if price, ok := ParseNumber(row[colIdx]); ok {
				prices = append(prices, price)
			}
		}

		if cell0 != "" {
			cell0Clean := strings.TrimSpace(strings.ReplaceAll(cell0, "\n", " "))

			productText, unit := extractUnitFromText(cell0Clean)

			switch {
			case unit != "":
				// Formato novo: "Produto    unidade" na mesma célula
				if productText != "" && !isInvalidEntry(productText) {
					currentBaseProduct = productText
					currentType = ""
					currentUnit = unit
				}
			case isUnit(cell0Clean):
				// Formato antigo: linha da unidade (MAX)
				currentUnit = cell0Clean
			case isTypeVariety(cell0Clean):
				// Formato antigo: linha de tipo/variedade (M_C)
				currentType = cell0Clean
			case !isInvalidEntry(cell0Clean):
				currentBaseProduct = cell0Clean
				currentType = ""
				currentUnit = ""
			}
		}

		if isMC && currentBaseProduct != "" && len(prices) > 0 {
			fullProduct := currentBaseProduct
			if currentType != "" {
				fullProduct = currentBaseProduct + " " + currentType
			}
			fullProduct = strings.TrimSpace(multiSpacePattern.ReplaceAllString(fullProduct, " "))

			record := domain.Cotacao{
				Produto:     fullProduct,
				Variedade:   currentType,
				Unidade:     currentUnit,
				Categoria:   DetectCategory(fullProduct),
				PrecoMedio:  round2(mean(prices)),
				PrecoMinimo: round2(minOf(prices)),
				PrecoMaximo: round2(maxOf(prices)),
				NumCotacoes: len(prices),
				Arquivo:     filename,
			}

			if date != nil {
				record.Data = date.Format("2006-01-02")
				record.Ano = date.Year()
				record.Mes = int(date.Month())
				record.Dia = date.Day()
			}

			records = append(records, record)
		}
	}

	return records
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
