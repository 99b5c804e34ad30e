package aggregating

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
)

// Limites dos artefatos servidos ao dashboard
const (
	maxDetailedRecords = 50000
	maxProductFilters  = 500
	maxProductsPerMap  = 100
	topDailyProducts   = 20
	minRecordsForVol   = 10
	minObsPerPeriod    = 3
)

// mojibake comum quando Windows-1252 é lido como UTF-8
var encodingFixes = []struct{ bad, good string }{
	{"Ã£", "ã"}, {"Ã¡", "á"}, {"Ã©", "é"}, {"Ã­", "í"}, {"Ãº", "ú"}, {"Ã³", "ó"},
	{"Ã§", "ç"}, {"Ãµ", "õ"}, {"Ã", "à"}, {"Ã¢", "â"}, {"Ãª", "ê"}, {"Ã´", "ô"},
	{"�", ""}, {"ã£", "ã"}, {"ã©", "é"}, {"ã­", "í"}, {"ãº", "ú"},
}

func fixEncoding(text string) string {
	for _, fix := range encodingFixes {
		text = strings.ReplaceAll(text, fix.bad, fix.good)
	}
	return text
}

// row é um registro preparado para agregação, com o período mensal derivado
type row struct {
	domain.Cotacao
	Periodo string
}

// prepareRows filtra registros inválidos, corrige o encoding dos nomes de
// produto e fixa a categoria de cada produto na sua categoria mais frequente,
// eliminando inconsistências entre planilhas de anos diferentes.
func prepareRows(records []domain.Cotacao) []row {
	categoryCounts := make(map[string]map[string]int)

	valid := make([]domain.Cotacao, 0, len(records))
	for _, r := range records {
		if r.PrecoMedio <= 0 || r.Ano <= 0 {
			continue
		}
		r.Produto = fixEncoding(r.Produto)
		valid = append(valid, r)

		if categoryCounts[r.Produto] == nil {
			categoryCounts[r.Produto] = make(map[string]int)
		}
		categoryCounts[r.Produto][r.Categoria]++
	}

	mainCategory := make(map[string]string, len(categoryCounts))
	for produto, counts := range categoryCounts {
		best, bestCount := "", -1
		for cat, count := range counts {
			if count > bestCount || (count == bestCount && cat < best) {
				best, bestCount = cat, count
			}
		}
		mainCategory[produto] = best
	}

	rows := make([]row, 0, len(valid))
	for _, r := range valid {
		r.Categoria = mainCategory[r.Produto]

		periodo := strconv.Itoa(r.Ano)
		if r.Mes > 0 {
			periodo = fmt.Sprintf("%d-%02d", r.Ano, r.Mes)
		}

		rows = append(rows, row{Cotacao: r, Periodo: periodo})
	}

	return rows
}

type artifactMetadata struct {
	GeneratedAt  string `json:"generated_at"`
	TotalRecords int    `json:"total_records"`
	YearMin      int    `json:"year_min"`
	YearMax      int    `json:"year_max"`
}

type groupStats struct {
	Media     float64 `json:"media"`
	Registros int     `json:"registros"`
}

type productStats struct {
	Media     float64 `json:"media"`
	Categoria string  `json:"categoria"`
}

// AggregatedArtifact é o conteúdo de aggregated.json
type AggregatedArtifact struct {
	Metadata   artifactMetadata        `json:"metadata"`
	ByYear     map[int]groupStats      `json:"by_year"`
	ByCategory map[string]groupStats   `json:"by_category"`
	ByProduct  map[string]productStats `json:"by_product"`
}

func buildAggregated(rows []row, generatedAt string) *AggregatedArtifact {
	agg := &AggregatedArtifact{
		Metadata: artifactMetadata{
			GeneratedAt:  generatedAt,
			TotalRecords: len(rows),
		},
		ByYear:     make(map[int]groupStats),
		ByCategory: make(map[string]groupStats),
		ByProduct:  make(map[string]productStats),
	}

	yearSums := make(map[int]*sumCount)
	categorySums := make(map[string]*sumCount)
	productSums := make(map[string]*sumCount)
	productCategory := make(map[string]string)

	for _, r := range rows {
		if agg.Metadata.YearMin == 0 || r.Ano < agg.Metadata.YearMin {
			agg.Metadata.YearMin = r.Ano
		}
		if r.Ano > agg.Metadata.YearMax {
			agg.Metadata.YearMax = r.Ano
		}

		addSample(yearSums, r.Ano, r.PrecoMedio)
		addSample(categorySums, r.Categoria, r.PrecoMedio)
		addSample(productSums, r.Produto, r.PrecoMedio)
		if _, ok := productCategory[r.Produto]; !ok {
			productCategory[r.Produto] = r.Categoria
		}
	}

	for year, sc := range yearSums {
		agg.ByYear[year] = groupStats{Media: round2(sc.mean()), Registros: sc.count}
	}
	for cat, sc := range categorySums {
		agg.ByCategory[cat] = groupStats{Media: round2(sc.mean()), Registros: sc.count}
	}

	// Apenas os primeiros cem produtos em ordem alfabética
	products := sortedKeys(productSums)
	if len(products) > maxProductsPerMap {
		products = products[:maxProductsPerMap]
	}
	for _, produto := range products {
		agg.ByProduct[produto] = productStats{
			Media:     round2(productSums[produto].mean()),
			Categoria: productCategory[produto],
		}
	}

	return agg
}

type periodStats struct {
	Media float64 `json:"media"`
	Count int     `json:"count"`
}

// TimeSeriesArtifact é o conteúdo de timeseries.json
type TimeSeriesArtifact struct {
	ByPeriod   map[string]periodStats        `json:"by_period"`
	ByCategory map[string]map[string]float64 `json:"by_category"`
}

func buildTimeSeries(rows []row) *TimeSeriesArtifact {
	series := &TimeSeriesArtifact{
		ByPeriod:   make(map[string]periodStats),
		ByCategory: make(map[string]map[string]float64),
	}

	periodSums := make(map[string]*sumCount)
	categoryPeriodSums := make(map[string]map[string]*sumCount)

	for _, r := range rows {
		addSample(periodSums, r.Periodo, r.PrecoMedio)

		if categoryPeriodSums[r.Categoria] == nil {
			categoryPeriodSums[r.Categoria] = make(map[string]*sumCount)
		}
		addSample(categoryPeriodSums[r.Categoria], r.Periodo, r.PrecoMedio)
	}

	for periodo, sc := range periodSums {
		series.ByPeriod[periodo] = periodStats{Media: round2(sc.mean()), Count: sc.count}
	}

	for cat, periods := range categoryPeriodSums {
		series.ByCategory[cat] = make(map[string]float64, len(periods))
		for periodo, sc := range periods {
			series.ByCategory[cat][periodo] = round2(sc.mean())
		}
	}

	return series
}

type detailedRecord struct {
	D  string  `json:"d"`
	A  int     `json:"a"`
	P  string  `json:"p"`
	C  string  `json:"c"`
	U  string  `json:"u"`
	PM float64 `json:"pm"`
}

type detailedFilters struct {
	Anos       []int    `json:"anos"`
	Categorias []string `json:"categorias"`
	Produtos   []string `json:"produtos"`
}

// DetailedArtifact é o conteúdo de detailed.json
type DetailedArtifact struct {
	Records      []detailedRecord  `json:"records"`
	Filters      detailedFilters   `json:"filters"`
	ProductUnits map[string]string `json:"product_units"`
}

func buildDetailed(rows []row) *DetailedArtifact {
	sample := rows
	if len(rows) > maxDetailedRecords {
		// Amostra reproduzível entre execuções
		shuffled := make([]row, len(rows))
		copy(shuffled, rows)
		rng := rand.New(rand.NewSource(42))
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		sample = shuffled[:maxDetailedRecords]
	}

	records := make([]detailedRecord, 0, len(sample))
	for _, r := range sample {
		records = append(records, detailedRecord{
			D:  r.Data,
			A:  r.Ano,
			P:  r.Produto,
			C:  r.Categoria,
			U:  r.Unidade,
			PM: round2(r.PrecoMedio),
		})
	}

	yearSet := make(map[int]bool)
	categorySet := make(map[string]bool)
	productSet := make(map[string]bool)
	unitCounts := make(map[string]map[string]int)

	for _, r := range rows {
		yearSet[r.Ano] = true
		if r.Categoria != "" {
			categorySet[r.Categoria] = true
		}
		productSet[r.Produto] = true

		if unitCounts[r.Produto] == nil {
			unitCounts[r.Produto] = make(map[string]int)
		}
		unitCounts[r.Produto][r.Unidade]++
	}

	anos := make([]int, 0, len(yearSet))
	for year := range yearSet {
		anos = append(anos, year)
	}
	sort.Ints(anos)

	categorias := make([]string, 0, len(categorySet))
	for cat := range categorySet {
		categorias = append(categorias, cat)
	}
	sort.Strings(categorias)

	produtos := make([]string, 0, len(productSet))
	for produto := range productSet {
		produtos = append(produtos, produto)
	}
	sort.Strings(produtos)
	if len(produtos) > maxProductFilters {
		produtos = produtos[:maxProductFilters]
	}

	productUnits := make(map[string]string, len(unitCounts))
	for produto, counts := range unitCounts {
		best, bestCount := "", -1
		for unit, count := range counts {
			if count > bestCount || (count == bestCount && unit < best) {
				best, bestCount = unit, count
			}
		}
		productUnits[produto] = best
	}

	return &DetailedArtifact{
		Records:      records,
		Filters:      detailedFilters{Anos: anos, Categorias: categorias, Produtos: produtos},
		ProductUnits: productUnits,
	}
}

// FilterMapsArtifact é o conteúdo de filters.json
type FilterMapsArtifact struct {
	CategoryProducts map[string][]string `json:"category_products"`
}

func buildFilterMaps(rows []row) *FilterMapsArtifact {
	counts := make(map[string]map[string]int)
	for _, r := range rows {
		if counts[r.Categoria] == nil {
			counts[r.Categoria] = make(map[string]int)
		}
		counts[r.Categoria][r.Produto]++
	}

	maps := &FilterMapsArtifact{CategoryProducts: make(map[string][]string, len(counts))}
	for cat, productCounts := range counts {
		maps.CategoryProducts[cat] = topByCount(productCounts, maxProductsPerMap)
	}

	return maps
}

type dailyPoint struct {
	D string  `json:"d"`
	P float64 `json:"p"`
}

// DailySeriesArtifact é o conteúdo de daily_series.json
type DailySeriesArtifact struct {
	Products    map[string][]dailyPoint `json:"products"`
	GeneratedAt string                  `json:"generated_at"`
}

func buildDailySeries(rows []row, generatedAt string) *DailySeriesArtifact {
	recordCounts := make(map[string]int)
	for _, r := range rows {
		recordCounts[r.Produto]++
	}
	topProducts := topByCount(recordCounts, topDailyProducts)

	topSet := make(map[string]bool, len(topProducts))
	for _, produto := range topProducts {
		topSet[produto] = true
	}

	daily := make(map[string][]dailyPoint, len(topProducts))
	for _, r := range rows {
		if !topSet[r.Produto] || r.Data == "" {
			continue
		}
		daily[r.Produto] = append(daily[r.Produto], dailyPoint{D: r.Data, P: round2(r.PrecoMedio)})
	}

	for produto := range daily {
		points := daily[produto]
		sort.SliceStable(points, func(i, j int) bool { return points[i].D < points[j].D })
	}

	return &DailySeriesArtifact{Products: daily, GeneratedAt: generatedAt}
}

type volatilityStats struct {
	Std      float64 `json:"std"`
	CV       float64 `json:"cv"`
	RangePct float64 `json:"range_pct"`
	N        int     `json:"n"`
}

// VolatilityArtifact é o conteúdo de volatility.json
type VolatilityArtifact struct {
	ByProduct   map[string]map[string]volatilityStats `json:"by_product"`
	GeneratedAt string                                `json:"generated_at"`
}

func buildVolatility(rows []row, generatedAt string) *VolatilityArtifact {
	recordCounts := make(map[string]int)
	for _, r := range rows {
		recordCounts[r.Produto]++
	}

	prices := make(map[string]map[string][]float64)
	for _, r := range rows {
		if recordCounts[r.Produto] < minRecordsForVol {
			continue
		}
		if prices[r.Produto] == nil {
			prices[r.Produto] = make(map[string][]float64)
		}
		prices[r.Produto][r.Periodo] = append(prices[r.Produto][r.Periodo], r.PrecoMedio)
	}

	vol := &VolatilityArtifact{
		ByProduct:   make(map[string]map[string]volatilityStats),
		GeneratedAt: generatedAt,
	}

	for produto, periods := range prices {
		for periodo, values := range periods {
			if len(values) < minObsPerPeriod {
				continue
			}

			mean := stat.Mean(values, nil)
			if mean <= 0 {
				continue
			}
			std := stat.PopStdDev(values, nil)

			low, high := values[0], values[0]
			for _, v := range values[1:] {
				low = math.Min(low, v)
				high = math.Max(high, v)
			}

			if vol.ByProduct[produto] == nil {
				vol.ByProduct[produto] = make(map[string]volatilityStats)
			}
			vol.ByProduct[produto][periodo] = volatilityStats{
				Std:      round2(std),
				CV:       round1(std / mean * 100),
				RangePct: round1((high - low) / mean * 100),
				N:        len(values),
			}
		}
	}

	return vol
}

type spreadStats struct {
	SpreadPct float64 `json:"spread_pct"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
}

// RegionalSpreadArtifact é o conteúdo de regional_spread.json. Usa os preços
// mínimo e máximo entre as praças como aproximação da dispersão regional.
type RegionalSpreadArtifact struct {
	ByProduct   map[string]map[string]spreadStats `json:"by_product"`
	GeneratedAt string                            `json:"generated_at"`
}

func buildRegionalSpread(rows []row, generatedAt string) *RegionalSpreadArtifact {
	type spreadAcc struct {
		min, max, mean sumCount
	}

	groups := make(map[string]map[string]*spreadAcc)
	for _, r := range rows {
		if r.PrecoMinimo <= 0 || r.PrecoMaximo <= 0 {
			continue
		}
		if groups[r.Produto] == nil {
			groups[r.Produto] = make(map[string]*spreadAcc)
		}
		acc := groups[r.Produto][r.Periodo]
		if acc == nil {
			acc = &spreadAcc{}
			groups[r.Produto][r.Periodo] = acc
		}
		acc.min.add(r.PrecoMinimo)
		acc.max.add(r.PrecoMaximo)
		acc.mean.add(r.PrecoMedio)
	}

	spread := &RegionalSpreadArtifact{
		ByProduct:   make(map[string]map[string]spreadStats),
		GeneratedAt: generatedAt,
	}

	for produto, periods := range groups {
		for periodo, acc := range periods {
			pmin, pmax, pmean := acc.min.mean(), acc.max.mean(), acc.mean.mean()
			if pmean <= 0 || pmax < pmin {
				continue
			}

			if spread.ByProduct[produto] == nil {
				spread.ByProduct[produto] = make(map[string]spreadStats)
			}
			spread.ByProduct[produto][periodo] = spreadStats{
				SpreadPct: round1((pmax - pmin) / pmean * 100),
				Min:       round2(pmin),
				Max:       round2(pmax),
				Mean:      round2(pmean),
			}
		}
	}

	return spread
}

type sumCount struct {
	sum   float64
	count int
}

func (sc *sumCount) add(v float64) {
	sc.sum += v
	sc.count++
}

func (sc *sumCount) mean() float64 {
	if sc.count == 0 {
		return 0
	}
	return sc.sum / float64(sc.count)
}

func addSample[K comparable](m map[K]*sumCount, key K, v float64) {
	sc := m[key]
	if sc == nil {
		sc = &sumCount{}
		m[key] = sc
	}
	sc.add(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// topByCount retorna as chaves com maior contagem, em ordem decrescente,
// desempatando pelo nome
func topByCount(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
