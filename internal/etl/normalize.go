// Package etl transforma as planilhas diárias do SIMA em registros de cotação
package etl

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/agrodata-pr/sima-cotacoes-api/pkg/utils"
)

// Mapeamento de palavras-chave para categorias de produto
var categorias = map[string]string{
	"SOJA": "Graos", "MILHO": "Graos", "TRIGO": "Graos", "FEIJAO": "Graos",
	"ARROZ": "Graos", "AVEIA": "Graos", "CEVADA": "Graos", "CENTEIO": "Graos",
	"SORGO": "Graos", "TRITICALE": "Graos", "CANOLA": "Graos", "GIRASSOL": "Graos",
	"AMENDOIM": "Graos", "CAFE": "Graos", "ALGODAO": "Graos",
	"LARANJA": "Frutas", "BANANA": "Frutas", "UVA": "Frutas", "MACA": "Frutas",
	"MELANCIA": "Frutas", "MELAO": "Frutas", "MAMAO": "Frutas", "ABACAXI": "Frutas",
	"MORANGO": "Frutas", "PESSEGO": "Frutas", "AMEIXA": "Frutas", "FIGO": "Frutas",
	"CAQUI": "Frutas", "GOIABA": "Frutas", "MANGA": "Frutas", "MARACUJA": "Frutas",
	"LIMAO": "Frutas", "TANGERINA": "Frutas", "PONCAN": "Frutas", "ABACATE": "Frutas",
	"TOMATE": "Hortalicas", "BATATA": "Hortalicas", "CEBOLA": "Hortalicas",
	"ALHO": "Hortalicas", "MANDIOCA": "Hortalicas", "CENOURA": "Hortalicas",
	"BETERRABA": "Hortalicas", "REPOLHO": "Hortalicas", "ALFACE": "Hortalicas",
	"COUVE": "Hortalicas", "PEPINO": "Hortalicas", "PIMENTAO": "Hortalicas",
	"ABOBRINHA": "Hortalicas", "ABOBORA": "Hortalicas", "CHUCHU": "Hortalicas",
	"QUIABO": "Hortalicas", "BERINJELA": "Hortalicas", "VAGEM": "Hortalicas",
	"BOI": "Pecuaria", "VACA": "Pecuaria", "NOVILHO": "Pecuaria", "BEZERRO": "Pecuaria",
	"SUINO": "Pecuaria", "PORCO": "Pecuaria", "FRANGO": "Pecuaria", "GALINHA": "Pecuaria",
	"OVO": "Pecuaria", "OVINO": "Pecuaria", "CAPRINO": "Pecuaria", "LEITE": "Pecuaria",
	"MADEIRA": "Florestal", "LENHA": "Florestal", "PINUS": "Florestal",
	"EUCALIPTO": "Florestal", "ERVA-MATE": "Florestal", "ERVA MATE": "Florestal",
}

// Unidades conhecidas (para separar do nome do produto)
var units = map[string]bool{
	"sc 60 kg": true, "sc 50 kg": true, "sc60kg": true, "sc50kg": true,
	"sc 60kg": true, "sc 50kg": true,
	"arroba": true, "kg": true, "kg renda": true, "kg embranco": true, "kgrenda": true,
	"tonelada": true, "ton": true, "t": true,
	"unidade": true, "un": true, "un.": true, "duzia": true, "dúzia": true,
	"caixa": true, "cx": true, "litro": true, "l": true,
	"cabeca": true, "cabeça": true, "cab": true, "cab.": true,
}

// Descritores de tipo/variedade (formato antigo, segunda linha do produto)
var typesVarieties = []string{
	"tipo 1", "tipo 2", "tipo 3", "tipo 4", "tipo 5", "tipo 6",
	"tipo1", "tipo2", "tipo3", "tipo4", "tipo5", "tipo6",
	"sequeiro", "irrigado",
	"em coco", "emcoco", "em caroço", "emcaroço",
	"em casca", "emcasca", "beneficiado",
	"em pé", "empé", "em pe", "empe",
	"tipo carne", "tipocarne", "padrão corte", "padrao corte",
	"bebida dura", "bebidadura",
	"folha em barranco", "folhaembarranco",
	"gr.longo", "gr.longo fino", "grlongo", "grlongofino",
	"de cor", "decor", "preto", "carioca",
	"não integrado", "naointegrado",
}

// Entradas inválidas (metadados, cabeçalhos etc.)
var invalidEntries = map[string]bool{
	"min": true, "max": true, "máx": true, "m_c": true, "media": true, "média": true,
	"nan": true, "none": true, "-": true, "--": true, `\\\`: true, "sinf": true, "aus": true,
	"produto": true, "produtos": true, "total": true, "fonte": true, "obs": true, "nota": true,
	"(vivo)": true, "vivo": true, "sc 60": true, "sc 50": true,
}

// Unidade canônica de cada produto, conforme a documentação do SIMA/DERAL
var productUnits = map[string]string{
	"Soja industrial tipo 1":              "sc 60 Kg",
	"Milho amarelo tipo 1":                "sc 60 Kg",
	"Milho comum":                         "sc 60 Kg",
	"Milho":                               "sc 60 Kg",
	"Trigo pão":                           "sc 60 Kg",
	"Trigo":                               "sc 60 Kg",
	"Feijão preto tipo 1":                 "sc 60 Kg",
	"Feijão carioca tipo 1":               "sc 60 Kg",
	"Feijão de cor tipo 1":                "sc 60 Kg",
	"Arroz em casca tipo 1":               "sc 60 Kg",
	"Arroz irrigado":                      "sc 60 Kg",
	"Arroz sequeiro":                      "sc 60 Kg",
	"Café beneficiado bebida dura tipo 6": "sc 60 Kg",
	"Algodão em caroço":                   "arroba",
	"Café em coco":                        "kg renda",
	"Boi em pé":                           "arroba",
	"Boi gordo":                           "arroba",
	"Vaca em pé":                          "arroba",
	"Vaca gorda":                          "arroba",
	"Suíno em pé tipo carne":              "kg",
	"Suíno em pé tipo carne não integrado": "kg",
	"Frango de corte":                     "kg",
	"Erva-mate":                           "arroba",
	"Erva-mate folha em barranco":         "arroba",
	"Mandioca industrial":                 "tonelada",
}

// Fallback por palavra-chave quando o produto não está na tabela canônica
var unitFallbacks = []struct {
	keyword string
	unit    string
}{
	{"soja", "sc 60 Kg"},
	{"milho", "sc 60 Kg"},
	{"trigo", "sc 60 Kg"},
	{"feij", "sc 60 Kg"},
	{"arroz", "sc 60 Kg"},
	{"boi", "arroba"},
	{"vaca", "arroba"},
	{"suino", "kg"},
	{"suíno", "kg"},
	{"frango", "kg"},
	{"erva", "arroba"},
	{"mandioca", "tonelada"},
	{"algod", "arroba"},
}

type productRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Mapa de normalização de nomes; a ordem importa, padrões mais específicos primeiro.
// O "." no lugar de acentos tolera planilhas com codificação quebrada.
var productMap = []productRule{
	{regexp.MustCompile(`(?i)arroz.*(agulhinha|casca).*tipo\s*1`), "Arroz em casca tipo 1"},
	{regexp.MustCompile(`(?i)arroz.*sequeiro`), "Arroz sequeiro"},
	{regexp.MustCompile(`(?i)arroz.*irrigado`), "Arroz irrigado"},
	{regexp.MustCompile(`(?i)soja\s*industrial\s*tipo\s*1`), "Soja industrial tipo 1"},
	{regexp.MustCompile(`(?i)soja\s*industrial`), "Soja industrial tipo 1"},
	{regexp.MustCompile(`(?i)sojaindustrial`), "Soja industrial tipo 1"},
	{regexp.MustCompile(`(?i)^soja\s*$`), "Soja industrial tipo 1"},
	{regexp.MustCompile(`(?i)milho\s*amarelo`), "Milho amarelo tipo 1"},
	{regexp.MustCompile(`(?i)milho.*tipo\s*1`), "Milho amarelo tipo 1"},
	{regexp.MustCompile(`(?i)milho.*comum`), "Milho comum"},
	{regexp.MustCompile(`(?i)^milho\s*$`), "Milho"},
	{regexp.MustCompile(`(?i)trigo.*(pao|ph|78)`), "Trigo pão"},
	{regexp.MustCompile(`(?i)^trigo\s*$`), "Trigo"},
	{regexp.MustCompile(`(?i)feij.o\s*preto\s*tipo`), "Feijão preto tipo 1"},
	{regexp.MustCompile(`(?i)feij.o\s*preto`), "Feijão preto tipo 1"},
	{regexp.MustCompile(`(?i)feij.o\s*carioca\s*tipo`), "Feijão carioca tipo 1"},
	{regexp.MustCompile(`(?i)feij.o\s*carioca`), "Feijão carioca tipo 1"},
	{regexp.MustCompile(`(?i)feij.o.*(cor|de\s*cor)`), "Feijão de cor tipo 1"},
	{regexp.MustCompile(`(?i)caf.\s*benefici?ado\s*bebida\s*dura`), "Café beneficiado bebida dura tipo 6"},
	{regexp.MustCompile(`(?i)caf.\s*benefici?ado`), "Café beneficiado bebida dura tipo 6"},
	{regexp.MustCompile(`(?i)caf.\s*(em\s*)?coco`), "Café em coco"},
	{regexp.MustCompile(`(?i)algod.o`), "Algodão em caroço"},
	{regexp.MustCompile(`(?i)boi\s*gordo`), "Boi gordo"},
	{regexp.MustCompile(`(?i)boi.*(em\s*)?p[eé]`), "Boi em pé"},
	{regexp.MustCompile(`(?i)^boi\s*$`), "Boi em pé"},
	{regexp.MustCompile(`(?i)vaca\s*gorda`), "Vaca gorda"},
	{regexp.MustCompile(`(?i)vaca.*(em\s*)?p[eé]`), "Vaca em pé"},
	{regexp.MustCompile(`(?i)^vaca\s*$`), "Vaca em pé"},
	{regexp.MustCompile(`(?i)su.no\s*(em\s*)?p.\s*tipo\s*carne\s*n.o\s*integrado`), "Suíno em pé tipo carne não integrado"},
	{regexp.MustCompile(`(?i)su.no\s*(em\s*)?p.\s*tipo\s*carne`), "Suíno em pé tipo carne"},
	{regexp.MustCompile(`(?i)su.noemp.\s*tipocarne`), "Suíno em pé tipo carne"},
	{regexp.MustCompile(`(?i)su.no\s*(em\s*)?p.`), "Suíno em pé tipo carne"},
	{regexp.MustCompile(`(?i)^su.no\s*$`), "Suíno em pé tipo carne"},
	{regexp.MustCompile(`(?i)frango.*corte`), "Frango de corte"},
	{regexp.MustCompile(`(?i)erva[\s\-]?mate\s*folha\s*(em\s*)?barranco`), "Erva-mate folha em barranco"},
	{regexp.MustCompile(`(?i)erva[\s\-]?mate`), "Erva-mate"},
	{regexp.MustCompile(`(?i)mandioca\s*industrial`), "Mandioca industrial"},
	{regexp.MustCompile(`(?i)mandioca.*amido`), "Mandioca industrial"},
	{regexp.MustCompile(`(?i)^mandioca\s*$`), "Mandioca industrial"},
}

// Padrões de nomes que são descartados por inteiro
var invalidProductPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^sc\s*\d+`),
	regexp.MustCompile(`(?i)^em\s*barranco`),
	regexp.MustCompile(`(?i)^embarranco`),
	regexp.MustCompile(`(?i)^\(vivo\)`),
	regexp.MustCompile(`(?i)^vaca\s+bebida`),
	regexp.MustCompile(`(?i)^gr\.?longo`),
	regexp.MustCompile(`(?i)^irrigado\s*$`),
	regexp.MustCompile(`(?i)^sequeiro\s*$`),
	regexp.MustCompile(`(?i)^tipo\s*\d+\s*$`),
	regexp.MustCompile(`(?i)^tipo\s*carne`),
	regexp.MustCompile(`(?i)^n[aã]o\s*integrado`),
	regexp.MustCompile(`(?i)^arroba\s*$`),
	regexp.MustCompile(`(?i)^kg\s*$`),
	regexp.MustCompile(`(?i)vaca.*caf[eé]`),
	regexp.MustCompile(`(?i)caf[eé].*vaca`),
}

var (
	scUnitPattern       = regexp.MustCompile(`(?i)^sc\s*\d+\s*kg?$`)
	digitsOnlyPattern   = regexp.MustCompile(`^\d+$`)
	scPrefixPattern     = regexp.MustCompile(`^sc\s*\d+`)
	barrancoPattern     = regexp.MustCompile(`^em\s*barranco`)
	barrancoJoined      = regexp.MustCompile(`^embarranco`)
	trailingPunctuation = regexp.MustCompile(`[.,;:!?\s]+$`)
	multiSpacePattern   = regexp.MustCompile(`\s+`)
	currencyPattern     = regexp.MustCompile(`R\$\s*`)
	spacePattern        = regexp.MustCompile(`\s+`)
)

// Correções de capitalização aplicadas após o title case
var titleFixes = []productRule{
	{regexp.MustCompile(`\bEm\b`), "em"},
	{regexp.MustCompile(`\bDe\b`), "de"},
	{regexp.MustCompile(`\bDa\b`), "da"},
	{regexp.MustCompile(`\bDo\b`), "do"},
	{regexp.MustCompile(`\bTipo\b`), "tipo"},
	{regexp.MustCompile(`\bN[aã]o\b`), "não"},
	{regexp.MustCompile(`\bCafe\b`), "Café"},
	{regexp.MustCompile(`\bFeijao\b`), "Feijão"},
	{regexp.MustCompile(`\bSuino\b`), "Suíno"},
	{regexp.MustCompile(`\bPe\b`), "pé"},
}

// Padrões de unidade coladas ao fim do nome do produto (formato novo)
var unitSuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+(sc\s*\d+\s*[Kk]g)\s*$`),
	regexp.MustCompile(`(?i)\s+(arroba)\s*$`),
	regexp.MustCompile(`(?i)\s+(kg\s*renda)\s*$`),
	regexp.MustCompile(`(?i)\s+(kg\s*embranco)\s*$`),
	regexp.MustCompile(`(?i)\s+(kg)\s*$`),
	regexp.MustCompile(`(?i)\s+(tonelada)\s*$`),
	regexp.MustCompile(`(?i)\s+(duzia)\s*$`),
	regexp.MustCompile(`(?i)\s+(caixa)\s*$`),
	regexp.MustCompile(`(?i)\s+(litro)\s*$`),
	regexp.MustCompile(`(?i)\s+(un\.?)\s*$`),
}

// NormalizeText remove acentos e converte para maiúsculas
func NormalizeText(text string) string {
	return strings.ToUpper(strings.TrimSpace(utils.RemoveAccents(text)))
}

// DetectCategory classifica um produto pela palavra-chave do nome
func DetectCategory(product string) string {
	productNorm := NormalizeText(product)
	for key, category := range categorias {
		if strings.Contains(productNorm, key) {
			return category
		}
	}
	return "Outros"
}

func isUnit(text string) bool {
	if text == "" {
		return false
	}
	textLower := strings.ToLower(strings.TrimSpace(text))
	return units[textLower] || scUnitPattern.MatchString(textLower)
}

func isTypeVariety(text string) bool {
	if text == "" {
		return false
	}
	textLower := strings.ToLower(strings.TrimSpace(text))
	for _, t := range typesVarieties {
		if strings.Contains(textLower, t) {
			return true
		}
	}
	return false
}

func isInvalidEntry(text string) bool {
	if text == "" {
		return true
	}
	textLower := strings.ToLower(strings.TrimSpace(text))
	if invalidEntries[textLower] {
		return true
	}
	if len([]rune(textLower)) < 3 {
		return true
	}
	if digitsOnlyPattern.MatchString(textLower) {
		return true
	}
	if strings.HasPrefix(textLower, `\`) {
		return true
	}
	if scPrefixPattern.MatchString(textLower) {
		return true
	}
	if barrancoPattern.MatchString(textLower) || barrancoJoined.MatchString(textLower) {
		return true
	}
	if strings.HasPrefix(textLower, "(") {
		return true
	}
	return false
}

// extractUnitFromText separa a unidade do fim do texto do produto (formato novo)
func extractUnitFromText(text string) (string, string) {
	if text == "" {
		return "", ""
	}

	for _, pattern := range unitSuffixPatterns {
		if loc := pattern.FindStringSubmatchIndex(text); loc != nil {
			unit := strings.TrimSpace(text[loc[2]:loc[3]])
			product := strings.TrimSpace(text[:loc[0]])
			return product, unit
		}
	}

	return text, ""
}

// CanonicalUnit devolve a unidade canônica de um produto, ou vazio
func CanonicalUnit(productName string) string {
	if productName == "" {
		return ""
	}

	if unit, ok := productUnits[productName]; ok {
		return unit
	}

	productLower := strings.ToLower(productName)
	for prod, unit := range productUnits {
		if strings.ToLower(prod) == productLower {
			return unit
		}
	}

	// Café depende da forma do produto
	if strings.Contains(productLower, "cafe") || strings.Contains(productLower, "café") {
		if strings.Contains(productLower, "coco") {
			return "kg renda"
		}
		return "sc 60 Kg"
	}

	for _, fb := range unitFallbacks {
		if strings.Contains(productLower, fb.keyword) {
			return fb.unit
		}
	}

	return ""
}

// ParseNumber interpreta um valor numérico no formato brasileiro
// (prefixo R$, ponto de milhar, vírgula decimal). Sentinelas e valores fora
// da faixa (0, 100000] viram ausência de preço.
func ParseNumber(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	switch strings.ToUpper(value) {
	case `\\\`, "SINF", "AUS", "-", "--", "NAN":
		return 0, false
	}

	value = currencyPattern.ReplaceAllString(value, "")
	value = spacePattern.ReplaceAllString(value, "")

	if strings.Contains(value, ",") {
		lastDot := strings.LastIndex(value, ".")
		lastComma := strings.LastIndex(value, ",")
		if lastDot >= 0 && lastDot < lastComma {
			value = strings.ReplaceAll(value, ".", "")
		}
		value = strings.ReplaceAll(value, ",", ".")
	}

	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	if result <= 0 || result > 100000 {
		return 0, false
	}

	return result, true
}

// cleanProductName remove pontuação final e normaliza espaços
func cleanProductName(name string) string {
	name = strings.TrimSpace(name)
	name = trailingPunctuation.ReplaceAllString(name, "")
	name = multiSpacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// NormalizeProductName reduz as variações de escrita de um nome de produto.
// Retorna vazio quando o nome deve ser descartado.
func NormalizeProductName(name string) string {
	name = cleanProductName(name)
	if name == "" {
		return ""
	}

	for _, pattern := range invalidProductPatterns {
		if pattern.MatchString(name) {
			return ""
		}
	}

	for _, rule := range productMap {
		if rule.pattern.MatchString(name) {
			return rule.replacement
		}
	}

	// Sem mapeamento: aplica capitalização padrão e corrige preposições
	name = titleCase(name)
	for _, fix := range titleFixes {
		name = fix.pattern.ReplaceAllString(name, fix.replacement)
	}
	name = strings.ReplaceAll(name, "Erva-Mate", "Erva-mate")

	return strings.TrimSpace(name)
}

// titleCase capitaliza a primeira letra de cada sequência alfabética
func titleCase(s string) string {
	prevLetter := false
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				out = append(out, unicode.ToLower(r))
			} else {
				out = append(out, unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			out = append(out, r)
			prevLetter = false
		}
	}
	return string(out)
}
