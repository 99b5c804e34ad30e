package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{
			name:     "Formato brasileiro com milhar e decimal",
			input:    "1.234,56",
			expected: 1234.56,
			ok:       true,
		},
		{
			name:     "Prefixo R$ é removido",
			input:    "R$ 85,40",
			expected: 85.40,
			ok:       true,
		},
		{
			name:     "Decimal com ponto é aceito",
			input:    "123.45",
			expected: 123.45,
			ok:       true,
		},
		{
			name:  "Sentinela SINF vira ausência",
			input: "SINF",
		},
		{
			name:  "Sentinela AUS vira ausência",
			input: "aus",
		},
		{
			name:  "Sentinela de barras vira ausência",
			input: `\\\`,
		},
		{
			name:  "Traço vira ausência",
			input: "-",
		},
		{
			name:  "Zero é descartado",
			input: "0",
		},
		{
			name:  "Valor acima do teto é descartado",
			input: "150000",
		},
		{
			name:  "Texto não numérico",
			input: "sem cotação",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, result, 0.001)
			}
		})
	}
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name     string
		product  string
		expected string
	}{
		{
			name:     "Soja é grão",
			product:  "Soja industrial tipo 1",
			expected: "Graos",
		},
		{
			name:     "Feijão com acento é grão",
			product:  "Feijão preto tipo 1",
			expected: "Graos",
		},
		{
			name:     "Boi é pecuária",
			product:  "Boi em pé",
			expected: "Pecuaria",
		},
		{
			name:     "Erva-mate é florestal",
			product:  "Erva-mate folha em barranco",
			expected: "Florestal",
		},
		{
			name:     "Mandioca é hortaliça",
			product:  "Mandioca industrial",
			expected: "Hortalicas",
		},
		{
			name:     "Produto desconhecido cai em Outros",
			product:  "Produto misterioso",
			expected: "Outros",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectCategory(tt.product))
		})
	}
}

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Soja sozinha vira o nome canônico",
			input:    "SOJA",
			expected: "Soja industrial tipo 1",
		},
		{
			name:     "Variação de suíno com acento quebrado",
			input:    "Su�no em p� tipo carne",
			expected: "Suíno em pé tipo carne",
		},
		{
			name:     "Café beneficiado com o typo da fonte",
			input:    "Cafe beneficado bebida dura",
			expected: "Café beneficiado bebida dura tipo 6",
		},
		{
			name:     "Erva-mate folha em barranco",
			input:    "erva mate folha em barranco",
			expected: "Erva-mate folha em barranco",
		},
		{
			name:     "Fragmento de unidade é descartado",
			input:    "sc 60 Kg",
			expected: "",
		},
		{
			name:     "Só o tipo é descartado",
			input:    "tipo 2",
			expected: "",
		},
		{
			name:     "Combinação impossível é descartada",
			input:    "vaca bebida dura",
			expected: "",
		},
		{
			name:     "Nome fora do mapa ganha capitalização padrão",
			input:    "ALFACE CRESPA DE CAMPO",
			expected: "Alface Crespa de Campo",
		},
		{
			name:     "Pontuação final é removida",
			input:    "Tomate salada, ",
			expected: "Tomate Salada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeProductName(tt.input))
		})
	}
}

func TestExtractUnitFromText(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expectedProduct string
		expectedUnit    string
	}{
		{
			name:            "Saca de 60 kg no fim do texto",
			input:           "Soja industrial tipo 1    sc 60 Kg",
			expectedProduct: "Soja industrial tipo 1",
			expectedUnit:    "sc 60 Kg",
		},
		{
			name:            "Arroba no fim do texto",
			input:           "Boi em pé arroba",
			expectedProduct: "Boi em pé",
			expectedUnit:    "arroba",
		},
		{
			name:            "Kg renda",
			input:           "Café em coco kg renda",
			expectedProduct: "Café em coco",
			expectedUnit:    "kg renda",
		},
		{
			name:            "Sem unidade no texto",
			input:           "Feijão preto",
			expectedProduct: "Feijão preto",
			expectedUnit:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, unit := extractUnitFromText(tt.input)
			assert.Equal(t, tt.expectedProduct, product)
			assert.Equal(t, tt.expectedUnit, unit)
		})
	}
}

func TestCanonicalUnit(t *testing.T) {
	tests := []struct {
		name     string
		product  string
		expected string
	}{
		{
			name:     "Produto na tabela canônica",
			product:  "Soja industrial tipo 1",
			expected: "sc 60 Kg",
		},
		{
			name:     "Café em coco usa kg renda",
			product:  "Café em coco",
			expected: "kg renda",
		},
		{
			name:     "Café beneficiado usa saca",
			product:  "Café beneficiado bebida dura tipo 6",
			expected: "sc 60 Kg",
		},
		{
			name:     "Fallback por palavra-chave",
			product:  "Mandioca de mesa",
			expected: "tonelada",
		},
		{
			name:     "Produto sem unidade conhecida",
			product:  "Alface Crespa",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalUnit(tt.product))
		})
	}
}
