package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveAccents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Remove acentos de produto",
			input:    "FEIJÃO CARIOCA",
			expected: "FEIJAO CARIOCA",
		},
		{
			name:     "Cedilha vira c",
			input:    "Maçã Fuji",
			expected: "Maca Fuji",
		},
		{
			name:     "String sem acentos permanece igual",
			input:    "SOJA EM GRAOS",
			expected: "SOJA EM GRAOS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemoveAccents(tt.input))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Produto com acento e parênteses",
			input:    "Abacaxi Havaí (unid.)",
			expected: "abacaxi-havai-unid",
		},
		{
			name:     "Nome em maiúsculas com espaços",
			input:    "MILHO AMARELO TIPO 1",
			expected: "milho-amarelo-tipo-1",
		},
		{
			name:     "Barra e múltiplos separadores",
			input:    "Café Beneficiado / Bica Corrida",
			expected: "cafe-beneficiado-bica-corrida",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
