// Package domain contém as estruturas de dados do domínio da aplicação
package domain

// Cotacao é um registro diário de preço por produto extraído dos boletins SIMA
type Cotacao struct {
	ID          int     `json:"id"`
	Data        string  `json:"data"` // Formato yyyy-mm-dd
	Ano         int     `json:"ano"`
	Mes         int     `json:"mes"`
	Dia         int     `json:"dia"`
	Produto     string  `json:"produto"`
	Variedade   string  `json:"variedade,omitempty"`
	Unidade     string  `json:"unidade"`
	Categoria   string  `json:"categoria"`
	PrecoMedio  float64 `json:"preco_medio"`
	PrecoMinimo float64 `json:"preco_minimo"`
	PrecoMaximo float64 `json:"preco_maximo"`
	NumCotacoes int     `json:"num_cotacoes"` // Quantidade de praças com preço na linha
	Arquivo     string  `json:"arquivo"`      // Planilha de origem
}

// CotacaoFilter restringe listagens do repositório de cotações
type CotacaoFilter struct {
	Produto   *string
	Categoria *string
	AnoInicio *int
	AnoFim    *int
}

// SerieMensal é o ponto mensal agregado usado pelos modelos de previsão
type SerieMensal struct {
	Periodo    string  `json:"periodo"` // Formato yyyy-mm
	PrecoMedio float64 `json:"preco_medio"`
	Registros  int     `json:"registros"`
}
