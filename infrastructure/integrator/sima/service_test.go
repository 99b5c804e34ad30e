package sima

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
)

func TestParseDateFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected *time.Time
	}{
		{
			name:     "Data completa no padrão DD-MM-YYYY",
			filename: "05-01-2026-impressao.xlsx",
			expected: datePtr(2026, 1, 5),
		},
		{
			name:     "Data curta no padrão DD-MM-YY",
			filename: "cotacao-12-08-25.xls",
			expected: datePtr(2025, 8, 12),
		},
		{
			name:     "Arquivo sem data",
			filename: "cotacao-diaria.xlsx",
			expected: nil,
		},
		{
			name:     "Data inválida é descartada",
			filename: "31-02-2024-impressao.xlsx",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseDateFromFilename(tt.filename)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, *tt.expected, *result)
		})
	}
}

func TestParseDateFromPage(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected *time.Time
	}{
		{
			name:     "Data no título h1",
			html:     `<html><body><h1>Cotação Diária SIMA 15/03/2024</h1></body></html>`,
			expected: datePtr(2024, 3, 15),
		},
		{
			name:     "Data curta com hífen no título",
			html:     `<html><head><title>SIMA 07-06-24</title></head><body></body></html>`,
			expected: datePtr(2024, 6, 7),
		},
		{
			name:     "Data apenas no corpo da página",
			html:     `<html><body><p>Boletim referente a 02/12/2023</p></body></html>`,
			expected: datePtr(2023, 12, 2),
		},
		{
			name:     "Página sem data",
			html:     `<html><body><p>Sem cotações hoje</p></body></html>`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)

			result := parseDateFromPage(doc)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, *tt.expected, *result)
		})
	}
}

func TestExtractExcelLinks(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		pageURL  string
		expected []string
	}{
		{
			name: "Link absoluto para planilha",
			html: `<html><body>
				<a href="https://cdn.example.gov.br/arquivos/05-01-2026-impressao.xlsx">Baixar</a>
				<a href="/Pagina/outra">Outra página</a>
			</body></html>`,
			pageURL:  "https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3000",
			expected: []string{"https://cdn.example.gov.br/arquivos/05-01-2026-impressao.xlsx"},
		},
		{
			name:     "Link relativo é resolvido contra a página",
			html:     `<html><body><a href="/arquivos/cotacao-12-08-25.xls">Planilha</a></body></html>`,
			pageURL:  "https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3000",
			expected: []string{"https://www.agricultura.pr.gov.br/arquivos/cotacao-12-08-25.xls"},
		},
		{
			name:     "Página sem planilhas",
			html:     `<html><body><a href="/Pagina/inicio">Início</a></body></html>`,
			pageURL:  "https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3000",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)

			links := extractExcelLinks(doc, tt.pageURL)
			assert.Equal(t, tt.expected, links)
		})
	}
}

func TestLatestIDFromLinksFile(t *testing.T) {
	tests := []struct {
		name     string
		content  *string
		expected int
	}{
		{
			name:     "Primeira linha tem o ID mais recente",
			content:  strPtr("https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3102\nhttps://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3101\n"),
			expected: 3102,
		},
		{
			name:     "Arquivo inexistente usa o ID inicial padrão",
			content:  nil,
			expected: 2520,
		},
		{
			name:     "Arquivo sem links SIMA usa o ID inicial padrão",
			content:  strPtr("https://outro.site/pagina\n"),
			expected: 2520,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			linksFile := filepath.Join(dir, "links.txt")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(linksFile, []byte(*tt.content), 0o644))
			}

			integrator := newTestIntegrator(t, dir)
			integrator.cfg.Sima.LinksFile = linksFile

			assert.Equal(t, tt.expected, integrator.latestIDFromLinksFile())
		})
	}
}

func TestUpdateLinksFile(t *testing.T) {
	dir := t.TempDir()
	linksFile := filepath.Join(dir, "links.txt")
	existing := "https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3100\n"
	require.NoError(t, os.WriteFile(linksFile, []byte(existing), 0o644))

	integrator := newTestIntegrator(t, dir)
	integrator.cfg.Sima.LinksFile = linksFile

	newLinks := []string{
		"https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3102",
		"https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3100", // já existe
	}
	require.NoError(t, integrator.updateLinksFile(newLinks))

	content, err := os.ReadFile(linksFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	// Link novo no topo, existente preservado, sem duplicados
	assert.Equal(t, []string{
		"https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3102",
		"https://www.agricultura.pr.gov.br/Pagina/Cotacao-Diaria-SIMA-3100",
	}, lines)
}

func TestLoadStatePadraoQuandoCorrompido(t *testing.T) {
	dir := t.TempDir()
	stateFile := filepath.Join(dir, "scraper_state.json")
	require.NoError(t, os.WriteFile(stateFile, []byte("{corrompido"), 0o644))

	integrator := newTestIntegrator(t, dir)
	integrator.cfg.Sima.StateFile = stateFile

	state := integrator.loadState()
	assert.Equal(t, 2520, state.LastFoundID)
}

type fakeClient struct {
	html      string
	downloads int
}

func (f *fakeClient) FetchPage(ctx context.Context, url string) (string, error) {
	return f.html, nil
}

func (f *fakeClient) DownloadFile(ctx context.Context, url string, targetPath string) (int64, error) {
	f.downloads++
	return 1024, nil
}

func TestScrapePageNaoContaArquivoEmDiscoComoDownload(t *testing.T) {
	dir := t.TempDir()

	client := &fakeClient{
		html: `<html><body><a href="/arquivos/05-01-2026-impressao.xlsx">Baixar</a></body></html>`,
	}

	integrator := newTestIntegrator(t, dir)
	integrator.client = client

	t.Run("Primeira varredura baixa o arquivo", func(t *testing.T) {
		page := integrator.scrapePage(context.Background(), 3000)

		assert.Equal(t, 1, page.Files)
		assert.Equal(t, 1, page.Downloaded)
		assert.Equal(t, 1, client.downloads)
	})

	t.Run("Arquivo já em disco conta como encontrado, não como baixado", func(t *testing.T) {
		dailyDir := filepath.Join(dir, "extracted", "daily")
		require.NoError(t, os.MkdirAll(dailyDir, 0o755))
		target := filepath.Join(dailyDir, "2026-01-05_05-01-2026-impressao.xlsx")
		require.NoError(t, os.WriteFile(target, []byte("planilha"), 0o644))

		client.downloads = 0
		page := integrator.scrapePage(context.Background(), 3000)

		assert.Equal(t, 1, page.Files)
		assert.Equal(t, 0, page.Downloaded)
		assert.Equal(t, 0, client.downloads)
	})
}

func newTestIntegrator(t *testing.T, dir string) *SimaIntegrator {
	t.Helper()

	cfg := &config.Config{}
	cfg.Sima.StartID = 2520
	cfg.Sima.BaseURL = "https://www.agricultura.pr.gov.br"
	cfg.Sima.StateFile = filepath.Join(dir, "scraper_state.json")
	cfg.Sima.LinksFile = filepath.Join(dir, "links.txt")
	cfg.Data.ExtractedDir = filepath.Join(dir, "extracted")

	return New(cfg, nil, nil)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func strPtr(s string) *string {
	return &s
}
