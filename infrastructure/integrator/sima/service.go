package sima

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	jsoniter "github.com/json-iterator/go"

	simadomain "github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima/domain"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima/simaclient"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const cotacaoPagePath = "/Pagina/Cotacao-Diaria-SIMA-"

var (
	simaIDPattern       = regexp.MustCompile(`(?i)SIMA-(\d+)`)
	dateFullPattern     = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`)
	dateShortPattern    = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{2})`)
	pageDateFullPattern = regexp.MustCompile(`(\d{2})[/\-](\d{2})[/\-](\d{4})`)
	pageDateAnyPattern  = regexp.MustCompile(`(\d{2})[/\-](\d{2})[/\-](\d{2,4})`)
)

type Integrator interface {
	Scan(ctx context.Context, backfill bool) (*simadomain.ScanResult, error)
}

type SimaIntegrator struct {
	cfg    *config.Config
	client simaclient.Client
	clock  clockwork.Clock
}

func New(cfg *config.Config, client simaclient.Client, clock clockwork.Clock) *SimaIntegrator {
	return &SimaIntegrator{
		cfg:    cfg,
		client: client,
		clock:  clock,
	}
}

func (s *SimaIntegrator) pageURL(cotacaoID int) string {
	return fmt.Sprintf("%s%s%d", s.cfg.Sima.BaseURL, cotacaoPagePath, cotacaoID)
}

// Scan descobre novas páginas de cotação a partir do último ID conhecido e
// baixa as planilhas encontradas para data/extracted/daily/
func (s *SimaIntegrator) Scan(ctx context.Context, backfill bool) (*simadomain.ScanResult, error) {
	logrus.Info("sima: iniciando descoberta de páginas e download de planilhas")

	linksID := s.latestIDFromLinksFile()
	state := s.loadState()

	startID := state.LastFoundID
	if linksID > startID {
		startID = linksID
	}

	maxScan := s.cfg.Sima.MaxForwardScan
	maxFailures := s.cfg.Sima.MaxConsecutiveFails
	if backfill {
		maxScan = s.cfg.Sima.MaxForwardBackfill
		maxFailures = s.cfg.Sima.BackfillFails
	}

	logrus.WithFields(logrus.Fields{
		"start_id": startID,
		"links_id": linksID,
		"state_id": state.LastFoundID,
		"max_scan": maxScan,
	}).Info("sima: varredura iniciada")

	result := &simadomain.ScanResult{
		StartID:        startID,
		HighestFoundID: startID,
	}

	consecutiveFailures := 0

scan:
	for offset := 0; offset < maxScan; offset++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		cotacaoID := startID + offset
		page := s.scrapePage(ctx, cotacaoID)
		result.PagesChecked++

		switch {
		case page.Files > 0:
			result.NewLinks = append(result.NewLinks, page.URL)
			if cotacaoID > result.HighestFoundID {
				result.HighestFoundID = cotacaoID
			}
			consecutiveFailures = 0
			result.FilesDownloaded += page.Downloaded
			logrus.WithFields(logrus.Fields{
				"cotacao_id": cotacaoID,
				"arquivos":   page.Files,
				"baixados":   page.Downloaded,
				"data":       page.Date,
			}).Info("sima: planilhas encontradas")
		case page.Date != nil:
			// Página existe sem planilha; ainda conta como encontrada
			result.NewLinks = append(result.NewLinks, page.URL)
			if cotacaoID > result.HighestFoundID {
				result.HighestFoundID = cotacaoID
			}
			consecutiveFailures = 0
		default:
			consecutiveFailures++
			if consecutiveFailures >= maxFailures {
				logrus.WithFields(logrus.Fields{
					"cotacao_id": cotacaoID,
					"falhas":     maxFailures,
				}).Info("sima: varredura encerrada após falhas consecutivas")
				break scan
			}
		}

		// Intervalo educado entre requisições
		s.clock.Sleep(time.Duration(s.cfg.Sima.RequestDelaySeconds) * time.Second)
	}

	state.LastFoundID = result.HighestFoundID
	state.LastRun = s.clock.Now().Format(time.RFC3339)
	if err := s.saveState(state); err != nil {
		logrus.WithError(err).Warn("sima: erro ao salvar estado da varredura")
	}

	if len(result.NewLinks) > 0 {
		if err := s.updateLinksFile(result.NewLinks); err != nil {
			logrus.WithError(err).Warn("sima: erro ao atualizar arquivo de links")
		}
	}

	logrus.WithFields(logrus.Fields{
		"arquivos_baixados": result.FilesDownloaded,
		"maior_id":          result.HighestFoundID,
	}).Info("sima: varredura concluída")

	return result, nil
}

// scrapePage raspa uma única página de cotação e baixa suas planilhas
func (s *SimaIntegrator) scrapePage(ctx context.Context, cotacaoID int) simadomain.PageResult {
	pageURL := s.pageURL(cotacaoID)
	result := simadomain.PageResult{ID: cotacaoID, URL: pageURL}

	html, err := s.client.FetchPage(ctx, pageURL)
	if err != nil {
		if !errors.Is(err, simaclient.ErrPageNotFound) {
			logrus.WithError(err).WithField("cotacao_id", cotacaoID).Warn("sima: erro ao buscar página")
		}
		return result
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logrus.WithError(err).WithField("cotacao_id", cotacaoID).Warn("sima: erro ao interpretar HTML")
		return result
	}

	excelLinks := extractExcelLinks(doc, pageURL)
	if len(excelLinks) == 0 {
		result.Date = parseDateFromPage(doc)
		logrus.WithFields(logrus.Fields{
			"cotacao_id": cotacaoID,
			"data":       result.Date,
		}).Info("sima: página existe mas não tem planilhas")
		return result
	}

	// Data pelo nome do arquivo primeiro, depois pelo conteúdo da página
	for _, link := range excelLinks {
		if date := parseDateFromFilename(fileNameFromURL(link)); date != nil {
			result.Date = date
			break
		}
	}
	if result.Date == nil {
		result.Date = parseDateFromPage(doc)
	}

	if result.Date == nil {
		logrus.WithField("cotacao_id", cotacaoID).Warn("sima: não foi possível determinar a data da página")
		return result
	}

	datePrefix := result.Date.Format("2006-01-02")
	dailyDir := filepath.Join(s.cfg.Data.ExtractedDir, "daily")
	if err := os.MkdirAll(dailyDir, 0o755); err != nil {
		logrus.WithError(err).Warn("sima: erro ao criar diretório de downloads")
		return result
	}

	for _, link := range excelLinks {
		targetName := fmt.Sprintf("%s_%s", datePrefix, fileNameFromURL(link))
		targetPath := filepath.Join(dailyDir, targetName)

		if _, err := os.Stat(targetPath); err == nil {
			logrus.WithField("arquivo", targetName).Info("sima: arquivo já baixado, pulando")
			result.Files++
			continue
		}

		size, err := s.client.DownloadFile(ctx, link, targetPath)
		if err != nil {
			logrus.WithError(err).WithField("arquivo", targetName).Warn("sima: falha no download")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"arquivo":  targetName,
			"bytes_kb": float64(size) / 1024,
		}).Info("sima: download concluído")
		result.Files++
		result.Downloaded++
	}

	return result
}

// latestIDFromLinksFile devolve o ID da primeira linha do links.txt; os links
// novos são gravados no topo, então a primeira ocorrência é a mais recente
func (s *SimaIntegrator) latestIDFromLinksFile() int {
	content, err := os.ReadFile(s.cfg.Sima.LinksFile)
	if err != nil {
		return s.cfg.Sima.StartID
	}

	for _, line := range strings.Split(string(content), "\n") {
		if match := simaIDPattern.FindStringSubmatch(line); match != nil {
			id, err := strconv.Atoi(match[1])
			if err == nil {
				return id
			}
		}
	}

	return s.cfg.Sima.StartID
}

func (s *SimaIntegrator) loadState() simadomain.ScanState {
	state := simadomain.ScanState{LastFoundID: s.cfg.Sima.StartID}

	content, err := os.ReadFile(s.cfg.Sima.StateFile)
	if err != nil {
		return state
	}

	if err := json.Unmarshal(content, &state); err != nil {
		logrus.WithError(err).Warn("sima: estado da varredura corrompido, usando padrão")
		return simadomain.ScanState{LastFoundID: s.cfg.Sima.StartID}
	}

	if state.LastFoundID == 0 {
		state.LastFoundID = s.cfg.Sima.StartID
	}

	return state
}

func (s *SimaIntegrator) saveState(state simadomain.ScanState) error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.Sima.StateFile), 0o755); err != nil {
		return err
	}

	content, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.cfg.Sima.StateFile, content, 0o644)
}

// updateLinksFile adiciona os links novos no topo do arquivo, sem duplicar
func (s *SimaIntegrator) updateLinksFile(newLinks []string) error {
	existing := map[string]bool{}
	var existingOrdered []string

	if content, err := os.ReadFile(s.cfg.Sima.LinksFile); err == nil {
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !existing[line] {
				existing[line] = true
				existingOrdered = append(existingOrdered, line)
			}
		}
	}

	var newUnique []string
	for _, link := range newLinks {
		if !existing[link] {
			newUnique = append(newUnique, link)
		}
	}

	if len(newUnique) == 0 {
		return nil
	}

	all := append(newUnique, existingOrdered...)
	content := strings.Join(all, "\n") + "\n"

	if err := os.WriteFile(s.cfg.Sima.LinksFile, []byte(content), 0o644); err != nil {
		return err
	}

	logrus.WithField("novos_links", len(newUnique)).Info("sima: arquivo de links atualizado")
	return nil
}

func fileNameFromURL(rawURL string) string {
	trimmed := rawURL
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return path.Base(trimmed)
}

// extractExcelLinks acha os links de planilha da página, resolvendo URLs relativas
func extractExcelLinks(doc *goquery.Document, pageURL string) []string {
	base, _ := url.Parse(pageURL)

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		lower := strings.ToLower(href)
		if !strings.Contains(lower, ".xls") && !strings.Contains(lower, ".xlsx") && !strings.Contains(lower, ".xlsm") {
			return
		}

		if strings.HasPrefix(href, "http") {
			links = append(links, href)
			return
		}

		if base != nil {
			if resolved, err := base.Parse(href); err == nil {
				links = append(links, resolved.String())
			}
		}
	})

	return links
}

// parseDateFromFilename extrai a data de nomes como "05-01-2026-impressao.xlsx"
func parseDateFromFilename(filename string) *time.Time {
	if match := dateFullPattern.FindStringSubmatch(filename); match != nil {
		if date := buildDate(match[3], match[2], match[1]); date != nil {
			return date
		}
	}

	if match := dateShortPattern.FindStringSubmatch(filename); match != nil {
		if date := buildDate(match[3], match[2], match[1]); date != nil {
			return date
		}
	}

	return nil
}

// parseDateFromPage extrai a data do título ou do começo do conteúdo da página
func parseDateFromPage(doc *goquery.Document) *time.Time {
	title := doc.Find("h1").First().Text()
	if title == "" {
		title = doc.Find("title").First().Text()
	}

	if title != "" {
		if match := pageDateFullPattern.FindStringSubmatch(title); match != nil {
			if date := buildDate(match[3], match[2], match[1]); date != nil {
				return date
			}
		}
		if match := pageDateAnyPattern.FindStringSubmatch(title); match != nil {
			if date := buildDate(match[3], match[2], match[1]); date != nil {
				return date
			}
		}
	}

	content := doc.Text()
	if len(content) > 2000 {
		content = content[:2000]
	}
	if match := pageDateFullPattern.FindStringSubmatch(content); match != nil {
		if date := buildDate(match[3], match[2], match[1]); date != nil {
			return date
		}
	}

	return nil
}

func buildDate(yearStr, monthStr, dayStr string) *time.Time {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)

	if year < 100 {
		year += 2000
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normaliza dias inválidos (31/02 vira 02/03); rejeita nesses casos
	if date.Day() != day || int(date.Month()) != month {
		return nil
	}

	return &date
}
