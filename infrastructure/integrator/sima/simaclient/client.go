package simaclient

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ErrPageNotFound indica que a página de cotação não existe (HTTP 404)
var ErrPageNotFound = errors.New("página de cotação não encontrada")

// Cabeçalhos de navegador: o portal recusa requisições sem User-Agent
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
}

type Client interface {
	FetchPage(ctx context.Context, url string) (string, error)
	DownloadFile(ctx context.Context, url string, targetPath string) (int64, error)
}

type SimaClient struct {
	pageClient     *http.Client
	downloadClient *http.Client
}

func NewClient() Client {
	return &SimaClient{
		pageClient:     &http.Client{Timeout: 30 * time.Second},
		downloadClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchPage busca o HTML de uma página de cotação em uma única tentativa
func (c *SimaClient) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "erro ao montar requisição")
	}

	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.pageClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "erro ao buscar %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrPageNotFound
	}

	if resp.StatusCode >= 400 {
		return "", errors.Errorf("status HTTP inesperado %d para %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "erro ao ler resposta de %s", url)
	}

	return string(body), nil
}

// DownloadFile baixa um arquivo em streaming para o caminho de destino.
// Em caso de falha o arquivo parcial é removido.
func (c *SimaClient) DownloadFile(ctx context.Context, url string, targetPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "erro ao montar requisição")
	}

	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "erro ao baixar %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, errors.Errorf("status HTTP inesperado %d para %s", resp.StatusCode, url)
	}

	out, err := os.Create(targetPath)
	if err != nil {
		return 0, errors.Wrapf(err, "erro ao criar arquivo %s", targetPath)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(targetPath)
		return 0, errors.Wrapf(err, "erro ao gravar arquivo %s", targetPath)
	}

	return written, nil
}
