package simaclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPage(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedErr error
		expectBody  bool
	}{
		{
			name:       "Página encontrada retorna o HTML",
			status:     http.StatusOK,
			body:       "<html><h1>Cotação Diária</h1></html>",
			expectBody: true,
		},
		{
			name:        "Página inexistente retorna ErrPageNotFound",
			status:      http.StatusNotFound,
			expectedErr: ErrPageNotFound,
		},
		{
			name:   "Erro do servidor retorna erro genérico",
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// O portal exige cabeçalhos de navegador
				assert.NotEmpty(t, r.Header.Get("User-Agent"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient()
			html, err := client.FetchPage(context.Background(), server.URL)

			if tt.expectBody {
				require.NoError(t, err)
				assert.Equal(t, tt.body, html)
				return
			}

			require.Error(t, err)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}
}

func TestDownloadFile(t *testing.T) {
	t.Run("Download grava o arquivo no destino", func(t *testing.T) {
		payload := []byte("conteudo da planilha")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(payload)
		}))
		defer server.Close()

		target := filepath.Join(t.TempDir(), "2024-03-15_cotacao.xlsx")

		client := NewClient()
		size, err := client.DownloadFile(context.Background(), server.URL, target)
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), size)

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, payload, content)
	})

	t.Run("Falha HTTP não deixa arquivo para trás", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		target := filepath.Join(t.TempDir(), "2024-03-15_cotacao.xlsx")

		client := NewClient()
		_, err := client.DownloadFile(context.Background(), server.URL, target)
		require.Error(t, err)

		_, statErr := os.Stat(target)
		assert.True(t, os.IsNotExist(statErr))
	})
}
