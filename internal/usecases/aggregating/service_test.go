package aggregating

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/repository/mocks"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/observability"
)

func TestGenerateArtifacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Data.JSONDir = filepath.Join(dir, "json")

	repo := mocks.NewMockCotacaoRepository(ctrl)
	repo.EXPECT().ListCotacoes(gomock.Any(), domain.CotacaoFilter{}).Return([]domain.Cotacao{
		{Data: "2024-03-15", Ano: 2024, Mes: 3, Produto: "Soja", Categoria: "Graos", Unidade: "sc 60 Kg", PrecoMedio: 120, PrecoMinimo: 115, PrecoMaximo: 125},
		{Data: "2024-03-16", Ano: 2024, Mes: 3, Produto: "Soja", Categoria: "Graos", Unidade: "sc 60 Kg", PrecoMedio: 121, PrecoMinimo: 116, PrecoMaximo: 126},
		{Data: "2024-04-01", Ano: 2024, Mes: 4, Produto: "Boi em pé", Categoria: "Pecuaria", Unidade: "arroba", PrecoMedio: 250},
	}, nil)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC))
	service := NewService(cfg, repo, clock, observability.NewMetricsForTesting())

	written, err := service.GenerateArtifacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, written)

	for _, name := range []string{
		ArtifactAggregated, ArtifactDetailed, ArtifactTimeSeries, ArtifactFilters,
		ArtifactDailySeries, ArtifactVolatility, ArtifactRegionalSpread,
	} {
		data, err := os.ReadFile(filepath.Join(cfg.Data.JSONDir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	var agg AggregatedArtifact
	data, err := os.ReadFile(filepath.Join(cfg.Data.JSONDir, ArtifactAggregated))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &agg))

	assert.Equal(t, 3, agg.Metadata.TotalRecords)
	assert.Equal(t, "2026-08-30T08:00:00Z", agg.Metadata.GeneratedAt)
}

func TestGenerateArtifactsSemRegistros(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &config.Config{}
	cfg.Data.JSONDir = filepath.Join(t.TempDir(), "json")

	repo := mocks.NewMockCotacaoRepository(ctrl)
	repo.EXPECT().ListCotacoes(gomock.Any(), domain.CotacaoFilter{}).Return(nil, nil)

	service := NewService(cfg, repo, nil, observability.NewMetricsForTesting())

	written, err := service.GenerateArtifacts(context.Background())
	assert.Error(t, err)
	assert.Zero(t, written)
}
