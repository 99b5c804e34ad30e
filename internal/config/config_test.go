package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePaths(t *testing.T) {
	config := &Config{}
	config.Database.Path = "data/cotacoes.db"
	config.Data.BaseDir = "data"
	config.Data.ExtractedDir = "data/extracted"
	config.Data.ProcessedDir = "data/processed"
	config.Data.JSONDir = "data/json"
	config.Sima.StateFile = "data/scraper_state.json"
	config.Sima.LinksFile = "links.txt"

	resolvePaths(config, "/srv/sima")

	// Caminhos relativos são ancorados no mesmo diretório base,
	// o servidor e a CLI compartilham a mesma árvore de dados
	assert.Equal(t, filepath.Join("/srv/sima", "data/cotacoes.db"), config.Database.Path)
	assert.Equal(t, filepath.Join("/srv/sima", "data"), config.Data.BaseDir)
	assert.Equal(t, filepath.Join("/srv/sima", "data/extracted"), config.Data.ExtractedDir)
	assert.Equal(t, filepath.Join("/srv/sima", "data/processed"), config.Data.ProcessedDir)
	assert.Equal(t, filepath.Join("/srv/sima", "data/json"), config.Data.JSONDir)
	assert.Equal(t, filepath.Join("/srv/sima", "data/scraper_state.json"), config.Sima.StateFile)
	assert.Equal(t, filepath.Join("/srv/sima", "links.txt"), config.Sima.LinksFile)
}

func TestResolvePathsPreservaAbsolutosEVazios(t *testing.T) {
	config := &Config{}
	config.Database.Path = "/var/lib/sima/cotacoes.db"
	config.Data.JSONDir = ""

	resolvePaths(config, "/srv/sima")

	assert.Equal(t, "/var/lib/sima/cotacoes.db", config.Database.Path)
	assert.Equal(t, "", config.Data.JSONDir)
}
