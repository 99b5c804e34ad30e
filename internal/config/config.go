package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Data         Data         `mapstructure:",squash"`
	Sima         Sima         `mapstructure:",squash"`
	Forecast     Forecast     `mapstructure:",squash"`
	PipelineSync PipelineSync `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	SecretKey    string       `mapstructure:"secret_key"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	Path string `mapstructure:"database_path"`
}

// Data define a árvore de diretórios de dados do pipeline
type Data struct {
	BaseDir      string `mapstructure:"data_dir"`
	ExtractedDir string `mapstructure:"data_extracted_dir"`
	ProcessedDir string `mapstructure:"data_processed_dir"`
	JSONDir      string `mapstructure:"data_json_dir"`
}

type Sima struct {
	BaseURL             string `mapstructure:"sima_base_url"`
	StartID             int    `mapstructure:"sima_start_id"`
	MaxForwardScan      int    `mapstructure:"sima_max_forward_scan"`
	MaxForwardBackfill  int    `mapstructure:"sima_max_forward_backfill"`
	MaxConsecutiveFails int    `mapstructure:"sima_max_consecutive_fails"`
	BackfillFails       int    `mapstructure:"sima_backfill_fails"`
	RequestDelaySeconds int    `mapstructure:"sima_request_delay_seconds"`
	StateFile           string `mapstructure:"sima_state_file"`
	LinksFile           string `mapstructure:"sima_links_file"`
}

type Forecast struct {
	MinMonths     int `mapstructure:"forecast_min_months"`
	HorizonMonths int `mapstructure:"forecast_horizon_months"`
	HistoryMonths int `mapstructure:"forecast_history_months"`
}

type PipelineSync struct {
	CronSchedule string `mapstructure:"pipeline_sync_cron"`
	Timezone     string `mapstructure:"pipeline_sync_timezone"`
	Enabled      bool   `mapstructure:"pipeline_sync_enabled"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_PATH", "data/cotacoes.db")

	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("DATA_EXTRACTED_DIR", "data/extracted")
	viper.SetDefault("DATA_PROCESSED_DIR", "data/processed")
	viper.SetDefault("DATA_JSON_DIR", "data/json")

	viper.SetDefault("SIMA_BASE_URL", "https://www.agricultura.pr.gov.br")
	viper.SetDefault("SIMA_START_ID", 2520)             // Primeiro boletim conhecido
	viper.SetDefault("SIMA_MAX_FORWARD_SCAN", 500)      // Limite de páginas por varredura
	viper.SetDefault("SIMA_MAX_FORWARD_BACKFILL", 1500) // Limite de páginas em backfill
	viper.SetDefault("SIMA_MAX_CONSECUTIVE_FAILS", 15)  // Falhas seguidas antes de parar
	viper.SetDefault("SIMA_BACKFILL_FAILS", 30)         // Falhas seguidas em backfill
	viper.SetDefault("SIMA_REQUEST_DELAY_SECONDS", 1)   // 1 segundo entre requisições
	viper.SetDefault("SIMA_STATE_FILE", "data/scraper_state.json")
	viper.SetDefault("SIMA_LINKS_FILE", "links.txt")

	viper.SetDefault("FORECAST_MIN_MONTHS", 6)      // Meses mínimos de histórico por produto
	viper.SetDefault("FORECAST_HORIZON_MONTHS", 12) // Meses projetados
	viper.SetDefault("FORECAST_HISTORY_MONTHS", 24) // Janela de histórico usada pelos modelos

	viper.SetDefault("PIPELINE_SYNC_CRON", "0 8 * * *") // Todos os dias às 8h da manhã
	viper.SetDefault("PIPELINE_SYNC_TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("PIPELINE_SYNC_ENABLED", false)

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if cwd, err := os.Getwd(); err == nil {
		resolvePaths(config, cwd)
	}

	return config, nil
}

// resolvePaths ancora os caminhos relativos em baseDir. O servidor e a CLI do
// pipeline precisam enxergar a mesma árvore de dados e o mesmo banco
// independentemente de qual binário resolveu a configuração.
func resolvePaths(config *Config, baseDir string) {
	paths := []*string{
		&config.Database.Path,
		&config.Data.BaseDir,
		&config.Data.ExtractedDir,
		&config.Data.ProcessedDir,
		&config.Data.JSONDir,
		&config.Sima.StateFile,
		&config.Sima.LinksFile,
	}

	for _, p := range paths {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
