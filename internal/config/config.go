package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App            App            `mapstructure:",squash"`
	Server         Server         `mapstructure:",squash"`
	Database       Database       `mapstructure:",squash"`
	Redis          Redis          `mapstructure:",squash"`
	GA4            GA4            `mapstructure:",squash"`
	RefreshQueue   RefreshQueue   `mapstructure:",squash"`
	RollupWarmSync RollupWarmSync `mapstructure:",squash"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	URL string `mapstructure:"redis_url"`
}

type GA4 struct {
	BaseURL               string `mapstructure:"ga4_base_url"`
	AccessToken           string `mapstructure:"ga4_access_token"`
	RequestTimeoutSeconds int    `mapstructure:"ga4_request_timeout_seconds"`
	RollupTimeoutSeconds  int    `mapstructure:"ga4_rollup_timeout_seconds"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type RefreshQueue struct {
	Workers int `mapstructure:"refresh_queue_workers"`
}

type RollupWarmSync struct {
	CronSchedule        string `mapstructure:"rollup_warm_sync_cron"`
	RequestDelaySeconds int    `mapstructure:"rollup_warm_sync_request_delay_seconds"`
	MaxConcurrentJobs   int    `mapstructure:"rollup_warm_sync_max_concurrent_jobs"`
	Enabled             bool   `mapstructure:"rollup_warm_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/analytics")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")

	viper.SetDefault("GA4_BASE_URL", "https://analyticsdata.googleapis.com")
	viper.SetDefault("GA4_ACCESS_TOKEN", "your_access_token") // ONLY LOCAL
	viper.SetDefault("GA4_REQUEST_TIMEOUT_SECONDS", 60)
	viper.SetDefault("GA4_ROLLUP_TIMEOUT_SECONDS", 300)

	viper.SetDefault("REFRESH_QUEUE_WORKERS", 3)

	// Defaults para o aquecimento de rollups
	viper.SetDefault("ROLLUP_WARM_SYNC_CRON", "0 4 * * *")        // Todos os dias às 4h da manhã
	viper.SetDefault("ROLLUP_WARM_SYNC_REQUEST_DELAY_SECONDS", 2) // 2 segundos entre requisições
	viper.SetDefault("ROLLUP_WARM_SYNC_MAX_CONCURRENT_JOBS", 3)   // 3 jobs concorrentes
	viper.SetDefault("ROLLUP_WARM_SYNC_ENABLED", false)           // Habilitar aquecimento de rollups

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
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

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
