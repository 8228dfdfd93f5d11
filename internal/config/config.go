package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App            App            `mapstructure:",squash"`
	Server         Server         `mapstructure:",squash"`
	Database       Database       `mapstructure:",squash"`
	Import         Import         `mapstructure:",squash"`
	InboxSync      InboxSync      `mapstructure:",squash"`
	StagingCleanup StagingCleanup `mapstructure:",squash"`
}

type App struct {
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Database struct {
	DSN          string `mapstructure:"-"`
	Driver       string `mapstructure:"database_driver"`
	Password     string `mapstructure:"database_password"`
	URL          string `mapstructure:"database_url"`
	User         string `mapstructure:"database_user"`
	MaxOpenConns int    `mapstructure:"database_max_open_conns"`
	MaxIdleConns int    `mapstructure:"database_max_idle_conns"`
}

// Import reúne as opções de leitura das exportações
type Import struct {
	SheetNames    []string `mapstructure:"import_sheet_names"`
	TitlePhrases  []string `mapstructure:"import_title_phrases"`
	DefaultSource string   `mapstructure:"import_default_source"`
	MaxUploadMB   int64    `mapstructure:"import_max_upload_mb"`
	InboxDir      string   `mapstructure:"import_inbox_dir"`
	ProcessedDir  string   `mapstructure:"import_processed_dir"`
	FailedDir     string   `mapstructure:"import_failed_dir"`
}

type InboxSync struct {
	CronSchedule string `mapstructure:"inbox_sync_cron"`
	Enabled      bool   `mapstructure:"inbox_sync_enabled"`
}

type StagingCleanup struct {
	CronSchedule string        `mapstructure:"staging_cleanup_cron"`
	MaxAgeHours  int           `mapstructure:"staging_cleanup_max_age_hours"`
	Enabled      bool          `mapstructure:"staging_cleanup_enabled"`
	MaxAge       time.Duration `mapstructure:"-"`
}

func SetDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("LOG_FILE", "")

	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ad_reports?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)

	// Abas e títulos conhecidos das exportações do gerenciador de anúncios
	viper.SetDefault("IMPORT_SHEET_NAMES", "Raw Data Report,Informe de datos sin procesar,Relatório de dados brutos")
	viper.SetDefault("IMPORT_TITLE_PHRASES", "raw data report,informe de datos sin procesar,relatorio de dados brutos,informe de anuncios")
	viper.SetDefault("IMPORT_DEFAULT_SOURCE", "upload")
	viper.SetDefault("IMPORT_MAX_UPLOAD_MB", 20)
	viper.SetDefault("IMPORT_INBOX_DIR", "./data/inbox")
	viper.SetDefault("IMPORT_PROCESSED_DIR", "./data/processed")
	viper.SetDefault("IMPORT_FAILED_DIR", "./data/failed")

	viper.SetDefault("INBOX_SYNC_CRON", "*/15 * * * *") // A cada 15 minutos
	viper.SetDefault("INBOX_SYNC_ENABLED", false)

	viper.SetDefault("STAGING_CLEANUP_CRON", "0 4 * * *") // Todos os dias às 4h da manhã
	viper.SetDefault("STAGING_CLEANUP_MAX_AGE_HOURS", 24)
	viper.SetDefault("STAGING_CLEANUP_ENABLED", true)
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(config, viper.DecodeHook(
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

	config.StagingCleanup.MaxAge = time.Duration(config.StagingCleanup.MaxAgeHours) * time.Hour

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando variáveis de ambiente")
}
