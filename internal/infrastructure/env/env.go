package env

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"element-locator/internal/application/port/output"
	"element-locator/internal/domain/entity"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

const (
	KeyDefaultTimeout = "LOCATOR_DEFAULT_TIMEOUT"
	KeyRelaxedLocate  = "LOCATOR_RELAXED_LOCATE"
	KeyPollInterval   = "LOCATOR_POLL_INTERVAL_MS"
	KeyHeadless       = "BROWSER_HEADLESS"
	KeyBrowserTimeout = "BROWSER_TIMEOUT"
	KeyLogLevel       = "LOG_LEVEL"
	KeyLogDir         = "LOG_DIR"
)

type EnvService struct{}

func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Info: no .env file found, using process environment")
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", envFile, err)
	}

	return &EnvService{}
}

// NewEnvServiceFrom loads only the given files, later ones overriding
// earlier ones. Missing files are an error.
func NewEnvServiceFrom(files ...string) (*EnvService, error) {
	if len(files) == 0 {
		return &EnvService{}, nil
	}
	if err := godotenv.Overload(files...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	return &EnvService{}, nil
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("ENV %s is missing", key)
	}
	return val
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDuration reads a number of units, fractions allowed ("1.5" seconds).
// Go duration strings such as "250ms" are accepted too.
func (e *EnvService) GetDuration(key string, unit time.Duration, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	if parsed, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(parsed * float64(unit))
	}
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	return defaultValue
}

// LoadLocateConfig assembles the locate settings from cfg.
func LoadLocateConfig(cfg output.ConfigPort) entity.LocateConfig {
	def := entity.DefaultLocateConfig()
	return entity.LocateConfig{
		DefaultTimeout: cfg.GetDuration(KeyDefaultTimeout, time.Second, def.DefaultTimeout),
		RelaxedLocate:  cfg.GetBool(KeyRelaxedLocate, def.RelaxedLocate),
		PollInterval:   cfg.GetDuration(KeyPollInterval, time.Millisecond, def.PollInterval),
	}
}
