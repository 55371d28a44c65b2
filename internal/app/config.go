package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr     string
	PostgresDSN  string
	KafkaBrokers []string
}

// DefaultConfig возвращает базовые настройки: HTTP на :8080,
// in-memory хранилище и лог вместо брокера уведомлений.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":8080",
	}
}

// ReadConfig собирает конфигурацию из переменных окружения.
// .env подхватывается для локальной разработки, его отсутствие не ошибка.
func ReadConfig() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if addr := strings.TrimSpace(os.Getenv("ESTORE_HTTP_ADDR")); addr != "" {
		cfg.HTTPAddr = addr
	}
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("ESTORE_POSTGRES_DSN"))
	cfg.KafkaBrokers = splitBrokers(os.Getenv("ESTORE_KAFKA_BROKERS"))

	return cfg
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		broker = strings.TrimSpace(broker)
		if broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
