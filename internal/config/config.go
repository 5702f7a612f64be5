package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// RedisURL points at the shared session store.
	RedisURL string

	// OrderIntakeURL is the external order-intake webhook. Empty disables
	// outbound notifications.
	OrderIntakeURL string

	// RestaurantID identifies this restaurant in outbound payloads.
	RestaurantID string

	// RabbitMQURL enables the OrderCreated event publisher when set.
	RabbitMQURL string

	// MenuPath overrides the embedded menu when set.
	MenuPath string
}

// Load reads configuration from the environment, after best-effort loading
// a local .env file. Every value has a development default except the
// integrations that are off by default.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getenv("PORT", "8080"),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
		OrderIntakeURL: getenv("ORDER_INTAKE_URL", ""),
		RestaurantID:   getenv("RESTAURANT_ID", "todoEmpanadas1"),
		RabbitMQURL:    getenv("RABBITMQ_URL", ""),
		MenuPath:       getenv("MENU_PATH", ""),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
