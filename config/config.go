package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	Env        string
	LogLevel   string

	StoreDriver string
	MysqlDSN    string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SearchPageSize      int
	FriendRequestLimit  int
	FriendRequestWindow time.Duration

	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	return &Config{
		ServerAddr:          ":" + getEnv("PORT", "8080"),
		Env:                 getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		StoreDriver:         getEnv("STORE_DRIVER", "mysql"),
		MysqlDSN:            getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/friendgraph?charset=utf8mb4&parseTime=True&loc=UTC"),
		JWTSecret:           getEnv("JWT_SECRET", "friendgraph-secret-key-change-in-production"),
		AccessTokenTTL:      getDuration("ACCESS_TOKEN_TTL", 5*time.Minute),
		RefreshTokenTTL:     getDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
		SearchPageSize:      getInt("SEARCH_PAGE_SIZE", 10),
		FriendRequestLimit:  getInt("FRIEND_REQUEST_LIMIT", 3),
		FriendRequestWindow: getDuration("FRIEND_REQUEST_WINDOW", time.Minute),
		CORSAllowedOrigins:  getList("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
