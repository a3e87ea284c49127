package config

import "os"

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
}

func Load() Config {
	return Config{
		Port:          envOrDefault("PORT", "8080"),
		MongoURI:      envOrDefault("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: envOrDefault("MONGODB_DATABASE", "club18"),
		RedisAddr:     envOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
