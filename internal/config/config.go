package config

import (
	"os"
	"strings"
)

type Config struct {
	ClinicAPIURL       string
	Port               string
	RedisAddress       string
	RedisPassword      string
	RabbitMQURL        string
	DecisionQueueName  string
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
}

func Load() *Config {
	apiURL := os.Getenv("CLINIC_API_URL")
	if apiURL == "" {
		panic("CLINIC_API_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	queueName := os.Getenv("DECISION_QUEUE_NAME")
	if queueName == "" {
		queueName = "intake-decisions"
	}

	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		ClinicAPIURL:       strings.TrimRight(apiURL, "/"),
		Port:               port,
		RedisAddress:       os.Getenv("REDIS_ADDRESS"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		DecisionQueueName:  queueName,
		CORSAllowedOrigins: strings.Split(origins, ","),
		LogLevel:           logLevel,
		LogFormat:          logFormat,
	}
}
