// config.go
//
// Environment configuration for the word grid server.
// Values come from the process environment, after .env has been loaded by
// godotenv. Command flags override them.

package main

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type config struct {
	Port         string
	DBPath       string // empty keeps everything in memory
	ClientOrigin string
	DailySalt    string
	LiveSecret   string
	SessionCap   int
}

func loadConfig() config {
	return config{
		Port:         getEnv("PORT", "5175"),
		DBPath:       getEnv("DB_PATH", "./data/wordgrid.db"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		LiveSecret:   os.Getenv("LIVE_SECRET"),
		SessionCap:   getEnvInt("SESSION_CAP", 200),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring invalid integer")
		return def
	}
	return n
}

// setupLogging applies LOG_LEVEL and, with LOG_PRETTY=1, a console writer.
func setupLogging() {
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if os.Getenv("LOG_PRETTY") == "1" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
