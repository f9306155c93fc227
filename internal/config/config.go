// Package config loads the service configuration from the environment
// with defaults matching the original deployment.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port       string
	ModelPath  string
	LabelsPath string
	// SaveDir is where annotated debug frames are written
	SaveDir string
	// PoolSize is the number of model instances opened for inference
	PoolSize int
	// MatchThreshold is the minimum confidence for a found piece to count
	// as matched
	MatchThreshold float64
	// TopCutRatio and BottomCutRatio define the UI chrome removed from the
	// frame before detection
	TopCutRatio    float64
	BottomCutRatio float64
	LogLevel       string
	LogPath        string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		ModelPath:      getEnv("MODEL_PATH", "./models/best001.onnx"),
		LabelsPath:     getEnv("LABELS_PATH", "./models/labels.txt"),
		SaveDir:        getEnv("SAVE_DIR", "./detections"),
		PoolSize:       getEnvInt("POOL_SIZE", 2),
		MatchThreshold: getEnvFloat("MATCH_THRESHOLD", 0.45),
		TopCutRatio:    getEnvFloat("TOP_CUT_RATIO", 0.18),
		BottomCutRatio: getEnvFloat("BOTTOM_CUT_RATIO", 0.15),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPath:        getEnv("LOG_PATH", "./logs/piececheck.log"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
