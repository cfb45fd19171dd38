package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	HTTPPort     string
	HTTPSPort    string
	Domains      []string
	CertCacheDir string
	LogDir       string

	DatabaseURL        string
	CollectionName     string
	EmbeddingDimension int

	GoogleAPIKey string
	CohereAPIKey string
	GroqAPIKey   string

	EmbeddingModel string
	RerankModel    string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int

	ChunkSize     int
	ChunkOverlap  int
	TopKRetrieval int
	TopKRerank    int
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),
		Domains:      []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir: getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		LogDir:       getEnv("LOG_DIR", "logs/ancrage"),

		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CollectionName:     getEnv("VECTOR_COLLECTION_NAME", "rag_documents"),
		EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),

		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		CohereAPIKey: getEnv("COHERE_API_KEY", ""),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),

		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		RerankModel:    getEnv("RERANK_MODEL", "rerank-english-v3.0"),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 500),

		ChunkSize:     getEnvAsInt("CHUNK_SIZE", 1000),
		ChunkOverlap:  getEnvAsInt("CHUNK_OVERLAP", 100),
		TopKRetrieval: getEnvAsInt("TOP_K_RETRIEVAL", 10),
		TopKRerank:    getEnvAsInt("TOP_K_RERANK", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
