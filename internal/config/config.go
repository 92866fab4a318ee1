package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type TMDB struct {
	BaseURL           string
	APIKey            string
	Region            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

type Auth struct {
	Secret     string
	SessionTTL time.Duration
}

type StoreDriver = string

const (
	StorePostgres StoreDriver = "postgres"
	StoreMemory   StoreDriver = "memory"
)

type Store struct {
	Driver StoreDriver
	// Provision the demo household on startup.
	SeedDemo bool
}

type Config struct {
	HTTP     HTTPServer
	Redis    RedisCache
	Postgres Postgres
	TMDB     TMDB
	Auth     Auth
	Store    Store
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:     *newHTTP(),
		Redis:    *newRedis(),
		Postgres: *newPostgres(),
		TMDB:     *newTMDB(),
		Auth:     *newAuth(),
		Store:    *newStore(),
	}

	log.Printf("%s backend config loaded, store driver : %s", logtag, cfg.Store.Driver)
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getsecret("REDIS_PASSWORD", "shared"),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getsecret("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "movienight"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newTMDB() *TMDB {
	return &TMDB{
		BaseURL:           getenv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		APIKey:            getsecret("TMDB_API_KEY", ""),
		Region:            getenv("TMDB_REGION", "US"),
		Timeout:           getduration("TMDB_TIMEOUT", 5*time.Second),
		RequestsPerSecond: getfloat("TMDB_RPS", 20),
	}
}

func newAuth() *Auth {
	return &Auth{
		Secret:     getsecret("AUTH_SECRET", "shared"),
		SessionTTL: getduration("AUTH_SESSION_TTL", 24*time.Hour),
	}
}

func newStore() *Store {
	driver := getenv("STORE_DRIVER", StorePostgres)
	return &Store{
		Driver:   driver,
		SeedDemo: getbool("SEED_DEMO", driver == StoreMemory),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

// Same as getenv but never echoes the value.
func getsecret(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value\n", logtag, key)
		return defaultValue
	}
	fmt.Printf("%s %s is set\n", logtag, key)
	return val
}

func getduration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("%s %s has invalid duration %q. Using default value %s", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getbool(key string, defaultValue bool) bool {
	raw := getenv(key, strconv.FormatBool(defaultValue))
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("%s %s has invalid bool %q. Using default value %v", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return b
}

func getfloat(key string, defaultValue float64) float64 {
	raw := getenv(key, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("%s %s has invalid number %q. Using default value %v", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return f
}
