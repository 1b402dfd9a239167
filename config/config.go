package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ticket   TicketConfig
	WS       WSConfig
	Sweeper  SweeperConfig
}

type ServerConfig struct {
	Addr string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// TicketConfig 控制 websocket 一次性連線票券的有效期限
type TicketConfig struct {
	TTL time.Duration
}

type WSConfig struct {
	SendQueueSize int
	WriteWait     time.Duration
	PongWait      time.Duration
	// PingPeriod 必須小於 PongWait，否則連線會在 ping 之前就逾時
	PingPeriod time.Duration
	RoomGrace  time.Duration
}

type SweeperConfig struct {
	Interval time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Ticket:   GetTicketConfig(),
		WS:       GetWSConfig(),
		Sweeper:  GetSweeperConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:   ServerConfig{Addr: ":8081"},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Ticket:   TicketConfig{TTL: 2 * time.Second},
		WS: WSConfig{
			SendQueueSize: 16,
			WriteWait:     time.Second,
			PongWait:      5 * time.Second,
			PingPeriod:    4 * time.Second,
			RoomGrace:     time.Second,
		},
		Sweeper: SweeperConfig{Interval: 100 * time.Millisecond},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr: getEnv("SERVER_ADDR", ":8080"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetTicketConfig() TicketConfig {
	return TicketConfig{
		TTL: getDurationEnv("WS_TICKET_TTL", 60*time.Second),
	}
}

func GetWSConfig() WSConfig {
	pongWait := getDurationEnv("WS_PONG_WAIT", 60*time.Second)
	return WSConfig{
		SendQueueSize: getIntEnv("WS_SEND_QUEUE_SIZE", 256),
		WriteWait:     getDurationEnv("WS_WRITE_WAIT", 10*time.Second),
		PongWait:      pongWait,
		PingPeriod:    pongWait * 9 / 10,
		RoomGrace:     getDurationEnv("WS_ROOM_GRACE", 30*time.Second),
	}
}

func GetSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval: getDurationEnv("SWEEPER_INTERVAL", time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
