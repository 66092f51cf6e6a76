package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 持久化后端
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config 应用配置
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Debug bool `yaml:"debug"`
	} `yaml:"log"`

	Storage struct {
		Backend string `yaml:"backend"`
		Slot    string `yaml:"slot"`
		Dir     string `yaml:"dir"`
	} `yaml:"storage"`

	Database struct {
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
		Redis struct {
			URL string `yaml:"url"`
		} `yaml:"redis"`
	} `yaml:"database"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Scheduler struct {
		HealthCheck string `yaml:"health_check"`
		Backup      string `yaml:"backup"`
		BackupDir   string `yaml:"backup_dir"`
	} `yaml:"scheduler"`
}

// Default 默认配置
func Default() *Config {
	var cfg Config
	cfg.App.Name = "piano-roster"
	cfg.App.Env = "dev"
	cfg.Log.Debug = true
	cfg.Storage.Backend = BackendFile
	cfg.Storage.Slot = "student-storage"
	cfg.Storage.Dir = "data"
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Port = 5432
	cfg.Database.Postgres.SSLMode = "disable"
	cfg.API.Port = "8080"
	cfg.API.ReadTimeout = 10 * time.Second
	cfg.API.WriteTimeout = 10 * time.Second
	cfg.Scheduler.HealthCheck = "@every 30s"
	cfg.Scheduler.BackupDir = "data/backup"
	return &cfg
}

// LoadConfig 从文件加载配置，文件不存在时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	config := Default()

	// 读取配置文件
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	// 环境变量覆盖
	overrideFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("未知的存储后端: %q", c.Storage.Backend)
	}
	if c.Storage.Slot == "" {
		return fmt.Errorf("存储槽位名不能为空")
	}
	if c.Storage.Backend == BackendRedis && c.Database.Redis.URL == "" {
		return fmt.Errorf("redis 后端需要配置 database.redis.url")
	}
	return nil
}

// IsProd 是否为生产环境
func (c *Config) IsProd() bool {
	return strings.HasPrefix(strings.ToLower(c.App.Env), "prod")
}

// PostgresDSN 构建连接字符串
func (c *Config) PostgresDSN() string {
	pg := c.Database.Postgres
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode,
	)
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	// 应用
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}
	if env := os.Getenv("LOG_DEBUG"); env != "" {
		if debug, err := strconv.ParseBool(env); err == nil {
			config.Log.Debug = debug
		}
	}

	// 存储
	if env := os.Getenv("STORAGE_BACKEND"); env != "" {
		config.Storage.Backend = strings.ToLower(env)
	}
	if env := os.Getenv("STORAGE_SLOT"); env != "" {
		config.Storage.Slot = env
	}
	if env := os.Getenv("STORAGE_DIR"); env != "" {
		config.Storage.Dir = env
	}

	// 数据库
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.Postgres.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil && port > 0 {
			config.Database.Postgres.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.Postgres.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.Postgres.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.Postgres.DBName = env
	}
	if env := os.Getenv("REDIS_URL"); env != "" {
		config.Database.Redis.URL = env
	}

	// NATS
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}

	// API
	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}
