package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/forum-search-backend/internal/auth/middleware"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/database"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/mongo"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/redis"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/workerpool"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EngineMongo selects the document adapter; every other engine is a database driver
const EngineMongo = "mongo"

type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Database   database.Config   `mapstructure:"database"`
	Redis      redis.Config      `mapstructure:"redis"`
	Mongo      mongo.Config      `mapstructure:"mongo"`
	Log        logger.Config     `mapstructure:"log"`
	Auth       AuthConfig        `mapstructure:"auth"`
	Search     SearchConfig      `mapstructure:"search"`
	WorkerPool workerpool.Config `mapstructure:"workerpool"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	HealthInterval  time.Duration `mapstructure:"health_interval"`
}

type AuthConfig struct {
	JWTSecret      string                       `mapstructure:"jwt_secret"`
	JWTIssuer      string                       `mapstructure:"jwt_issuer"`
	AccessTokenTTL time.Duration                `mapstructure:"access_token_ttl"`
	RateLimit      middleware.RateLimiterConfig `mapstructure:"rate_limit"`
}

// SearchConfig 搜索引擎与门面配置
type SearchConfig struct {
	// Engine 为空时沿用 database.driver
	Engine            string                  `mapstructure:"engine"`
	QueryTimeout      time.Duration           `mapstructure:"query_timeout"`
	PrivilegeTimeout  time.Duration           `mapstructure:"privilege_timeout"`
	HistoryTimeout    time.Duration           `mapstructure:"history_timeout"`
	DefaultPrivileges []string                `mapstructure:"default_privileges"`
	HistoryAsync      bool                    `mapstructure:"history_async"`
	Presets           map[string]PresetConfig `mapstructure:"presets"`
}

// PresetConfig 覆盖或新增一个按字段搜索的预设
type PresetConfig struct {
	Table         string `mapstructure:"table"`
	Column        string `mapstructure:"column"`
	SortBy        string `mapstructure:"sort_by"`
	SortDirection string `mapstructure:"sort_direction"`
}

// LoadConfig 读取配置文件并叠加环境变量，path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate 校验各个配置段
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return errors.New("server grpc_port must be between 0 and 65535")
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if c.MongoEnabled() {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth jwt_secret is required")
	}

	engines := []string{database.DriverPostgres, database.DriverMySQL, database.DriverSQLite, EngineMongo}
	if !lo.Contains(engines, c.SearchEngine()) {
		return fmt.Errorf("unsupported search engine %q, must be one of: %s", c.Search.Engine, strings.Join(engines, ", "))
	}
	if c.Search.HistoryAsync && c.WorkerPool.Workers <= 0 {
		return errors.New("workerpool workers must be > 0 when search history_async is enabled")
	}
	for alias, p := range c.Search.Presets {
		if p.Table == "" || p.Column == "" {
			return fmt.Errorf("search preset %q requires table and column", alias)
		}
	}
	return nil
}

// SearchEngine 返回实际使用的搜索引擎
func (c *Config) SearchEngine() string {
	if c.Search.Engine != "" {
		return c.Search.Engine
	}
	return c.Database.Driver
}

// MongoEnabled 文档引擎或显式开启时需要连接 MongoDB
func (c *Config) MongoEnabled() bool {
	return c.Mongo.Enabled || c.SearchEngine() == EngineMongo
}

// Addr HTTP 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GRPCAddr gRPC 监听地址，端口为 0 时不启动 gRPC
func (c *ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.health_interval", 15*time.Second)

	db := database.DefaultConfig()
	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.user", db.User)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.dbname", db.DBName)
	v.SetDefault("database.sslmode", db.SSLMode)
	v.SetDefault("database.timezone", db.Timezone)
	v.SetDefault("database.path", db.Path)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", db.ConnMaxIdleTime)
	v.SetDefault("database.log_level", db.LogLevel)
	v.SetDefault("database.slow_threshold", db.SlowThreshold)
	v.SetDefault("database.prepare_stmt", db.PrepareStmt)
	v.SetDefault("database.auto_migrate", db.AutoMigrate)

	rc := redis.DefaultConfig()
	v.SetDefault("redis.mode", string(rc.Mode))
	v.SetDefault("redis.addr", rc.Addr)
	v.SetDefault("redis.username", rc.Username)
	v.SetDefault("redis.password", rc.Password)
	v.SetDefault("redis.db", rc.DB)
	v.SetDefault("redis.pool_size", rc.PoolSize)
	v.SetDefault("redis.min_idle_conns", rc.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rc.DialTimeout)
	v.SetDefault("redis.read_timeout", rc.ReadTimeout)
	v.SetDefault("redis.write_timeout", rc.WriteTimeout)
	v.SetDefault("redis.max_retries", rc.MaxRetries)

	mc := mongo.DefaultConfig()
	v.SetDefault("mongo.enabled", mc.Enabled)
	v.SetDefault("mongo.uri", mc.URI)
	v.SetDefault("mongo.database", mc.Database)
	v.SetDefault("mongo.max_pool_size", mc.MaxPoolSize)
	v.SetDefault("mongo.connect_timeout", mc.ConnectTimeout)

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.output", lc.Output)
	v.SetDefault("log.enable_caller", lc.EnableCaller)
	v.SetDefault("log.enable_stacktrace", lc.EnableStacktrace)
	v.SetDefault("log.file.filename", lc.File.Filename)
	v.SetDefault("log.file.max_size", lc.File.MaxSize)
	v.SetDefault("log.file.max_age", lc.File.MaxAge)
	v.SetDefault("log.file.max_backups", lc.File.MaxBackups)
	v.SetDefault("log.file.compress", lc.File.Compress)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "forum-search")
	v.SetDefault("auth.access_token_ttl", 2*time.Hour)
	v.SetDefault("auth.rate_limit.max_requests", 60)
	v.SetDefault("auth.rate_limit.window_seconds", 60)
	v.SetDefault("auth.rate_limit.strategy", middleware.StrategyUser)

	v.SetDefault("search.engine", "")
	v.SetDefault("search.query_timeout", 5*time.Second)
	v.SetDefault("search.privilege_timeout", 2*time.Second)
	v.SetDefault("search.history_timeout", 2*time.Second)
	v.SetDefault("search.default_privileges", []string{})
	v.SetDefault("search.history_async", true)

	wp := workerpool.DefaultConfig()
	v.SetDefault("workerpool.workers", wp.Workers)
	v.SetDefault("workerpool.expiry_duration", wp.ExpiryDuration)
	v.SetDefault("workerpool.nonblocking", wp.Nonblocking)
	v.SetDefault("workerpool.max_blocking", wp.MaxBlocking)
}
