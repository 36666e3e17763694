// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 是整个应用的静态配置。
// 先读 yaml 文件，再用环境变量覆盖，环境变量优先。
type Config struct {
	Service struct {
		Name string `yaml:"name"`
		Port int    `yaml:"port"`
	} `yaml:"service"`

	Infra struct {
		MysqlDSN       string `yaml:"mysqlDsn"`
		RedisAddrs     string `yaml:"redisAddrs"`
		KafkaBrokers   string `yaml:"kafkaBrokers"`
		JaegerEndpoint string `yaml:"jaegerEndpoint"`
	} `yaml:"infra"`

	App struct {
		// 金额均为货币最小单位
		FreeShippingThreshold int64  `yaml:"freeShippingThreshold"`
		ShippingFlatFee       int64  `yaml:"shippingFlatFee"`
		TaxPercent            int    `yaml:"taxPercent"`
		OrderEventsTopic      string `yaml:"orderEventsTopic"`
	} `yaml:"app"`
}

var currentConfig Config

// GetCurrentConfig 返回进程内的全局配置快照。
func GetCurrentConfig() *Config {
	return &currentConfig
}

// LoadConfig 加载配置。path 为空或文件不存在时只使用默认值和环境变量。
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnvOverrides(&cfg)

	currentConfig = cfg
	return &currentConfig, nil
}

func defaultConfig() Config {
	var cfg Config
	cfg.Service.Name = "marketplace-service"
	cfg.Service.Port = 8080
	cfg.Infra.MysqlDSN = "root:root@tcp(localhost:3306)/bazaar?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.JaegerEndpoint = "http://localhost:14268/api/traces"
	cfg.App.FreeShippingThreshold = 500000
	cfg.App.ShippingFlatFee = 45000
	cfg.App.TaxPercent = 9
	cfg.App.OrderEventsTopic = "order-events"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	cfg.Service.Name = getEnv("SERVICE_NAME", cfg.Service.Name)
	if port, err := strconv.Atoi(getEnv("HTTP_PORT", "")); err == nil && port > 0 {
		cfg.Service.Port = port
	}
	cfg.Infra.MysqlDSN = getEnv("MYSQL_DSN", cfg.Infra.MysqlDSN)
	cfg.Infra.RedisAddrs = getEnv("REDIS_ADDRS", cfg.Infra.RedisAddrs)
	cfg.Infra.KafkaBrokers = getEnv("KAFKA_BROKERS", cfg.Infra.KafkaBrokers)
	cfg.Infra.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.JaegerEndpoint)
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
