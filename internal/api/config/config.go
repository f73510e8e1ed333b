package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig 从文件与环境变量加载配置
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	// 没有默认值的 key 不会从环境变量读取，敏感项也要占位
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "recommendation")

	v.SetDefault("logstash.address", "")
	v.SetDefault("logstash.index", "logstash-affinity")
	v.SetDefault("logstash.token", "")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.sasl.enable", false)
	v.SetDefault("kafka.sasl.username", "")
	v.SetDefault("kafka.sasl.password", "")
	v.SetDefault("kafka.consumer.session_timeout", 30)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 300)
	v.SetDefault("kafka_activity_consumer.topic", "user.activity")
	v.SetDefault("kafka_activity_consumer.group_id", "recommendation-service-activity")
	v.SetDefault("kafka_task_consumer.topic", "recommendation-tasks")
	v.SetDefault("kafka_task_consumer.group_id", "recommendation-service-tasks")
	v.SetDefault("kafka_notification_producer.topic", "notification.created")

	v.SetDefault("services.product_url", "http://localhost:3003")
	v.SetDefault("services.user_url", "http://localhost:3001")
	v.SetDefault("services.secret", "")
	v.SetDefault("services.timeout", 5)

	v.SetDefault("activity.retention_days", 90)

	v.SetDefault("interest.window_days", 30)
	v.SetDefault("interest.decay_lambda", 0.05)
	v.SetDefault("interest.recompute_mode", RecomputeDeferred)
	v.SetDefault("interest.recompute_cron", "*/10 * * * * *")

	v.SetDefault("recommendation.default_limit", 5)
	v.SetDefault("recommendation.dedup_window_hour", 72)
	v.SetDefault("recommendation.recent_view_limit", 10)
	v.SetDefault("recommendation.expire_days", 7)
}
