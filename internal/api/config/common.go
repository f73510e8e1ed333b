package config

// Config 配置主体
type Config struct {
	Server                    ServerConfig              `mapstructure:"server"`
	DB                        DBConfig                  `mapstructure:"database"`
	Redis                     RedisConfig               `mapstructure:"redis"`
	Mongo                     MongoConfig               `mapstructure:"mongo"`
	Logstash                  LogstashConfig            `mapstructure:"logstash"`
	Kafka                     KafkaConfig               `mapstructure:"kafka"`
	KafkaActivityConsumer     KafkaActivityConsumer     `mapstructure:"kafka_activity_consumer"`
	KafkaTaskConsumer         KafkaTaskConsumer         `mapstructure:"kafka_task_consumer"`
	KafkaNotificationProducer KafkaNotificationProducer `mapstructure:"kafka_notification_producer"`
	Services                  ServicesConfig            `mapstructure:"services"`
	Activity                  ActivityConfig            `mapstructure:"activity"`
	Interest                  InterestConfig            `mapstructure:"interest"`
	Recommendation            RecommendationConfig      `mapstructure:"recommendation"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaActivityConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaTaskConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaNotificationProducer struct {
	Topic string `mapstructure:"topic"`
}

// ServicesConfig 外部协作服务
type ServicesConfig struct {
	ProductURL string `mapstructure:"product_url"`
	UserURL    string `mapstructure:"user_url"`
	Secret     string `mapstructure:"secret"`
	Timeout    int    `mapstructure:"timeout"`
}

type ActivityConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// InterestConfig 兴趣分计算
type InterestConfig struct {
	WindowDays    int     `mapstructure:"window_days"`
	DecayLambda   float64 `mapstructure:"decay_lambda"`
	RecomputeMode string  `mapstructure:"recompute_mode"`
	RecomputeCron string  `mapstructure:"recompute_cron"`
}

type RecommendationConfig struct {
	DefaultLimit    int `mapstructure:"default_limit"`
	DedupWindowHour int `mapstructure:"dedup_window_hour"`
	RecentViewLimit int `mapstructure:"recent_view_limit"`
	ExpireDays      int `mapstructure:"expire_days"`
}

const (
	RecomputeInline   = "inline"
	RecomputeDeferred = "deferred"
)
