package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	Storage  StorageConfig
	Minio    MinioConfig
	S3       S3Config
	Upload   FileUploadConfig
	Redis    RedisConfig
	Auth     AuthConfig
	NATS     NATSConfig
	Database DatabaseConfig
	Server   ServerConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

// StorageConfig selects the object storage driver
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"minio"`
}

type MinioConfig struct {
	Endpoint                  string        `envconfig:"MINIO_ENDPOINT"`
	BucketName                string        `envconfig:"MINIO_BUCKET_NAME"`
	AccessKey                 string        `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey                 string        `envconfig:"MINIO_SECRET_KEY"`
	PresignedDuration         time.Duration `envconfig:"MINIO_PRESIGNED_DURATION" default:"15m"`
	DownloadSignedURLDuration time.Duration `envconfig:"MINIO_DOWNLOAD_SIGNED_URL_DURATION" default:"15m"`
	UseSSL                    bool          `envconfig:"MINIO_USE_SSL" default:"false"`
}

type S3Config struct {
	Region                    string        `envconfig:"S3_REGION" default:"us-east-1"`
	Bucket                    string        `envconfig:"S3_BUCKET"`
	AccessKeyID               string        `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey           string        `envconfig:"S3_SECRET_ACCESS_KEY"`
	Endpoint                  string        `envconfig:"S3_ENDPOINT"`
	UsePathStyle              bool          `envconfig:"S3_USE_PATH_STYLE" default:"false"`
	PresignedDuration         time.Duration `envconfig:"S3_PRESIGNED_DURATION" default:"15m"`
	DownloadSignedURLDuration time.Duration `envconfig:"S3_DOWNLOAD_SIGNED_URL_DURATION" default:"15m"`
}

type FileUploadConfig struct {
	MaxFileSize      int64         `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"524288000"` // 500MB
	MinFileSize      int64         `envconfig:"UPLOAD_MIN_FILE_SIZE" default:"1"`
	MaxBatchFiles    int           `envconfig:"UPLOAD_MAX_BATCH_FILES" default:"20"`
	MaxRetries       int           `envconfig:"UPLOAD_MAX_RETRIES" default:"3"`
	KeyPrefix        string        `envconfig:"UPLOAD_KEY_PREFIX" default:"uploads"`
	SessionTTL       time.Duration `envconfig:"UPLOAD_SESSION_TTL" default:"24h"`
	PendingGrace     time.Duration `envconfig:"UPLOAD_PENDING_GRACE" default:"1h"`
	ReconcileEvery   time.Duration `envconfig:"UPLOAD_RECONCILE_EVERY" default:"15m"`
	ReconcileBatch   int           `envconfig:"UPLOAD_RECONCILE_BATCH" default:"200"`
	OrphanRetention  time.Duration `envconfig:"UPLOAD_ORPHAN_RETENTION" default:"48h"`
	OrphanPolicy     string        `envconfig:"UPLOAD_ORPHAN_POLICY" default:"report"`
	OrphanSweepEvery time.Duration `envconfig:"UPLOAD_ORPHAN_SWEEP_EVERY" default:"6h"`
}

type RedisConfig struct {
	Addr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password  string `envconfig:"REDIS_PASSWORD"`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"upload:session:"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" required:"true"`
}

type NATSConfig struct {
	URL          string `envconfig:"NATS_URL"`
	StreamName   string `envconfig:"NATS_STREAM_NAME"`
	ConsumerName string `envconfig:"NATS_CONSUMER_NAME"`
	Subject      string `envconfig:"NATS_SUBJECT"`
	DeliverGroup string `envconfig:"NATS_DELIVER_GROUP"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// ClientConfig configures the uploader CLI
type ClientConfig struct {
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:8080/api/v1"`
	Token          string        `envconfig:"TOKEN" required:"true"`
	Parallelism    int           `envconfig:"PARALLELISM" default:"4"`
	APIRetries     uint64        `envconfig:"API_RETRIES" default:"3"`
	APIBackoff     time.Duration `envconfig:"API_BACKOFF" default:"300ms"`
	MaxFileRetries int           `envconfig:"MAX_FILE_RETRIES" default:"3"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDatabase loads only the database settings, for tools that do not need the rest
func LoadDatabase() (*DatabaseConfig, error) {
	var cfg DatabaseConfig

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// URL returns the connection url understood by lib/pq and golang-migrate
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// LoadClient loads the uploader CLI configuration from UPLOADER_* variables
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig

	if err := envconfig.Process("uploader", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
