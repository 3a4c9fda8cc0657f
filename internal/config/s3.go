package config

type S3 struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	// Endpoint is set for S3 compatible stores such as MinIO.
	Endpoint string `env:"S3_ENDPOINT"`
	BaseURL  string `env:"S3_BASE_URL"`

	// LocalDir is used instead of S3 when no bucket is configured.
	LocalDir string `env:"S3_LOCAL_DIR" envDefault:"./var/blob"`
}
