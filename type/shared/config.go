package shared

type Config struct {
	Environment          *bool     `yaml:"environment" validate:"required"`
	Port                 *string   `yaml:"port" validate:"required"`
	Cors                 []*string `yaml:"cors" validate:"required"`
	Postgres             *string   `yaml:"postgres" validate:"required"`
	PostgresReplicas     []*string `yaml:"postgres_replicas"`
	Mongo                *string   `yaml:"mongo" validate:"required"`
	MongoDatabase        *string   `yaml:"mongo_database" validate:"required"`
	MinIoEndpoint        *string   `yaml:"minio_endpoint" validate:"required"`
	MinIoAccessKey       *string   `yaml:"minio_access_key" validate:"required"`
	MinIoSecretKey       *string   `yaml:"minio_secret_key" validate:"required"`
	MinIoUseSSL          *bool     `yaml:"minio_use_ssl"`
	BucketResource       *string   `yaml:"bucket_resource" validate:"required"`
	BucketCertificate    *string   `yaml:"bucket_certificate" validate:"required"`
	VerifyPrefix         *string   `yaml:"verify_prefix"`
	DateLocale           *string   `yaml:"date_locale" validate:"omitempty,oneof=en id"`
	Workers              *int      `yaml:"workers" validate:"omitempty,min=1,max=64"`
	MaxUploadMB          *int      `yaml:"max_upload_mb" validate:"omitempty,min=1"`
	ArchiveRetentionDays *int      `yaml:"archive_retention_days" validate:"omitempty,min=0"`
	SigningEnabled       *bool     `yaml:"signing_enabled"`
	SigningCertPath      *string   `yaml:"signing_cert_path"`
	SigningKeyPath       *string   `yaml:"signing_key_path"`
}

const (
	DefaultVerifyPrefix = "easycert"
	DefaultMaxUploadMB  = 20
)

// WorkerCount returns the configured pool size, or 0 to let the batch
// package pick runtime.NumCPU().
func (c *Config) WorkerCount() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

func (c *Config) VerifyPrefixOrDefault() string {
	if c.VerifyPrefix == nil || *c.VerifyPrefix == "" {
		return DefaultVerifyPrefix
	}
	return *c.VerifyPrefix
}

// DateLocaleOrDefault returns the printed date language, "en" unless set.
func (c *Config) DateLocaleOrDefault() string {
	if c.DateLocale == nil || *c.DateLocale == "" {
		return "en"
	}
	return *c.DateLocale
}

func (c *Config) MaxUploadBytes() int {
	mb := DefaultMaxUploadMB
	if c.MaxUploadMB != nil {
		mb = *c.MaxUploadMB
	}
	return mb * 1024 * 1024
}

// RetentionDays returns 0 when archive cleanup is disabled.
func (c *Config) RetentionDays() int {
	if c.ArchiveRetentionDays == nil {
		return 0
	}
	return *c.ArchiveRetentionDays
}

func (c *Config) CorsOrigins() []string {
	origins := make([]string, 0, len(c.Cors))
	for _, origin := range c.Cors {
		if origin != nil && *origin != "" {
			origins = append(origins, *origin)
		}
	}
	return origins
}
