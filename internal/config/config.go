package config

import (
	"errors"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/flocktrack/flocktrack/internal/errs"
)

var (
	ErrConfigurationValuesError = errors.New("configuration value error")
	ErrWebhookSecretMissing     = errors.New("webhook signing secret must be specified")
	ErrWebhookToleranceRange    = errors.New("webhook timestamp tolerance must be between 1s and 15m")
)

// Config holds all application configuration parameters
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	Database         Database   `yaml:"database"`
	DatabaseReplicas []Database `yaml:"databaseReplicas"`
	HTTP             HTTPServer `yaml:"http"`
	Webhook          Webhook    `yaml:"webhook"`
	Tenancy          Tenancy    `yaml:"tenancy"`
}

func (c *Config) Validate() error {
	err := c.Webhook.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	return nil
}

// Database holds database config
type Database struct {
	Name       string              `yaml:"name"`
	Port       string              `yaml:"port"`
	Host       commoncfg.SourceRef `yaml:"host"`
	User       commoncfg.SourceRef `yaml:"user"`
	Secret     commoncfg.SourceRef `yaml:"secret"`
	Migrations string              `yaml:"migrations" default:"migrations"`
}

// HTTPServer holds http server config
type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

const (
	MinWebhookTolerance = time.Second
	MaxWebhookTolerance = 15 * time.Minute
)

// Webhook holds the identity-provider webhook verification config
type Webhook struct {
	// Secret is the shared signing secret handed out by the identity
	// provider, in its `whsec_<base64>` form.
	Secret commoncfg.SourceRef `yaml:"secret"`

	// Tolerance bounds the accepted skew of the webhook timestamp header.
	Tolerance time.Duration `yaml:"tolerance" default:"5m"`
}

func (w *Webhook) Validate() error {
	if w.Secret == (commoncfg.SourceRef{}) {
		return ErrWebhookSecretMissing
	}

	if w.Tolerance < MinWebhookTolerance || w.Tolerance > MaxWebhookTolerance {
		return ErrWebhookToleranceRange
	}

	return nil
}

// Tenancy holds the tenant resolution policy.
type Tenancy struct {
	// AllowSelfOnboarding enables the explicit onboarding endpoint that
	// provisions a tenant for a verified identity. Request resolution
	// itself never creates tenants; unknown identities are rejected.
	AllowSelfOnboarding bool `yaml:"allowSelfOnboarding"`

	// CountInterval is how often the tenant count gauge is sampled.
	CountInterval time.Duration `yaml:"countInterval" default:"1m"`
}
