package devops

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ServiceConfig is the shared back-office configuration, kept as one YAML
// document in SSM Parameter Store so every entrypoint reads the same thing.
type ServiceConfig struct {
	DataAPI struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"data_api"`
	Line struct {
		ChannelToken string `yaml:"channel_token"`
	} `yaml:"line"`
	Brain struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"brain"`
	Documents struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"documents"`
	EInvoice struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"einvoice"`
	Storage struct {
		Endpoint string `yaml:"endpoint"`
		Bucket   string `yaml:"bucket"`
	} `yaml:"storage"`
	Calendar struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"calendar"`
	Email struct {
		From string `yaml:"from"`
	} `yaml:"email"`
}

var (
	once    sync.Once
	cached  *ServiceConfig
	loadErr error
)

// LoadServiceConfig reads and caches the shared configuration.
func LoadServiceConfig(ctx context.Context) (*ServiceConfig, error) {
	once.Do(func() {
		paramName := "deskhive-backoffice"

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		var parsed ServiceConfig
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}

		cached = &parsed
	})

	return cached, loadErr
}
