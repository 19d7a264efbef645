package backtest

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// Config holds the engine settings shared by backtests and grid searches.
type Config struct {
	InitialCapital      float64                    `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0"`
	RiskFreeRate        float64                    `yaml:"risk_free_rate" json:"risk_free_rate" validate:"gte=0" jsonschema:"title=Risk Free Rate,description=Per-period risk free rate used by the Sharpe ratio"`
	AnnualizationFactor float64                    `yaml:"annualization_factor" json:"annualization_factor" validate:"gt=0" jsonschema:"title=Annualization Factor,description=Number of return periods per year,default=252"`
	MaxParallelism      int                        `yaml:"max_parallelism" json:"max_parallelism" validate:"gte=0" jsonschema:"title=Max Parallelism,description=Worker cap for grid searches; 0 selects the hardware default"`
	StartTime           optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the backtest period"`
	EndTime             optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the backtest period"`
}

// UnmarshalYAML implements custom unmarshaling so that absent times map to
// None instead of the zero time.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawConfig struct {
		InitialCapital      float64    `yaml:"initial_capital"`
		RiskFreeRate        float64    `yaml:"risk_free_rate"`
		AnnualizationFactor float64    `yaml:"annualization_factor"`
		MaxParallelism      int        `yaml:"max_parallelism"`
		StartTime           *time.Time `yaml:"start_time"`
		EndTime             *time.Time `yaml:"end_time"`
	}

	var raw rawConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.InitialCapital = raw.InitialCapital
	c.RiskFreeRate = raw.RiskFreeRate
	c.AnnualizationFactor = raw.AnnualizationFactor
	c.MaxParallelism = raw.MaxParallelism

	if raw.StartTime != nil {
		c.StartTime = optional.Some(*raw.StartTime)
	}

	if raw.EndTime != nil {
		c.EndTime = optional.Some(*raw.EndTime)
	}

	return nil
}

// ParseConfig parses and validates a YAML config document.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"failed to parse config")
	}

	if config.AnnualizationFactor == 0 {
		config.AnnualizationFactor = defaultAnnualizationFactor
	}

	if err := validator.New().Struct(config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"invalid config")
	}

	return config, nil
}

// GenerateSchema generates a JSON schema for Config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for the backtest engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates an indented JSON schema string for Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

const defaultAnnualizationFactor = 252.0

// DefaultConfig returns the engine defaults: 10k starting capital, zero risk
// free rate, daily annualization, hardware-default parallelism.
func DefaultConfig() Config {
	return Config{
		InitialCapital:      10000,
		RiskFreeRate:        0,
		AnnualizationFactor: defaultAnnualizationFactor,
		MaxParallelism:      0,
		StartTime:           optional.None[time.Time](),
		EndTime:             optional.None[time.Time](),
	}
}

// TestConfig returns a small deterministic config for tests.
func TestConfig(initialCapital float64) Config {
	return Config{
		InitialCapital:      initialCapital,
		RiskFreeRate:        0,
		AnnualizationFactor: defaultAnnualizationFactor,
		MaxParallelism:      1,
		StartTime:           optional.None[time.Time](),
		EndTime:             optional.None[time.Time](),
	}
}
