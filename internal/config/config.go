// Package config holds the pipeline configuration: YAML file values with
// defaults, environment fallbacks and validation.
package config

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPolygonAPIKey is read when provider.polygonApiKey is not set.
const EnvPolygonAPIKey = "POLYGON_API_KEY"

// SchemaFileName is the name the schema is published under, referenced by sample configs.
const SchemaFileName = "pipeline-config.json"

// SampleFileName is the sample config written next to the schema.
const SampleFileName = "pipeline-config.yaml"

// Config is the pipeline configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output" json:"output" jsonschema:"title=Output,description=Where and how result tables are written"`
	Provider ProviderConfig `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data source"`
	Engine   EngineConfig   `yaml:"engine" json:"engine" jsonschema:"title=Engine,description=Indicator engine settings"`
	Log      LogConfig      `yaml:"log" json:"log" jsonschema:"title=Log,description=Logging settings"`
}

// OutputConfig configures persistence.
type OutputConfig struct {
	Dir    string `yaml:"dir" json:"dir" jsonschema:"title=Directory,description=Directory receiving prices and prices_with_indicators,default=data" validate:"required"`
	Format string `yaml:"format" json:"format" jsonschema:"title=Format,description=File format of both tables,enum=csv,enum=parquet,default=csv" validate:"required,oneof=csv parquet"`
}

// ProviderConfig configures retrieval.
type ProviderConfig struct {
	Name              string  `yaml:"name" json:"name" jsonschema:"title=Provider,description=Market data provider,enum=yahoo,enum=polygon,enum=binance,enum=csv,default=yahoo" validate:"required,oneof=yahoo polygon binance csv"`
	PolygonAPIKey     string  `yaml:"polygonApiKey" json:"polygonApiKey" jsonschema:"title=Polygon API Key,description=Polygon.io API key. Falls back to POLYGON_API_KEY" validate:"required_if=Name polygon"`
	Source            string  `yaml:"source" json:"source" jsonschema:"title=Source,description=Input file for the csv provider" validate:"required_if=Name csv"`
	BaseURL           string  `yaml:"baseUrl" json:"baseUrl" jsonschema:"title=Base URL,description=Overrides the Yahoo chart API host" validate:"omitempty,url"`
	MaxRetries        int     `yaml:"maxRetries" json:"maxRetries" jsonschema:"title=Max Retries,description=Retries per ticker after the first attempt,minimum=0,maximum=10,default=3" validate:"gte=0,lte=10"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond" json:"requestsPerSecond" jsonschema:"title=Requests Per Second,description=Provider request rate limit. 0 disables the limit,minimum=0,default=2" validate:"gte=0"`
	Concurrency       int     `yaml:"concurrency" json:"concurrency" jsonschema:"title=Concurrency,description=Tickers fetched at once,minimum=1,maximum=32,default=1" validate:"gte=1,lte=32"`
}

// EngineConfig configures the indicator engine.
type EngineConfig struct {
	Workers int `yaml:"workers" json:"workers" jsonschema:"title=Workers,description=Instruments computed concurrently,minimum=1,maximum=64,default=1" validate:"gte=1,lte=64"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" jsonschema:"title=Format,enum=json,enum=console,default=json" validate:"required,oneof=json console"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Dir:    "data",
			Format: "csv",
		},
		Provider: ProviderConfig{
			Name:              "yahoo",
			MaxRetries:        3,
			RequestsPerSecond: 2,
			Concurrency:       1,
		},
		Engine: EngineConfig{
			Workers: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
// Load does not validate; call Validate once flags have been applied.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
	}

	return config, nil
}

// ApplyEnv fills secrets missing from the file from the given dotenv files and
// then the process environment. Missing dotenv files are ignored and the
// process environment is not modified.
func (c *Config) ApplyEnv(dotenvFiles ...string) error {
	if c.Provider.PolygonAPIKey != "" {
		return nil
	}

	for _, file := range dotenvFiles {
		values, err := godotenv.Read(file)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}

			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read %s", file)
		}

		if key := values[EnvPolygonAPIKey]; key != "" {
			c.Provider.PolygonAPIKey = key

			return nil
		}
	}

	c.Provider.PolygonAPIKey = os.Getenv(EnvPolygonAPIKey)

	return nil
}

// Validate checks the configuration against its validate tags.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for Config.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "pipeline-config"
	schema.Description = "Configuration schema for the indicator pipeline"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON returns GenerateSchema as indented JSON.
func GenerateSchemaJSON() (string, error) {
	schema := GenerateSchema()

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal schema", err)
	}

	return string(data), nil
}

// SampleYAML renders the defaults as YAML pointing at the published schema.
func SampleYAML() ([]byte, error) {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal sample config", err)
	}

	return append([]byte("# yaml-language-server: $schema="+SchemaFileName+"\n"), data...), nil
}

// WriteSchemaFiles writes the schema into dir and, when it does not exist yet,
// a sample config referencing it. An existing sample is left untouched.
func WriteSchemaFiles(dir string) (schemaPath string, samplePath string, err error) {
	schemaJSON, err := GenerateSchemaJSON()
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to create directory %s", dir)
	}

	schemaPath = filepath.Join(dir, SchemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return "", "", errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to write %s", schemaPath)
	}

	samplePath = filepath.Join(dir, SampleFileName)
	if _, err := os.Stat(samplePath); err == nil {
		return schemaPath, samplePath, nil
	}

	sample, err := SampleYAML()
	if err != nil {
		return "", "", err
	}

	if err := os.WriteFile(samplePath, sample, 0644); err != nil {
		return "", "", errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to write %s", samplePath)
	}

	return schemaPath, samplePath, nil
}
