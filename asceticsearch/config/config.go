package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	criteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/metadata"
	sqlcriteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/infrastructure"
)

const DefaultPageSize = 20

type Config struct {
	Logger   LoggerConfig   `yaml:"logger"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Entities []EntityConfig `yaml:"entities"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Type   string `yaml:"type"`
	Output string `yaml:"output"`
}

type DatabaseConfig struct {
	// Driver is one of pgx, sqlite or mysql
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type SearchConfig struct {
	CaseSensitive   bool `yaml:"case_sensitive"`
	DefaultPageSize int  `yaml:"default_page_size"`
}

type EntityConfig struct {
	Name          string               `yaml:"name"`
	Table         string               `yaml:"table"`
	PrimaryKey    string               `yaml:"primary_key"`
	Attributes    []AttributeConfig    `yaml:"attributes"`
	Relationships []RelationshipConfig `yaml:"relationships"`
}

type AttributeConfig struct {
	Name     string `yaml:"name"`
	Column   string `yaml:"column"`
	Kind     string `yaml:"kind"`
	Nullable bool   `yaml:"nullable"`
}

type RelationshipConfig struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	// Type is many_to_one or one_to_many
	Type string `yaml:"type"`
	// Local and Remote are a shorthand for a single key pair
	Local  string      `yaml:"local"`
	Remote string      `yaml:"remote"`
	Keys   []KeyConfig `yaml:"keys"`
}

type KeyConfig struct {
	Local  string `yaml:"local"`
	Remote string `yaml:"remote"`
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Config{
		Logger: LoggerConfig{
			Level:  "info",
			Type:   "text",
			Output: "stderr",
		},
		Search: SearchConfig{
			DefaultPageSize: DefaultPageSize,
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}
	if cfg.Search.DefaultPageSize < 0 {
		return Config{}, fmt.Errorf("invalid default page size: %d", cfg.Search.DefaultPageSize)
	}
	return cfg, nil
}

// NewLogger builds the logger; a nil w selects the configured output.
func (cfg Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	return parseLoggerConfig(cfg.Logger, w)
}

func parseLoggerConfig(cfg LoggerConfig, w io.Writer) (*slog.Logger, error) {
	var handler slog.Handler

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	if w == nil {
		switch cfg.Output {
		case "stdout":
			w = os.Stdout
		case "stderr", "":
			w = os.Stderr
		default:
			return nil, fmt.Errorf("invalid log output: %s", cfg.Output)
		}
	}

	switch cfg.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level, AddSource: true})
	default:
		return nil, fmt.Errorf("invalid log type: %s", cfg.Type)
	}

	return slog.New(handler), nil
}

func (cfg Config) Dialect() (sqlcriteria.Dialect, error) {
	return sqlcriteria.DialectByName(cfg.Database.Driver)
}

func (cfg Config) NewCompiler(registry *metadata.Registry) *criteria.Compiler {
	evaluator := criteria.NewEvaluator(criteria.CaseSensitive(cfg.Search.CaseSensitive))
	return criteria.NewCompiler(registry, evaluator)
}

// Registry builds the metadata table of the configured entities.
func (cfg Config) Registry() (*metadata.Registry, error) {
	var result error
	b := metadata.NewRegistryBuilder()
	for _, ec := range cfg.Entities {
		def := metadata.EntityDefinition{
			Name:       ec.Name,
			Table:      ec.Table,
			PrimaryKey: ec.PrimaryKey,
		}
		for _, ac := range ec.Attributes {
			kind, err := metadata.ParseKind(ac.Kind)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("entity %s: attribute %s: %w", ec.Name, ac.Name, err))
				continue
			}
			def.Attributes = append(def.Attributes, metadata.Attribute{
				Name:     ac.Name,
				Column:   ac.Column,
				Kind:     kind,
				Nullable: ac.Nullable,
			})
		}
		for _, rc := range ec.Relationships {
			rel, err := parseRelationship(rc)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("entity %s: relationship %s: %w", ec.Name, rc.Name, err))
				continue
			}
			def.Relationships = append(def.Relationships, rel)
		}
		b.Add(def)
	}
	if result != nil {
		return nil, result
	}
	return b.Build()
}

func parseRelationship(rc RelationshipConfig) (metadata.Relationship, error) {
	rel := metadata.Relationship{
		Name:   rc.Name,
		Target: rc.Target,
	}
	switch rc.Type {
	case "many_to_one", "":
	case "one_to_many":
		rel.ToMany = true
	default:
		return rel, fmt.Errorf("invalid relationship type: %s", rc.Type)
	}
	if rc.Local != "" || rc.Remote != "" {
		rel.Keys = append(rel.Keys, metadata.KeyPair{Local: rc.Local, Remote: rc.Remote})
	}
	for _, k := range rc.Keys {
		rel.Keys = append(rel.Keys, metadata.KeyPair{Local: k.Local, Remote: k.Remote})
	}
	return rel, nil
}
