package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

type Config struct {
	Presentation Presentation `yaml:"presentation"`
	Server       Server       `yaml:"server"`
}

type Presentation struct {
	// PublicHost is the base URL of generated manifest and canvas paths.
	PublicHost string `yaml:"publicHost"`
	// ImageHost is the base of rewritable image request ids.
	ImageHost string `yaml:"imageHost"`
	// AssetSourceTemplate is the named-query URL with {customer} and
	// {manifest} placeholders.
	AssetSourceTemplate string `yaml:"assetSourceTemplate"`
}

type Server struct {
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	Listen        string `yaml:"listen"`
}

func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}

	return config, nil
}

// Domain projects the loaded config onto the runtime config shared with
// services.
func (c Config) Domain() domain.Config {
	return domain.Config{
		PublicHost:          c.Presentation.PublicHost,
		ImageHost:           c.Presentation.ImageHost,
		AssetSourceTemplate: c.Presentation.AssetSourceTemplate,
	}
}
