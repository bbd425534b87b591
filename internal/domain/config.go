package domain

// Config is the runtime configuration shared across services and handlers.
type Config struct {
	// PublicHost is the base URL generated manifest and canvas paths use.
	PublicHost string `yaml:"publicHost"`
	// ImageHost is the base of rewritable image request ids.
	ImageHost string `yaml:"imageHost"`
	// AssetSourceTemplate is the named-query URL template for fetching the
	// authoritative asset-source manifest, with {customer} and {manifest}
	// placeholders.
	AssetSourceTemplate string `yaml:"assetSourceTemplate"`
}
