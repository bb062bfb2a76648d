package config

// OverpassConfig scopes network queries
type OverpassConfig struct {
	URL            string   `yaml:"url" validate:"omitempty,url"`
	Area           string   `yaml:"area" validate:"required"`
	RouteType      string   `yaml:"routeType" validate:"required"`
	TimeoutSeconds int      `yaml:"timeoutSeconds" validate:"gte=10,lte=25"`
	StopTags       []string `yaml:"stopTags" validate:"min=1"`
}

// ReconstructConfig contains reconstructor settings
type ReconstructConfig struct {
	Concurrency int  `yaml:"concurrency" validate:"gte=1"`
	Verbose     bool `yaml:"verbose"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// MetricsConfig contains Prometheus endpoint configuration. Empty address disables the standalone metrics server
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// NATSConfig contains publisher configuration. Empty URL disables publishing
type NATSConfig struct {
	URL           string `yaml:"url" validate:"omitempty,url"`
	SubjectPrefix string `yaml:"subjectPrefix" validate:"required"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Overpass    OverpassConfig    `yaml:"overpass"`
	Reconstruct ReconstructConfig `yaml:"reconstruct"`
	Server      ServerConfig      `yaml:"server"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	NATS        NATSConfig        `yaml:"nats"`
}
