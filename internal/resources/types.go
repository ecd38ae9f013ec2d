package resources

// Ref points at another entity by id.
type Ref struct {
	ID string `mapstructure:"id" validate:"required"`
}

type Service struct {
	ID             string   `mapstructure:"id"`
	Name           string   `mapstructure:"name" validate:"required"`
	Protocol       string   `mapstructure:"protocol" validate:"omitempty,oneof=http https grpc grpcs tcp tls tls_passthrough udp ws wss"`
	Host           string   `mapstructure:"host" validate:"required_without=URL"`
	Port           int      `mapstructure:"port" validate:"omitempty,min=0,max=65535"`
	Path           string   `mapstructure:"path"`
	URL            string   `mapstructure:"url" validate:"omitempty,url"`
	Retries        int      `mapstructure:"retries" validate:"omitempty,min=0"`
	ConnectTimeout int      `mapstructure:"connect_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	Enabled        *bool    `mapstructure:"enabled"`
	Tags           []string `mapstructure:"tags"`
}

type Route struct {
	ID            string              `mapstructure:"id"`
	Name          string              `mapstructure:"name" validate:"required"`
	Protocols     []string            `mapstructure:"protocols" validate:"dive,oneof=http https grpc grpcs tcp tls udp ws wss"`
	Methods       []string            `mapstructure:"methods"`
	Hosts         []string            `mapstructure:"hosts"`
	Paths         []string            `mapstructure:"paths"`
	Headers       map[string][]string `mapstructure:"headers"`
	StripPath     *bool               `mapstructure:"strip_path"`
	PreserveHost  *bool               `mapstructure:"preserve_host"`
	RegexPriority int                 `mapstructure:"regex_priority"`
	Service       *Ref                `mapstructure:"service"`
	Tags          []string            `mapstructure:"tags"`
}

type Consumer struct {
	ID       string   `mapstructure:"id"`
	Username string   `mapstructure:"username" validate:"required_without=CustomID"`
	CustomID string   `mapstructure:"custom_id"`
	Tags     []string `mapstructure:"tags"`
}

type Plugin struct {
	ID        string         `mapstructure:"id"`
	Name      string         `mapstructure:"name" validate:"required"`
	Config    map[string]any `mapstructure:"config"`
	Enabled   *bool          `mapstructure:"enabled"`
	Protocols []string       `mapstructure:"protocols"`
	Service   *Ref           `mapstructure:"service"`
	Route     *Ref           `mapstructure:"route"`
	Consumer  *Ref           `mapstructure:"consumer"`
	Tags      []string       `mapstructure:"tags"`
}

type Upstream struct {
	ID                string         `mapstructure:"id"`
	Name              string         `mapstructure:"name" validate:"required"`
	Algorithm         string         `mapstructure:"algorithm" validate:"omitempty,oneof=round-robin consistent-hashing least-connections latency"`
	Slots             int            `mapstructure:"slots" validate:"omitempty,min=10,max=65536"`
	HashOn            string         `mapstructure:"hash_on"`
	HashFallback      string         `mapstructure:"hash_fallback"`
	HostHeader        string         `mapstructure:"host_header"`
	Healthchecks      map[string]any `mapstructure:"healthchecks"`
	ClientCertificate *Ref           `mapstructure:"client_certificate"`
	Tags              []string       `mapstructure:"tags"`
}

type Certificate struct {
	ID      string   `mapstructure:"id"`
	Cert    string   `mapstructure:"cert" validate:"required"`
	Key     string   `mapstructure:"key" validate:"required"`
	CertAlt string   `mapstructure:"cert_alt"`
	KeyAlt  string   `mapstructure:"key_alt"`
	SNIs    []string `mapstructure:"snis"`
	Tags    []string `mapstructure:"tags"`
}
