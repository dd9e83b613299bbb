package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Phases        []Phase       `toml:"phases"`
	Exclude       Exclude       `toml:"exclude"`
	Report        Report        `toml:"report"`
	Marker        Marker        `toml:"marker"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Caches        Caches        `toml:"caches"`
	Syntax        Syntax        `toml:"syntax"`
	Redact        Redact        `toml:"redact"`
	Publish       Publish       `toml:"publish"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	ConfigDir   string `toml:"config_dir"`
	StateDir    string `toml:"state_dir"`
	DatabaseDir string `toml:"database_dir"`
	OutputDir   string `toml:"output_dir"`
}

// Phase is one documentation phase: a titled, ordered list of files.
// ExtractLogic routes the files through the logic/rendering partitioner.
type Phase struct {
	Number       int      `toml:"number"`
	Title        string   `toml:"title"`
	Description  string   `toml:"description"`
	ExtractLogic bool     `toml:"extract_logic"`
	Files        []string `toml:"files"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Report struct {
	Title           string              `toml:"title"`
	Subtitle        string              `toml:"subtitle"`
	Markdown        string              `toml:"markdown"`
	TSV             string              `toml:"tsv"`
	MaxFunctions    int                 `toml:"max_functions"`
	MaxExcerptChars int                 `toml:"max_excerpt_chars"`
	MaxListingChars int                 `toml:"max_listing_chars"`
	TableOfContents *bool               `toml:"table_of_contents"`
	Collapsible     *bool               `toml:"collapsible_sections"`
	UpdateMarkdown  []MarkdownInjection `toml:"update_markdown"`
}

type MarkdownInjection struct {
	File   string `toml:"file"`
	Marker string `toml:"marker"`
}

type Marker struct {
	Enabled  *bool  `toml:"enabled"`
	DryRun   bool   `toml:"dry_run"`
	Template string `toml:"template"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	Retention   time.Duration `toml:"retention"`
}

type Watch struct {
	Debounce             time.Duration `toml:"debounce"`
	MaxRebuildsPerMinute int           `toml:"max_rebuilds_per_minute"`
	ReloadConfigOnChange bool          `toml:"reload_config_on_change"`
}

type Caches struct {
	FileContents int `toml:"file_contents"`
}

type Syntax struct {
	Enabled bool `toml:"enabled"`
}

// Redact masks credential-like values in listings and excerpts before they
// are written to the report.
type Redact struct {
	Enabled          bool            `toml:"enabled"`
	EntropyThreshold float64         `toml:"entropy_threshold"`
	MinTokenLength   int             `toml:"min_token_length"`
	Patterns         []RedactPattern `toml:"patterns"`
}

type RedactPattern struct {
	Name     string `toml:"name"`
	Regex    string `toml:"regex"`
	Severity string `toml:"severity"`
}

type Publish struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	OTLPInsecure  bool   `toml:"otlp_insecure"`
	ServiceName   string `toml:"service_name"`
	EnableTracing bool   `toml:"enable_tracing"`
	EnableMetrics bool   `toml:"enable_metrics"`
}

// MarkersEnabled reports whether source files get the documented-by marker.
func (c *Config) MarkersEnabled() bool {
	return c.Marker.Enabled == nil || *c.Marker.Enabled
}

// AllFiles returns every configured file in phase order, duplicates included.
func (c *Config) AllFiles() []string {
	var out []string
	for _, phase := range c.Phases {
		out = append(out, phase.Files...)
	}
	return out
}

// PhaseByNumber returns the phase with the given number.
func (c *Config) PhaseByNumber(n int) (Phase, bool) {
	for _, phase := range c.Phases {
		if phase.Number == n {
			return phase, true
		}
	}
	return Phase{}, false
}

func boolValue(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func (r Report) TOCEnabled() bool         { return boolValue(r.TableOfContents, true) }
func (r Report) CollapsibleEnabled() bool { return boolValue(r.Collapsible, true) }
