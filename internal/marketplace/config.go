package marketplace

const DefaultBaseURL = "https://plugins.jetbrains.com/api/searchPlugins"

// DefaultProducts are the IDE product codes every listing is filtered to.
var DefaultProducts = []string{
	"androidstudio",
	"appcode",
	"aqua",
	"clion",
	"dataspell",
	"dbe",
	"fleet",
	"go",
	"idea",
	"idea_ce",
	"mps",
	"phpstorm",
	"pycharm",
	"pycharm_ce",
	"rider",
	"ruby",
	"rust",
	"webstorm",
	"writerside",
}

// DefaultHeaders mimic a desktop browser.
var DefaultHeaders = map[string]string{
	"accept":          "application/json, text/plain",
	"accept-language": "en-US,en;q=0.9",
	"cache-control":   "no-cache",
	"pragma":          "no-cache",
	"user-agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

type Config struct {
	BaseURL     string            `json:"base_url"`
	ExcludeTags string            `json:"exclude_tags"`
	OrderBy     string            `json:"order_by"`
	Products    []string          `json:"products"`
	Headers     map[string]string `json:"headers"`
	// TimeoutSeconds bounds a single request.
	TimeoutSeconds int `json:"timeout_seconds"`
	// CloudflareBypass swaps the transport for one that randomizes the TLS
	// fingerprint and the user agent.
	CloudflareBypass bool `json:"cloudflare_bypass"`
	// DumpDir, when set, receives a text dump of every HTTP exchange.
	DumpDir string `json:"dump_dir"`
}

func DefaultConfig() Config {
	products := make([]string, len(DefaultProducts))
	copy(products, DefaultProducts)
	headers := make(map[string]string, len(DefaultHeaders))
	for k, v := range DefaultHeaders {
		headers[k] = v
	}

	return Config{
		BaseURL:        DefaultBaseURL,
		ExcludeTags:    "internal",
		OrderBy:        "downloads",
		Products:       products,
		Headers:        headers,
		TimeoutSeconds: 30,
	}
}
