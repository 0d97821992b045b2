package core

import "strings"

// DeepLinker derives a UI deep-link URL from a symbol and exchange. The
// normalization table and host are configuration, not hard-coded policy.
type DeepLinker struct {
	host            string
	defaultExchange string
	slugs           map[string]string
}

// NewDeepLinker builds a DeepLinker. An empty slugs map or defaultExchange
// falls back to sensible defaults so the analyzer still produces well-formed
// links with no configuration at all.
func NewDeepLinker(host, defaultExchange string, slugs map[string]string) *DeepLinker {
	if host == "" {
		host = "www.example.com"
	}
	if defaultExchange == "" {
		defaultExchange = "nasdaq"
	}
	if slugs == nil {
		slugs = map[string]string{
			"NASDAQ": "nasdaq",
			"NYSE":   "nyse",
			"AMEX":   "amex",
			"ARCA":   "arca",
		}
	}
	return &DeepLinker{host: host, defaultExchange: defaultExchange, slugs: slugs}
}

// Link builds https://{host}/quote/{exchange_slug}-{symbol_lower}.
func (d *DeepLinker) Link(symbol, exchange string) string {
	slug, ok := d.slugs[strings.ToUpper(exchange)]
	if !ok {
		slug = d.defaultExchange
	}
	return "https://" + d.host + "/quote/" + slug + "-" + strings.ToLower(symbol)
}
