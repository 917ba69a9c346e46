package marketplace

import (
	"net/url"
	"strconv"
	"strings"
)

// BuildURL returns the listing URL for a window of `max` records starting at `offset`.
// Parameters always come out in the same order so the same window always maps to the
// same URL: excludeTags, max, offset, orderBy then one products entry per product.
func (c Config) BuildURL(offset, max int) string {
	var query strings.Builder
	appendParam := func(key, value string) {
		if query.Len() > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(key))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(value))
	}

	if c.ExcludeTags != "" {
		appendParam("excludeTags", c.ExcludeTags)
	}
	appendParam("max", strconv.Itoa(max))
	appendParam("offset", strconv.Itoa(offset))
	if c.OrderBy != "" {
		appendParam("orderBy", c.OrderBy)
	}
	for _, p := range c.Products {
		appendParam("products", p)
	}

	separator := "?"
	if strings.Contains(c.BaseURL, "?") {
		separator = "&"
	}
	return c.BaseURL + separator + query.String()
}
