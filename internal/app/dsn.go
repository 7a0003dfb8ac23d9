package app

import (
	"net/url"
	"strings"
)

const tracedQueryLimit = 512

// postgresDSN is DB_URL prepared for lib/pq plus the database name used as
// the db.name span attribute.
type postgresDSN struct {
	conn string
	name string
}

// parsePostgresDSN accepts both URL and key=value forms. An application_name
// is added to URL forms that do not set one.
func parsePostgresDSN(raw, appName string) postgresDSN {
	raw = strings.TrimSpace(raw)
	dsn := postgresDSN{conn: raw}

	parsed, err := url.Parse(raw)
	if err == nil && parsed.Scheme != "" {
		dsn.name = strings.Trim(parsed.Path, "/ ")
		q := parsed.Query()
		if appName = strings.TrimSpace(appName); appName != "" && !q.Has("application_name") {
			q.Set("application_name", appName)
			parsed.RawQuery = q.Encode()
			dsn.conn = parsed.String()
		}
		return dsn
	}

	for _, field := range strings.Fields(raw) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key == "dbname" {
			dsn.name = strings.Trim(value, `"'`)
			break
		}
	}
	return dsn
}

// traceQuery collapses whitespace so multi-line statements read well in
// span attributes.
func traceQuery(query string) string {
	flat := strings.Join(strings.Fields(query), " ")
	if len(flat) > tracedQueryLimit {
		return flat[:tracedQueryLimit] + "..."
	}
	return flat
}
