package tenant

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var keywordSchemaPattern = regexp.MustCompile(`\s*\bschema=\S+`)

// ScopedDSN converts a store descriptor into a DSN for schema. The schema
// parameter is not understood by Postgres drivers, so it is removed; when
// searchPath is true the schema is applied as the search_path runtime
// parameter instead.
func ScopedDSN(descriptor, schema string, searchPath bool) (string, error) {
	if strings.HasPrefix(descriptor, "postgres://") || strings.HasPrefix(descriptor, "postgresql://") {
		u, err := url.Parse(descriptor)
		if err != nil {
			return "", fmt.Errorf("invalid store descriptor: %w", err)
		}
		q := u.Query()
		q.Del("schema")
		if searchPath {
			q.Set("search_path", schema)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	// key=value descriptor
	dsn := strings.TrimSpace(keywordSchemaPattern.ReplaceAllString(descriptor, ""))
	if searchPath {
		dsn = strings.TrimSpace(dsn + " search_path=" + schema)
	}
	return dsn, nil
}
