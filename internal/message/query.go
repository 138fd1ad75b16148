package message

import "strings"

// StripQuery returns path without its query string.
func StripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// ExtractQuery returns the query parameters of path.
//
//	ExtractQuery("/x?a=1&b=2") // map[a:1 b:2]
//	ExtractQuery("/x")         // map[]
//
// A pair without '=' or with an empty key or value makes the whole result
// empty. Values are returned as sent, without percent-decoding.
func ExtractQuery(path string) map[string]string {
	params := make(map[string]string)

	i := strings.IndexByte(path, '?')
	if i < 0 {
		return params
	}
	query := path[i+1:]

	for query != "" {
		pair, rest, _ := strings.Cut(query, "&")
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			return map[string]string{}
		}
		params[key] = value
		query = rest
	}

	return params
}
