package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// JoinURL resolves path against base and merges params into the query.
// An absolute path (with scheme) ignores base.
func JoinURL(base, path string, params map[string]string) (string, error) {
	var target string
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		target = path
	} else if path == "" {
		target = base
	} else {
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", target, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
