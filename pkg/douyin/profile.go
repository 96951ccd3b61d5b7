package douyin

import (
	"net/url"
	"regexp"
	"strings"

	errs "dyscraper/pkg/errors"
)

var secUserIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ResolveSecUserID extracts the creator identifier from a profile URL, a
// "/user/<id>" path or a bare id. Anything else fails before any request is
// made.
func ResolveSecUserID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errs.New(errs.ErrorTypeContext, 0, "no profile given")
	}

	path := input
	if looksLikeURL(input) {
		raw := input
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return "", errs.Wrap(errs.ErrorTypeContext, 0, err, "invalid profile URL")
		}
		host := strings.ToLower(u.Hostname())
		if host != "douyin.com" && !strings.HasSuffix(host, ".douyin.com") {
			return "", errs.New(errs.ErrorTypeContext, 0, "not a Douyin URL: "+input)
		}
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if strings.Contains(path, "/") || strings.HasPrefix(path, "user/") {
		idx := strings.Index(path, "user/")
		if idx < 0 || (idx > 0 && path[idx-1] != '/') {
			return "", errs.New(errs.ErrorTypeContext, 0, "not a Douyin user profile page: "+input)
		}
		path = path[idx+len("user/"):]
		if i := strings.Index(path, "/"); i >= 0 {
			path = path[:i]
		}
	}

	id, err := url.PathUnescape(path)
	if err != nil || id == "" || !secUserIDPattern.MatchString(id) {
		return "", errs.New(errs.ErrorTypeContext, 0, "could not find user ID in "+input)
	}
	return id, nil
}

func looksLikeURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "www.douyin.com") ||
		strings.HasPrefix(lower, "douyin.com")
}
