package waapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage      = 1
	defaultListLimit = 50
)

// ListOptions selects a page of a list endpoint. Zero values use the
// endpoint's default page and limit.
type ListOptions struct {
	Page  int
	Limit int
}

func (o ListOptions) query(defaultLimit int) map[string]string {
	page, limit := o.Page, o.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}
}

// escapeID validates and path-escapes an identifier used in a request path.
func escapeID(name, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return url.PathEscape(id), nil
}

func requireArg(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return nil
}

// requireArgs checks name/value pairs in order.
func requireArgs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := requireArg(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// putString sets a body field only when value is non-empty.
func putString(body map[string]any, key, value string) {
	if value != "" {
		body[key] = value
	}
}

// putParam sets a query or form parameter only when value is non-empty.
func putParam(query map[string]string, key, value string) {
	if value != "" {
		query[key] = value
	}
}
