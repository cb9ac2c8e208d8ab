// Package routes names the HTTP routes of the server and builds URLs
// from them.
package routes

import (
	"fmt"
	"net/url"
	"strings"
)

// Route names.
const (
	Detail   = "detail"
	List     = "list"
	Redirect = "redirect"
	Update   = "update"
	Login    = "login"
	Logout   = "logout"
	Health   = "health"

	AdminList       = "admin:list"
	AdminAdd        = "admin:add"
	AdminChange     = "admin:change"
	AdminDeactivate = "admin:deactivate"
	AdminExport     = "admin:export"
)

var paths = map[string]string{
	Detail:   "/accounts/{email}/",
	List:     "/accounts/",
	Redirect: "/accounts/~redirect/",
	Update:   "/accounts/~update/",
	Login:    "/login",
	Logout:   "/logout",
	Health:   "/healthz",

	AdminList:       "/admin/accounts/",
	AdminAdd:        "/admin/accounts/add/",
	AdminChange:     "/admin/accounts/{email}/change/",
	AdminDeactivate: "/admin/accounts/{email}/deactivate/",
	AdminExport:     "/admin/accounts/export/",
}

// Path returns the ServeMux pattern path registered for name, or "" when
// the name is unknown.
func Path(name string) string {
	return paths[name]
}

// Reverse substitutes args, path-escaped, into the wildcards of the named
// route in order.
func Reverse(name string, args ...string) (string, error) {
	p, ok := paths[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}

	var b strings.Builder
	rest := p
	used := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("malformed route %q", name)
		}
		if used >= len(args) {
			return "", fmt.Errorf("route %q: missing argument for %s", name, rest[open:open+end+1])
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(args[used]))
		used++
		rest = rest[open+end+1:]
	}

	if used != len(args) {
		return "", fmt.Errorf("route %q: expected %d arguments, got %d", name, used, len(args))
	}
	return b.String(), nil
}

// MustReverse is Reverse for names and arguments known to be valid.
func MustReverse(name string, args ...string) string {
	u, err := Reverse(name, args...)
	if err != nil {
		panic(err)
	}
	return u
}
