package components

import "strings"

type PageMeta struct {
	Title       string
	Description string
	Path        string
}

func (m PageMeta) canonicalURL(appURL string) string {
	base := strings.TrimRight(strings.TrimSpace(appURL), "/")
	if base == "" {
		base = "http://127.0.0.1:8080"
	}
	return base + normalizePath(m.Path)
}

func (m PageMeta) fullTitle(appName string) string {
	title := strings.TrimSpace(m.Title)
	name := strings.TrimSpace(appName)
	if title == "" {
		return name
	}
	if name == "" || strings.EqualFold(title, name) {
		return title
	}
	return title + " | " + name
}

func normalizePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// LayoutOptions carries page-level switches for the shared document shell.
type LayoutOptions struct {
	AppName string
	AppURL  string
	// GoogleClientID loads the Google Identity Services script when set.
	GoogleClientID string
}

func (o LayoutOptions) googleEnabled() bool {
	return strings.TrimSpace(o.GoogleClientID) != ""
}
