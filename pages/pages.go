package pages

import (
	"fmt"
	"html"
	"strings"
)

type Endpoint struct {
	Method      string
	Path        string
	Description string
}

var Endpoints = []Endpoint{
	{"GET", "/health", "Liveness check"},
	{"POST", "/api/extract-audio", "Resolve a videoId or url to an audio descriptor"},
	{"POST", "/api/search-and-extract", "Resolve a query, videoId or url to an audio descriptor"},
	{"GET", "/api/history", "Recent lookups, newest first (when history is enabled)"},
	{"GET", "/metrics", "Prometheus metrics"},
}

var indexTemplate = `
<!DOCTYPE html>
<html>
<head>
    <title>beatbridge</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
        code {
            background: #f4f4f4;
            padding: 2px 4px;
        }
    </style>
</head>
<body>
    <h1>beatbridge</h1>
    <p>Maps a search query, video id or video URL to a playable audio descriptor.</p>
    <ul id="endpoints">
%s
    </ul>
</body>
</html>`

// Index renders the landing page listing the given endpoints.
func Index(endpoints []Endpoint) string {
	var rows strings.Builder
	for _, e := range endpoints {
		fmt.Fprintf(&rows, "        <li><code>%s %s</code> %s</li>\n",
			html.EscapeString(e.Method),
			html.EscapeString(e.Path),
			html.EscapeString(e.Description),
		)
	}
	return fmt.Sprintf(indexTemplate, rows.String())
}
