package httpapi

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"html/template"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

const (
	openAPIPath     = "/openapi.yaml"
	openAPIJSONPath = "/openapi.json"
	swaggerTitle    = "Asset Draft API Docs"
)

//go:embed openapi.yaml
var openAPISpec []byte

var openAPIETag = sync.OnceValue(func() string { return etagOf(openAPISpec) })

// openAPIJSON is the embedded document re-encoded as JSON for clients that
// cannot read YAML.
var openAPIJSON = sync.OnceValues(func() ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		return nil, err
	}
	return sonic.Marshal(doc)
})

func etagOf(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

var swaggerPage = template.Must(template.New("swagger").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({url: {{.SpecURL}}, dom_id: '#swagger-ui', deepLinking: true});
    </script>
  </body>
</html>`))

var swaggerHTML = sync.OnceValues(func() ([]byte, error) {
	var buf bytes.Buffer
	err := swaggerPage.Execute(&buf, struct{ Title, SpecURL string }{swaggerTitle, openAPIPath})
	return buf.Bytes(), err
})

func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	_, span := startSpan(r.Context(), "httpapi.Handler.OpenAPI")
	defer span.End()

	serveDocument(w, r, openAPISpec, openAPIETag(), "application/yaml; charset=utf-8")
}

func (h *Handler) OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenAPIJSON")
	defer span.End()

	body, err := openAPIJSON()
	if err != nil {
		h.logger.ErrorContext(ctx, "convert openapi document", "error", err)
		writeInternalError(ctx, w)
		return
	}
	serveDocument(w, r, body, etagOf(body), "application/json")
}

func serveDocument(w http.ResponseWriter, r *http.Request, body []byte, etag, contentType string) {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

func (h *Handler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwaggerUI")
	defer span.End()

	page, err := swaggerHTML()
	if err != nil {
		h.logger.ErrorContext(ctx, "render swagger page", "error", err)
		writeInternalError(ctx, w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
