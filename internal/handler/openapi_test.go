package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/map-collection/internal/handler"
	"github.com/pkordes/map-collection/spec"
)

type openAPIDoc struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

// docPath maps a chi route pattern onto the document's path syntax.
func docPath(pattern string) string {
	if rest, ok := strings.CutSuffix(pattern, "/*"); ok {
		return rest + "/{key}"
	}
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return pattern
}

func TestOpenAPIDocumentsEveryRoute(t *testing.T) {
	var doc openAPIDoc
	require.NoError(t, yaml.Unmarshal(spec.OpenAPI, &doc))
	require.NotEmpty(t, doc.Paths)

	routes, ok := newRouter(handler.Services{}).(chi.Routes)
	require.True(t, ok, "Routes returns a chi router")

	seen := map[string]bool{}
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		p := docPath(route)
		seen[p] = true
		ops, ok := doc.Paths[p]
		if !assert.True(t, ok, "route %s is not documented", p) {
			return nil
		}
		if p == "/metrics" {
			return nil
		}
		_, ok = ops[strings.ToLower(method)]
		assert.True(t, ok, "%s %s is not documented", method, p)
		return nil
	})
	require.NoError(t, err)

	for p := range doc.Paths {
		assert.True(t, seen[p], "documented path %s has no route", p)
	}
}
