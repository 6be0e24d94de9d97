package apiv1

import (
	"context"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specPath = "../../../public/docs/v1/openapi.yml"

var pathParam = regexp.MustCompile(`:([A-Za-z]+)`)

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromFile(specPath)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	return doc
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	doc := loadSpec(t)
	assert.Equal(t, "/api/v1", doc.Servers[0].URL)
	assert.NotNil(t, doc.Components.SecuritySchemes["bearerAuth"])
}

func TestEveryRouteIsDocumented(t *testing.T) {
	doc := loadSpec(t)

	app := fiber.New()
	noop := func(c *fiber.Ctx) error { return c.Next() }
	RegisterHandlers(app.Group("/api/v1"), NewAPIServer(Controllers{}), noop)

	var seen int
	for _, r := range app.GetRoutes(true) {
		if r.Method == fiber.MethodHead || !strings.HasPrefix(r.Path, "/api/v1/") {
			continue
		}
		seen++
		p := pathParam.ReplaceAllString(strings.TrimPrefix(r.Path, "/api/v1"), "{$1}")
		item := doc.Paths.Find(p)
		if !assert.NotNil(t, item, "path %s not documented", p) {
			continue
		}
		assert.NotNil(t, item.GetOperation(r.Method), "%s %s not documented", r.Method, p)
	}
	assert.Equal(t, 17, seen)
}

func TestPublicOperationsHaveNoBearerRequirement(t *testing.T) {
	doc := loadSpec(t)
	for _, p := range []string{"/ping", "/auth/token", "/webhooks/seoworks"} {
		item := doc.Paths.Find(p)
		require.NotNil(t, item, p)
		for _, op := range item.Operations() {
			require.NotNil(t, op.Security, p)
			for _, req := range *op.Security {
				_, bearer := req["bearerAuth"]
				assert.False(t, bearer, p)
			}
		}
	}
}

func TestPingMatchesDocumentedSchema(t *testing.T) {
	doc := loadSpec(t)

	app := fiber.New()
	RegisterHandlers(app.Group("/api/v1"), NewAPIServer(Controllers{}), func(c *fiber.Ctx) error { return c.Next() })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	schema := doc.Components.Schemas["Pong"].Value
	require.NotNil(t, schema)
	assert.NoError(t, schema.VisitJSON(map[string]interface{}{"ping": "pong"}))
}
