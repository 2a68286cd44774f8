package blueprint

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petsYAML = `
openapi: 3.0.0
info:
  title: Pets
  version: 1.2.0
paths:
  /pets:
    get:
      summary: List pets
      responses:
        "200":
          description: ok
          content:
            application/json:
              example:
                - id: 1
    post:
      operationId: createPet
      responses:
        "201":
          description: created
        "400":
          description: bad
  /pets/{petId}:
    get:
      summary: Get pet
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                example:
                  id: 42
                  name: rex
`

func TestIngest(t *testing.T) {
	bp, err := Ingest([]byte(petsYAML))
	require.NoError(t, err)

	assert.Equal(t, "Pets", bp.Title)
	assert.Equal(t, "1.2.0", bp.Version)
	require.Len(t, bp.Endpoints, 3)

	assert.Equal(t, "GET", bp.Endpoints[0].Method)
	assert.Equal(t, "/pets", bp.Endpoints[0].Path)
	assert.JSONEq(t, `[{"id":1}]`, string(bp.Endpoints[0].Example))

	assert.Equal(t, "POST", bp.Endpoints[1].Method)
	assert.Equal(t, "createPet", bp.Endpoints[1].Summary)
	assert.Equal(t, http.StatusCreated, bp.Endpoints[1].Status)

	assert.Equal(t, "/pets/:petId", bp.Endpoints[2].Path)
	assert.JSONEq(t, `{"id":42,"name":"rex"}`, string(bp.Endpoints[2].Example))
}

func TestIngestRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "  "},
		{name: "not a document", raw: "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ingest([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestRoutes(t *testing.T) {
	bp, err := Ingest([]byte(petsYAML))
	require.NoError(t, err)

	routes := bp.Routes()
	require.Len(t, routes, 3)
	for _, r := range routes {
		assert.NoError(t, r.Validate())
	}
	assert.Equal(t, http.StatusCreated, routes[1].StatusCode)
	assert.JSONEq(t, `{"method":"POST","path":"/pets","summary":"createPet"}`, string(routes[1].Response))
}
