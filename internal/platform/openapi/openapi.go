package openapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Param is a path or query parameter.
type Param struct {
	Name        string
	In          string
	Type        string
	Description string
}

// Response documents one status code. Schema names a component; empty
// means the response has no body worth describing.
type Response struct {
	Description string
	Schema      string
	Array       bool
}

// Operation is one documented route. Path uses echo syntax (":id"); it is
// rewritten to OpenAPI templating when the document is built.
type Operation struct {
	Method        string
	Path          string
	Summary       string
	Tag           string
	OperationID   string
	Secured       bool
	Params        []Param
	RequestSchema string
	Responses     map[int]Response
}

// Generator assembles an OpenAPI 3.0 document from operations and schemas
// registered by each domain package.
type Generator struct {
	title       string
	version     string
	description string
	ops         []Operation
	schemas     map[string]interface{}
}

func NewGenerator(title, version, description string) *Generator {
	return &Generator{
		title:       title,
		version:     version,
		description: description,
		schemas:     map[string]interface{}{"Error": errorSchema()},
	}
}

// AddSchema registers a component schema. A later call with the same name
// replaces the earlier one.
func (g *Generator) AddSchema(name string, schema map[string]interface{}) {
	g.schemas[name] = schema
}

func (g *Generator) AddOperation(ops ...Operation) {
	g.ops = append(g.ops, ops...)
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := make(map[string]interface{})
	tagSet := map[string]bool{}

	for _, op := range g.ops {
		p := templatePath(op.Path)
		item, _ := paths[p].(map[string]interface{})
		if item == nil {
			item = make(map[string]interface{})
			paths[p] = item
		}
		item[strings.ToLower(op.Method)] = g.buildOperation(op)
		if op.Tag != "" {
			tagSet[op.Tag] = true
		}
	}

	tags := make([]map[string]string, 0, len(tagSet))
	for _, name := range sortedKeys(tagSet) {
		tags = append(tags, map[string]string{"name": name})
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       g.title,
			"version":     g.version,
			"description": g.description,
		},
		"tags":  tags,
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": g.schemas,
			"securitySchemes": map[string]interface{}{
				"bearerAuth": map[string]interface{}{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
	}
}

func (g *Generator) buildOperation(op Operation) map[string]interface{} {
	out := map[string]interface{}{
		"summary":     op.Summary,
		"operationId": op.OperationID,
	}
	if op.Tag != "" {
		out["tags"] = []string{op.Tag}
	}
	if len(op.Params) > 0 {
		params := make([]map[string]interface{}, 0, len(op.Params))
		for _, p := range op.Params {
			params = append(params, map[string]interface{}{
				"name":        p.Name,
				"in":          p.In,
				"required":    p.In == "path",
				"description": p.Description,
				"schema":      map[string]string{"type": p.Type},
			})
		}
		out["parameters"] = params
	}
	if op.RequestSchema != "" {
		out["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				echo.MIMEApplicationJSON: map[string]interface{}{
					"schema": Ref(op.RequestSchema),
				},
			},
		}
	}
	if op.Secured {
		out["security"] = []map[string][]string{{"bearerAuth": {}}}
	}

	responses := make(map[string]interface{}, len(op.Responses))
	for code, r := range op.Responses {
		responses[strconv.Itoa(code)] = buildResponse(r)
	}
	out["responses"] = responses
	return out
}

func buildResponse(r Response) map[string]interface{} {
	out := map[string]interface{}{"description": r.Description}
	if r.Schema == "" {
		return out
	}
	schema := Ref(r.Schema)
	if r.Array {
		schema = ArrayOf(schema)
	}
	out["content"] = map[string]interface{}{
		echo.MIMEApplicationJSON: map[string]interface{}{"schema": schema},
	}
	return out
}

// templatePath turns "/chat/:chatSessionId/history" into
// "/chat/{chatSessionId}/history".
func templatePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
