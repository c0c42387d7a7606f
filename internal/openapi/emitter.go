// Package openapi turns the discovered endpoint list into an OpenAPI 3.0.3
// description document with the auth findings attached as x- extensions.
package openapi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/railscan/railscan/internal/models"
)

// Options control which endpoints the document includes
type Options struct {
	Title              string // document title, usually the repo name
	IncludeConditional bool   // include routes declared inside conditionals
	ExcludeEngines     bool   // drop mounted engine paths
}

var pathParamSegment = regexp.MustCompile(`:(\w+)`)

// convertPath rewrites Rails :param segments into OpenAPI {param} form
func convertPath(path string) string {
	return pathParamSegment.ReplaceAllString(path, "{$1}")
}

// Build assembles the description document from the endpoint list
func Build(endpoints []*models.Endpoint, opts Options) *Document {
	title := opts.Title
	if title == "" {
		title = "Discovered API"
	}

	doc := &Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       title,
			Description: "Statically discovered API surface",
			Version:     "0.1.0",
		},
		Paths: make(map[string]*PathItem),
		Components: Components{
			SecuritySchemes: map[string]SecurityScheme{
				"bearerAuth": {
					Type:         "http",
					Scheme:       "bearer",
					BearerFormat: "JWT",
					Description:  "Authorization header using Bearer token",
				},
			},
		},
	}

	seen := make(map[string]bool)
	for _, ep := range endpoints {
		if ep.Condition != "" && !opts.IncludeConditional {
			continue
		}
		if ep.IsMountedEngine {
			if opts.ExcludeEngines {
				continue
			}
			path := convertPath(ep.Path)
			item := doc.Paths[path]
			if item == nil {
				item = &PathItem{}
				doc.Paths[path] = item
			}
			item.XMountedEngine = ep.EngineName
			continue
		}

		path := convertPath(ep.Path)
		key := ep.Method + ":" + path
		if seen[key] {
			continue
		}
		seen[key] = true

		item := doc.Paths[path]
		if item == nil {
			item = &PathItem{}
			doc.Paths[path] = item
		}

		op := buildOperation(ep)
		switch ep.Method {
		case "GET":
			item.Get = op
		case "POST":
			item.Post = op
		case "PUT":
			item.Put = op
		case "PATCH":
			item.Patch = op
		case "DELETE":
			item.Delete = op
		}
	}

	return doc
}

// buildOperation maps one endpoint onto an OpenAPI operation
func buildOperation(ep *models.Endpoint) *Operation {
	op := &Operation{
		Responses: map[string]Response{
			"200": {Description: "Successful response"},
		},
		XAuthStatus: ep.HasAuth.String(),
		XController: ep.Controller,
		XCondition:  ep.Condition,
		XDynamic:    ep.IsDynamic,
		XRedirect:   ep.IsRedirect,
	}

	if ep.Controller != "" && ep.Action != "" {
		op.Summary = fmt.Sprintf("%s#%s", ep.Controller, ep.Action)
		op.OperationID = operationID(ep)
	}

	for _, name := range ep.PathParams {
		op.Parameters = append(op.Parameters, Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   Schema{Type: "string"},
		})
	}

	if len(ep.BodyParams) > 0 {
		properties := make(map[string]Schema, len(ep.BodyParams))
		for _, param := range ep.BodyParams {
			properties[param.Name] = Schema{Type: param.Type}
		}
		op.RequestBody = &RequestBody{
			Content: map[string]MediaType{
				"application/json": {
					Schema: Schema{Type: "object", Properties: properties},
				},
			},
		}
	}

	if ep.HasAuth == models.AuthRequired {
		op.XAuthFilters = ep.AuthFilters
		op.Security = []map[string][]string{{"bearerAuth": {}}}
	}

	return op
}

// operationID builds a stable identifier like getApiV1UsersShow
func operationID(ep *models.Endpoint) string {
	parts := strings.FieldsFunc(ep.Controller+"/"+ep.Action, func(r rune) bool {
		return r == '/' || r == '_'
	})
	var b strings.Builder
	b.WriteString(strings.ToLower(ep.Method))
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

// EncodeYAML renders the document as YAML
func EncodeYAML(doc *Document) (string, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document as yaml: %w", err)
	}
	return string(out), nil
}

// EncodeJSON renders the document as indented JSON
func EncodeJSON(doc *Document) (string, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode document as json: %w", err)
	}
	return string(out), nil
}
