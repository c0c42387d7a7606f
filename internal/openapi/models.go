package openapi

// Document is the root of an OpenAPI 3.0.3 description
type Document struct {
	OpenAPI    string               `json:"openapi" yaml:"openapi"`
	Info       Info                 `json:"info" yaml:"info"`
	Paths      map[string]*PathItem `json:"paths" yaml:"paths"`
	Components Components           `json:"components" yaml:"components"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// PathItem holds the operations of one path. Mounted engines carry no
// operations, only the x-mounted-engine marker.
type PathItem struct {
	Get            *Operation `json:"get,omitempty" yaml:"get,omitempty"`
	Post           *Operation `json:"post,omitempty" yaml:"post,omitempty"`
	Put            *Operation `json:"put,omitempty" yaml:"put,omitempty"`
	Patch          *Operation `json:"patch,omitempty" yaml:"patch,omitempty"`
	Delete         *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
	XMountedEngine string     `json:"x-mounted-engine,omitempty" yaml:"x-mounted-engine,omitempty"`
}

// Operation describes one endpoint, with discovery findings attached as
// specification extensions
type Operation struct {
	Summary     string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	OperationID string                `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses" yaml:"responses"`
	Security    []map[string][]string `json:"security,omitempty" yaml:"security,omitempty"`

	XAuthStatus  string   `json:"x-auth-status" yaml:"x-auth-status"`
	XController  string   `json:"x-controller,omitempty" yaml:"x-controller,omitempty"`
	XAuthFilters []string `json:"x-auth-filters,omitempty" yaml:"x-auth-filters,omitempty"`
	XCondition   string   `json:"x-condition,omitempty" yaml:"x-condition,omitempty"`
	XDynamic     bool     `json:"x-dynamic,omitempty" yaml:"x-dynamic,omitempty"`
	XRedirect    bool     `json:"x-redirect,omitempty" yaml:"x-redirect,omitempty"`
}

type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Schema   Schema `json:"schema" yaml:"schema"`
}

type RequestBody struct {
	Content map[string]MediaType `json:"content" yaml:"content"`
}

type MediaType struct {
	Schema Schema `json:"schema" yaml:"schema"`
}

type Schema struct {
	Type       string            `json:"type,omitempty" yaml:"type,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type Response struct {
	Description string `json:"description" yaml:"description"`
}

type Components struct {
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`
}

type SecurityScheme struct {
	Type         string `json:"type" yaml:"type"`
	Scheme       string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}
