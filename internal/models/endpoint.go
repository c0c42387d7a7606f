package models

// AuthStatus is the tri-state authentication finding for an endpoint.
// An endpoint starts out AuthUnknown and stays there unless its controller
// could be resolved.
type AuthStatus int

const (
	AuthUnknown AuthStatus = iota
	AuthNone
	AuthRequired
)

// String returns the display form of an auth status
func (s AuthStatus) String() string {
	switch s {
	case AuthRequired:
		return "authenticated"
	case AuthNone:
		return "UNPROTECTED"
	default:
		return "unknown"
	}
}

// ParameterLocation identifies where a request parameter travels
type ParameterLocation string

const (
	LocationPath  ParameterLocation = "path"
	LocationQuery ParameterLocation = "query"
	LocationBody  ParameterLocation = "body"
)

// Parameter represents a single request parameter discovered for an endpoint
type Parameter struct {
	Name     string            // parameter name as declared
	Location ParameterLocation // path, query or body
	Type     string            // best-effort type, defaults to "string"
	Required bool              // whether the parameter is mandatory
}

// Endpoint represents one discovered route. Endpoints are created by the
// route resolution engine and later mutated in place by the controller
// scanner; no structural route field changes after scanning begins.
type Endpoint struct {
	Method          string      // GET, POST, PUT, PATCH, DELETE, or "*" for mounts
	Path            string      // normalized path, parameters written :name
	Controller      string      // controller identifier, e.g. api/v1/users
	Action          string      // action name, e.g. show
	PathParams      []string    // ordered parameter names derived from Path
	BodyParams      []Parameter // request body parameters from strong params
	AuthFilters     []string    // names of active auth filters
	HasAuth         AuthStatus  // tri-state auth finding
	SourceFile      string      // route file, relative to the repo root
	SourceLine      int         // 1-based line of the declaration
	Condition       string      // verbatim condition text, empty outside conditionals
	IsMountedEngine bool        // endpoint is an opaque mounted engine
	EngineName      string      // mounted engine identifier
	IsRedirect      bool        // route target is a redirect
	IsDynamic       bool        // produced inside an unenumerable loop
}
