package models

// ScopeType marks the verb-routing scope set by member/collection blocks
type ScopeType int

const (
	ScopeNone ScopeType = iota
	ScopeMember
	ScopeCollection
)

// RouteContext is the nesting state threaded through the route walk. It is
// always passed and derived by value: every nesting handler works on its own
// copy, so sibling branches never observe each other's derivations.
type RouteContext struct {
	PathPrefix    string    // accumulated URL prefix
	ModulePrefix  string    // accumulated controller module prefix, trailing "/"
	Controller    string    // controller override from scope/with_options
	ResourceName  string    // enclosing resource name, empty outside resources
	ResourceParam string    // id parameter of the enclosing resource, ":id" by default
	Scope         ScopeType // member/collection flag for bare verb routes
	AsPrefix      string    // route helper name prefix (recorded, unused downstream)
}

// NewRouteContext returns the root context for a route file walk
func NewRouteContext() RouteContext {
	return RouteContext{ResourceParam: ":id"}
}
