package routes

import (
	"strings"

	"github.com/railscan/railscan/internal/inflect"
	"github.com/railscan/railscan/internal/models"
	"github.com/railscan/railscan/internal/rubyast"
)

// resourceActions is the canonical action set of a plural resource; a
// singular resource drops index
var resourceActions = []string{"index", "new", "create", "show", "edit", "update", "destroy"}
var singularResourceActions = []string{"new", "create", "show", "edit", "update", "destroy"}

// memberActions require the resource's id segment in their path
var memberActions = map[string]bool{
	"show":    true,
	"edit":    true,
	"update":  true,
	"destroy": true,
}

var actionMethods = map[string]string{
	"index":   "GET",
	"new":     "GET",
	"create":  "POST",
	"show":    "GET",
	"edit":    "GET",
	"destroy": "DELETE",
}

// callOptions wraps the keyword arguments of a DSL call
type callOptions struct {
	nodes map[string]*rubyast.Node
}

func (o callOptions) has(key string) bool {
	_, ok := o.nodes[key]
	return ok
}

func (o callOptions) node(key string) *rubyast.Node {
	return o.nodes[key]
}

// value returns the scalar string value of an option
func (o callOptions) value(key string) string {
	n, ok := o.nodes[key]
	if !ok {
		return ""
	}
	return rubyast.StringValue(n)
}

// list returns an option's value as an action-name list, accepting both
// array literals and single symbols
func (o callOptions) list(key string) []string {
	n, ok := o.nodes[key]
	if !ok {
		return nil
	}
	if elems := rubyast.ArrayElements(n); len(elems) > 0 {
		return elems
	}
	if val := rubyast.StringValue(n); val != "" {
		return []string{val}
	}
	return nil
}

// extractNameAndOpts splits a call's arguments into the first positional
// name and the keyword options
func extractNameAndOpts(args []*rubyast.Node) (string, callOptions) {
	name := ""
	for _, arg := range args {
		switch arg.Kind() {
		case rubyast.KindSymbol, rubyast.KindString:
			if name == "" {
				name = rubyast.StringValue(arg)
			}
		}
	}
	return name, callOptions{nodes: rubyast.HashFromArgs(args)}
}

// filterActions applies only:/except: options to an action set; only takes
// precedence when both are present
func filterActions(all []string, opts callOptions) []string {
	if opts.has("only") {
		allowed := opts.list("only")
		var out []string
		for _, action := range all {
			for _, a := range allowed {
				if a == action {
					out = append(out, action)
					break
				}
			}
		}
		return out
	}
	if opts.has("except") {
		excluded := opts.list("except")
		var out []string
		for _, action := range all {
			skip := false
			for _, a := range excluded {
				if a == action {
					skip = true
					break
				}
			}
			if !skip {
				out = append(out, action)
			}
		}
		return out
	}
	return all
}

// handleResources expands `resources`/`resource` declarations into their
// canonical CRUD endpoints and walks the nested block under a derived
// context recording the new resource
func (r *Resolver) handleResources(site callSite, ctx models.RouteContext, singular bool) {
	name, opts := extractNameAndOpts(site.args)
	if name == "" {
		return
	}

	pathName := name
	if opts.has("path") {
		pathName = opts.value("path")
	}
	controller := name
	if singular {
		controller = inflect.Pluralize(name)
	}
	if opts.has("controller") {
		controller = opts.value("controller")
	}
	param := "id"
	if opts.has("param") {
		param = opts.value("param")
	}

	actions := resourceActions
	if singular {
		actions = singularResourceActions
	}
	actions = filterActions(actions, opts)

	newCtx := ctx
	if !singular && ctx.ResourceName != "" {
		// Nested resource: insert the parent's singularized name plus its
		// id parameter before this resource's own segment.
		parentSingular := inflect.Singularize(ctx.ResourceName)
		parentParam := strings.TrimPrefix(ctx.ResourceParam, ":")
		parentBase := ctx.PathPrefix + "/:" + parentSingular + "_" + parentParam
		newCtx.PathPrefix = joinPath(parentBase, pathName)
	} else {
		newCtx.PathPrefix = joinPath(ctx.PathPrefix, pathName)
	}
	newCtx.Controller = resolveController(ctx, controller)
	newCtx.ResourceName = name
	newCtx.ResourceParam = ":" + param

	for _, action := range actions {
		r.emitResourceAction(action, site.line, newCtx, singular)
	}

	if opts.has("concerns") {
		r.replayConcerns(opts.list("concerns"), newCtx)
	}

	r.walkBlock(site.block, newCtx)
}

// emitResourceAction emits the endpoint(s) for one canonical action;
// update always yields both PATCH and PUT at the same path
func (r *Resolver) emitResourceAction(action string, line int, ctx models.RouteContext, singular bool) {
	path := resourceActionPath(action, ctx, singular)
	if action == "update" {
		for _, method := range []string{"PATCH", "PUT"} {
			r.emit(&models.Endpoint{
				Method:     method,
				Path:       path,
				Controller: ctx.Controller,
				Action:     action,
				SourceLine: line,
			})
		}
		return
	}
	r.emit(&models.Endpoint{
		Method:     actionMethods[action],
		Path:       path,
		Controller: ctx.Controller,
		Action:     action,
		SourceLine: line,
	})
}

// resourceActionPath builds the path for a canonical resource action
func resourceActionPath(action string, ctx models.RouteContext, singular bool) string {
	base := ctx.PathPrefix
	if !singular && memberActions[action] {
		base = base + "/" + ctx.ResourceParam
	}
	switch action {
	case "new":
		return base + "/new"
	case "edit":
		return base + "/edit"
	}
	return base
}

// handleNamespace extends both the path and module prefixes, each
// independently overridable via path:/module: options
func (r *Resolver) handleNamespace(site callSite, ctx models.RouteContext) {
	name, opts := extractNameAndOpts(site.args)
	if name == "" {
		return
	}

	pathPart := name
	if opts.has("path") {
		pathPart = opts.value("path")
	}
	modulePart := name
	if opts.has("module") {
		modulePart = opts.value("module")
	}

	newCtx := ctx
	if pathPart != "" {
		newCtx.PathPrefix = joinPath(ctx.PathPrefix, pathPart)
	}
	newCtx.ModulePrefix = joinModule(ctx.ModulePrefix, modulePart)

	r.walkBlock(site.block, newCtx)
}

// handleScope extends the path prefix only when given a path, the module
// prefix via module:, and may override the controller. A bare module-only
// scope adds no path segment.
func (r *Resolver) handleScope(site callSite, ctx models.RouteContext) {
	name, opts := extractNameAndOpts(site.args)

	newCtx := ctx
	if name != "" && !strings.HasPrefix(name, ":") {
		newCtx.PathPrefix = joinPath(ctx.PathPrefix, name)
	}
	if opts.has("path") {
		newCtx.PathPrefix = joinPath(ctx.PathPrefix, opts.value("path"))
	}
	if opts.has("module") {
		newCtx.ModulePrefix = joinModule(ctx.ModulePrefix, opts.value("module"))
	}
	if opts.has("controller") {
		newCtx.Controller = resolveController(newCtx, opts.value("controller"))
	}

	r.walkBlock(site.block, newCtx)
}

// handleMemberCollection sets the scope flag consumed by bare verb routes
// declared inside the block
func (r *Resolver) handleMemberCollection(site callSite, ctx models.RouteContext, scope models.ScopeType) {
	newCtx := ctx
	newCtx.Scope = scope
	r.walkBlock(site.block, newCtx)
}

// handleConcernDef stores a concern block unresolved; it is replayed under
// the caller's context at each use site, never evaluated here
func (r *Resolver) handleConcernDef(site callSite) {
	if len(site.args) == 0 || site.block == nil {
		return
	}
	if name := rubyast.StringValue(site.args[0]); name != "" {
		r.concerns[name] = site.block
	}
}

// handleConcernsUse replays each named concern under the current context
func (r *Resolver) handleConcernsUse(site callSite, ctx models.RouteContext) {
	for _, arg := range site.args {
		if elems := rubyast.ArrayElements(arg); len(elems) > 0 {
			for _, name := range elems {
				r.replayConcern(name, ctx)
			}
			continue
		}
		if name := rubyast.StringValue(arg); name != "" {
			r.replayConcern(name, ctx)
		}
	}
}

func (r *Resolver) replayConcerns(names []string, ctx models.RouteContext) {
	for _, name := range names {
		r.replayConcern(name, ctx)
	}
}

func (r *Resolver) replayConcern(name string, ctx models.RouteContext) {
	block, ok := r.concerns[name]
	if !ok {
		r.diag.Warn("concern %q referenced but not defined", name)
		return
	}
	r.walkBlock(block, ctx)
}

// handleMount emits exactly one opaque endpoint for a mounted engine;
// its internal routes are never expanded
func (r *Resolver) handleMount(site callSite, ctx models.RouteContext) {
	var engineName, mountPath string

	for _, arg := range site.args {
		switch arg.Kind() {
		case rubyast.KindPair:
			// The rocket form mount Engine => '/path' has a constant key;
			// keyword pairs like at: are read from the options below.
			var named []*rubyast.Node
			for _, child := range arg.Children() {
				if child.IsNamed() {
					named = append(named, child)
				}
			}
			if len(named) >= 2 && named[0].Kind() == rubyast.KindConstant {
				engineName = strings.TrimSpace(named[0].Text())
				mountPath = rubyast.StringValue(named[len(named)-1])
			}
		case rubyast.KindConstant:
			engineName = strings.TrimSpace(arg.Text())
		case rubyast.KindSymbol, rubyast.KindString:
			if mountPath == "" {
				mountPath = rubyast.StringValue(arg)
			}
		}
	}

	opts := rubyast.HashFromArgs(site.args)
	if at, ok := opts["at"]; ok {
		mountPath = rubyast.StringValue(at)
	}

	if engineName == "" || mountPath == "" {
		return
	}
	r.emit(&models.Endpoint{
		Method:          "*",
		Path:            joinPath(ctx.PathPrefix, mountPath),
		SourceLine:      site.line,
		IsMountedEngine: true,
		EngineName:      engineName,
	})
}

// handleRoot emits a GET endpoint at the current prefix
func (r *Resolver) handleRoot(site callSite, ctx models.RouteContext) {
	var controller, action string

	opts := callOptions{nodes: rubyast.HashFromArgs(site.args)}
	if opts.has("to") {
		if c, a, ok := parseTargetRef(opts.value("to")); ok {
			controller, action = c, a
		}
	} else {
		for _, arg := range site.args {
			val := rubyast.StringValue(arg)
			if c, a, ok := parseTargetRef(val); ok && strings.Contains(val, "#") {
				controller, action = c, a
				break
			}
		}
	}

	if action == "" {
		action = "root"
	}
	if controller != "" {
		controller = resolveController(ctx, controller)
	}

	path := "/"
	if ctx.PathPrefix != "" {
		path = joinPath(ctx.PathPrefix, "/")
	}
	r.emit(&models.Endpoint{
		Method:     "GET",
		Path:       path,
		Controller: controller,
		Action:     action,
		SourceLine: site.line,
	})
}

// handleMatch emits one endpoint per method named in via:; via: :all
// expands to the full verb set
func (r *Resolver) handleMatch(site callSite, ctx models.RouteContext) {
	name, opts := extractNameAndOpts(site.args)
	if name == "" {
		return
	}

	methods := httpVerbs
	if opts.has("via") {
		via := opts.list("via")
		if !(len(via) == 1 && via[0] == "all") {
			methods = via
		}
	}

	controller, action := r.resolveTarget(name, opts, ctx)
	path := joinPath(ctx.PathPrefix, name)

	for _, method := range methods {
		r.emit(&models.Endpoint{
			Method:     strings.ToUpper(method),
			Path:       path,
			Controller: controller,
			Action:     action,
			SourceLine: site.line,
		})
	}
}

// handleVerb emits one endpoint for a bare HTTP verb route. The matched
// verb arrives explicitly because one handler serves all five.
func (r *Resolver) handleVerb(verb string, site callSite, ctx models.RouteContext) {
	name, opts := extractNameAndOpts(site.args)
	if name == "" {
		return
	}

	controller, action := r.resolveTarget(name, opts, ctx)
	path := verbPath(name, ctx)

	isRedirect := false
	if len(site.args) > 0 && strings.Contains(strings.ToLower(site.args[0].Text()), "redirect") {
		isRedirect = true
	}
	if to := opts.node("to"); to != nil && strings.Contains(strings.ToLower(to.Text()), "redirect") {
		isRedirect = true
	}

	r.emit(&models.Endpoint{
		Method:     strings.ToUpper(verb),
		Path:       path,
		Controller: controller,
		Action:     action,
		SourceLine: site.line,
		IsRedirect: isRedirect,
	})
}

// verbPath builds a bare verb route's path, respecting the enclosing
// member/collection scope: member inserts the resource id segment first
func verbPath(name string, ctx models.RouteContext) string {
	if ctx.Scope == models.ScopeMember {
		base := ctx.PathPrefix + "/" + ctx.ResourceParam
		return joinPath(base, name)
	}
	return joinPath(ctx.PathPrefix, name)
}

// handleWithOptions behaves exactly like scope for the controller:/path:/
// module: options, applied to its block
func (r *Resolver) handleWithOptions(site callSite, ctx models.RouteContext) {
	opts := callOptions{nodes: rubyast.HashFromArgs(site.args)}

	newCtx := ctx
	if opts.has("controller") {
		newCtx.Controller = resolveController(newCtx, opts.value("controller"))
	}
	if opts.has("path") {
		newCtx.PathPrefix = joinPath(ctx.PathPrefix, opts.value("path"))
	}
	if opts.has("module") {
		newCtx.ModulePrefix = joinModule(ctx.ModulePrefix, opts.value("module"))
	}

	r.walkBlock(site.block, newCtx)
}

// resolveTarget resolves a route's controller and action from, in order:
// the to: option, a controller#action literal as the path itself, the
// controller:/action: options, and finally the trailing path segment
func (r *Resolver) resolveTarget(path string, opts callOptions, ctx models.RouteContext) (string, string) {
	controller := ctx.Controller
	action := ""

	if opts.has("to") {
		target := opts.value("to")
		if strings.Contains(target, "#") {
			if c, a, ok := parseTargetRef(target); ok {
				return resolveController(ctx, c), a
			}
		}
		if target != "" {
			action = target
		}
	}

	if strings.Contains(path, "#") {
		if c, a, ok := parseTargetRef(path); ok {
			return resolveController(ctx, c), a
		}
	}

	if opts.has("controller") {
		controller = resolveController(ctx, opts.value("controller"))
	}
	if opts.has("action") {
		action = opts.value("action")
	}

	if action == "" {
		trimmed := strings.Trim(path, "/")
		if trimmed != "" {
			segments := strings.Split(trimmed, "/")
			action = segments[len(segments)-1]
		}
		if strings.HasPrefix(action, ":") {
			action = ""
		}
	}

	return controller, action
}
