// Package routes implements the static route resolution engine: a recursive
// descent over the routing configuration's syntax tree that simulates the
// declarative routing DSL without executing it.
package routes

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/railscan/railscan/internal/diag"
	"github.com/railscan/railscan/internal/models"
	"github.com/railscan/railscan/internal/rubyast"
)

// dslOp is the closed set of recognized route-DSL operations. Anything that
// classifies as opUnknown is not discarded: its block, if present, is walked
// under the unmodified context so unknown wrappers cannot hide routes.
type dslOp int

const (
	opUnknown dslOp = iota
	opResources
	opResource
	opNamespace
	opScope
	opMember
	opCollection
	opConcernDef
	opConcernsUse
	opMount
	opRoot
	opMatch
	opVerb
	opWithOptions
	opConstraints
	opDefaults
	opNoop
	opDraw
)

// classifyOp maps a DSL method name onto the operation set
func classifyOp(name string) dslOp {
	switch name {
	case "resources":
		return opResources
	case "resource":
		return opResource
	case "namespace":
		return opNamespace
	case "scope":
		return opScope
	case "member":
		return opMember
	case "collection":
		return opCollection
	case "concern":
		return opConcernDef
	case "concerns":
		return opConcernsUse
	case "mount":
		return opMount
	case "root":
		return opRoot
	case "match":
		return opMatch
	case "get", "post", "put", "patch", "delete":
		return opVerb
	case "with_options":
		return opWithOptions
	case "constraints":
		return opConstraints
	case "defaults":
		return opDefaults
	case "direct", "resolve":
		return opNoop
	case "draw":
		return opDraw
	default:
		return opUnknown
	}
}

// httpVerbs is the full verb set, also the expansion of via: :all
var httpVerbs = []string{"get", "post", "put", "patch", "delete"}

// callSite carries one dispatched DSL call through its handler
type callSite struct {
	name  string
	args  []*rubyast.Node
	block *rubyast.Node
	line  int
}

// Resolver walks route files and accumulates discovered endpoints. It never
// fails: missing or unreadable files degrade to an empty result plus a
// recorded warning.
type Resolver struct {
	repoRoot string
	provider *rubyast.Provider
	diag     *diag.System

	endpoints      []*models.Endpoint
	concerns       map[string]*rubyast.Node
	currentFile    string
	conditionStack []string
	forceDynamic   bool
}

// NewResolver creates a resolver rooted at a repository checkout
func NewResolver(repoRoot string, provider *rubyast.Provider, d *diag.System) *Resolver {
	return &Resolver{
		repoRoot: repoRoot,
		provider: provider,
		diag:     d,
		concerns: make(map[string]*rubyast.Node),
	}
}

// Resolve parses config/routes.rb and every file it draws in, returning the
// ordered endpoint list
func (r *Resolver) Resolve() []*models.Endpoint {
	routesFile := filepath.Join(r.repoRoot, "config", "routes.rb")
	if _, err := os.Stat(routesFile); err != nil {
		r.diag.Warn("no config/routes.rb found in %s", r.repoRoot)
		return nil
	}
	r.parseFile(routesFile, models.NewRouteContext())
	return r.endpoints
}

// Endpoints returns the endpoints accumulated so far
func (r *Resolver) Endpoints() []*models.Endpoint {
	return r.endpoints
}

// parseFile parses one route file and walks it under the given context
func (r *Resolver) parseFile(path string, ctx models.RouteContext) {
	root, err := r.provider.ParseFile(path)
	if err != nil {
		r.diag.Warn("cannot read %s: %v", path, err)
		return
	}
	previous := r.currentFile
	if rel, relErr := filepath.Rel(r.repoRoot, path); relErr == nil {
		r.currentFile = rel
	} else {
		r.currentFile = path
	}
	r.walkChildren(root, ctx)
	if previous != "" {
		r.currentFile = previous
	}
}

// walkChildren processes every child statement of a node
func (r *Resolver) walkChildren(node *rubyast.Node, ctx models.RouteContext) {
	for _, child := range node.Children() {
		r.processNode(child, ctx)
	}
}

// processNode is the single dispatch point of the engine
func (r *Resolver) processNode(node *rubyast.Node, ctx models.RouteContext) {
	if node.Kind() == rubyast.KindConditional {
		r.handleConditional(node, ctx)
		return
	}

	info := rubyast.ExtractCall(node)
	if info == nil && node.Kind() != rubyast.KindBody {
		// Some grammar shapes wrap the call and its block as siblings, but
		// statement containers hold independent statements and must not
		// collapse onto their first call.
		for _, child := range node.Children() {
			if inner := rubyast.ExtractCall(child); inner != nil {
				info = inner
				if info.Block == nil {
					for _, sibling := range node.Children() {
						if sibling.Kind() == rubyast.KindBlock {
							info.Block = sibling
							break
						}
					}
				}
				break
			}
		}
	}
	if info == nil {
		r.walkChildren(node, ctx)
		return
	}

	// Iteration blocks cannot be statically enumerated; walk them once and
	// flag everything produced inside as dynamic.
	if info.Name == "each" {
		r.handleDynamic(info.Block, ctx)
		return
	}

	site := callSite{name: info.Name, args: info.Args, block: info.Block, line: node.Line()}

	switch classifyOp(info.Name) {
	case opResources:
		r.handleResources(site, ctx, false)
	case opResource:
		r.handleResources(site, ctx, true)
	case opNamespace:
		r.handleNamespace(site, ctx)
	case opScope:
		r.handleScope(site, ctx)
	case opMember:
		r.handleMemberCollection(site, ctx, models.ScopeMember)
	case opCollection:
		r.handleMemberCollection(site, ctx, models.ScopeCollection)
	case opConcernDef:
		r.handleConcernDef(site)
	case opConcernsUse:
		r.handleConcernsUse(site, ctx)
	case opMount:
		r.handleMount(site, ctx)
	case opRoot:
		r.handleRoot(site, ctx)
	case opMatch:
		r.handleMatch(site, ctx)
	case opVerb:
		r.handleVerb(info.Name, site, ctx)
	case opWithOptions:
		r.handleWithOptions(site, ctx)
	case opConstraints, opDefaults:
		// Transparent wrappers: constraint and default expressions are not
		// evaluated, the block is walked under the unmodified context.
		r.walkBlock(site.block, ctx)
	case opNoop:
		// direct/resolve declare URL helpers, not endpoints
	case opDraw:
		r.handleDraw(site, ctx)
	default:
		// Unrecognized wrapper helpers must not hide the routes they
		// contain: walk any attached block under the unmodified context.
		r.walkBlock(site.block, ctx)
	}
}

// walkBlock processes the statements of a block, if any
func (r *Resolver) walkBlock(block *rubyast.Node, ctx models.RouteContext) {
	for _, stmt := range rubyast.BlockBody(block) {
		r.processNode(stmt, ctx)
	}
}

// handleConditional records the condition text and walks every branch: the
// boolean cannot be evaluated statically, and never silently dropping a
// route wins over modeling runtime branching.
func (r *Resolver) handleConditional(node *rubyast.Node, ctx models.RouteContext) {
	condition := strings.TrimSpace(node.ChildByField("condition").Text())
	if condition == "" {
		for _, child := range node.Children() {
			switch child.RawType() {
			case "if", "unless", "then", "end", "else", "elsif", "body_statement", "block_body":
				continue
			}
			condition = strings.TrimSpace(child.Text())
			break
		}
	}

	r.conditionStack = append(r.conditionStack, condition)
	defer func() {
		r.conditionStack = r.conditionStack[:len(r.conditionStack)-1]
	}()

	switch node.RawType() {
	case "if_modifier", "unless_modifier":
		body := node.ChildByField("body")
		if body == nil {
			if children := node.NamedChildren(); len(children) > 0 {
				body = children[0]
			}
		}
		if body != nil {
			r.processNode(body, ctx)
		}
		return
	}

	for _, child := range node.Children() {
		switch child.RawType() {
		case "then", "else", "body_statement", "block_body":
			r.walkChildren(child, ctx)
		case "elsif":
			r.processNode(child, ctx)
		}
	}
}

// handleDynamic walks an enumeration block once, flagging every endpoint
// produced inside as dynamic
func (r *Resolver) handleDynamic(block *rubyast.Node, ctx models.RouteContext) {
	previous := r.forceDynamic
	r.forceDynamic = true
	r.walkBlock(block, ctx)
	r.forceDynamic = previous
}

// handleDraw covers both draw forms: draw(:name) includes
// config/routes/<name>.rb at the call site's context, and the top-level
// Rails.application.routes.draw block is simply walked.
func (r *Resolver) handleDraw(site callSite, ctx models.RouteContext) {
	if len(site.args) > 0 {
		name := rubyast.StringValue(site.args[0])
		if name == "" {
			return
		}
		drawFile := filepath.Join(r.repoRoot, "config", "routes", name+".rb")
		if _, err := os.Stat(drawFile); err != nil {
			r.diag.Warn("draw(%s) referenced but file not found: %s", name, drawFile)
			return
		}
		r.parseFile(drawFile, ctx)
		return
	}
	r.walkBlock(site.block, ctx)
}

// currentCondition returns the innermost non-empty condition text
func (r *Resolver) currentCondition() string {
	for i := len(r.conditionStack) - 1; i >= 0; i-- {
		if r.conditionStack[i] != "" {
			return r.conditionStack[i]
		}
	}
	return ""
}

// emit creates and stores an endpoint under the current walk state
func (r *Resolver) emit(ep *models.Endpoint) {
	ep.PathParams = pathParams(ep.Path)
	ep.SourceFile = r.currentFile
	if ep.Condition == "" {
		ep.Condition = r.currentCondition()
	}
	if r.forceDynamic {
		ep.IsDynamic = true
	}
	r.endpoints = append(r.endpoints, ep)
}

var paramPattern = regexp.MustCompile(`:(\w+)`)

// pathParams extracts the ordered parameter names from a path
func pathParams(path string) []string {
	matches := paramPattern.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// joinPath joins URL segments, normalizing slashes: results always start
// with "/" and contain no doubled or trailing slashes (root excepted)
func joinPath(prefix, suffix string) string {
	if suffix == "" || suffix == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	suffix = strings.TrimLeft(suffix, "/")
	if prefix != "" {
		return strings.TrimRight(prefix, "/") + "/" + suffix
	}
	return "/" + suffix
}

// joinModule accumulates controller module prefixes with a trailing
// separator so the prefix concatenates directly onto a controller name
func joinModule(prefix, module string) string {
	if module == "" {
		return prefix
	}
	module = strings.Trim(module, "/")
	if prefix != "" {
		return strings.TrimRight(prefix, "/") + "/" + module + "/"
	}
	return module + "/"
}

// resolveController qualifies a controller name with the context's module
// prefix; already-qualified names pass through untouched
func resolveController(ctx models.RouteContext, name string) string {
	if name == "" {
		return strings.TrimRight(ctx.ModulePrefix, "/")
	}
	if strings.Contains(name, "/") {
		return name
	}
	if ctx.ModulePrefix != "" {
		return ctx.ModulePrefix + name
	}
	return name
}
