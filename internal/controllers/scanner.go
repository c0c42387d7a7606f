// Package controllers implements the static auth-filter resolver: it maps
// endpoints to controller files, resolves class inheritance, and computes
// which authentication filters are actually in effect per action.
package controllers

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/railscan/railscan/internal/diag"
	"github.com/railscan/railscan/internal/inflect"
	"github.com/railscan/railscan/internal/models"
	"github.com/railscan/railscan/internal/rubyast"
)

// authPattern matches filter names that look like authentication checks
var authPattern = regexp.MustCompile(`(?i)auth|login|session|token|verify|signed_in|ensure_logged_in|` +
	`require_login|require_admin|check_auth|validate_token|doorkeeper_authorize`)

// authExact is the fixed allowlist of known auth filter names
var authExact = map[string]struct{}{
	"authenticate_user!":        {},
	"authenticate!":             {},
	"require_login":             {},
	"ensure_logged_in":          {},
	"authorize":                 {},
	"authorize!":                {},
	"doorkeeper_authorize!":     {},
	"verify_authenticity_token": {},
	"require_admin":             {},
	"check_auth":                {},
	"validate_token":            {},
	"authenticate_api_user!":    {},
	"require_authentication":    {},
}

// maxInheritanceDepth caps the superclass walk as a runaway-recursion guard
const maxInheritanceDepth = 3

// Scanner resolves controller files for endpoints and mutates them in place
// with auth and parameter findings. The controller cache lives for one
// scanner instance, i.e. one Scan invocation.
type Scanner struct {
	repoRoot string
	provider *rubyast.Provider
	diag     *diag.System
	cache    map[string]*models.ControllerInfo // nil entry = unresolvable
}

// NewScanner creates a scanner rooted at a repository checkout
func NewScanner(repoRoot string, provider *rubyast.Provider, d *diag.System) *Scanner {
	return &Scanner{
		repoRoot: repoRoot,
		provider: provider,
		diag:     d,
		cache:    make(map[string]*models.ControllerInfo),
	}
}

// Scan updates every endpoint with auth filters, auth status and body
// parameters. Controllers are grouped by name so each file is parsed once
// regardless of how many endpoints reference it.
func (s *Scanner) Scan(endpoints []*models.Endpoint) {
	byController := make(map[string][]*models.Endpoint)
	var order []string
	for _, ep := range endpoints {
		if ep.Controller == "" || ep.IsMountedEngine {
			continue
		}
		if _, seen := byController[ep.Controller]; !seen {
			order = append(order, ep.Controller)
		}
		byController[ep.Controller] = append(byController[ep.Controller], ep)
	}

	for _, name := range order {
		info := s.controllerInfo(name)
		if info == nil {
			// Unresolvable controller: referencing endpoints keep their
			// unknown auth state rather than a guess.
			continue
		}
		for _, ep := range byController[name] {
			s.applyFilters(ep, info)
			s.applyParams(ep, info)
		}
	}
}

// controllerInfo returns the cached info for a controller, parsing the file
// and walking its inheritance chain on first use
func (s *Scanner) controllerInfo(name string) *models.ControllerInfo {
	if info, ok := s.cache[name]; ok {
		return info
	}

	path := s.resolveControllerPath(name)
	if path == "" {
		s.diag.Warn("controller file not found for %q", name)
		s.cache[name] = nil
		return nil
	}

	info := s.parseController(path, name)
	// Cache before the inheritance walk so self-referential chains
	// terminate through the cache.
	s.cache[name] = info
	if info == nil {
		return nil
	}

	if info.ParentClass != "" {
		if parent := s.resolveParentController(info.ParentClass, name); parent != "" {
			s.walkInheritance(info, parent, 1)
		}
	}
	return info
}

// walkInheritance merges a parent controller's filters into the child:
// parent before_actions are prepended (they run first), parent skips are
// inherited only when the child does not declare a same-named skip.
func (s *Scanner) walkInheritance(info *models.ControllerInfo, parentName string, depth int) {
	if depth >= maxInheritanceDepth {
		return
	}
	parent := s.controllerInfo(parentName)
	if parent == nil {
		return
	}

	info.BeforeActions = append(append([]models.BeforeAction{}, parent.BeforeActions...), info.BeforeActions...)

	declared := make(map[string]bool, len(info.SkipBeforeActions))
	for _, skip := range info.SkipBeforeActions {
		declared[skip.FilterName] = true
	}
	for _, skip := range parent.SkipBeforeActions {
		if !declared[skip.FilterName] {
			info.SkipBeforeActions = append(info.SkipBeforeActions, skip)
		}
	}
}

// resolveControllerPath maps a controller identifier to a file by
// convention: the qualified path first, then a flattened fallback that
// drops module nesting
func (s *Scanner) resolveControllerPath(name string) string {
	qualified := filepath.Join(s.repoRoot, "app", "controllers", name+"_controller.rb")
	if fileExists(qualified) {
		return qualified
	}

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		flattened := filepath.Join(s.repoRoot, "app", "controllers", name[idx+1:]+"_controller.rb")
		if fileExists(flattened) {
			return flattened
		}
	}
	return ""
}

// resolveParentController maps a superclass identifier to a controller
// identifier. Framework base classes terminate the chain; the application
// base maps to the root "application" controller; other names are
// underscored, stripped of the Controller suffix and, when unqualified,
// placed in the child's module.
func (s *Scanner) resolveParentController(parentClass, childName string) string {
	switch parentClass {
	case "ApplicationController":
		return "application"
	case "ActionController::Base", "ActionController::API":
		return ""
	}

	name := strings.TrimSuffix(inflect.Underscore(parentClass), "_controller")
	if strings.Contains(parentClass, "::") {
		return name
	}
	if idx := strings.LastIndex(childName, "/"); idx >= 0 {
		return childName[:idx] + "/" + name
	}
	return name
}

// parseController parses one controller file into an info record. A source
// with no class node still yields an empty record, keeping repeated lookups
// idempotent.
func (s *Scanner) parseController(path, name string) *models.ControllerInfo {
	root, err := s.provider.ParseFile(path)
	if err != nil {
		s.diag.Warn("cannot read controller %s: %v", path, err)
		return nil
	}

	info := models.NewControllerInfo(name)
	s.walkController(root, info)
	return info
}

func (s *Scanner) walkController(node *rubyast.Node, info *models.ControllerInfo) {
	for _, child := range node.Children() {
		s.processControllerNode(child, info)
	}
}

// processControllerNode extracts class declarations, filter declarations
// and strong-parameter methods from one statement
func (s *Scanner) processControllerNode(node *rubyast.Node, info *models.ControllerInfo) {
	switch node.Kind() {
	case rubyast.KindClass:
		s.extractClassInfo(node, info)
		s.walkController(node, info)
		return
	case rubyast.KindMethod:
		s.extractParamsMethod(node, info)
		return
	}

	call := rubyast.ExtractCall(node)
	if call == nil && node.Kind() != rubyast.KindBody {
		// Call-plus-block sibling wrappers, but not container nodes that
		// hold multiple statements.
		for _, child := range node.Children() {
			if inner := rubyast.ExtractCall(child); inner != nil {
				call = inner
				break
			}
		}
	}
	if call == nil {
		s.walkController(node, info)
		return
	}

	switch call.Name {
	case "before_action", "before_filter":
		if decl, ok := extractFilterDecl(call.Args); ok {
			info.BeforeActions = append(info.BeforeActions, decl)
		}
	case "skip_before_action", "skip_before_filter":
		if decl, ok := extractFilterDecl(call.Args); ok {
			info.SkipBeforeActions = append(info.SkipBeforeActions, decl)
		}
	default:
		s.walkController(node, info)
	}
}

// extractClassInfo reads the class name and declared superclass
func (s *Scanner) extractClassInfo(node *rubyast.Node, info *models.ControllerInfo) {
	if name := node.ChildByField("name"); name != nil {
		info.ClassName = name.Text()
	}
	superclass := node.ChildByField("superclass")
	if superclass == nil {
		return
	}
	for _, child := range superclass.Children() {
		if child.Kind() == rubyast.KindConstant {
			info.ParentClass = strings.TrimSpace(child.Text())
			return
		}
	}
	text := strings.TrimSpace(superclass.Text())
	text = strings.TrimSpace(strings.TrimPrefix(text, "<"))
	info.ParentClass = text
}

// extractFilterDecl reads a before/skip declaration: the first symbol or
// string argument names the filter, only:/except: restrict its actions
func extractFilterDecl(args []*rubyast.Node) (models.BeforeAction, bool) {
	var decl models.BeforeAction

	for _, arg := range args {
		switch arg.Kind() {
		case rubyast.KindSymbol, rubyast.KindString:
			if decl.FilterName == "" {
				decl.FilterName = rubyast.StringValue(arg)
			}
		case rubyast.KindPair, rubyast.KindHash:
			for key, value := range rubyast.HashFromArgs([]*rubyast.Node{arg}) {
				switch key {
				case "only":
					decl.Only = actionList(value)
				case "except":
					decl.Except = actionList(value)
				}
			}
		}
	}

	return decl, decl.FilterName != ""
}

// actionList reads an action-name list from an array or single symbol
func actionList(node *rubyast.Node) []string {
	if elems := rubyast.ArrayElements(node); len(elems) > 0 {
		return elems
	}
	if val := rubyast.StringValue(node); val != "" {
		return []string{val}
	}
	return []string{}
}

var (
	permitPattern = regexp.MustCompile(`\.permit\(([^)]*)\)`)
	symbolPattern = regexp.MustCompile(`:(\w+)`)
)

// extractParamsMethod collects permitted parameter names from a method
// whose name ends in _params. Nested permitted structures are flattened:
// every permitted symbol becomes one string body parameter.
func (s *Scanner) extractParamsMethod(node *rubyast.Node, info *models.ControllerInfo) {
	nameNode := node.ChildByField("name")
	if nameNode == nil {
		return
	}
	methodName := nameNode.Text()
	if !strings.HasSuffix(methodName, "_params") {
		return
	}

	match := permitPattern.FindStringSubmatch(node.Text())
	if match == nil {
		return
	}
	var params []models.Parameter
	for _, sym := range symbolPattern.FindAllStringSubmatch(match[1], -1) {
		params = append(params, models.Parameter{
			Name:     sym[1],
			Location: models.LocationBody,
			Type:     "string",
		})
	}
	if len(params) == 0 {
		return
	}
	if _, exists := info.StrongParams[methodName]; !exists {
		info.ParamsOrder = append(info.ParamsOrder, methodName)
	}
	info.StrongParams[methodName] = params
}

// applyFilters computes the active auth filters for an endpoint's action
func (s *Scanner) applyFilters(ep *models.Endpoint, info *models.ControllerInfo) {
	skipped := make(map[string]bool)
	for _, skip := range info.SkipBeforeActions {
		if skip.AppliesTo(ep.Action) {
			skipped[skip.FilterName] = true
		}
	}

	var authFilters []string
	for _, ba := range info.BeforeActions {
		if skipped[ba.FilterName] || !ba.AppliesTo(ep.Action) {
			continue
		}
		if isAuthFilter(ba.FilterName) {
			authFilters = append(authFilters, ba.FilterName)
		}
	}

	ep.AuthFilters = authFilters
	if len(authFilters) > 0 {
		ep.HasAuth = models.AuthRequired
	} else {
		ep.HasAuth = models.AuthNone
	}
}

// applyParams attaches the controller's first discovered _params method to
// create/update actions. Controllers with several _params methods are not
// disambiguated per action.
func (s *Scanner) applyParams(ep *models.Endpoint, info *models.ControllerInfo) {
	if ep.Action != "create" && ep.Action != "update" {
		return
	}
	if len(info.ParamsOrder) == 0 {
		return
	}
	ep.BodyParams = info.StrongParams[info.ParamsOrder[0]]
}

// isAuthFilter classifies a filter name against the exact allowlist and
// the keyword pattern
func isAuthFilter(name string) bool {
	if _, ok := authExact[name]; ok {
		return true
	}
	return authPattern.MatchString(name)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
