package routes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railscan/railscan/internal/diag"
	"github.com/railscan/railscan/internal/models"
	"github.com/railscan/railscan/internal/rubyast"
)

// resolveRoutes writes a routes.rb (plus any extra files keyed by relative
// path) into a temp repo and resolves it
func resolveRoutes(t *testing.T, routes string, extra map[string]string) []*models.Endpoint {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "routes.rb"), []byte(routes), 0o644))
	for name, content := range extra {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return NewResolver(dir, rubyast.NewProvider(), diag.NewQuiet()).Resolve()
}

func findEndpoint(endpoints []*models.Endpoint, method, path string) *models.Endpoint {
	for _, ep := range endpoints {
		if ep.Method == method && ep.Path == path {
			return ep
		}
	}
	return nil
}

func TestResolvePluralResources(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  resources :posts
end
`, nil)

	require.Len(t, endpoints, 8)

	expected := []struct {
		method string
		path   string
		action string
	}{
		{"GET", "/posts", "index"},
		{"GET", "/posts/new", "new"},
		{"POST", "/posts", "create"},
		{"GET", "/posts/:id", "show"},
		{"GET", "/posts/:id/edit", "edit"},
		{"PATCH", "/posts/:id", "update"},
		{"PUT", "/posts/:id", "update"},
		{"DELETE", "/posts/:id", "destroy"},
	}
	for _, want := range expected {
		ep := findEndpoint(endpoints, want.method, want.path)
		require.NotNil(t, ep, "%s %s", want.method, want.path)
		assert.Equal(t, "posts", ep.Controller)
		assert.Equal(t, want.action, ep.Action)
		assert.Equal(t, "config/routes.rb", ep.SourceFile)
	}

	show := findEndpoint(endpoints, "GET", "/posts/:id")
	assert.Equal(t, []string{"id"}, show.PathParams)
}

func TestResolveResourcesOnlyExcept(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  resources :posts, only: [:index, :show]
  resources :users, except: [:destroy]
  resources :items, only: :index, except: [:index]
end
`, nil)

	var posts, users, items int
	for _, ep := range endpoints {
		switch ep.Controller {
		case "posts":
			posts++
		case "users":
			users++
		case "items":
			items++
		}
	}
	assert.Equal(t, 2, posts)
	assert.Equal(t, 7, users)
	assert.Equal(t, 1, items, "only takes precedence over except")
	assert.Nil(t, findEndpoint(endpoints, "DELETE", "/users/:id"))
	assert.NotNil(t, findEndpoint(endpoints, "GET", "/items"))
}

func TestResolveSingularResource(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  resource :profile
end
`, nil)

	require.Len(t, endpoints, 7)
	assert.Nil(t, findEndpoint(endpoints, "GET", "/profile/:id"), "singular resources have no id segment")

	show := findEndpoint(endpoints, "GET", "/profile")
	require.NotNil(t, show)
	assert.Equal(t, "profiles", show.Controller, "singular resource maps to pluralized controller")
	assert.Equal(t, "show", show.Action)

	assert.NotNil(t, findEndpoint(endpoints, "GET", "/profile/new"))
	assert.NotNil(t, findEndpoint(endpoints, "GET", "/profile/edit"))
	assert.NotNil(t, findEndpoint(endpoints, "PATCH", "/profile"))
	assert.NotNil(t, findEndpoint(endpoints, "PUT", "/profile"))
	assert.NotNil(t, findEndpoint(endpoints, "DELETE", "/profile"))
}

func TestResolveNestedResources(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  resources :posts do
    resources :comments, only: [:index, :create]
  end
end
`, nil)

	index := findEndpoint(endpoints, "GET", "/posts/:post_id/comments")
	require.NotNil(t, index)
	assert.Equal(t, "comments", index.Controller)
	assert.Equal(t, []string{"post_id"}, index.PathParams)

	create := findEndpoint(endpoints, "POST", "/posts/:post_id/comments")
	require.NotNil(t, create)

	assert.NotNil(t, findEndpoint(endpoints, "GET", "/posts/:id"), "parent routes keep their own param")
}

func TestResolveMemberCollection(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  resources :posts, only: [:show] do
    member do
      post 'publish'
    end
    collection do
      get 'search'
    end
  end
end
`, nil)

	publish := findEndpoint(endpoints, "POST", "/posts/:id/publish")
	require.NotNil(t, publish)
	assert.Equal(t, "posts", publish.Controller)
	assert.Equal(t, "publish", publish.Action)

	search := findEndpoint(endpoints, "GET", "/posts/search")
	require.NotNil(t, search)
	assert.Equal(t, "search", search.Action)
}

func TestResolveNamespace(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  namespace :admin do
    resources :users, only: [:index]
  end
  namespace :api do
    namespace :v1 do
      resources :widgets, only: [:show]
    end
  end
end
`, nil)

	users := findEndpoint(endpoints, "GET", "/admin/users")
	require.NotNil(t, users)
	assert.Equal(t, "admin/users", users.Controller)

	widgets := findEndpoint(endpoints, "GET", "/api/v1/widgets/:id")
	require.NotNil(t, widgets)
	assert.Equal(t, "api/v1/widgets", widgets.Controller)
}

func TestResolveScope(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  scope module: :internal do
    get 'status', to: 'health#status'
  end
  scope '/api' do
    get 'ping', to: 'ping#show'
  end
end
`, nil)

	status := findEndpoint(endpoints, "GET", "/status")
	require.NotNil(t, status, "module-only scope adds no path segment")
	assert.Equal(t, "internal/health", status.Controller)

	ping := findEndpoint(endpoints, "GET", "/api/ping")
	require.NotNil(t, ping)
	assert.Equal(t, "ping", ping.Controller)
	assert.Equal(t, "show", ping.Action)
}

func TestResolveConcerns(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  concern :commentable do
    resources :comments, only: [:index]
  end
  resources :posts, only: [:show], concerns: [:commentable]
  resources :articles, only: [:index] do
    concerns :commentable
  end
end
`, nil)

	assert.NotNil(t, findEndpoint(endpoints, "GET", "/posts/:post_id/comments"))
	assert.NotNil(t, findEndpoint(endpoints, "GET", "/articles/:article_id/comments"))
}

func TestResolveUndefinedConcern(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  concerns :missing
end
`, nil)
	assert.Empty(t, endpoints)
}

func TestResolveMount(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  mount Sidekiq::Web => '/sidekiq'
  mount HealthCheck, at: '/health'
end
`, nil)

	require.Len(t, endpoints, 2)

	sidekiq := findEndpoint(endpoints, "*", "/sidekiq")
	require.NotNil(t, sidekiq)
	assert.True(t, sidekiq.IsMountedEngine)
	assert.Equal(t, "Sidekiq::Web", sidekiq.EngineName)

	health := findEndpoint(endpoints, "*", "/health")
	require.NotNil(t, health)
	assert.Equal(t, "HealthCheck", health.EngineName)
}

func TestResolveRoot(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  root to: 'home#index'
end
`, nil)

	require.Len(t, endpoints, 1)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.Equal(t, "/", endpoints[0].Path)
	assert.Equal(t, "home", endpoints[0].Controller)
	assert.Equal(t, "index", endpoints[0].Action)
}

func TestResolveRootShorthand(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  root 'pages#main'
end
`, nil)

	require.Len(t, endpoints, 1)
	assert.Equal(t, "pages", endpoints[0].Controller)
	assert.Equal(t, "main", endpoints[0].Action)
}

func TestResolveMatchVia(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  match 'search', to: 'search#query', via: [:get, :post]
  match 'anything', to: 'misc#handle', via: :all
end
`, nil)

	assert.NotNil(t, findEndpoint(endpoints, "GET", "/search"))
	assert.NotNil(t, findEndpoint(endpoints, "POST", "/search"))
	assert.Nil(t, findEndpoint(endpoints, "PUT", "/search"))

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		ep := findEndpoint(endpoints, method, "/anything")
		require.NotNil(t, ep, "via :all expands to %s", method)
		assert.Equal(t, "misc", ep.Controller)
	}
}

func TestResolveConditionalRoutes(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  if Rails.env.development?
    get 'debug', to: 'debug#show'
  end
  get 'live', to: 'health#live' unless Rails.env.production?
  get 'plain', to: 'pages#plain'
end
`, nil)

	debug := findEndpoint(endpoints, "GET", "/debug")
	require.NotNil(t, debug, "both branches of a conditional are walked")
	assert.Equal(t, "Rails.env.development?", debug.Condition)

	live := findEndpoint(endpoints, "GET", "/live")
	require.NotNil(t, live)
	assert.Equal(t, "Rails.env.production?", live.Condition)

	plain := findEndpoint(endpoints, "GET", "/plain")
	require.NotNil(t, plain)
	assert.Empty(t, plain.Condition)
}

func TestResolveDrawInclude(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  draw(:admin)
  get 'home', to: 'pages#home'
end
`, map[string]string{
		"config/routes/admin.rb": `resources :reports, only: [:index]
`,
	})

	reports := findEndpoint(endpoints, "GET", "/reports")
	require.NotNil(t, reports)
	assert.Equal(t, filepath.Join("config", "routes", "admin.rb"), reports.SourceFile)

	home := findEndpoint(endpoints, "GET", "/home")
	require.NotNil(t, home)
	assert.Equal(t, "config/routes.rb", home.SourceFile)
}

func TestResolveMissingDrawFile(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  draw(:missing)
  get 'home', to: 'pages#home'
end
`, nil)

	require.Len(t, endpoints, 1)
	assert.Equal(t, "/home", endpoints[0].Path)
}

func TestResolveDynamicEnumeration(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  %w[v1 v2].each do |version|
    get 'status', to: 'status#show'
    get 'health', to: 'status#health'
  end
  get 'static', to: 'pages#static'
end
`, nil)

	for _, path := range []string{"/status", "/health"} {
		ep := findEndpoint(endpoints, "GET", path)
		require.NotNil(t, ep, "enumeration blocks are walked once, every statement included")
		assert.True(t, ep.IsDynamic)
	}

	static := findEndpoint(endpoints, "GET", "/static")
	require.NotNil(t, static, "statements after an enumeration block survive")
	assert.False(t, static.IsDynamic)
}

func TestResolveWithOptions(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  with_options controller: 'sessions' do
    get 'login'
    get 'logout'
  end
end
`, nil)

	login := findEndpoint(endpoints, "GET", "/login")
	require.NotNil(t, login)
	assert.Equal(t, "sessions", login.Controller)
	assert.Equal(t, "login", login.Action)

	logout := findEndpoint(endpoints, "GET", "/logout")
	require.NotNil(t, logout)
	assert.Equal(t, "sessions", logout.Controller)
}

func TestResolveConstraintsDefaultsTransparent(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  constraints format: :json do
    get 'data', to: 'data#index'
  end
  defaults format: :html do
    get 'page', to: 'pages#show'
  end
end
`, nil)

	assert.NotNil(t, findEndpoint(endpoints, "GET", "/data"))
	assert.NotNil(t, findEndpoint(endpoints, "GET", "/page"))
}

func TestResolveRedirect(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  get 'old', to: redirect('/new')
end
`, nil)

	require.Len(t, endpoints, 1)
	assert.True(t, endpoints[0].IsRedirect)
	assert.Equal(t, "/old", endpoints[0].Path)
}

func TestResolveMissingRoutesFile(t *testing.T) {
	dir := t.TempDir()
	endpoints := NewResolver(dir, rubyast.NewProvider(), diag.NewQuiet()).Resolve()
	assert.Empty(t, endpoints)
}

func TestResolveResourceOptions(t *testing.T) {
	endpoints := resolveRoutes(t, `Rails.application.routes.draw do
  resources :stories, path: 'articles', controller: 'posts', param: 'slug', only: [:show]
end
`, nil)

	require.Len(t, endpoints, 1)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.Equal(t, "/articles/:slug", endpoints[0].Path)
	assert.Equal(t, "posts", endpoints[0].Controller)
}
