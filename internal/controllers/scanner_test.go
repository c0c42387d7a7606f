package controllers

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

// writeControllers lays controller sources out under app/controllers, keyed
// by path relative to that directory
func writeControllers(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, "app", "controllers", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func scan(t *testing.T, files map[string]string, endpoints []*models.Endpoint) {
	t.Helper()
	dir := writeControllers(t, files)
	NewScanner(dir, rubyast.NewProvider(), diag.NewQuiet()).Scan(endpoints)
}

func TestScanAuthFilter(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "posts", Action: "index"},
		{Controller: "posts", Action: "show"},
	}
	scan(t, map[string]string{
		"posts_controller.rb": `class PostsController < ActionController::Base
  before_action :authenticate_user!
end
`,
	}, endpoints)

	for _, ep := range endpoints {
		assert.Equal(t, models.AuthRequired, ep.HasAuth, ep.Action)
		assert.Equal(t, []string{"authenticate_user!"}, ep.AuthFilters)
	}
}

func TestScanFilterOnlyExcept(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "posts", Action: "index"},
		{Controller: "posts", Action: "show"},
		{Controller: "posts", Action: "create"},
	}
	scan(t, map[string]string{
		"posts_controller.rb": `class PostsController < ActionController::Base
  before_action :authenticate_user!, except: [:index]
  before_action :require_admin, only: [:create]
end
`,
	}, endpoints)

	index := endpoints[0]
	assert.Equal(t, models.AuthNone, index.HasAuth)
	assert.Empty(t, index.AuthFilters)

	show := endpoints[1]
	assert.Equal(t, models.AuthRequired, show.HasAuth)
	assert.Equal(t, []string{"authenticate_user!"}, show.AuthFilters)

	create := endpoints[2]
	assert.Equal(t, []string{"authenticate_user!", "require_admin"}, create.AuthFilters)
}

func TestScanNonAuthFilter(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "posts", Action: "show"},
	}
	scan(t, map[string]string{
		"posts_controller.rb": `class PostsController < ActionController::Base
  before_action :set_post
end
`,
	}, endpoints)

	assert.Equal(t, models.AuthNone, endpoints[0].HasAuth)
	assert.Empty(t, endpoints[0].AuthFilters)
}

func TestScanInheritedFilters(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "posts", Action: "index"},
		{Controller: "posts", Action: "show"},
	}
	scan(t, map[string]string{
		"application_controller.rb": `class ApplicationController < ActionController::Base
  before_action :authenticate_user!
end
`,
		"posts_controller.rb": `class PostsController < ApplicationController
  skip_before_action :authenticate_user!, only: [:index]
end
`,
	}, endpoints)

	assert.Equal(t, models.AuthNone, endpoints[0].HasAuth, "skipped action is unprotected")
	assert.Equal(t, models.AuthRequired, endpoints[1].HasAuth, "non-skipped action keeps the inherited filter")
	assert.Equal(t, []string{"authenticate_user!"}, endpoints[1].AuthFilters)
}

func TestScanChildSkipOverridesInherited(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "posts", Action: "ping"},
		{Controller: "posts", Action: "index"},
	}
	scan(t, map[string]string{
		"application_controller.rb": `class ApplicationController < ActionController::Base
  before_action :authenticate_user!
  skip_before_action :authenticate_user!, only: [:ping]
end
`,
		"posts_controller.rb": `class PostsController < ApplicationController
  skip_before_action :authenticate_user!, only: [:index]
end
`,
	}, endpoints)

	assert.Equal(t, models.AuthRequired, endpoints[0].HasAuth,
		"a child skip of the same filter replaces the parent's skip")
	assert.Equal(t, models.AuthNone, endpoints[1].HasAuth)
}

func TestScanNamespacedInheritance(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "admin/users", Action: "index"},
	}
	scan(t, map[string]string{
		"admin/base_controller.rb": `class Admin::BaseController < ActionController::Base
  before_action :require_admin
end
`,
		"admin/users_controller.rb": `class Admin::UsersController < Admin::BaseController
end
`,
	}, endpoints)

	assert.Equal(t, models.AuthRequired, endpoints[0].HasAuth)
	assert.Equal(t, []string{"require_admin"}, endpoints[0].AuthFilters)
}

func TestScanStrongParams(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "posts", Action: "create"},
		{Controller: "posts", Action: "update"},
		{Controller: "posts", Action: "show"},
	}
	scan(t, map[string]string{
		"posts_controller.rb": `class PostsController < ActionController::Base
  def create
  end

  private

  def post_params
    params.require(:post).permit(:title, :body)
  end
end
`,
	}, endpoints)

	for _, ep := range endpoints[:2] {
		require.Len(t, ep.BodyParams, 2, ep.Action)
		assert.Equal(t, "title", ep.BodyParams[0].Name)
		assert.Equal(t, "body", ep.BodyParams[1].Name)
		assert.Equal(t, models.LocationBody, ep.BodyParams[0].Location)
	}
	assert.Empty(t, endpoints[2].BodyParams, "params only attach to create and update")
}

func TestScanFirstParamsMethodWins(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "posts", Action: "create"},
	}
	scan(t, map[string]string{
		"posts_controller.rb": `class PostsController < ActionController::Base
  private

  def post_params
    params.require(:post).permit(:title)
  end

  def filter_params
    params.permit(:page, :per_page)
  end
end
`,
	}, endpoints)

	require.Len(t, endpoints[0].BodyParams, 1)
	assert.Equal(t, "title", endpoints[0].BodyParams[0].Name)
}

func TestScanUnresolvableController(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "ghosts", Action: "index"},
	}
	scan(t, map[string]string{}, endpoints)

	assert.Equal(t, models.AuthUnknown, endpoints[0].HasAuth)
	assert.Empty(t, endpoints[0].AuthFilters)
}

func TestScanSkipsMountedEngines(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Method: "*", Path: "/sidekiq", IsMountedEngine: true, EngineName: "Sidekiq::Web"},
	}
	scan(t, map[string]string{}, endpoints)

	assert.Equal(t, models.AuthUnknown, endpoints[0].HasAuth)
}

func TestScanFlattenedControllerFallback(t *testing.T) {
	endpoints := []*models.Endpoint{
		{Controller: "api/posts", Action: "index"},
	}
	scan(t, map[string]string{
		"posts_controller.rb": `class PostsController < ActionController::Base
  before_action :authenticate_user!
end
`,
	}, endpoints)

	assert.Equal(t, models.AuthRequired, endpoints[0].HasAuth)
}

func TestIsAuthFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		expected bool
	}{
		{"exact match", "authenticate_user!", true},
		{"keyword auth", "custom_auth_check", true},
		{"keyword session", "load_session", true},
		{"keyword token", "refresh_token", true},
		{"plain setter", "set_post", false},
		{"locale", "set_locale", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isAuthFilter(tt.filter))
		})
	}
}
