package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/glatasks/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	List    *apiHandler.ListHandler
	Task    *apiHandler.TaskHandler
	Share   *apiHandler.ShareHandler
	Health  *apiHandler.HealthHandler
	Sandbox *apiHandler.SandboxHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New builds the route table. The {key} segment under /lists/api is shared
// between the overview route (show type) and the task routes (list id)
// because both live at the same position in the path.
func New(handlers Handlers, auth, internal Middleware) *router.Router {
	r := router.New()

	r.GET("/healthcheck", handlers.Health.Check)
	r.GET("/sandbox/sse", handlers.Sandbox.SSE)

	// Auth routes
	r.GET("/auth/login", handlers.Auth.LoginForm)
	r.POST("/auth/login", handlers.Auth.Login)
	r.GET("/auth/logout", handlers.Auth.Logout)
	r.GET("/auth/regist_user", handlers.Auth.RegisterForm)
	r.POST("/auth/regist_user", handlers.Auth.Register)

	// Internal service-to-service routes
	r.POST("/auth/validate", internal(handlers.Auth.ValidateInternal))
	r.POST("/auth/register", internal(handlers.Auth.RegisterInternal))

	// List routes
	r.GET("/lists/api/{key}", auth(handlers.List.Overview))
	r.GET("/lists/api/{key}/tasks", auth(handlers.List.Tasks))
	r.GET("/lists/api/{key}/tasks/{show_type}", auth(handlers.List.Tasks))
	r.POST("/lists/post", auth(handlers.List.Create))
	r.POST("/lists/{id}/rename", auth(handlers.List.Rename))
	r.POST("/lists/{id}/hide", auth(handlers.List.Hide))
	r.POST("/lists/{id}/show", auth(handlers.List.Show))
	r.POST("/lists/{id}/clear", auth(handlers.List.Clear))
	r.POST("/lists/{id}/delete", auth(handlers.List.Delete))

	// Task routes
	r.POST("/tasks/{list_id}", auth(handlers.Task.Create))
	r.PATCH("/tasks/api/{list_id}/{task_id}", auth(handlers.Task.Patch))

	// Share intent ingestion
	r.GET("/share/ingest", auth(handlers.Share.Ingest))

	return r
}
