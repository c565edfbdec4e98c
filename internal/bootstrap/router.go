package bootstrap

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	httpapi "github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http/middleware"
	authmw "github.com/GoSim-25-26J-441/taskroom-backend/internal/auth/middleware"
	projecthttp "github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/http"
	realtimehttp "github.com/GoSim-25-26J-441/taskroom-backend/internal/realtime/http"
	taskhttp "github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/http"
	userhttp "github.com/GoSim-25-26J-441/taskroom-backend/internal/users/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	FrontendURL string
	Services    *Services
	DB          httpapi.Pinger
	Redis       httpapi.Pinger
	// AuthLimit throttles login and forgot-password per client.
	AuthLimit rate.Limit
	AuthBurst int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if dep.FrontendURL != "" {
		r.Use(middleware.CORS(dep.FrontendURL))
	}

	svc := dep.Services

	health := httpapi.NewHealthHandler(dep.ServiceName, dep.Version).WithRealtime(svc.Hub)
	if dep.DB != nil {
		health.WithDB(dep.DB)
	}
	if dep.Redis != nil {
		health.WithRedis(dep.Redis)
	}
	health.RegisterRoutes(r)

	if dep.AuthLimit == 0 {
		dep.AuthLimit = rate.Limit(1)
	}
	if dep.AuthBurst == 0 {
		dep.AuthBurst = 5
	}
	throttle := middleware.RateLimit(middleware.NewClientLimiter(dep.AuthLimit, dep.AuthBurst))
	requireUser := authmw.RequireUser(svc.Resolver)

	api := r.Group("/api/v1")

	userhttp.New(svc.Users).Register(api.Group("/users"), requireUser, throttle)

	projects := api.Group("/projects")
	projects.Use(requireUser)
	projecthttp.New(svc.Projects).Register(projects)

	tasks := api.Group("/tasks")
	tasks.Use(requireUser)
	taskhttp.New(svc.Tasks, svc.Hub).Register(tasks)

	realtimehttp.New(svc.Hub, svc.Resolver, svc.JoinAuthorizer(), dep.FrontendURL).Register(api.Group("/realtime"))

	return r
}
