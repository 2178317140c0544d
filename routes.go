package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/eventsbackend/controllers"
	"github.com/princinho/eventsbackend/middleware"
	"github.com/princinho/eventsbackend/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(a *app) *gin.Engine {
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range a.cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(a.log))
	r.Use(gin.Recovery())

	cookie := controllers.CookieConfig{
		Secure: a.cfg.CookieSecure,
		Domain: a.cfg.CookieDomain,
		MaxAge: a.cfg.JWT.RefreshTTL,
	}
	limits := controllers.Limits{
		DefaultLimit: a.cfg.DefaultReadQueryLimit,
		MaxLimit:     a.cfg.ReadQueryMaxLimit,
	}
	authed := middleware.AuthMiddleware(a.auth)
	organizers := middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin)

	r.GET("/ping", controllers.Ping())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register(a.auth))
		auth.POST("/login", controllers.Login(a.auth, cookie))
		auth.POST("/refresh", controllers.Refresh(a.auth, cookie))
		auth.POST("/logout", controllers.Logout(cookie))
	}

	users := r.Group("/users", authed)
	{
		users.GET("/me", controllers.Me())
		users.POST("/me/password", controllers.ChangeMyPassword(a.auth, cookie))
	}

	admin := r.Group("/admin", authed, middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users", controllers.CreateUser(a.auth))
	}

	events := r.Group("/events")
	{
		events.GET("", controllers.ListEvents(a.events, limits))
		events.GET("/upcoming", controllers.UpcomingEvents(a.events, limits))
		events.GET("/past", controllers.PastEvents(a.events, limits))
		events.GET("/location/:location", controllers.EventsByLocation(a.events, limits))
		events.GET("/stats/locations", controllers.PopularLocations(a.events, limits))
		events.GET("/stats/organizers", controllers.TopOrganizers(a.events, limits))
		events.GET("/:id", controllers.GetEvent(a.events))

		events.POST("", authed, organizers, controllers.CreateEvent(a.events, a.banners))
		events.PATCH("/:id", authed, organizers, controllers.UpdateEvent(a.events, a.banners))
		events.DELETE("/:id", authed, organizers, controllers.DeleteEvent(a.events))
		events.GET("/:id/registrations", authed, controllers.EventRegistrations(a.registrations))
	}

	registrations := r.Group("/registrations", authed)
	{
		registrations.POST("", controllers.CreateRegistration(a.registrations))
		registrations.GET("/me", controllers.MyRegistrations(a.registrations))
		registrations.DELETE("/:eventId", controllers.CancelRegistration(a.registrations))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}
