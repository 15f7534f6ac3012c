package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prezentenergy/caasweb/internal/middleware"
	"github.com/prezentenergy/caasweb/internal/pkg/response"
)

type RouterDeps struct {
	Leads *LeadHandler
	Chat  *ChatHandler
	Auth  *AuthHandler
	// Session loads the visitor session for the /auth pages.
	Session gin.HandlerFunc
	// RateLimit guards the public POST endpoints. Nil disables it.
	RateLimit gin.HandlerFunc
	// BodyLimit caps request bodies on every route. Nil disables it.
	BodyLimit  gin.HandlerFunc
	AdminToken string
}

func RegisterRoutes(root *gin.RouterGroup, deps RouterDeps) {
	limit := deps.RateLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	if deps.BodyLimit != nil {
		root.Use(deps.BodyLimit)
	}

	root.GET("/api/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api := root.Group("/api")
	api.POST("/leads", limit, deps.Leads.Submit)
	api.POST("/chat", limit, deps.Chat.Chat)
	api.POST("/news-query", limit, deps.Chat.NewsQuery)

	admin := api.Group("")
	admin.Use(middleware.AdminToken(deps.AdminToken))
	admin.GET("/leads", deps.Leads.List)
	admin.GET("/leads/export", deps.Leads.Export)

	auth := root.Group("/auth")
	auth.Use(deps.Session)
	auth.GET("/session", deps.Auth.State)
	auth.GET("/register", deps.Auth.RegisterPage)
	auth.POST("/register", limit, deps.Auth.Register)
	auth.GET("/login", deps.Auth.LoginPage)
	auth.POST("/login", limit, deps.Auth.Login)
	auth.GET("/verify", deps.Auth.VerifyPage)
	auth.POST("/verify", limit, deps.Auth.Verify)
	auth.POST("/verify/resend", limit, deps.Auth.ResendCode)
	auth.POST("/logout", deps.Auth.Logout)

	account := auth.Group("/account")
	account.Use(middleware.RequireLogin("/auth/login"))
	account.GET("", deps.Auth.AccountPage)
	account.POST("", limit, deps.Auth.UpdateAccount)
	account.POST("/cancel", deps.Auth.CancelAccountUpdate)
}
