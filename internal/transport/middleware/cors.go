package middleware

import "github.com/go-chi/cors"

// CORS is the permissive development CORS policy; production deployments
// narrow AllowedOrigins via config.
var CORS = cors.Handler(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
	AllowCredentials: false,
	MaxAge:           300,
})
