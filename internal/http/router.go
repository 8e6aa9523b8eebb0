package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authsvc "github.com/enerjios/enerjios/internal/auth"
	authHandler "github.com/enerjios/enerjios/internal/http/auth"
	"github.com/enerjios/enerjios/internal/http/customer"
	"github.com/enerjios/enerjios/internal/http/leadimport"
	"github.com/enerjios/enerjios/internal/http/product"
	"github.com/enerjios/enerjios/internal/http/projectrequest"
	"github.com/enerjios/enerjios/internal/http/quote"
)

func New(
	authSvc *authsvc.Service,
	allowedOrigins []string,
	authV1 *authHandler.Handler,
	quotesV1 *quote.Handler,
	requestsV1 *projectrequest.Handler,
	productsV1 *product.Handler,
	customersV1 *customer.Handler,
	importV1 *leadimport.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		// Everything below requires an authenticated actor.
		r.Group(func(r chi.Router) {
			r.Use(authSvc.Middleware)

			r.Route("/quotes", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				quotesV1.Routes(r)
			})

			r.Route("/project-requests", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				requestsV1.Routes(r)
			})

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				productsV1.Routes(r)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				customersV1.Routes(r)
			})

			r.Route("/import", importV1.Routes)
		})
	})

	return router
}
