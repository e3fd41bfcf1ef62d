package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lalit-mendapara/fittrack/controllers"
	"github.com/lalit-mendapara/fittrack/database"
	"github.com/lalit-mendapara/fittrack/llm"
	auth "github.com/lalit-mendapara/fittrack/middleware"
	"github.com/lalit-mendapara/fittrack/services"
)

func SetupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	svc := services.NewFeastService(database.DB, llm.NewClient(), nil)
	feast := controllers.NewFeastController(svc)
	meals := controllers.NewMealController(database.DB, svc)
	profile := controllers.NewProfileController(database.DB)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Auth)

		r.Route("/feast", func(r chi.Router) {
			r.Post("/propose", feast.Propose)
			r.Post("/activate", feast.Activate)
			r.Delete("/", feast.Cancel)
			r.Patch("/", feast.Update)
			r.Get("/status", feast.Status)
			r.Get("/overrides", feast.Overrides)
		})

		r.Get("/plan", meals.GetDayPlan)
		r.Post("/meals/log", meals.LogMeal)

		r.Get("/profile", profile.Get)
		r.Put("/profile", profile.Put)
	})

	return r
}
