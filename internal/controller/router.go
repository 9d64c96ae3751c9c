package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Get("/healthz", c.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/rooms", c.createRoom)
		r.Post("/rooms/{room-code}/join", c.joinRoom)
		r.Post("/rooms/{room-code}/media", c.uploadMedia)
		r.Get("/media/{media-id}", c.serveMedia)
		r.HandleFunc("/ws", c.serveWS)
	})

	return r
}
