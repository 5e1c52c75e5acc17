package server

import (
	"net/http"

	"framewright/internal/gateway/handler"
	"framewright/internal/gateway/middleware"
)

func NewMux(
	convertHandler *handler.ConvertHandler,
	keyframesHandler *handler.KeyframesHandler,
	projectsHandler *handler.ProjectsHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/convert", convertHandler.HandleConvert)
	mux.HandleFunc("/v1/keyframes/validate", keyframesHandler.HandleValidate)

	// Everything project-scoped dispatches by path segment: CRUD,
	// scene, preview control, integrity, media, and the event stream.
	mux.HandleFunc("/v1/projects", projectsHandler.Handle)
	mux.HandleFunc("/v1/projects/", projectsHandler.Handle)

	return middleware.CORS(mux)
}
