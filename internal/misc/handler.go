package misc

import (
	"net/http"

	"github.com/2beens/notesservice/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const rootGreeting = "<h1>Hello World! Esto es un mensaje desde el backend.</h1>"

type Handler struct {
	versionInfo string
}

func NewHandler(versionInfo string) *Handler {
	return &Handler{
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	// only reached when neither a static file nor a route matched
	mainRouter.NotFoundHandler = UnknownEndpoint()
	mainRouter.MethodNotAllowedHandler = UnknownEndpoint()
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteHTMLResponseOK(w, rootGreeting)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func UnknownEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Tracef("unknown endpoint: [%s] %s", r.Method, r.URL.Path)
		pkg.WriteJSONError(w, "unknown endpoint", http.StatusNotFound)
	})
}
