package chi

import (
	"fmt"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Service info and endpoint map.
	// (GET /)
	Root(w http.ResponseWriter, r *http.Request)
	// (POST /profiles)
	CreateProfile(w http.ResponseWriter, r *http.Request)
	// (POST /profiles/batch)
	CreateProfilesBatch(w http.ResponseWriter, r *http.Request)
	// (POST /profiles/search)
	SearchProfiles(w http.ResponseWriter, r *http.Request)
	// (GET /profiles)
	ListProfiles(w http.ResponseWriter, r *http.Request, params ListProfilesParams)
	// (GET /profiles/{id})
	GetProfile(w http.ResponseWriter, r *http.Request, id ProfileID)
	// (DELETE /profiles/{id})
	DeleteProfile(w http.ResponseWriter, r *http.Request, id ProfileID)
	// (GET /stats)
	GetStats(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts HTTP requests to ServerInterface calls with bound parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, middleware := range siw.HandlerMiddlewares {
		h = middleware(h)
	}
	return h
}

// Root operation middleware.
func (siw *ServerInterfaceWrapper) Root(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Root)).ServeHTTP(w, r)
}

// CreateProfile operation middleware.
func (siw *ServerInterfaceWrapper) CreateProfile(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.CreateProfile)).ServeHTTP(w, r)
}

// CreateProfilesBatch operation middleware.
func (siw *ServerInterfaceWrapper) CreateProfilesBatch(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.CreateProfilesBatch)).ServeHTTP(w, r)
}

// SearchProfiles operation middleware.
func (siw *ServerInterfaceWrapper) SearchProfiles(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.SearchProfiles)).ServeHTTP(w, r)
}

// ListProfiles operation middleware.
func (siw *ServerInterfaceWrapper) ListProfiles(w http.ResponseWriter, r *http.Request) {
	var params ListProfilesParams

	// ------------- Optional query parameter "limit" -------------
	err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListProfiles(w, r, params)
	})).ServeHTTP(w, r)
}

// GetProfile operation middleware.
func (siw *ServerInterfaceWrapper) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetProfile(w, r, id)
	})).ServeHTTP(w, r)
}

// DeleteProfile operation middleware.
func (siw *ServerInterfaceWrapper) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteProfile(w, r, id)
	})).ServeHTTP(w, r)
}

// GetStats operation middleware.
func (siw *ServerInterfaceWrapper) GetStats(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.GetStats)).ServeHTTP(w, r)
}

// HealthCheck operation middleware.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.HealthCheck)).ServeHTTP(w, r)
}

// Metrics operation middleware.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Metrics)).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindID(w http.ResponseWriter, r *http.Request) (ProfileID, bool) {
	var id ProfileID

	// ------------- Path parameter "id" -------------
	err := runtime.BindStyledParameterWithOptions("simple", "id", chirouter.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chirouter.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chirouter.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = BadRequestHandler
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chirouter.Router) {
		r.Get(base+"/", wrapper.Root)
		r.Post(base+"/profiles", wrapper.CreateProfile)
		r.Post(base+"/profiles/batch", wrapper.CreateProfilesBatch)
		r.Post(base+"/profiles/search", wrapper.SearchProfiles)
		r.Get(base+"/profiles", wrapper.ListProfiles)
		r.Get(base+"/profiles/{id}", wrapper.GetProfile)
		r.Delete(base+"/profiles/{id}", wrapper.DeleteProfile)
		r.Get(base+"/stats", wrapper.GetStats)
		r.Get(base+"/health", wrapper.HealthCheck)
		r.Get(base+"/metrics", wrapper.Metrics)
	})
	return r
}

// BadRequestHandler writes parameter binding failures as 400 bad_request.
func BadRequestHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
}
