package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
)

// Request context key of the authenticated user.
type userContextKey struct{}

// Authentication and authorization middleware for the API.
// Open when security is not configured.
func (s *EffectsServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sec := s.Settings.Security()
		if nil == sec {
			next.ServeHTTP(w, r)
			return
		}

		usr, err := sec.GetUser(r.Header)
		if err != nil {
			s.Logger.Debug("Unauthorized API request", common.LogSystemToken, logSystem,
				common.LogURLToken, r.RequestURI, common.LogErrorToken, err.Error())
			w.Header().Set("WWW-Authenticate", `Basic realm="wled-effects"`)
			respondError(w, &ErrUnauthorized{})
			return
		}

		resource := requestResource(r)
		allowed := usr.CanGet(resource)
		if http.MethodGet != r.Method {
			allowed = usr.CanCommand(resource)
		}

		if !allowed {
			s.Logger.Warn("Forbidden API request", common.LogSystemToken, logSystem,
				common.LogUserToken, usr.Username, common.LogURLToken, r.RequestURI)
			respondError(w, &ErrForbidden{User: usr.Username, Resource: resource})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, usr)))
	})
}

// Returns effect name or API section the request is addressed to.
func requestResource(request *http.Request) string {
	if name := urlParam(request, urlEffectName); "" != name {
		return name
	}

	path := strings.TrimPrefix(request.URL.Path, routeAPI+"/")
	return strings.SplitN(path, "/", 2)[0]
}

// Returns authenticated user, nil if security is disabled.
func requestUser(request *http.Request) *providers.AuthenticatedUser {
	usr, _ := request.Context().Value(userContextKey{}).(*providers.AuthenticatedUser)
	return usr
}

// Checks whether user can invoke effect command, nil user is always allowed.
func canCommand(usr *providers.AuthenticatedUser, name string) error {
	if nil == usr || usr.CanCommand(name) {
		return nil
	}

	return &ErrForbidden{User: usr.Username, Resource: name}
}
