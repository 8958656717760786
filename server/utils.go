package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Plain HTTP_200 API response.
func respondOk(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	io.WriteString(writer, `{ "status": "OK" }`) // nolint: gosec, errcheck
}

// Generic API respond.
func respond(writer http.ResponseWriter, data interface{}) {
	d, err := json.Marshal(data)
	if err != nil {
		respondError(writer, err)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	writer.Write(d) // nolint: gosec, errcheck
}

// Validates whether error is not null and responds different status
// depending on it.
func respondOkError(writer http.ResponseWriter, err error) {
	if err != nil {
		respondError(writer, err)
	} else {
		respondOk(writer)
	}
}

// Error API response, status depends on the error type.
func respondError(writer http.ResponseWriter, err error) {
	d, _ := json.Marshal(map[string]string{"status": "ERROR", "problem": err.Error()}) // nolint: gosec
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(errorStatus(err))
	writer.Write(d) // nolint: gosec, errcheck
}

// Maps error into HTTP status.
// Wrapped errors are matched through the whole chain.
func errorStatus(err error) int {
	var (
		unknownEffect *ErrUnknownEffect
		unknownEntity *ErrUnknownEntity
		unknownType   *common.ErrEffectNotFound
		badRequest    *ErrBadRequest
		unknownCmd    *ErrUnknownCommand
		config        *common.ErrConfiguration
		rateLimit     *common.ErrRateLimit
		circuitOpen   *common.ErrCircuitOpen
		connection    *common.ErrConnection
		unauthorized  *ErrUnauthorized
		forbidden     *ErrForbidden
	)

	switch {
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &unknownEffect), errors.As(err, &unknownEntity), errors.As(err, &unknownType):
		return http.StatusNotFound
	case errors.As(err, &badRequest), errors.As(err, &unknownCmd), errors.As(err, &config):
		return http.StatusBadRequest
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.As(err, &circuitOpen), errors.As(err, &connection):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// Decodes JSON request body.
func readBody(request *http.Request, data interface{}) error {
	if nil == request.Body {
		return &ErrBadRequest{}
	}

	defer request.Body.Close() // nolint: errcheck
	if err := json.NewDecoder(request.Body).Decode(data); err != nil {
		return errors.Wrap(&ErrBadRequest{}, err.Error())
	}

	return nil
}

// Returns URL param.
func urlParam(request *http.Request, key muxKeys) string {
	return mux.Vars(request)[string(key)]
}

// Logger middleware for the API.
func (s *EffectsServer) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Logger.Debug("REST invocation", common.LogURLToken, r.RequestURI,
			"method", r.Method, common.LogSystemToken, logSystem)
		next.ServeHTTP(w, r)
	})
}

// Adapts system logger to recovery handler.
type recoveryLogger struct {
	logger common.ILoggerProvider
}

// Println logs recovered panic.
func (r *recoveryLogger) Println(v ...interface{}) {
	r.logger.Error("API handler panicked", fmt.Errorf("%s", fmt.Sprint(v...)), common.LogSystemToken, logSystem)
}
