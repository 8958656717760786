package server

import (
	"net/http"
)

// Entity state update request.
type entityRequest struct {
	State      interface{}            `json:"state"`
	Attributes map[string]interface{} `json:"attributes"`
}

// Devices list response.
type devicesResponse struct {
	Connected []string `json:"connected"`
}

// Performs quick check whether system is OK.
func (s *EffectsServer) ping(writer http.ResponseWriter, _ *http.Request) {
	respondOk(writer)
}

// Responds with all known entities.
func (s *EffectsServer) getEntities(writer http.ResponseWriter, _ *http.Request) {
	respond(writer, s.Settings.State().All())
}

// Responds with a single entity.
func (s *EffectsServer) getEntity(writer http.ResponseWriter, request *http.Request) {
	id := urlParam(request, urlEntityID)
	st, ok := s.Settings.State().Get(id)
	if !ok {
		respondError(writer, &ErrUnknownEntity{ID: id})
		return
	}

	respond(writer, st)
}

// Updates entity state, effects are notified by the state store.
func (s *EffectsServer) setEntity(writer http.ResponseWriter, request *http.Request) {
	data := &entityRequest{}
	if err := readBody(request, data); err != nil {
		respondError(writer, err)
		return
	}

	id := urlParam(request, urlEntityID)
	s.Settings.State().Set(id, data.State, data.Attributes)

	st, _ := s.Settings.State().Get(id)
	respond(writer, st)
}

// Fires custom event.
func (s *EffectsServer) fireEvent(writer http.ResponseWriter, request *http.Request) {
	data := make(map[string]interface{})
	if nil != request.Body && request.ContentLength != 0 {
		if err := readBody(request, &data); err != nil {
			respondError(writer, err)
			return
		}
	}

	s.Settings.State().FireEvent(urlParam(request, urlEventType), data)
	respondOk(writer)
}

// Responds with connected devices.
func (s *EffectsServer) getDevices(writer http.ResponseWriter, _ *http.Request) {
	respond(writer, &devicesResponse{Connected: s.Settings.Connections().ConnectedHosts()})
}
