package server

import (
	"context"
	"net/http"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
)

// Effects list response.
type effectsResponse struct {
	Effects []*providers.EffectStatus `json:"effects"`
	Pending []string                  `json:"pending"`
}

// Responds with all known effect types and their schemas.
func (s *EffectsServer) getEffectTypes(writer http.ResponseWriter, _ *http.Request) {
	respond(writer, s.Settings.Registry().AllInfo())
}

// Responds with a single effect type schema.
func (s *EffectsServer) getEffectType(writer http.ResponseWriter, request *http.Request) {
	spec, err := s.Settings.Registry().Info(urlParam(request, urlEffectType))
	if err != nil {
		respondError(writer, err)
		return
	}

	respond(writer, spec)
}

// Responds with statuses of all loaded effects.
func (s *EffectsServer) getEffects(writer http.ResponseWriter, _ *http.Request) {
	effects := s.state.GetEffects()
	res := &effectsResponse{
		Effects: make([]*providers.EffectStatus, 0, len(effects)),
		Pending: s.state.Pending(),
	}

	for _, v := range effects {
		res.Effects = append(res.Effects, v.Status())
	}

	respond(writer, res)
}

// Responds with a single effect status.
func (s *EffectsServer) getEffect(writer http.ResponseWriter, request *http.Request) {
	c, err := s.state.GetEffect(urlParam(request, urlEffectName))
	if err != nil {
		respondError(writer, err)
		return
	}

	respond(writer, c.Status())
}

// Responds with effect instance schema.
func (s *EffectsServer) getEffectSpec(writer http.ResponseWriter, request *http.Request) {
	c, err := s.state.GetEffect(urlParam(request, urlEffectName))
	if err != nil {
		respondError(writer, err)
		return
	}

	respond(writer, c.Engine().GetSpec())
}

// Applies common settings change.
func (s *EffectsServer) updateEffectConfig(writer http.ResponseWriter, request *http.Request) {
	c, err := s.state.GetEffect(urlParam(request, urlEffectName))
	if err != nil {
		respondError(writer, err)
		return
	}

	update := &providers.ConfigUpdate{}
	if err := readBody(request, update); err != nil {
		respondError(writer, err)
		return
	}

	if err := c.UpdateConfig(update); err != nil {
		respondError(writer, err)
		return
	}

	respond(writer, c.Status())
}

// Invokes effect lifecycle command.
func (s *EffectsServer) effectCommand(writer http.ResponseWriter, request *http.Request) {
	c, err := s.invokeCommand(request.Context(), urlParam(request, urlEffectName), urlParam(request, urlCommandName))
	if err != nil {
		respondError(writer, err)
		return
	}

	respond(writer, c.Status())
}

// Performs effect command, shared by REST and WS.
func (s *EffectsServer) invokeCommand(ctx context.Context, name string,
	command string) (providers.ICoordinatorProvider, error) {
	c, err := s.state.GetEffect(name)
	if err != nil {
		return nil, err
	}

	s.Logger.Debug("Invoking effect command", common.LogSystemToken, logSystem,
		common.LogEffectToken, name, "command", command)

	switch command {
	case cmdStart:
		err = c.Start()
	case cmdStop:
		err = c.Stop()
	case cmdRunOnce:
		err = c.RunOnce(ctx)
	default:
		err = &ErrUnknownCommand{Name: command}
	}

	return c, err
}
