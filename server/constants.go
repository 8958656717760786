package server

// muxKeys describes enum with known API tokens.
type muxKeys string

const (
	// urlEffectName describes effect instance name URL param.
	urlEffectName muxKeys = "effectName"
	// urlEffectType describes effect type URL param.
	urlEffectType muxKeys = "effectType"
	// urlCommandName describes effect command name URL param.
	urlCommandName muxKeys = "commandName"
	// urlEntityID describes entity ID URL param.
	urlEntityID muxKeys = "entityID"
	// urlEventType describes event type URL param.
	urlEventType muxKeys = "eventType"
	// routeAPI describes base api prefix.
	routeAPI = "/api/v1"
)

// Effect commands.
const (
	cmdStart   = "start"
	cmdStop    = "stop"
	cmdRunOnce = "run_once"
)
