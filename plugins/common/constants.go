package common

const (
	// LogSystemToken describes system log entry.
	LogSystemToken = "system"
	// LogEffectToken describes effect name log entry.
	LogEffectToken = "effect"
	// LogEffectTypeToken describes effect type log entry.
	LogEffectTypeToken = "effect_type"
	// LogSegmentToken describes segment id log entry.
	LogSegmentToken = "segment"
	// LogDeviceHostToken describes device host log entry.
	LogDeviceHostToken = "host_ip"
	// LogEndpointToken describes device endpoint log entry.
	LogEndpointToken = "endpoint"
	// LogAttemptToken describes request attempt log entry.
	LogAttemptToken = "attempt"
	// LogEntityToken describes entity id log entry.
	LogEntityToken = "entity"
	// LogAttributeToken describes entity attribute log entry.
	LogAttributeToken = "attribute"
	// LogTriggerToken describes trigger id log entry.
	LogTriggerToken = "trigger"
	// LogURLToken describes URL log entry.
	LogURLToken = "url"
	// LogUserToken describes API user log entry.
	LogUserToken = "user"
	// LogRoleNameToken describes security role log entry.
	LogRoleNameToken = "role"
)

const (
	// LogErrorToken describes error log entry.
	LogErrorToken = "error"
	// LogFileToken describes file log entry.
	LogFileToken = "file"
	// LogProviderToken describes provider log entry.
	LogProviderToken = "provider"
	// LogFieldToken describes field log entry.
	LogFieldToken = "field"
	// LogValueToken describes value log entry.
	LogValueToken = "value"
)
