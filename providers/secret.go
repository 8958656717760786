package providers

import "github.com/go-home-io/wled-effects/plugins/common"

// ISecretProvider defines secrets store used by config templates.
type ISecretProvider interface {
	Get(name string) (string, error)
	Set(name string, data string) error
	UpdateLogger(logger common.ILoggerProvider)
}
