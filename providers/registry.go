package providers

import (
	"github.com/go-home-io/wled-effects/plugins/effect"
)

// IEffectRegistryProvider defines effects table logic.
type IEffectRegistryProvider interface {
	Register(name string, factory effect.Factory)
	Unregister(name string)
	Create(name string) (effect.IEffect, error)
	List() []string
	Info(name string) (*effect.Spec, error)
	AllInfo() map[string]*effect.Spec
}
