package providers

import (
	"github.com/gobwas/glob"
)

// ISecurityProvider defines control API authentication.
type ISecurityProvider interface {
	GetUser(headers map[string][]string) (*AuthenticatedUser, error)
}

// SecVerb describes allowed rules for the role.
type SecVerb string

const (
	// SecVerbAll describes all allowed operation rules.
	SecVerbAll SecVerb = "all"
	// SecVerbGet describes read-only rule.
	SecVerbGet SecVerb = "get"
	// SecVerbCommand describes effect commands, config and state updates rule.
	SecVerbCommand SecVerb = "command"
)

// SecRole has configured role.
type SecRole struct {
	Name  string         `yaml:"name" validate:"required"`
	Users []string       `yaml:"users" validate:"required,min=1"`
	Rules []*SecRoleRule `yaml:"rules" validate:"required,min=1,dive"`
}

// SecRoleRule has configured role's rule.
// Resources are glob patterns over effect names or API sections
// such as "entities", "events", "devices" and "effect-types".
type SecRoleRule struct {
	Resources []string  `yaml:"resources" validate:"required,min=1"`
	Verbs     []SecVerb `yaml:"verbs" validate:"required,min=1"`
}

// BakedRule has pre-compiled role's rule.
type BakedRule struct {
	Resources []glob.Glob
	Get       bool
	Command   bool
}

// AuthenticatedUser describes authenticated user with all matched rules.
type AuthenticatedUser struct {
	Username string
	Rules    []*BakedRule
}

// CanGet checks whether user is allowed to read the resource.
func (u *AuthenticatedUser) CanGet(resource string) bool {
	return u.allowed(resource, func(r *BakedRule) bool { return r.Get })
}

// CanCommand checks whether user is allowed to change the resource.
func (u *AuthenticatedUser) CanCommand(resource string) bool {
	return u.allowed(resource, func(r *BakedRule) bool { return r.Command })
}

// Checks rules matching the resource.
func (u *AuthenticatedUser) allowed(resource string, verb func(*BakedRule) bool) bool {
	for _, v := range u.Rules {
		if !verb(v) {
			continue
		}

		for _, r := range v.Resources {
			if r.Match(resource) {
				return true
			}
		}
	}

	return false
}
