// Package security contains control API authentication and role-based access.
package security

import (
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/patrickmn/go-cache"
)

const (
	// Logger system.
	logSystem = "security"

	// How long resolved user rules are kept.
	userCacheExpiration = 5 * time.Minute
)

// Implements security provider.
type provider struct {
	sync.Mutex

	users  *basicAuth
	logger common.ILoggerProvider
	roles  []*bakedRole
	cache  *cache.Cache
}

// ConstructSecurityProvider has all data required for a new security provider.
type ConstructSecurityProvider struct {
	Logger    common.ILoggerProvider
	Secret    providers.ISecretProvider
	Roles     []*providers.SecRole
	UsersFile string
}

// NewSecurityProvider constructs new security provider.
func NewSecurityProvider(ctor *ConstructSecurityProvider) providers.ISecurityProvider {
	prov := &provider{
		users:  newBasicAuth(ctor.Logger, ctor.Secret, ctor.UsersFile),
		logger: ctor.Logger,
		cache:  cache.New(userCacheExpiration, 2*userCacheExpiration),
	}

	prov.roles = bakeRoles(ctor.Roles, ctor.Logger)
	return prov
}

// GetUser authenticates request and returns user with matched rules.
func (p *provider) GetUser(headers map[string][]string) (*providers.AuthenticatedUser, error) {
	p.Lock()
	defer p.Unlock()

	usr, err := p.users.Authorize(headers)
	if err != nil {
		return nil, err
	}

	if authData, ok := p.cache.Get(usr); ok {
		return authData.(*providers.AuthenticatedUser), nil
	}

	authUser := &providers.AuthenticatedUser{
		Username: usr,
		Rules:    make([]*providers.BakedRule, 0),
	}

	for _, v := range p.roles {
		if v.matches(usr) {
			authUser.Rules = append(authUser.Rules, v.Rules...)
		}
	}

	if 0 == len(authUser.Rules) {
		p.logger.Warn("User doesn't belong to any role", common.LogSystemToken, logSystem,
			common.LogUserToken, usr)
	}

	p.cache.Set(usr, authUser, cache.DefaultExpiration)
	return authUser, nil
}
