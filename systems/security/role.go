package security

import (
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/gobwas/glob"
)

// Pre-baked role.
type bakedRole struct {
	Name  string
	Rules []*providers.BakedRule
	Users []glob.Glob
}

// Checks whether user belongs to the role.
func (r *bakedRole) matches(user string) bool {
	for _, v := range r.Users {
		if v.Match(user) {
			return true
		}
	}

	return false
}

// Pre-compiles configured roles. Roles without users or rules are skipped.
func bakeRoles(roles []*providers.SecRole, logger common.ILoggerProvider) []*bakedRole {
	baked := make([]*bakedRole, 0, len(roles))
	for _, v := range roles {
		role := &bakedRole{
			Name:  v.Name,
			Users: compileGlobs(v.Users, v.Name, logger),
			Rules: make([]*providers.BakedRule, 0),
		}

		if 0 == len(role.Users) {
			logger.Warn("Skipping role since users are empty", common.LogSystemToken, logSystem,
				common.LogRoleNameToken, v.Name)
			continue
		}

		for _, o := range v.Rules {
			if rule := bakeRule(o, v.Name, logger); nil != rule {
				role.Rules = append(role.Rules, rule)
			}
		}

		if 0 == len(role.Rules) {
			logger.Warn("Skipping role since rules are empty", common.LogSystemToken, logSystem,
				common.LogRoleNameToken, v.Name)
			continue
		}

		baked = append(baked, role)
	}

	return baked
}

// Pre-compiles role's rule.
func bakeRule(rule *providers.SecRoleRule, roleName string, logger common.ILoggerProvider) *providers.BakedRule {
	if nil == rule {
		return nil
	}

	baked := &providers.BakedRule{
		Resources: compileGlobs(rule.Resources, roleName, logger),
	}

	if 0 == len(baked.Resources) {
		logger.Warn("Skipping rule since resources are empty", common.LogSystemToken, logSystem,
			common.LogRoleNameToken, roleName)
		return nil
	}

	for _, v := range rule.Verbs {
		switch v {
		case providers.SecVerbAll:
			baked.Get = true
			baked.Command = true
		case providers.SecVerbGet:
			baked.Get = true
		case providers.SecVerbCommand:
			baked.Command = true
		default:
			logger.Warn("Unknown rule verb", common.LogSystemToken, logSystem,
				common.LogRoleNameToken, roleName, common.LogValueToken, string(v))
		}
	}

	if !baked.Get && !baked.Command {
		return nil
	}

	return baked
}

// Compiles glob patterns, skipping broken ones.
func compileGlobs(patterns []string, roleName string, logger common.ILoggerProvider) []glob.Glob {
	res := make([]glob.Glob, 0, len(patterns))
	for _, v := range patterns {
		g, err := glob.Compile(v)
		if err != nil {
			logger.Warn("Failed to compile role's pattern", common.LogSystemToken, logSystem,
				common.LogRoleNameToken, roleName, common.LogValueToken, v)
			continue
		}

		res = append(res, g)
	}

	return res
}
