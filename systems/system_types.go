//go:generate enumer -type=SystemType -transform=kebab -trimprefix=Sys

// Package systems contains internal sub-systems of the effects server.
package systems

// SystemType is an enum describing known config record systems.
type SystemType int

const (
	// SysServer describes HTTP control server settings.
	SysServer SystemType = iota
	// SysLogger describes logger system.
	SysLogger
	// SysDevice describes WLED device communication settings.
	SysDevice
	// SysState describes external entity state source.
	SysState
	// SysEffect describes effect instance.
	SysEffect
	// SysSecret describes secret store system.
	SysSecret
	// SysConfig describes config provider system.
	SysConfig
	// SysSecurity describes control API security system.
	SysSecurity
)
