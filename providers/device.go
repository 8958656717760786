package providers

import (
	"context"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
)

// IDeviceClientProvider defines WLED JSON API client.
type IDeviceClientProvider interface {
	Host() string

	GetState(ctx context.Context) (*device.State, error)
	GetInfo(ctx context.Context) (*device.Info, error)
	GetEffects(ctx context.Context) ([]string, error)
	GetPalettes(ctx context.Context) ([]string, error)
	SetState(ctx context.Context, state *device.StateRequest, returnFull bool) (*device.State, error)

	TurnOn(ctx context.Context, brightness *int) error
	TurnOff(ctx context.Context) error
	SetBrightness(ctx context.Context, brightness int) error
	Toggle(ctx context.Context) (bool, error)

	UpdateSegment(ctx context.Context, segment *device.SegmentRequest) error
	SetSegmentColor(ctx context.Context, segmentID int, colors ...common.Color) error
	SetSegmentEffect(ctx context.Context, segmentID int, effectID int, speed *int, intensity *int, palette *int) error
	FreezeSegment(ctx context.Context, segmentID int, freeze bool) error

	SetIndividualLEDs(ctx context.Context, segmentID int, colors []common.Color, startIndex int) error
	SetLED(ctx context.Context, segmentID int, index int, color common.Color) error
	SetLEDRange(ctx context.Context, segmentID int, start int, stop int, color common.Color) error
	ClearIndividualLEDs(ctx context.Context, segmentID int) error
	MaxBufferSize(ctx context.Context) int

	TestConnection(ctx context.Context) error
	Close() error
}
