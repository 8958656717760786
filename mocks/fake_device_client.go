//+build !release

package mocks

import (
	"context"
	"sync"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
)

// FakeDeviceClient records commands instead of sending them.
type FakeDeviceClient struct {
	sync.Mutex
	host        string
	info        *device.Info
	infoErr     error
	state       *device.State
	stateErr    error
	ledErr      error
	segmentErr  error
	probeErr    error
	closeErr    error
	closed      bool
	ledFrames   [][]common.Color
	ledStarts   []int
	segments    []*device.SegmentRequest
	stateCalls  int
	maxBuffer   int
	onLEDCalled func()
}

// FakeNewDeviceClient creates a fake client for a device with ledCount LEDs.
func FakeNewDeviceClient(host string, ledCount int) *FakeDeviceClient {
	return &FakeDeviceClient{
		host: host,
		info: &device.Info{
			Name: "fake",
			Arch: "esp32",
			LEDs: device.LEDInfo{Count: ledCount, MaxSegments: 32},
		},
		state: &device.State{
			On:         true,
			Brightness: 128,
			Segments: []*device.Segment{
				{ID: 0, Start: 0, Stop: ledCount, Length: ledCount, On: true, Brightness: 255,
					Colors: [][]int{{255, 160, 0}}},
			},
		},
		ledFrames: make([][]common.Color, 0),
		ledStarts: make([]int, 0),
		segments:  make([]*device.SegmentRequest, 0),
		maxBuffer: 24000,
	}
}

// SetInfoError makes GetInfo fail.
func (f *FakeDeviceClient) SetInfoError(err error) {
	f.Lock()
	defer f.Unlock()
	f.infoErr = err
}

// SetStateError makes GetState fail.
func (f *FakeDeviceClient) SetStateError(err error) {
	f.Lock()
	defer f.Unlock()
	f.stateErr = err
}

// SetLEDError makes per-LED commands fail.
func (f *FakeDeviceClient) SetLEDError(err error) {
	f.Lock()
	defer f.Unlock()
	f.ledErr = err
}

// SetSegmentError makes segment commands fail.
func (f *FakeDeviceClient) SetSegmentError(err error) {
	f.Lock()
	defer f.Unlock()
	f.segmentErr = err
}

// SetProbeError makes TestConnection fail.
func (f *FakeDeviceClient) SetProbeError(err error) {
	f.Lock()
	defer f.Unlock()
	f.probeErr = err
}

// SetCloseError makes Close fail.
func (f *FakeDeviceClient) SetCloseError(err error) {
	f.Lock()
	defer f.Unlock()
	f.closeErr = err
}

// SetSegment replaces device segment state.
func (f *FakeDeviceClient) SetSegment(seg *device.Segment) {
	f.Lock()
	defer f.Unlock()

	for ii, v := range f.state.Segments {
		if v.ID == seg.ID {
			f.state.Segments[ii] = seg
			return
		}
	}

	f.state.Segments = append(f.state.Segments, seg)
}

// OnLED registers hook invoked on every per-LED command.
func (f *FakeDeviceClient) OnLED(hook func()) {
	f.Lock()
	defer f.Unlock()
	f.onLEDCalled = hook
}

// LEDFrames returns recorded per-LED frames.
func (f *FakeDeviceClient) LEDFrames() [][]common.Color {
	f.Lock()
	defer f.Unlock()

	res := make([][]common.Color, len(f.ledFrames))
	copy(res, f.ledFrames)
	return res
}

// LEDStarts returns recorded per-LED start indexes.
func (f *FakeDeviceClient) LEDStarts() []int {
	f.Lock()
	defer f.Unlock()

	res := make([]int, len(f.ledStarts))
	copy(res, f.ledStarts)
	return res
}

// SegmentCommands returns recorded segment commands.
func (f *FakeDeviceClient) SegmentCommands() []*device.SegmentRequest {
	f.Lock()
	defer f.Unlock()

	res := make([]*device.SegmentRequest, len(f.segments))
	copy(res, f.segments)
	return res
}

// StateCalls returns number of GetState invocations.
func (f *FakeDeviceClient) StateCalls() int {
	f.Lock()
	defer f.Unlock()
	return f.stateCalls
}

// IsClosed returns whether Close was invoked.
func (f *FakeDeviceClient) IsClosed() bool {
	f.Lock()
	defer f.Unlock()
	return f.closed
}

// Host returns device host.
func (f *FakeDeviceClient) Host() string {
	return f.host
}

// GetState returns device state.
func (f *FakeDeviceClient) GetState(ctx context.Context) (*device.State, error) {
	f.Lock()
	defer f.Unlock()

	f.stateCalls++
	if nil != f.stateErr {
		return nil, f.stateErr
	}

	st := *f.state
	st.Segments = make([]*device.Segment, len(f.state.Segments))
	for ii, v := range f.state.Segments {
		seg := *v
		st.Segments[ii] = &seg
	}

	return &st, nil
}

// GetInfo returns device info.
func (f *FakeDeviceClient) GetInfo(ctx context.Context) (*device.Info, error) {
	f.Lock()
	defer f.Unlock()

	if nil != f.infoErr {
		return nil, f.infoErr
	}

	info := *f.info
	return &info, nil
}

// GetEffects returns built-in effects.
func (f *FakeDeviceClient) GetEffects(ctx context.Context) ([]string, error) {
	return []string{"Solid", "Blink"}, nil
}

// GetPalettes returns built-in palettes.
func (f *FakeDeviceClient) GetPalettes(ctx context.Context) ([]string, error) {
	return []string{"Default"}, nil
}

// SetState records segment commands of the request.
func (f *FakeDeviceClient) SetState(ctx context.Context, state *device.StateRequest,
	returnFull bool) (*device.State, error) {
	for _, v := range state.Segments {
		if err := f.UpdateSegment(ctx, v); err != nil {
			return nil, err
		}
	}

	if !returnFull {
		return nil, nil
	}

	return f.GetState(ctx)
}

// TurnOn records segment-less command.
func (f *FakeDeviceClient) TurnOn(ctx context.Context, brightness *int) error {
	return f.UpdateSegment(ctx, &device.SegmentRequest{On: device.Bool(true), Brightness: brightness})
}

// TurnOff records segment-less command.
func (f *FakeDeviceClient) TurnOff(ctx context.Context) error {
	return f.UpdateSegment(ctx, &device.SegmentRequest{On: device.Bool(false)})
}

// SetBrightness records segment-less command.
func (f *FakeDeviceClient) SetBrightness(ctx context.Context, brightness int) error {
	return f.UpdateSegment(ctx, &device.SegmentRequest{Brightness: device.Int(brightness)})
}

// Toggle flips device power.
func (f *FakeDeviceClient) Toggle(ctx context.Context) (bool, error) {
	f.Lock()
	defer f.Unlock()
	f.state.On = !f.state.On
	return f.state.On, nil
}

// UpdateSegment records segment command.
func (f *FakeDeviceClient) UpdateSegment(ctx context.Context, segment *device.SegmentRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.Lock()
	defer f.Unlock()

	if nil != f.segmentErr {
		return f.segmentErr
	}

	cmd := *segment
	f.segments = append(f.segments, &cmd)

	for _, v := range f.state.Segments {
		if v.ID != segment.ID {
			continue
		}

		if nil != segment.On {
			v.On = *segment.On
		}

		if nil != segment.Freeze {
			v.Freeze = *segment.Freeze
		}

		if len(segment.Colors) > 0 {
			v.Colors = segment.Colors
		}
	}

	return nil
}

// SetSegmentColor records segment command.
func (f *FakeDeviceClient) SetSegmentColor(ctx context.Context, segmentID int, colors ...common.Color) error {
	col := make([][]int, 0, len(colors))
	for _, v := range colors {
		col = append(col, v.Slice())
	}

	return f.UpdateSegment(ctx, &device.SegmentRequest{ID: segmentID, Colors: col})
}

// SetSegmentEffect records segment command.
func (f *FakeDeviceClient) SetSegmentEffect(ctx context.Context, segmentID int, effectID int,
	speed *int, intensity *int, palette *int) error {
	return f.UpdateSegment(ctx, &device.SegmentRequest{ID: segmentID, Effect: device.Int(effectID),
		Speed: speed, Intensity: intensity, Palette: palette})
}

// FreezeSegment records segment command.
func (f *FakeDeviceClient) FreezeSegment(ctx context.Context, segmentID int, freeze bool) error {
	return f.UpdateSegment(ctx, &device.SegmentRequest{ID: segmentID, Freeze: device.Bool(freeze)})
}

// SetIndividualLEDs records per-LED frame.
func (f *FakeDeviceClient) SetIndividualLEDs(ctx context.Context, segmentID int, colors []common.Color,
	startIndex int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.Lock()
	hook := f.onLEDCalled
	if nil != f.ledErr {
		err := f.ledErr
		f.Unlock()
		return err
	}

	frame := make([]common.Color, len(colors))
	copy(frame, colors)
	f.ledFrames = append(f.ledFrames, frame)
	f.ledStarts = append(f.ledStarts, startIndex)
	f.Unlock()

	if nil != hook {
		hook()
	}

	return nil
}

// SetLED records single LED frame.
func (f *FakeDeviceClient) SetLED(ctx context.Context, segmentID int, index int, color common.Color) error {
	return f.SetIndividualLEDs(ctx, segmentID, []common.Color{color}, index)
}

// SetLEDRange records range frame.
func (f *FakeDeviceClient) SetLEDRange(ctx context.Context, segmentID int, start int, stop int,
	color common.Color) error {
	colors := make([]common.Color, 0, stop-start+1)
	for ii := start; ii <= stop; ii++ {
		colors = append(colors, color)
	}

	return f.SetIndividualLEDs(ctx, segmentID, colors, start)
}

// ClearIndividualLEDs records unfreeze command.
func (f *FakeDeviceClient) ClearIndividualLEDs(ctx context.Context, segmentID int) error {
	return f.FreezeSegment(ctx, segmentID, false)
}

// MaxBufferSize returns buffer size.
func (f *FakeDeviceClient) MaxBufferSize(ctx context.Context) int {
	return f.maxBuffer
}

// TestConnection returns configured probe error.
func (f *FakeDeviceClient) TestConnection(ctx context.Context) error {
	f.Lock()
	defer f.Unlock()
	return f.probeErr
}

// Close marks client as closed.
func (f *FakeDeviceClient) Close() error {
	f.Lock()
	defer f.Unlock()
	f.closed = true
	return f.closeErr
}
