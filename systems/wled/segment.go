package wled

import (
	"context"
	"fmt"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/systems/metrics"
	"github.com/go-home-io/wled-effects/utils"
)

// TurnOn turns the light on with optional brightness.
func (c *client) TurnOn(ctx context.Context, brightness *int) error {
	req := &device.StateRequest{On: true}
	if nil != brightness {
		req.Brightness = device.Int(helpers.ClampInt(*brightness, 0, 255))
	}

	return c.logged(c.setState(ctx, req), "Turned on")
}

// TurnOff turns the light off.
func (c *client) TurnOff(ctx context.Context) error {
	return c.logged(c.setState(ctx, &device.StateRequest{On: false}), "Turned off")
}

// SetBrightness sets global brightness.
func (c *client) SetBrightness(ctx context.Context, brightness int) error {
	req := &device.StateRequest{Brightness: device.Int(helpers.ClampInt(brightness, 0, 255))}
	return c.logged(c.setState(ctx, req), fmt.Sprintf("Set brightness to %d", *req.Brightness))
}

// Toggle toggles on/off state and returns the new one.
func (c *client) Toggle(ctx context.Context) (bool, error) {
	state, err := c.SetState(ctx, &device.StateRequest{On: "t"}, true)
	if err != nil {
		return false, err
	}

	return state.On, nil
}

// UpdateSegment sends partial segment update.
func (c *client) UpdateSegment(ctx context.Context, segment *device.SegmentRequest) error {
	return c.setState(ctx, &device.StateRequest{Segments: []*device.SegmentRequest{segment}})
}

// SetSegmentColor sets primary, secondary and tertiary segment colors.
func (c *client) SetSegmentColor(ctx context.Context, segmentID int, colors ...common.Color) error {
	if 0 == len(colors) {
		return nil
	}

	if len(colors) > 3 {
		return &common.ErrConfiguration{Message: "segment supports up to 3 colors"}
	}

	col := make([][]int, 0, len(colors))
	for _, v := range colors {
		col = append(col, v.Slice())
	}

	return c.UpdateSegment(ctx, &device.SegmentRequest{ID: segmentID, Colors: col})
}

// SetSegmentEffect sets built-in segment effect.
func (c *client) SetSegmentEffect(ctx context.Context, segmentID int, effectID int,
	speed *int, intensity *int, palette *int) error {
	req := &device.SegmentRequest{ID: segmentID, Effect: device.Int(effectID), Palette: palette}
	if nil != speed {
		req.Speed = device.Int(helpers.ClampInt(*speed, 0, 255))
	}

	if nil != intensity {
		req.Intensity = device.Int(helpers.ClampInt(*intensity, 0, 255))
	}

	return c.UpdateSegment(ctx, req)
}

// FreezeSegment freezes or unfreezes segment.
func (c *client) FreezeSegment(ctx context.Context, segmentID int, freeze bool) error {
	return c.UpdateSegment(ctx, &device.SegmentRequest{ID: segmentID, Freeze: device.Bool(freeze)})
}

// SetIndividualLEDs sets LED colors starting at startIndex, splitting the payload into batches if needed.
func (c *client) SetIndividualLEDs(ctx context.Context, segmentID int, colors []common.Color, startIndex int) error {
	if 0 == len(colors) {
		return nil
	}

	data := device.NewLEDRun(startIndex, colors)
	estimated := c.buffer.Estimate(data.Elements())
	maxBuffer := c.MaxBufferSize(ctx)

	if estimated > maxBuffer {
		c.logger.Debug(fmt.Sprintf("Batching LED data: estimated %d bytes > %d limit", estimated, maxBuffer),
			common.LogSystemToken, logSystem, common.LogDeviceHostToken, c.host)
		return c.setLEDsBatched(ctx, segmentID, colors, startIndex, maxBuffer)
	}

	err := c.UpdateSegment(ctx, &device.SegmentRequest{ID: segmentID, LEDs: data})
	if nil == err {
		metrics.IncrementLEDBatches(c.host)
	}

	return err
}

// SetLED sets a single LED color.
func (c *client) SetLED(ctx context.Context, segmentID int, index int, color common.Color) error {
	return c.UpdateSegment(ctx, &device.SegmentRequest{ID: segmentID, LEDs: device.NewLEDIndex(index, color)})
}

// SetLEDRange sets inclusive range of LEDs to the same color.
func (c *client) SetLEDRange(ctx context.Context, segmentID int, start int, stop int, color common.Color) error {
	if stop < start {
		return &common.ErrConfiguration{Message: fmt.Sprintf("wrong LED range %d-%d", start, stop)}
	}

	return c.UpdateSegment(ctx, &device.SegmentRequest{
		ID:   segmentID,
		LEDs: device.NewLEDRange(start, stop+1, color),
	})
}

// ClearIndividualLEDs returns segment to the effect mode.
func (c *client) ClearIndividualLEDs(ctx context.Context, segmentID int) error {
	return c.FreezeSegment(ctx, segmentID, false)
}

// MaxBufferSize returns device JSON buffer size, based on the architecture.
func (c *client) MaxBufferSize(ctx context.Context) int {
	info, err := c.GetInfo(ctx)
	if err != nil {
		c.logger.Warn("Could not determine device architecture, using conservative default",
			common.LogSystemToken, logSystem, common.LogDeviceHostToken, c.host)
		return c.buffer.ESP8266
	}

	return c.buffer.ForArch(info.Arch)
}

// Sends LEDs in sequential batches.
func (c *client) setLEDsBatched(ctx context.Context, segmentID int, colors []common.Color,
	startIndex int, maxBuffer int) error {
	batchSize := c.buffer.BatchSize(maxBuffer)
	total := len(colors)
	batches := (total + batchSize - 1) / batchSize

	hex := make([]string, total)
	for ii, v := range colors {
		hex[ii] = v.Hex()
	}

	for ii := 0; ii < total; ii += batchSize {
		end := ii + batchSize
		if end > total {
			end = total
		}

		err := c.UpdateSegment(ctx, &device.SegmentRequest{
			ID:   segmentID,
			LEDs: device.NewLEDBatch(startIndex+ii, hex[ii:end]),
		})
		if err != nil {
			return err
		}

		metrics.IncrementLEDBatches(c.host)
		c.logger.Debug(fmt.Sprintf("Set LEDs %d-%d (batch %d/%d)", startIndex+ii, startIndex+end-1,
			ii/batchSize+1, batches), common.LogSystemToken, logSystem, common.LogDeviceHostToken, c.host,
			common.LogSegmentToken, fmt.Sprint(segmentID))

		if end < total {
			if err := Sleep(ctx, c.buffer.BatchDelay); err != nil {
				return err
			}
		}
	}

	return nil
}

// Sends state without returning it.
func (c *client) setState(ctx context.Context, state *device.StateRequest) error {
	_, err := c.SetState(ctx, state, false)
	return err
}

// Logs successful command.
func (c *client) logged(err error, msg string) error {
	if nil == err {
		c.logger.Debug(msg, common.LogSystemToken, logSystem, common.LogDeviceHostToken, c.host)
	}

	return err
}

// Validates state before any network I/O.
func validateState(state *device.StateRequest) error {
	if nil == state {
		return &common.ErrConfiguration{Message: "state is empty"}
	}

	if nil != state.Brightness && (*state.Brightness < 0 || *state.Brightness > 255) {
		return &common.ErrConfiguration{Message: fmt.Sprintf("brightness out of range: %d (must be 0-255)",
			*state.Brightness)}
	}

	switch on := state.On.(type) {
	case nil, bool:
	case string:
		if "t" != on {
			return &common.ErrConfiguration{Message: fmt.Sprintf("wrong on value: %s", on)}
		}
	default:
		return &common.ErrConfiguration{Message: fmt.Sprintf("wrong on value: %v", on)}
	}

	for _, seg := range state.Segments {
		if err := validateSegment(seg); err != nil {
			return err
		}
	}

	return nil
}

// Validates single segment request.
func validateSegment(seg *device.SegmentRequest) error {
	if nil == seg {
		return &common.ErrConfiguration{Message: "segment is empty"}
	}

	if seg.ID < 0 || seg.ID > utils.MaxSegmentID {
		return &common.ErrConfiguration{Message: fmt.Sprintf("segment id out of range: %d", seg.ID)}
	}

	if nil != seg.Brightness && (*seg.Brightness < 0 || *seg.Brightness > 255) {
		return &common.ErrConfiguration{Message: fmt.Sprintf("segment brightness out of range: %d",
			*seg.Brightness)}
	}

	if nil != seg.Start && nil != seg.Stop && *seg.Start > *seg.Stop {
		return &common.ErrConfiguration{Message: fmt.Sprintf("segment start %d is after stop %d",
			*seg.Start, *seg.Stop)}
	}

	for _, col := range seg.Colors {
		if len(col) < 3 || len(col) > 4 {
			return &common.ErrConfiguration{Message: "segment color must have 3 or 4 channels"}
		}

		for _, ch := range col {
			if ch < 0 || ch > 255 {
				return &common.ErrConfiguration{Message: fmt.Sprintf("segment color channel out of range: %d", ch)}
			}
		}
	}

	return nil
}
