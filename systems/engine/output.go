package engine

import (
	"context"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/metrics"
	"github.com/pkg/errors"
)

var (
	// Returned by a step which finished the effect.
	errDone = errors.New("effect has finished")
	// Returned by a step skipped because of manual control.
	errOverride = errors.New("manual override is active")
)

// Device command error, already counted by the command.
type errCommand struct {
	err error
}

// Error formats output.
func (e *errCommand) Error() string {
	return e.err.Error()
}

// Cause returns device error.
func (e *errCommand) Cause() error {
	return e.err
}

// Unwrap returns device error.
func (e *errCommand) Unwrap() error {
	return e.err
}

// Sends frame to the device.
// Per-LED colors are sent first, segment command is used when frame has no colors
// or per-LED output fails.
func (e *engine) output(ctx context.Context, frame *effect.Frame) error {
	if frame.Skip {
		return nil
	}

	s := e.Settings()

	if frame.Off {
		return e.command(ctx, func() error {
			return e.client.UpdateSegment(ctx, &device.SegmentRequest{ID: s.SegmentID, On: device.Bool(false)})
		})
	}

	if len(frame.Colors) > 0 {
		colors := frame.Colors
		if s.Reverse {
			colors = Reverse(colors)
		}

		start := e.Range().Start
		err := e.command(ctx, func() error {
			return e.client.SetIndividualLEDs(ctx, s.SegmentID, colors, start)
		})

		if nil == err {
			e.markSent(nil)
			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		e.logger.Warn("Per-LED output failed, falling back to segment command",
			append(e.logFields(), common.LogErrorToken, err.Error())...)
		metrics.IncrementEffectFallbacks(s.Name)
	}

	cmd := e.segmentCommand(&s, frame)
	err := e.command(ctx, func() error {
		return e.client.UpdateSegment(ctx, cmd)
	})

	if err != nil {
		return err
	}

	if len(cmd.Colors) > 0 && len(cmd.Colors[0]) >= 3 {
		c := common.NewColor(cmd.Colors[0][0], cmd.Colors[0][1], cmd.Colors[0][2])
		e.markSent(&c)
	} else {
		e.markSent(nil)
	}

	return nil
}

// Builds segment command for the frame.
func (e *engine) segmentCommand(s *effect.BaseSettings, frame *effect.Frame) *device.SegmentRequest {
	if nil != frame.Fallback {
		cmd := *frame.Fallback
		cmd.ID = s.SegmentID
		return &cmd
	}

	bri := s.Brightness
	if nil != frame.Brightness {
		bri = *frame.Brightness
	}

	color := frame.Color
	if color.IsBlack() {
		color = effect.Representative(frame.Colors, color)
	}

	return &device.SegmentRequest{
		ID:         s.SegmentID,
		On:         device.Bool(true),
		Brightness: device.Int(bri),
		Colors:     [][]int{color.Slice()},
	}
}

// Invokes a single device command and updates counters.
// This is the only place where successes are counted.
// Cancelled commands are counted neither as success nor as failure.
func (e *engine) command(ctx context.Context, fn func() error) error {
	err := fn()

	e.Lock()
	e.commands++
	switch {
	case nil == err:
		e.successes++
	case ctx.Err() == nil:
		e.failures++
		e.lastError = err.Error()
	}
	name := e.settings.Name
	e.Unlock()

	metrics.IncrementEffectCommands(name, nil == err)
	if err != nil {
		return &errCommand{err: err}
	}

	return nil
}

// Remembers what was sent to the device.
func (e *engine) markSent(color *common.Color) {
	e.Lock()
	defer e.Unlock()

	e.sent = true
	if nil != color {
		e.lastColor = color
	}
}

// Checks whether device segment was changed by someone else.
// Segment is considered overridden if it's frozen or its primary color differs
// from the last color engine has sent.
func (e *engine) checkManualOverride(ctx context.Context) bool {
	e.Lock()
	if !e.settings.FreezeOnManual || !e.sent {
		e.Unlock()
		return false
	}

	now := e.now()
	if !e.lastCheck.IsZero() && now.Sub(e.lastCheck) < OverrideCheckInterval {
		res := e.overridden
		e.Unlock()
		return res
	}

	e.lastCheck = now
	segmentID := e.settings.SegmentID
	var last *common.Color
	if nil != e.lastColor {
		c := *e.lastColor
		last = &c
	}
	e.Unlock()

	overridden := false
	state, err := e.client.GetState(ctx)
	if err != nil {
		e.logger.Debug("Failed to query device state", append(e.logFields(),
			common.LogErrorToken, err.Error())...)
	} else if seg, ok := state.Segment(segmentID); ok {
		if seg.Freeze {
			overridden = true
		} else if nil != last {
			if c, ok := seg.PrimaryColor(); ok && c != *last {
				overridden = true
			}
		}
	}

	e.Lock()
	if overridden != e.overridden {
		if overridden {
			e.logger.Info("Manual control detected, pausing effect", e.logFields()...)
		} else {
			e.logger.Info("Manual control is over, resuming effect", e.logFields()...)
		}
	}
	e.overridden = overridden
	e.Unlock()

	return overridden
}

// Reverse returns colors in the opposite order.
func Reverse(colors []common.Color) []common.Color {
	res := make([]common.Color, len(colors))
	for ii, v := range colors {
		res[len(colors)-1-ii] = v
	}

	return res
}
