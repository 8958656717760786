//+build !release

package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
)

// FakeWLED is an in-memory WLED device served over HTTP.
type FakeWLED struct {
	sync.Mutex
	server *httptest.Server

	info     *device.Info
	state    *device.State
	leds     map[int]common.Color
	posts    []*device.StateRequest
	requests int
	failures []int
	failGet  bool
}

// FakeNewWLED creates a fake device with a single segment covering all LEDs.
func FakeNewWLED(arch string, ledCount int) *FakeWLED {
	f := &FakeWLED{
		info: &device.Info{
			Version: "0.14.0",
			Name:    "fake",
			Arch:    arch,
			LEDs:    device.LEDInfo{Count: ledCount, MaxSegments: 32},
		},
		state: &device.State{
			On:         true,
			Brightness: 128,
			Segments: []*device.Segment{{
				ID:     0,
				Start:  0,
				Stop:   ledCount,
				Length: ledCount,
				On:     true,
				Colors: [][]int{{255, 160, 0}, {0, 0, 0}, {0, 0, 0}},
			}},
		},
		leds:     make(map[int]common.Color),
		posts:    make([]*device.StateRequest, 0),
		failures: make([]int, 0),
	}

	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns device URL.
func (f *FakeWLED) URL() string {
	return f.server.URL
}

// Close stops HTTP server.
func (f *FakeWLED) Close() {
	f.server.Close()
}

// FailNext makes next requests respond with the given status codes.
func (f *FakeWLED) FailNext(codes ...int) {
	f.Lock()
	defer f.Unlock()
	f.failures = append(f.failures, codes...)
}

// FailReads makes all GET requests fail with 500.
func (f *FakeWLED) FailReads(fail bool) {
	f.Lock()
	defer f.Unlock()
	f.failGet = fail
}

// Requests returns number of received requests.
func (f *FakeWLED) Requests() int {
	f.Lock()
	defer f.Unlock()
	return f.requests
}

// Posts returns received state updates.
func (f *FakeWLED) Posts() []*device.StateRequest {
	f.Lock()
	defer f.Unlock()
	return append([]*device.StateRequest{}, f.posts...)
}

// LEDs returns per-LED colors set so far.
func (f *FakeWLED) LEDs() map[int]common.Color {
	f.Lock()
	defer f.Unlock()

	result := make(map[int]common.Color, len(f.leds))
	for k, v := range f.leds {
		result[k] = v
	}

	return result
}

// SetSegment replaces segment state, as if it was changed manually.
func (f *FakeWLED) SetSegment(seg *device.Segment) {
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

// State returns copy of the current state.
func (f *FakeWLED) State() device.State {
	f.Lock()
	defer f.Unlock()
	return *f.state
}

// Serves a single request.
func (f *FakeWLED) handle(w http.ResponseWriter, r *http.Request) {
	f.Lock()
	defer f.Unlock()

	f.requests++
	if len(f.failures) > 0 {
		code := f.failures[0]
		f.failures = f.failures[1:]
		w.WriteHeader(code)
		return
	}

	if http.MethodGet == r.Method && f.failGet {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch {
	case http.MethodGet == r.Method && device.EndpointState == r.URL.Path:
		f.respond(w, f.state)
	case http.MethodGet == r.Method && device.EndpointInfo == r.URL.Path:
		f.respond(w, f.info)
	case http.MethodGet == r.Method && device.EndpointEffects == r.URL.Path:
		f.respond(w, []string{"Solid", "Blink", "Breathe"})
	case http.MethodGet == r.Method && device.EndpointPalettes == r.URL.Path:
		f.respond(w, []string{"Default", "Rainbow"})
	case http.MethodPost == r.Method && device.EndpointState == r.URL.Path:
		req := &device.StateRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.posts = append(f.posts, req)
		f.apply(req)
		if req.Verbose {
			f.respond(w, f.state)
			return
		}

		f.respond(w, map[string]bool{"success": true})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Applies state update.
func (f *FakeWLED) apply(req *device.StateRequest) {
	switch on := req.On.(type) {
	case bool:
		f.state.On = on
	case string:
		f.state.On = !f.state.On
	}

	if nil != req.Brightness {
		f.state.Brightness = *req.Brightness
	}

	for _, seg := range req.Segments {
		state, ok := f.state.Segment(seg.ID)
		if !ok {
			state = &device.Segment{ID: seg.ID}
			f.state.Segments = append(f.state.Segments, state)
		}

		if nil != seg.On {
			state.On = *seg.On
		}

		if nil != seg.Brightness {
			state.Brightness = *seg.Brightness
		}

		if nil != seg.Freeze {
			state.Freeze = *seg.Freeze
		}

		if len(seg.Colors) > 0 {
			state.Colors = seg.Colors
		}

		if nil != seg.Effect {
			state.Effect = *seg.Effect
		}

		if len(seg.LEDs) > 0 {
			assignments, err := seg.LEDs.Expand()
			if err != nil {
				continue
			}

			for _, v := range assignments {
				f.leds[v.Index] = v.Color
			}
		}
	}
}

// Writes JSON response.
func (f *FakeWLED) respond(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data) // nolint: errcheck
}
