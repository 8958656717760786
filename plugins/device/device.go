// Package device contains WLED JSON API wire definitions.
package device

import (
	"github.com/go-home-io/wled-effects/plugins/common"
)

// API endpoints.
const (
	EndpointState    = "/json/state"
	EndpointInfo     = "/json/info"
	EndpointEffects  = "/json/eff"
	EndpointPalettes = "/json/pal"
)

// State defines /json/state object.
type State struct {
	On         bool       `json:"on"`
	Brightness int        `json:"bri"`
	Transition int        `json:"transition"`
	Preset     int        `json:"ps"`
	Playlist   int        `json:"pl"`
	MainSeg    int        `json:"mainseg"`
	Segments   []*Segment `json:"seg"`
}

// Segment returns segment with the given id.
func (s *State) Segment(id int) (*Segment, bool) {
	for _, v := range s.Segments {
		if nil != v && v.ID == id {
			return v, true
		}
	}

	return nil, false
}

// Segment defines segment state.
type Segment struct {
	ID         int     `json:"id"`
	Start      int     `json:"start"`
	Stop       int     `json:"stop"`
	Length     int     `json:"len"`
	On         bool    `json:"on"`
	Freeze     bool    `json:"frz"`
	Brightness int     `json:"bri"`
	Colors     [][]int `json:"col"`
	Effect     int     `json:"fx"`
	Speed      int     `json:"sx"`
	Intensity  int     `json:"ix"`
	Palette    int     `json:"pal"`
	Reverse    bool    `json:"rev"`
	Mirror     bool    `json:"mi"`
}

// PrimaryColor returns first segment color.
func (s *Segment) PrimaryColor() (common.Color, bool) {
	if 0 == len(s.Colors) || len(s.Colors[0]) < 3 {
		return common.Black, false
	}

	c := s.Colors[0]
	return common.NewColor(c[0], c[1], c[2]), true
}

// Info defines /json/info object.
type Info struct {
	Version string  `json:"ver"`
	Name    string  `json:"name"`
	Arch    string  `json:"arch"`
	Brand   string  `json:"brand"`
	Product string  `json:"product"`
	MAC     string  `json:"mac"`
	IP      string  `json:"ip"`
	LEDs    LEDInfo `json:"leds"`
}

// LEDInfo defines LED strip information.
type LEDInfo struct {
	Count       int  `json:"count"`
	MaxSegments int  `json:"maxseg"`
	FPS         int  `json:"fps"`
	Power       int  `json:"pwr"`
	MaxPower    int  `json:"maxpwr"`
	RGBW        bool `json:"rgbw"`
}

// StateRequest defines partial state update.
type StateRequest struct {
	// Either bool or "t" for toggle.
	On         interface{}       `json:"on,omitempty"`
	Brightness *int              `json:"bri,omitempty"`
	Transition *int              `json:"transition,omitempty"`
	Segments   []*SegmentRequest `json:"seg,omitempty"`
	Verbose    bool              `json:"v,omitempty"`
}

// SegmentRequest defines partial segment update.
type SegmentRequest struct {
	ID         int     `json:"id"`
	Start      *int    `json:"start,omitempty"`
	Stop       *int    `json:"stop,omitempty"`
	On         *bool   `json:"on,omitempty"`
	Brightness *int    `json:"bri,omitempty"`
	Colors     [][]int `json:"col,omitempty"`
	Effect     *int    `json:"fx,omitempty"`
	Speed      *int    `json:"sx,omitempty"`
	Intensity  *int    `json:"ix,omitempty"`
	Palette    *int    `json:"pal,omitempty"`
	Freeze     *bool   `json:"frz,omitempty"`
	LEDs       LEDData `json:"i,omitempty"`
}

// Int is a syntax sugar for optional request fields.
func Int(v int) *int {
	return &v
}

// Bool is a syntax sugar for optional request fields.
func Bool(v bool) *bool {
	return &v
}
