// Package parms defines the Configuration (enumerated inputs) of
// spec.md §6: every caller-selected knob the subsetting pipeline reads,
// loaded from YAML with gopkg.in/yaml.v3 and validated before a
// reader.Reader is constructed.
package parms

import (
	"fmt"

	"github.com/slhowardESR/sliderule/except"
	"github.com/slhowardESR/sliderule/geo"
	"gopkg.in/yaml.v3"
)

// Track selectors.
const (
	AllTracks = 0
	NumTracks = 3
	// NumPairTracks is the number of beam pairs per track (left, right).
	NumPairTracks = 2
)

// Signal confidence levels, 5-wide per spec.md §3/§4.6.
const (
	CnfPossibleTep = -2
	CnfNotConsidered = -1
	CnfBackground  = 0
	CnfWithin10m   = 1
	CnfSurfaceHigh = 2
	// SignalConfOffset shifts [CnfPossibleTep, CnfSurfaceHigh] to a
	// valid [0,4] index into the 5-element Atl03Cnf acceptance table.
	SignalConfOffset = 2
	NumCnfLevels     = 5
)

// Photon quality levels, 4-wide per spec.md §4.6.
const (
	QualityNominal            = 0
	QualityPossibleAfterpulse = 1
	QualityPossibleImpulse    = 2
	QualityPossibleTep        = 3
	NumQualityLevels          = 4
)

// ATL08 land-surface classification.
const (
	Atl08Unclassified = 0
	Atl08Ground       = 1
	Atl08Canopy       = 2
	Atl08TopOfCanopy  = 3
	NumAtl08Classes   = 4
)

// NumAtl03SegsInAtl08Seg is the number of 20m ATL03 segments one ATL08
// land-surface segment spans.
const NumAtl03SegsInAtl08Seg = 5

// Atl03SegmentLength is the fixed along-track length of one ATL03
// segment, in meters.
const Atl03SegmentLength = 20.0

// InvalidFlag/InvalidIndice are the sentinels written for photons with
// no corresponding ATL08 land-segment.
const (
	InvalidFlag   uint8 = 0xFF
	InvalidIndice int32 = -1
)

// SurfaceType selects which column of the 5-wide signal_conf_ph table a
// beam reads its per-photon confidence from.
type SurfaceType int

const (
	SurfaceLand SurfaceType = iota
	SurfaceOcean
	SurfaceSeaIce
	SurfaceLandIce
	SurfaceInlandWater
	NumSurfaceTypes
)

// ScOrient is the spacecraft orientation, read from orbit_info/sc_orient.
type ScOrient uint8

const (
	ScOrientBackward ScOrient = 0
	ScOrientForward  ScOrient = 1
	ScOrientTransition ScOrient = 2
)

// spotTable holds the ICESat-2 beam-to-spot mapping, indexed
// [orientation][track-1][pair]. Spot numbers run 1..6.
var spotTable = [2][NumTracks][NumPairTracks]uint8{
	ScOrientForward: {
		{6, 5}, // track 1: l, r
		{4, 3}, // track 2
		{2, 1}, // track 3
	},
	ScOrientBackward: {
		{1, 2},
		{3, 4},
		{5, 6},
	},
}

// SpotNumber returns the beam's spot (1..6) for the given spacecraft
// orientation, track (1..3), and pair (0=left, 1=right). Transition
// orientation has no well-defined spot and returns 0.
func SpotNumber(orient ScOrient, track int, pair int) uint8 {
	if orient != ScOrientForward && orient != ScOrientBackward {
		return 0
	}
	if track < 1 || track > NumTracks || pair < 0 || pair >= NumPairTracks {
		return 0
	}
	return spotTable[orient][track-1][pair]
}

// Stage is one of the optional processing stages a beam may run.
type Stage int

const (
	StageAtl08 Stage = iota
	StageYapc
	StagePhoreal
	numStages
)

// YapcSettings configures the C5 density scorer (§4.5).
type YapcSettings struct {
	Version int     `yaml:"version"`
	Score   uint8   `yaml:"score"`
	KNN     int     `yaml:"knn"`
	MinKNN  int     `yaml:"min_knn"`
	WinX    float64 `yaml:"win_x"`
	WinH    float64 `yaml:"win_h"`
}

// PhorealSettings configures PhoREAL field population and the ABoVE
// reclassifier (§4.4).
type PhorealSettings struct {
	UseAbsH        bool `yaml:"use_abs_h"`
	AboveClassifier bool `yaml:"above_classifier"`
}

// AncillaryField names one extra dataset to materialize per extent.
type AncillaryField struct {
	Field string `yaml:"field"`
}

// SpatialFilterKind discriminates the three legal spatial-filter shapes.
type SpatialFilterKind int

const (
	FilterNone SpatialFilterKind = iota
	FilterPolygon
	FilterRaster
)

// SpatialFilter is exactly one of {none, polygon, raster} per §4.2.
type SpatialFilter struct {
	Kind    SpatialFilterKind
	Polygon *geo.Polygon
	Raster  *geo.Raster
}

// Config is the full set of caller-selected inputs, §6.
type Config struct {
	Track       int         `yaml:"track"` // 0=ALL, else 1..3
	SurfaceType SurfaceType `yaml:"surface_type"`

	Atl03Cnf   [NumCnfLevels]bool     `yaml:"atl03_cnf"`
	QualityPh  [NumQualityLevels]bool `yaml:"quality_ph"`
	Atl08Class [NumAtl08Classes]bool  `yaml:"atl08_class"`

	Stages [numStages]bool `yaml:"-"`

	Yapc    YapcSettings    `yaml:"yapc"`
	Phoreal PhorealSettings `yaml:"phoreal"`

	ExtentLength float64 `yaml:"extent_length"`
	ExtentStep   float64 `yaml:"extent_step"`
	DistInSeg    bool    `yaml:"dist_in_seg"`

	MinimumPhotonCount int     `yaml:"minimum_photon_count"`
	AlongTrackSpread   float64 `yaml:"along_track_spread"`
	PassInvalid        bool    `yaml:"pass_invalid"`

	ReadTimeoutSecs int `yaml:"read_timeout"`

	Atl03GeoFields   []AncillaryField `yaml:"atl03_geo_fields"`
	Atl03PhotonFields []AncillaryField `yaml:"atl03_ph_fields"`
	Atl08Fields      []AncillaryField `yaml:"atl08_fields"`

	SpatialFilter SpatialFilter `yaml:"-"`
}

// rawConfig mirrors Config's YAML-tagged fields for stage booleans,
// which are expressed as a set in the wire format but as a fixed array
// internally for O(1) lookup in the hot path.
type rawConfig struct {
	Stages struct {
		Atl08   bool `yaml:"atl08"`
		Yapc    bool `yaml:"yapc"`
		Phoreal bool `yaml:"phoreal"`
	} `yaml:"stages"`
}

// Default returns a Config with every acceptance table open (accept
// everything) and YAPC/ATL08/PhoREAL disabled, matching the original
// reader's hard-coded defaults.
func Default() *Config {
	c := &Config{
		Track:              AllTracks,
		SurfaceType:        SurfaceLand,
		ExtentLength:       20,
		ExtentStep:         20,
		MinimumPhotonCount: 10,
		AlongTrackSpread:   20,
		ReadTimeoutSecs:    60,
		Yapc:               YapcSettings{Version: 3, MinKNN: 5, WinX: 15, WinH: 6},
	}
	for i := range c.Atl03Cnf {
		c.Atl03Cnf[i] = true
	}
	for i := range c.QualityPh {
		c.QualityPh[i] = true
	}
	for i := range c.Atl08Class {
		c.Atl08Class[i] = true
	}
	return c
}

// Load parses YAML config bytes into a Config seeded from Default.
func Load(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parms: decoding config: %w", err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parms: decoding stages: %w", err)
	}
	c.Stages[StageAtl08] = raw.Stages.Atl08
	c.Stages[StageYapc] = raw.Stages.Yapc
	c.Stages[StagePhoreal] = raw.Stages.Phoreal
	return c, nil
}

// Validate checks the invariants construction depends on: a legal YAPC
// version when YAPC is enabled, a non-empty track selection, and
// positive extent geometry.
func (c *Config) Validate() error {
	if c.Stages[StageYapc] {
		switch c.Yapc.Version {
		case 1, 2, 3:
		default:
			return except.InvalidParameterf("parms: invalid yapc version: %d", c.Yapc.Version)
		}
	}
	if c.Track != AllTracks && (c.Track < 1 || c.Track > NumTracks) {
		return except.InvalidParameterf("parms: invalid track: %d", c.Track)
	}
	if c.ExtentLength <= 0 || c.ExtentStep <= 0 {
		return except.InvalidParameterf("parms: extent_length and extent_step must be positive")
	}
	return nil
}
