// Package resource parses ATL03 granule filenames into their
// constituent RGT/cycle/region fields and derives the companion ATL08
// filename, grounded on Atl03Reader::parseResource.
package resource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/slhowardESR/sliderule/except"
)

// Info holds the fields recovered from an ATL03 granule's standard
// filename, e.g. ATL03_20181017222812_02950102_005_01.h5.
type Info struct {
	RGT    int
	Cycle  int
	Region int
}

// minResourceLen mirrors parseResource's length<29 short-circuit: a
// name shorter than this has no well-formed rgt/cycle/region fields
// and is treated as (0,0,0), not an error.
const minResourceLen = 29

// Parse extracts (rgt, cycle, region) from an ATL03 resource name. A
// resource shorter than the standard filename is returned as a
// zero-valued Info with no error, matching the original's permissive
// short-name behavior. A resource long enough but non-numeric in the
// rgt/cycle/region fields is an except.ParseError.
func Parse(name string) (Info, error) {
	if len(name) < minResourceLen {
		return Info{}, nil
	}
	rgt, err := strconv.Atoi(name[21:25])
	if err != nil {
		return Info{}, except.ParseErrorf("resource: invalid rgt in %q: %v", name, err)
	}
	cycle, err := strconv.Atoi(name[25:27])
	if err != nil {
		return Info{}, except.ParseErrorf("resource: invalid cycle in %q: %v", name, err)
	}
	region, err := strconv.Atoi(name[27:29])
	if err != nil {
		return Info{}, except.ParseErrorf("resource: invalid region in %q: %v", name, err)
	}
	return Info{RGT: rgt, Cycle: cycle, Region: region}, nil
}

// Companion08 derives the ATL08 granule name paired with an ATL03
// resource by substituting the product code, the only transformation
// the original reader performs to locate the land-segment companion
// file; release/version/revision suffixes are passed through verbatim.
func Companion08(atl03Name string) (string, error) {
	if !strings.HasPrefix(atl03Name, "ATL03") {
		return "", except.InvalidParameterf("resource: not an ATL03 resource: %q", atl03Name)
	}
	return "ATL08" + strings.TrimPrefix(atl03Name, "ATL03"), nil
}

// String renders Info the way log lines in this module format it.
func (i Info) String() string {
	return fmt.Sprintf("rgt=%04d cycle=%02d region=%02d", i.RGT, i.Cycle, i.Region)
}
