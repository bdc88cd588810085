package resource_test

import (
	"testing"

	"github.com/slhowardESR/sliderule/resource"
	"github.com/stretchr/testify/require"
)

func TestParseStandardName(t *testing.T) {
	info, err := resource.Parse("ATL03_20181017222812_02950102_005_01.h5")
	require.NoError(t, err)
	require.Equal(t, 2950, info.RGT)
	require.Equal(t, 1, info.Cycle)
	require.Equal(t, 2, info.Region)
}

func TestParseShortNameIsZeroValue(t *testing.T) {
	info, err := resource.Parse("short.h5")
	require.NoError(t, err)
	require.Equal(t, resource.Info{}, info)
}

func TestParseNonNumericIsError(t *testing.T) {
	_, err := resource.Parse("ATL03_20181017222812_XXXX0102_005_01.h5")
	require.Error(t, err)
}

func TestCompanion08(t *testing.T) {
	c08, err := resource.Companion08("ATL03_20181017222812_02950102_005_01.h5")
	require.NoError(t, err)
	require.Equal(t, "ATL08_20181017222812_02950102_005_01.h5", c08)
}

func TestCompanion08RejectsNonAtl03(t *testing.T) {
	_, err := resource.Companion08("ATL08_20181017222812_02950102_005_01.h5")
	require.Error(t, err)
}
