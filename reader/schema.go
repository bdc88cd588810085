package reader

import (
	"fmt"

	"github.com/slhowardESR/sliderule/bundle"
	"github.com/slhowardESR/sliderule/h5"
)

// groundTrack renders the beam's HDF5 group name, e.g. gt1l.
func groundTrack(track int, pair int) string {
	side := "l"
	if pair == 1 {
		side = "r"
	}
	return fmt.Sprintf("gt%d%s", track, side)
}

// scOrientPath is the whole-granule spacecraft orientation dataset,
// outside any ground-track group.
const scOrientPath = "orbit_info/sc_orient"

// beamDatasetSpecs lists the fixed set of ATL03 datasets a beam worker
// needs to build extents, grounded on the geolocation/heights groups
// Atl03Reader reads per ground track.
func beamDatasetSpecs(gt string) []bundle.Spec {
	paths := []string{
		scOrientPath,
		gt + "/geolocation/segment_id",
		gt + "/geolocation/segment_dist_x",
		gt + "/geolocation/segment_ph_cnt",
		gt + "/geolocation/reference_photon_lon",
		gt + "/geolocation/reference_photon_lat",
		gt + "/geolocation/solar_elevation",
		gt + "/geolocation/delta_time",
		gt + "/geolocation/velocity_sc",
		gt + "/bckgrd_atlas/bckgrd_rate",
		gt + "/bckgrd_atlas/delta_time",
		gt + "/heights/dist_ph_along",
		gt + "/heights/dist_ph_across",
		gt + "/heights/h_ph",
		gt + "/heights/lat_ph",
		gt + "/heights/lon_ph",
		gt + "/heights/delta_time",
		gt + "/heights/signal_conf_ph",
		gt + "/heights/quality_ph",
	}
	specs := make([]bundle.Spec, len(paths))
	for i, p := range paths {
		specs[i] = bundle.Spec{Path: p, NumRows: h5.AllRows}
	}
	return specs
}

// atl08DatasetSpecs lists the ATL08 land-segment datasets the join
// against a companion resource needs. When phoreal is set, the PhoREAL
// relief/landcover/snowcover datasets are also requested.
func atl08DatasetSpecs(gt string, phoreal bool) []bundle.Spec {
	paths := []string{
		gt + "/signal_photons/ph_segment_id",
		gt + "/signal_photons/classed_pc_indx",
		gt + "/signal_photons/classed_pc_flag",
		gt + "/signal_photons/d_flag",
	}
	if phoreal {
		paths = append(paths,
			gt+"/signal_photons/ph_h",
			gt+"/land_segments/segment_id_beg",
			gt+"/land_segments/segment_landcover",
			gt+"/land_segments/segment_snowcover",
		)
	}
	specs := make([]bundle.Spec, len(paths))
	for i, p := range paths {
		specs[i] = bundle.Spec{Path: p, NumRows: h5.AllRows}
	}
	return specs
}
