// Package domain models per-city fire-incident statistics and the map
// presentation built from them.
//
// # Data Source
//
// The dataset is a JSON array produced offline from the National Fire
// Incident Reporting System (NFIRS) for 2013-2019, joined with city
// population and inspection-score data. One element describes one
// municipality. The page never writes the dataset back.
//
// # Dataset Conventions
//
// Keys are upper snake case, e.g. "CITY", "AVG_FATALITIES".
//
// Per-fire averages (AVG_SPREAD, AVG_FATALITIES, AVG_INJURIES, AVG_ALARMS)
// are small decimals and are shown at a fixed precision (STAT_PRECISION).
//
// Per-capita counts use the "_ADJ" suffix and the NFIRS incident type code:
//
//	113  cooking fire, confined to container
//	131  passenger vehicle fire
//	142  brush or brush-and-grass mixture fire
//	151  outside rubbish, trash or waste fire
//
// SUPPORT is the raw number of incidents reported to NFIRS for the city.
//
// AVG_MONEY_LOST is the average property loss per fire in US dollars.
//
// Percentile ranks, when the dataset carries them, use the statistic key
// plus "_PERCENTILE" and hold the fraction of cities this city exceeds, in
// [0,1].
//
// Unknown values:
//
//	Any statistic may be null or absent and renders as "N/A".
//	Identity (CITY, STATE), POPULATION and coordinates are required.
//	Records missing coordinates are forward geocoded when a geocoder is
//	configured; otherwise they are skipped, as are records missing identity
//	or population. See [ParseCityRecord].
//
// # Marker Scale
//
// Marker radius grows with the root of population ([RadiusScale]) so that
// New York and a town of 20,000 stay readable on the same map.
package domain
