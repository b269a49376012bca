// Package transcript builds the per-episode transcript index and normalizes
// search terms against the same alphabet. The index is the concatenated
// normalized text of an episode's subtitles with stable character offsets;
// substring positions in it map back to subtitle records through the ranges
// recorded at build time.
package transcript
