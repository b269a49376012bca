// Package clips implements the derived-media pipeline: resolving subtitle
// ranges into deduplicated clips, rendering artifacts through the transcoding
// engine, and caching renders under deterministic file names. Artifacts are
// lazily rebuildable; a missing file with a surviving record is re-rendered on
// demand, and identical concurrent requests share one render.
package clips
