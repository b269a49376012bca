// Package catalog manages relational persistence for seasons, episodes,
// subtitles, clips, and generations, backed by SQLite.
//
// Episodes own their subtitles (cascade delete). Clips reference an episode
// and are deduplicated on the (begin, end, offset, extend) tuple. Generations
// reference a clip and are keyed by the full render-options tuple; their view
// and copy counters only ever move up.
package catalog
