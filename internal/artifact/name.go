// Package artifact encodes render options into artifact file names and back.
// The grammar is the one externally-depended-on format of the service:
//
//	x<resolution><s|ns>b<beginId>e<endId>[~<offset>][+<extend>][_<fingerprint>].<ext>
//
// Treat it as a serialization format: the parser lives here, not in the URL
// layer, and the version constant guards future grammar changes.
package artifact

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"

	"linguo/internal/services"
)

// GrammarVersion identifies the filename grammar implemented by this package.
const GrammarVersion = 1

// Name is the decoded form of an artifact file name.
type Name struct {
	Resolution int
	Subtitles  bool
	Begin      int64
	End        int64
	Offset     float64
	Extend     float64
	// Fingerprint is the substitution-set hash. It cannot be reversed into
	// the substitution text, so fingerprinted names decode for serving but
	// are excluded from passive view tracking.
	Fingerprint string
	Filetype    string
}

var namePattern = regexp.MustCompile(
	`^x(\d+)(s|ns)b(\d+)e(\d+)(?:~(-?\d+(?:\.\d+)?))?(?:\+(-?\d+(?:\.\d+)?))?(?:_([0-9a-f]+))?\.(\w+)$`)

// String renders the canonical file name. Zero offset and extend are omitted.
func (n Name) String() string {
	s := "ns"
	if n.Subtitles {
		s = "s"
	}
	name := fmt.Sprintf("x%d%sb%de%d", n.Resolution, s, n.Begin, n.End)
	if n.Offset != 0 {
		name += "~" + strconv.FormatFloat(n.Offset, 'f', -1, 64)
	}
	if n.Extend != 0 {
		name += "+" + strconv.FormatFloat(n.Extend, 'f', -1, 64)
	}
	if n.Fingerprint != "" {
		name += "_" + n.Fingerprint
	}
	return name + "." + n.Filetype
}

// Reversible reports whether the name decodes back to its full options tuple.
// Substitution fingerprints are one-way by design.
func (n Name) Reversible() bool {
	return n.Fingerprint == ""
}

// Parse decodes an artifact file name. Failures carry the decode marker so
// callers can log and skip tracking rather than fail the serving path.
func Parse(name string) (Name, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return Name{}, services.Wrap(services.ErrDecode, "artifact", "parse",
			fmt.Sprintf("name %q does not match grammar v%d", name, GrammarVersion), nil)
	}

	resolution, err := strconv.Atoi(m[1])
	if err != nil {
		return Name{}, services.Wrap(services.ErrDecode, "artifact", "parse", "resolution", err)
	}
	begin, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Name{}, services.Wrap(services.ErrDecode, "artifact", "parse", "begin id", err)
	}
	end, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return Name{}, services.Wrap(services.ErrDecode, "artifact", "parse", "end id", err)
	}

	decoded := Name{
		Resolution:  resolution,
		Subtitles:   m[2] == "s",
		Begin:       begin,
		End:         end,
		Fingerprint: m[7],
		Filetype:    m[8],
	}
	if m[5] != "" {
		if decoded.Offset, err = strconv.ParseFloat(m[5], 64); err != nil {
			return Name{}, services.Wrap(services.ErrDecode, "artifact", "parse", "offset", err)
		}
	}
	if m[6] != "" {
		if decoded.Extend, err = strconv.ParseFloat(m[6], 64); err != nil {
			return Name{}, services.Wrap(services.ErrDecode, "artifact", "parse", "extend", err)
		}
	}
	return decoded, nil
}

// Fingerprint hashes a substitution set into the short token embedded in
// artifact names.
func Fingerprint(substitutions string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(substitutions))
	return fmt.Sprintf("%08x", h.Sum32())
}
