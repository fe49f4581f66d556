package lookup

import (
	"strings"

	"github.com/sells-group/postcode-lookup/internal/postcode"
)

// Suggest returns up to the configured limit of cached postcodes whose
// compacted form starts with the compacted partial input. Only chunks already
// in the cache are scanned; no load is triggered.
func (s *Service) Suggest(partial string) []string {
	q := postcode.Compact(partial)
	out := []string{}
	if len([]rune(q)) < s.opts.SuggestMinChars {
		return out
	}

	for _, n := range s.store.Snapshot() {
		for pc := range n.Chunk {
			if strings.HasPrefix(postcode.Compact(pc), q) {
				out = append(out, pc)
				if len(out) >= s.opts.SuggestLimit {
					return out
				}
			}
		}
	}
	return out
}
