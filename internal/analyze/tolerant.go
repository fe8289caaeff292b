// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Model replies are not guaranteed to be bare JSON: they arrive fenced,
// wrapped in prose, or with trailing commentary. The tolerant locate
// step first looks for a ```json fence whose payload is a single
// balanced value (greedy, so nested closers stay inside), then falls
// back to the span from the first opening bracket to the last matching
// closer. A reply where neither yields valid JSON decodes to nothing.

var fencedObjectRe = regexp.MustCompile("(?s)```json\\s*(\\{.*\\})\\s*```")
var fencedArrayRe = regexp.MustCompile("(?s)```json\\s*(\\[.*\\])\\s*```")

// tolerantUnmarshal extracts a JSON value of the requested shape from
// reply and decodes it into v. It reports whether decoding succeeded;
// on failure v is left untouched so the caller's zero value stands as
// the stage's empty result. It never returns an error.
func tolerantUnmarshal(reply string, open byte, v interface{}) bool {
	fenced := fencedObjectRe
	closer := byte('}')
	if open == '[' {
		fenced = fencedArrayRe
		closer = ']'
	}

	if m := fenced.FindStringSubmatch(reply); m != nil {
		if json.Unmarshal([]byte(m[1]), v) == nil {
			return true
		}
	}

	first := strings.IndexByte(reply, open)
	last := strings.LastIndexByte(reply, closer)
	if first == -1 || last <= first {
		return false
	}
	return json.Unmarshal([]byte(reply[first:last+1]), v) == nil
}
