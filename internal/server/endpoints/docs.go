package endpoints

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// queryInt reads an optional integer query parameter. Absent or empty
// values return nil. Integers too large for an int saturate at
// math.MaxInt (or math.MinInt) so the resolver clamps them like any
// other out-of-bounds value.
func queryInt(q url.Values, name string) (*int, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		n = math.MaxInt
		if strings.HasPrefix(raw, "-") {
			n = math.MinInt
		}
		return &n, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
