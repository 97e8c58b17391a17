package user

import (
	"encoding/json"
	"math"
	"strconv"
)

// ClaimID reads an identifier claim. The backend issues ids either as
// strings or as JSON numbers; integral numbers are formatted without a
// fraction so both forms compare equal.
func ClaimID(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		if _, err := val.Int64(); err != nil {
			return "", false
		}
		return val.String(), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

// OptionalClaimID is ClaimID for claims that may be absent or null.
func OptionalClaimID(v interface{}) *string {
	id, ok := ClaimID(v)
	if !ok {
		return nil
	}
	return &id
}
