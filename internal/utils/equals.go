package utils

import (
	"encoding/json"
	"math"
	"reflect"
)

// FloatEquals reports whether x1 and x2 differ by less than absTol. Two NaNs
// compare equal so that structs holding float results can be compared.
func FloatEquals(x1, x2, absTol float64) bool {
	if math.IsNaN(x1) || math.IsNaN(x2) {
		return math.IsNaN(x1) && math.IsNaN(x2)
	}
	return x1 == x2 || math.Abs(x1-x2) < absTol
}

// JSONEquals decodes j1 and j2 and reports whether they hold the same JSON
// value, ignoring object key order and whitespace. Invalid JSON in either
// argument is returned as an error.
func JSONEquals(j1, j2 []byte) (bool, error) {
	var v1, v2 any
	if err := json.Unmarshal(j1, &v1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(j2, &v2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(v1, v2), nil
}
