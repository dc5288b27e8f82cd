package core

import (
	"fmt"
	"strings"
)

// DistanceOperator selects how the store measures vector distance.
type DistanceOperator string

const (
	DistanceCosine       DistanceOperator = "cosine"
	DistanceL1           DistanceOperator = "l1"
	DistanceL2           DistanceOperator = "l2"
	DistanceInnerProduct DistanceOperator = "inner_product"
)

// ParseDistanceOperator accepts the canonical names plus "manhattan" and
// "euclidean".
func ParseDistanceOperator(s string) (DistanceOperator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cosine":
		return DistanceCosine, nil
	case "l1", "manhattan":
		return DistanceL1, nil
	case "l2", "euclidean":
		return DistanceL2, nil
	case "inner_product", "ip", "dot":
		return DistanceInnerProduct, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDistanceOperator, s)
}
