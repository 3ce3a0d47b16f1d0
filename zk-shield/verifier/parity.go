package verifier

import (
	"fmt"
	"strings"
)

// DefaultParityLimit is how many differing offsets a parity report lists.
const DefaultParityLimit = 10

// ParityReport compares an on-chain verifying key blob with a local one.
type ParityReport struct {
	OnchainLen int
	LocalLen   int
	Mismatches []int
	// Total counts every differing offset within the common length.
	Total int
}

func (r *ParityReport) Equal() bool {
	return r.OnchainLen == r.LocalLen && r.Total == 0
}

func (r *ParityReport) String() string {
	if r.Equal() {
		return fmt.Sprintf("verifying keys match (%d bytes)", r.LocalLen)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "verifying keys differ: onchain %d bytes, local %d bytes, %d differing bytes", r.OnchainLen, r.LocalLen, r.Total)
	if len(r.Mismatches) > 0 {
		fmt.Fprintf(&sb, ", first at %v", r.Mismatches)
	}
	return sb.String()
}

// CompareVerifyingKeys reports the first limit byte offsets at which
// onchain and local differ. limit <= 0 uses DefaultParityLimit.
func CompareVerifyingKeys(onchain, local []byte, limit int) *ParityReport {
	if limit <= 0 {
		limit = DefaultParityLimit
	}
	r := &ParityReport{OnchainLen: len(onchain), LocalLen: len(local)}
	for i := 0; i < min(len(onchain), len(local)); i++ {
		if onchain[i] == local[i] {
			continue
		}
		r.Total++
		if len(r.Mismatches) < limit {
			r.Mismatches = append(r.Mismatches, i)
		}
	}
	return r
}
