// lifecycle/refnum.go
package lifecycle

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var allDigits = regexp.MustCompile(`^\d+$`)

// NextReference returns the reference number to assign to the next QRF given
// every reference already in use. Generation is deterministic: numeric codes
// count 00001..99999, then roll into an alphabetic prefix (A0001..A9999,
// B0001, ...). References are never reused.
//
// Known gap: the existing set is read in full to find the maximum, so two
// concurrent creations can compute the same "next" value. The unique index on
// referenceNumber turns that race into a persistence error rather than a
// silent duplicate.
func NextReference(existing []string) string {
	refs := make([]string, 0, len(existing))
	for _, r := range existing {
		if r != "" {
			refs = append(refs, r)
		}
	}
	sort.Strings(refs)

	last := "00000"
	if len(refs) > 0 {
		last = refs[len(refs)-1]
	}

	if allDigits.MatchString(last) {
		num, _ := strconv.Atoi(last)
		if num < 99999 {
			return fmt.Sprintf("%05d", num+1)
		}
		return "A0001"
	}

	prefix := rune(last[0])
	num, _ := strconv.Atoi(last[1:])
	if num < 9999 {
		return fmt.Sprintf("%c%04d", prefix, num+1)
	}
	return fmt.Sprintf("%c0001", prefix+1)
}
