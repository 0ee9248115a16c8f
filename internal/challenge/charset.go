package challenge

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
)

// segmentPattern matches exactly one comma-free segment: a single character
// or an inclusive range written as [start-end].
var segmentPattern = regexp.MustCompile(`^(?:([^,])|\[([^,])-([^,])\])$`)

// Expand parses a comma separated list of single characters and bracketed
// ranges and returns the distinct characters it denotes, sorted by code
// point.
//
//	Expand("[a-c],1,[e-g],0,9") // 0 1 9 a b c e f g
//
// Every segment must match; a blank expression, an empty segment, a
// malformed or reversed range yields common.ErrInvalidRangeFormat.
func Expand(expr string) ([]rune, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: character range must not be empty", common.ErrInvalidRangeFormat)
	}

	segments := strings.Split(expr, ",")
	set := make(map[rune]struct{})
	matched := 0

	for _, seg := range segments {
		m := segmentPattern.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		matched++

		if m[1] != "" {
			r, _ := utf8.DecodeRuneInString(m[1])
			set[r] = struct{}{}
			continue
		}

		start, _ := utf8.DecodeRuneInString(m[2])
		end, _ := utf8.DecodeRuneInString(m[3])
		if start > end {
			return nil, fmt.Errorf("%w: empty range %q", common.ErrInvalidRangeFormat, seg)
		}
		for r := start; r <= end; r++ {
			set[r] = struct{}{}
		}
	}

	if matched != len(segments) {
		return nil, fmt.Errorf(
			"%w: expected comma separated characters or [start-end] ranges, e.g. 1,[a-d],e; got %q",
			common.ErrInvalidRangeFormat, expr)
	}

	result := make([]rune, 0, len(set))
	for r := range set {
		result = append(result, r)
	}
	slices.Sort(result)
	return result, nil
}
