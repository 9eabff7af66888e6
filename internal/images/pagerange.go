package images

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ParsePageRange parses a page selection into a sorted slice of page numbers.
// Supports "1", "1-5", "1,3,5", "1-5,10,15-20", "-3" (start at 1), "5-" (end at maxPage)
// and "all". Results are deduplicated and sorted.
func ParsePageRange(expr string, maxPage int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty page range", ErrInvalidPageRange)
	}

	if strings.EqualFold(expr, "all") {
		if maxPage < 1 {
			return []int{}, nil
		}
		expr = "1-"
	}

	seen := make(map[int]bool)

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.Contains(part, "-") {
			page, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid page %q", ErrInvalidPageRange, part)
			}
			if page < 1 || page > maxPage {
				return nil, fmt.Errorf("%w: page %d out of range [1-%d]", ErrPageOutOfRange, page, maxPage)
			}
			seen[page] = true
			continue
		}

		start, end, err := parseRange(part, maxPage)
		if err != nil {
			return nil, err
		}
		for i := start; i <= end; i++ {
			seen[i] = true
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: no valid pages", ErrInvalidPageRange)
	}

	return slices.Sorted(maps.Keys(seen)), nil
}

func parseRange(part string, maxPage int) (int, int, error) {
	startStr, endStr, _ := strings.Cut(part, "-")
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	start, end := 1, maxPage

	if startStr != "" {
		v, err := strconv.Atoi(startStr)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid start %q", ErrInvalidPageRange, startStr)
		}
		start = v
	}

	if endStr != "" {
		v, err := strconv.Atoi(endStr)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid end %q", ErrInvalidPageRange, endStr)
		}
		end = v
	}

	if start < 1 {
		return 0, 0, fmt.Errorf("%w: start page must be >= 1", ErrInvalidPageRange)
	}
	if end > maxPage {
		return 0, 0, fmt.Errorf("%w: end page %d exceeds document pages (%d)", ErrPageOutOfRange, end, maxPage)
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: start > end in %q", ErrInvalidPageRange, part)
	}

	return start, end, nil
}
