// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// UTCOffsetHeader gives the time zone of naive timestamps in a request body.
const UTCOffsetHeader = "X-UTC-Offset"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*pageSize well inside int range on every platform.
	MaxPage = 1_000_000
)

var ErrInvalidOffset = errors.New("invalid UTC offset")

// ParseUTCOffset reads an offset given either as minutes east of UTC
// ("120", "-300") or as "±HH:MM". An empty value is UTC.
func ParseUTCOffset(value string) (*time.Location, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.UTC, nil
	}

	var minutes int
	if strings.Contains(value, ":") {
		sign := 1
		switch value[0] {
		case '+':
		case '-':
			sign = -1
		default:
			return nil, ErrInvalidOffset
		}
		hh, mm, _ := strings.Cut(value[1:], ":")
		h, err1 := strconv.Atoi(hh)
		m, err2 := strconv.Atoi(mm)
		if err1 != nil || err2 != nil || len(hh) != 2 || len(mm) != 2 || m > 59 {
			return nil, ErrInvalidOffset
		}
		minutes = sign * (h*60 + m)
	} else {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, ErrInvalidOffset
		}
		minutes = n
	}

	// Real zones range from -12:00 to +14:00
	if minutes < -12*60 || minutes > 14*60 {
		return nil, ErrInvalidOffset
	}
	if minutes == 0 {
		return time.UTC, nil
	}
	return time.FixedZone(formatOffset(minutes), minutes*60), nil
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}

// Pagination reads page and pageSize query parameters.
// page defaults to 1 and may not exceed MaxPage. pageSize defaults to
// DefaultPageSize and may not exceed MaxPageSize.
func Pagination(r *http.Request) (page, pageSize int, err error) {
	page, pageSize = 1, DefaultPageSize
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		if page > MaxPage {
			return 0, 0, fmt.Errorf("page must not exceed %d", MaxPage)
		}
	}
	if v := q.Get("pageSize"); v != "" {
		pageSize, err = strconv.Atoi(v)
		if err != nil || pageSize < 1 || pageSize > MaxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", MaxPageSize)
		}
	}
	return page, pageSize, nil
}
