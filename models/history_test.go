package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBorrowDuration(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		returned time.Time
		want     int
	}{
		{"same instant", base, 0},
		{"a few hours", base.Add(5 * time.Hour), 0},
		{"thirty-six hours rounds down to one day", base.Add(36 * time.Hour), 1},
		{"exactly seven days", base.AddDate(0, 0, 7), 7},
		{"clock skew never goes negative", base.Add(-2 * time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BorrowDuration(base, tc.returned))
		})
	}
}
