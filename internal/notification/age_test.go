package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeAtDeath(t *testing.T) {
	tests := []struct {
		name         string
		birth, death string
		want         int
		ok           bool
	}{
		{"birthday already passed", "1936-06-07", "2025-08-16", 89, true},
		{"day before birthday", "1936-06-07", "2025-06-06", 88, true},
		{"on the birthday", "1936-06-07", "2025-06-07", 89, true},
		{"earlier month", "1940-03-25", "2020-01-30", 79, true},
		{"leap day birth", "2000-02-29", "2021-02-28", 20, true},
		{"missing birth", "", "2025-01-01", 0, false},
		{"missing death", "1936-06-07", "", 0, false},
		{"garbage", "1936-00-00", "2025-01-01", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AgeAtDeath(tt.birth, tt.death)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
