package humanize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	units "github.com/docker/go-units"
)

func TestToHumanReadableSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{1000, "1000 B"},
		{32 * units.GiB, "32.0 GiB"},
		{1500 * units.KiB, "1.5 MiB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToHumanReadableSize(c.in))
	}
}
