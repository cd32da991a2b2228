package sampler

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeFilter(t *testing.T) {
	filter, err := NewProbeFilter(
		[]string{"ELB-HealthChecker"},
		[]string{"10.0.0.0/8", "192.0.2.9"},
	)
	require.NoError(t, err)

	t.Run("loopback is always infrastructure", func(t *testing.T) {
		assert.True(t, filter.Infrastructure("anything", net.ParseIP("127.0.0.1")))
		assert.True(t, filter.Infrastructure("anything", net.ParseIP("::1")))
	})

	t.Run("matching CIDR is infrastructure", func(t *testing.T) {
		assert.True(t, filter.Infrastructure("line", net.ParseIP("10.44.0.3")))
		assert.False(t, filter.Infrastructure("line", net.ParseIP("203.0.113.7")))
	})

	t.Run("bare IP becomes single-host network", func(t *testing.T) {
		assert.True(t, filter.Infrastructure("line", net.ParseIP("192.0.2.9")))
		assert.False(t, filter.Infrastructure("line", net.ParseIP("192.0.2.10")))
	})

	t.Run("user agent substring matches", func(t *testing.T) {
		assert.True(t, filter.Infrastructure(`"ELB-HealthChecker/2.0"`, net.ParseIP("203.0.113.7")))
		assert.True(t, filter.Infrastructure(`"ELB-HealthChecker/2.0"`, nil))
		assert.False(t, filter.Infrastructure(`"Mozilla/5.0"`, net.ParseIP("203.0.113.7")))
	})

	t.Run("nil source matches nothing address-based", func(t *testing.T) {
		assert.False(t, filter.Infrastructure("line", nil))
	})
}

func TestNewProbeFilterInvalidSource(t *testing.T) {
	_, err := NewProbeFilter(nil, []string{"not-an-ip"})
	require.Error(t, err)

	_, err = NewProbeFilter(nil, []string{"300.0.0.1/8"})
	require.Error(t, err)
}
