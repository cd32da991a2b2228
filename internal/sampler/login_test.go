package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginSampler(t *testing.T) {
	t.Run("logged-in sessions are activity", func(t *testing.T) {
		s := NewLoginSampler()
		s.who = func() ([]byte, error) {
			return []byte("ec2-user pts/0  2026-08-21 11:52 (203.0.113.7)\nec2-user pts/1  2026-08-21 11:58 (203.0.113.7)\n"), nil
		}

		result := s.Sample(time.Now())
		assert.True(t, result.Active)
		assert.Contains(t, result.Reason, "2 login session(s)")
	})

	t.Run("empty who output is not activity", func(t *testing.T) {
		s := NewLoginSampler()
		s.who = func() ([]byte, error) { return []byte("\n"), nil }

		assert.False(t, s.Sample(time.Now()).Active)
	})

	t.Run("who failure fails closed toward idle", func(t *testing.T) {
		s := NewLoginSampler()
		s.who = func() ([]byte, error) { return nil, errors.New("exec: not found") }

		result := s.Sample(time.Now())
		assert.False(t, result.Active)
		assert.Contains(t, result.Reason, "who failed")
	})
}
