package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"password", RandomPasswordSize},
		{"session id", SessionIDSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := MakeRandHexString(tt.size)
			require.NoError(t, err)
			assert.Len(t, s, tt.size*2)
			_, err = hex.DecodeString(s)
			assert.NoError(t, err)
		})
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		s, err := MakeRandHexString(SessionIDSize)
		require.NoError(t, err)
		_, dup := seen[s]
		require.False(t, dup, "duplicate session id %q", s)
		seen[s] = struct{}{}
	}
}

func TestWipeByteArray(t *testing.T) {
	pw := []byte("correct horse battery")
	WipeByteArray(pw)
	assert.Equal(t, make([]byte, len(pw)), pw)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
