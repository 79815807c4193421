package shortener

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenerator_GenerateShortKey(t *testing.T) {
	generator, err := NewRandomGenerator(DefaultConfig())
	require.NoError(t, err)

	ctx := context.Background()

	key, err := generator.GenerateShortKey(ctx)
	require.NoError(t, err)
	assert.Len(t, key, DefaultKeyLength)

	for _, c := range key {
		assert.True(t, strings.ContainsRune(base62Chars, c),
			"key contains non-base62 character: %c", c)
	}
}

func TestRandomGenerator_KeyLength(t *testing.T) {
	tests := []struct {
		name      string
		keyLength int
		wantErr   bool
	}{
		{name: "default when zero", keyLength: 0, wantErr: false},
		{name: "minimum length", keyLength: 4, wantErr: false},
		{name: "custom length", keyLength: 10, wantErr: false},
		{name: "too short", keyLength: 3, wantErr: true},
		{name: "too long", keyLength: 33, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator, err := NewRandomGenerator(Config{KeyLength: tt.keyLength})

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)

			key, err := generator.GenerateShortKey(context.Background())
			require.NoError(t, err)

			wantLength := tt.keyLength
			if wantLength == 0 {
				wantLength = DefaultKeyLength
			}
			assert.Len(t, key, wantLength)
		})
	}
}

func TestRandomGenerator_KeysDiffer(t *testing.T) {
	generator, err := NewRandomGenerator(DefaultConfig())
	require.NoError(t, err)

	ctx := context.Background()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		key, err := generator.GenerateShortKey(ctx)
		require.NoError(t, err)
		assert.False(t, seen[key], "generated duplicate key %s after %d draws", key, i)
		seen[key] = true
	}
}

func TestRandomGenerator_Type(t *testing.T) {
	generator, err := NewRandomGenerator(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "random", generator.Type())
}
