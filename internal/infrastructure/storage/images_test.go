package storage

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStore_Validation(t *testing.T) {
	_, err := NewImageStore(Config{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewImageStore(Config{Endpoint: "localhost:9000"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewImageStore_DefaultBucket(t *testing.T) {
	s, err := NewImageStore(Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, defaultBucket, s.bucket)
	assert.Equal(t, "profile/Ann_1.png", objectKey("Ann_1.png"))
}
