package database

import (
	"context"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_InvalidURIIsCoded(t *testing.T) {
	client, err := Connect(context.Background(), "not-a-mongo-uri")
	require.Error(t, err)
	assert.Nil(t, client)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "DB_CONNECT_FAILED", oopsErr.Code())
	assert.Equal(t, "database", oopsErr.Domain())
}
