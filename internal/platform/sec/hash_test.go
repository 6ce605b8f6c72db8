// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fercen/fercen/internal/platform/sec"
)

/*
TestPasswordHashing verifies the hash and compare pair. A single hash is
enough: the cost factor makes each call expensive on purpose.
*/
func TestPasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("SenhaSegura1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "SenhaSegura1", hash)

	assert.True(t, sec.CheckPasswordHash("SenhaSegura1", hash))
	assert.False(t, sec.CheckPasswordHash("senha-errada", hash))
	assert.False(t, sec.CheckPasswordHash("SenhaSegura1", "not-a-bcrypt-hash"))
}
