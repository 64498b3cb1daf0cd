package events

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suimeet/eventgraph/common/errs"
)

type stubStorageInfo struct {
	version int64
	err     error
}

func (s stubStorageInfo) CurrentDBVersion(context.Context) (int64, error) {
	return s.version, s.err
}

func TestVerifyDBVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("matching version passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, verifyDBVersion(ctx, stubStorageInfo{version: DBVersion}))
	})

	t.Run("mismatched version is a conflict", func(t *testing.T) {
		t.Parallel()
		err := verifyDBVersion(ctx, stubStorageInfo{version: DBVersion + 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.Conflict)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		t.Parallel()
		err := verifyDBVersion(ctx, stubStorageInfo{err: errors.Wrap(errs.NotFound, "no migrations applied yet")})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.NotFound)
	})
}
