package devicetemplate_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/svc/devicetemplate"
)

type countingStore struct {
	devicetemplate.Store
	reads atomic.Int32
}

func (s *countingStore) ByType(ctx context.Context, deviceType string) ([]devicetemplate.Template, error) {
	s.reads.Add(1)
	return s.Store.ByType(ctx, deviceType)
}

func TestCachedStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{Store: devicetemplate.NewMemoryStore()}
	store := devicetemplate.NewCachedStore(backing, 8, time.Hour)

	toast := devicetemplate.Template{DeviceType: "Toast", Platform: devicetemplate.PlatformWNS, Content: "<toast>#title#</toast>"}
	require.NoError(t, store.Put(ctx, toast))

	for range 3 {
		got, err := store.ByType(ctx, "Toast")
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, int32(1), backing.reads.Load())

	t.Run("put invalidates the type", func(t *testing.T) {
		fcm := devicetemplate.Template{DeviceType: "Toast", Platform: devicetemplate.PlatformFCM, Content: `{"t":"#title#"}`}
		require.NoError(t, store.Put(ctx, fcm))

		got, err := store.ByType(ctx, "Toast")
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, int32(2), backing.reads.Load())
	})

	t.Run("invalid template is not cached", func(t *testing.T) {
		err := store.Put(ctx, devicetemplate.Template{DeviceType: "Toast", Platform: "mpns", Content: "x"})
		assert.ErrorIs(t, err, devicetemplate.ErrInvalidTemplate)
	})
}
