package devicetemplate_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/mongo"
	"github.com/dmitrymomot/notifyhub/svc/devicetemplate"
)

func TestLoadYAMLFile(t *testing.T) {
	t.Parallel()

	templates, err := devicetemplate.LoadYAMLFile("testdata/templates.yaml")
	require.NoError(t, err)
	require.Len(t, templates, 4)
	assert.Equal(t, "Toast", templates[0].DeviceType)
	assert.Equal(t, devicetemplate.PlatformFCM, templates[0].Platform)
	assert.Contains(t, templates[0].Content, "#title#")
}

func TestLoadYAML_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("unsupported platform", func(t *testing.T) {
		t.Parallel()
		_, err := devicetemplate.LoadYAML(strings.NewReader("templates:\n  - type: Toast\n    platform: mpns\n    content: x\n"))
		assert.ErrorIs(t, err, devicetemplate.ErrInvalidTemplate)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := devicetemplate.LoadYAML(strings.NewReader("templates:\n  - type: Toast\n    color: red\n"))
		assert.ErrorIs(t, err, devicetemplate.ErrDecode)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		templates, err := devicetemplate.LoadYAML(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, templates)
	})
}

func testStore(t *testing.T, s devicetemplate.Store, deviceType string) {
	t.Helper()
	ctx := context.Background()

	templates, err := devicetemplate.LoadYAMLFile("testdata/templates.yaml")
	require.NoError(t, err)
	for i := range templates {
		if templates[i].DeviceType == "Toast" {
			templates[i].DeviceType = deviceType
		}
	}
	require.NoError(t, devicetemplate.Seed(ctx, s, templates))

	got, err := s.ByType(ctx, deviceType)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"apns", "fcm", "wns"}, []string{got[0].Platform, got[1].Platform, got[2].Platform})

	require.NoError(t, s.Put(ctx, devicetemplate.Template{DeviceType: deviceType, Platform: "fcm", Content: "updated"}))
	got, err = s.ByType(ctx, deviceType)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "updated", got[1].Content)

	none, err := s.ByType(ctx, deviceType+"-missing")
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.ErrorIs(t, s.Put(ctx, devicetemplate.Template{DeviceType: deviceType, Platform: "fcm"}), devicetemplate.ErrInvalidTemplate)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStore(t, devicetemplate.NewMemoryStore(), "Toast")
}

func TestMongoStore(t *testing.T) {
	url := os.Getenv("NOTIFYHUB_TEST_MONGODB_URL")
	if url == "" {
		t.Skip("NOTIFYHUB_TEST_MONGODB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongo.NewWithDatabase(ctx, mongo.Config{
		ConnectionURL:  url,
		Database:       "notifyhub_test",
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    5,
		RetryAttempts:  1,
		RetryInterval:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })

	s := devicetemplate.NewMongoStore(db)
	require.NoError(t, s.EnsureIndexes(ctx))
	testStore(t, s, "Toast-"+time.Now().Format("150405.000000"))
}
