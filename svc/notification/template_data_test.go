package notification_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/svc/notification"
)

func TestTemplateData_Flat(t *testing.T) {
	t.Parallel()

	t.Run("flat map", func(t *testing.T) {
		t.Parallel()
		d := notification.FlatData(map[string]string{"a": "1"})
		assert.False(t, d.IsDocument())
		got, err := d.Flat()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "1"}, got)
	})

	t.Run("document scalars are stringified", func(t *testing.T) {
		t.Parallel()
		d := notification.DocumentData(json.RawMessage(`{"s":"x","n":1.50,"b":true,"z":null,"o":{"k":"v"},"l":[1]}`))
		got, err := d.Flat()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"s": "x", "n": "1.50", "b": "true", "z": ""}, got)
	})

	t.Run("non-object document", func(t *testing.T) {
		t.Parallel()
		_, err := notification.DocumentData(json.RawMessage(`[1,2]`)).Flat()
		assert.ErrorIs(t, err, notification.ErrInvalidTemplate)
	})
}

func TestTemplateData_JSON(t *testing.T) {
	t.Parallel()

	t.Run("stringified document is unwrapped", func(t *testing.T) {
		t.Parallel()
		var d notification.TemplateData
		require.NoError(t, json.Unmarshal([]byte(`"{\"name\":\"Ann\",\"count\":2}"`), &d))
		assert.True(t, d.IsDocument())
		doc, err := d.Document()
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ann","count":2}`, string(doc))
	})

	t.Run("string members decode as flat map", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{`{"name":"Ann"}`, `"{\"name\":\"Ann\"}"`} {
			var d notification.TemplateData
			require.NoError(t, json.Unmarshal([]byte(raw), &d))
			assert.False(t, d.IsDocument(), raw)
			flat, err := d.Flat()
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"name": "Ann"}, flat)
			doc, err := d.Document()
			require.NoError(t, err)
			assert.JSONEq(t, `{"name":"Ann"}`, string(doc))
		}
	})

	t.Run("nested members decode as document", func(t *testing.T) {
		t.Parallel()
		var d notification.TemplateData
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Ann","items":[{"sku":"a"}]}`), &d))
		assert.True(t, d.IsDocument())
	})

	t.Run("null is zero", func(t *testing.T) {
		t.Parallel()
		var d notification.TemplateData
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("invalid stringified document", func(t *testing.T) {
		t.Parallel()
		var d notification.TemplateData
		assert.ErrorIs(t, json.Unmarshal([]byte(`"{not json"`), &d), notification.ErrInvalidTemplate)
	})

	t.Run("flat data marshals as object", func(t *testing.T) {
		t.Parallel()
		b, err := json.Marshal(notification.FlatData(map[string]string{"k": "v"}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"k":"v"}`, string(b))
	})
}
