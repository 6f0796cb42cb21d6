package delivery_test

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/metrics"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/svc/delivery"
	"github.com/dmitrymomot/notifyhub/svc/webpushreg"
)

func browserKeys(t *testing.T) webpushreg.SubscriptionKeys {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)

	return webpushreg.SubscriptionKeys{
		Auth:   base64.RawURLEncoding.EncodeToString(secret),
		P256DH: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
	}
}

func TestWebPushDeliverer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "2419200", r.Header.Get("TTL"))
		assert.Contains(t, r.Header.Get("Authorization"), "vapid")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	subs := webpushreg.NewService(webpushreg.NewMemoryStore(), webpushreg.WithLogger(quiet()))
	for _, path := range []string{"/broken", "/gone", "/ok"} {
		_, err := subs.Register(ctx, "ann", webpushreg.Subscription{Endpoint: srv.URL + path, Keys: browserKeys(t)})
		require.NoError(t, err)
	}

	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	d := delivery.NewWebPushDeliverer(subs, delivery.VAPIDConfig{PublicKey: public, PrivateKey: private},
		delivery.WithHTTPClient(srv.Client()),
		delivery.WithWebPushLogger(quiet()),
		delivery.WithWebPushMetrics(m),
	)

	it := sampleItem()
	it.To = "ann"
	require.NoError(t, d.Deliver(ctx, it, &queue.Message{}))

	assert.Equal(t, int32(3), hits.Load(), "every subscription is attempted")

	left, err := subs.List(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, r := range left {
		assert.NotContains(t, r.Endpoint, "/gone")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("webpush", metrics.OutcomeGone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("webpush", metrics.OutcomeFailure)))

	t.Run("no subscriptions", func(t *testing.T) {
		it := sampleItem()
		it.To = "nobody"
		assert.NoError(t, d.Deliver(ctx, it, &queue.Message{}))
	})
}
