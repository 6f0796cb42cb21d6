package notification_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/modules/notification"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	domain "github.com/dmitrymomot/notifyhub/svc/notification"
	"github.com/dmitrymomot/notifyhub/svc/status"
)

type broadcasterFunc func(ctx context.Context, item *domain.Item) (*domain.Response, error)

func (f broadcasterFunc) Broadcast(ctx context.Context, item *domain.Item) (*domain.Response, error) {
	return f(ctx, item)
}

func newServer(t *testing.T, b notification.Broadcaster, statuses status.Reader) (*httptest.Server, string) {
	t.Helper()

	tokens, err := jwt.New(jwt.Config{SigningKey: "test-key", TTL: time.Minute})
	require.NoError(t, err)
	token, err := tokens.Generate(jwt.Claims{UPN: "jdoe@contoso.com", TenantID: "contoso"})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(jwt.Middleware(tokens, nil))
	r.Mount("/notifications", notification.NewService(b, statuses, logger.Discard()).Handle())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, token
}

func do(t *testing.T, method, url, token, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestBroadcast(t *testing.T) {
	t.Parallel()

	var got *domain.Item
	b := broadcasterFunc(func(_ context.Context, item *domain.Item) (*domain.Response, error) {
		got = item
		switch item.Subject {
		case "fail":
			return domain.FailureResponse(item, 0, map[string]string{"mail": "namespace unavailable"}), nil
		case "reject":
			return nil, domain.ErrInvalidData
		}
		return domain.SuccessResponse(item, 42), nil
	})
	srv, token := newServer(t, b, nil)
	url := srv.URL + "/notifications/broadcast"

	t.Run("success", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, url, token, `{"to":"ann@contoso.com","subject":"hi","notificationTypes":["Mail"]}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"actionResult":true`)
		assert.Contains(t, body, `"sequenceNumber":42`)
		require.NotNil(t, got)
		assert.Equal(t, "contoso", got.TenantIdentifier)
	})

	t.Run("failed sends answer 400 with the response", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, url, token, `{"to":"ann@contoso.com","subject":"fail","notificationTypes":["Mail"]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, `"actionResult":false`)
		assert.Contains(t, body, "e2EErrorInformation")
	})

	t.Run("orchestrator error", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, url, token, `{"to":"ann@contoso.com","subject":"reject","notificationTypes":["Mail"]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "bad_request")
	})

	t.Run("unknown type", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, url, token, `{"to":"ann@contoso.com","notificationTypes":["Pigeon"]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("cancel without recipient reaches the broadcaster", func(t *testing.T) {
		got = nil
		resp, _ := do(t, http.MethodPost, url, token, `{"notificationTypes":["Cancel"],"sequenceNumber":42}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, got)
		assert.Equal(t, []domain.Type{domain.Cancel}, got.NotificationTypes)
		assert.Equal(t, int64(42), got.SequenceNumber)
		assert.Empty(t, got.To)
	})

	t.Run("missing types", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, url, token, `{"to":"ann@contoso.com"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "validation_error")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, url, "", `{"to":"ann@contoso.com","notificationTypes":["Mail"]}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDataMapper(t *testing.T) {
	t.Parallel()

	srv, token := newServer(t, broadcasterFunc(func(context.Context, *domain.Item) (*domain.Response, error) {
		return nil, errors.New("unused")
	}), nil)
	url := srv.URL + "/notifications/data-mapper"

	t.Run("flat", func(t *testing.T) {
		t.Parallel()
		resp, body := do(t, http.MethodPost, url, token, `{"templateData":{"name":"Ann"},"templateContent":"Hello #name#"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Hello Ann", body)
	})

	t.Run("string encoded data", func(t *testing.T) {
		t.Parallel()
		resp, body := do(t, http.MethodPost, url, token, `{"notificationTypes":["Mail"],"templateData":"{\"name\":\"Bo\"}","templateContent":"Hi #name#"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Hi Bo", body)
	})

	t.Run("invalid data", func(t *testing.T) {
		t.Parallel()
		resp, _ := do(t, http.MethodPost, url, token, `{"templateData":"not json","templateContent":"Hi #name#"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStatusRoutes(t *testing.T) {
	t.Parallel()

	store := status.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.LogEmailStatus(ctx, status.EmailStatus{PartitionKey: "xcv-1", RowKey: "m-1", Status: status.EmailSending}))
	require.NoError(t, store.LogNotificationStatus(ctx, status.NotificationStatus{PartitionKey: "item-1", RowKey: "m-2", SequenceNumber: 7, ActionResult: true}))

	srv, token := newServer(t, broadcasterFunc(func(context.Context, *domain.Item) (*domain.Response, error) {
		return nil, errors.New("unused")
	}), store)

	resp, body := do(t, http.MethodGet, srv.URL+"/notifications/status/email/xcv-1", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"Sending"`)

	resp, body = do(t, http.MethodGet, srv.URL+"/notifications/status/item-1", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"sequenceNumber":7`)

	resp, body = do(t, http.MethodGet, srv.URL+"/notifications/status/unknown", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
}
