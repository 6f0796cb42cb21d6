package notification_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/svc/notification"
)

func TestReminder_Due(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		reminder *notification.Reminder
		want     bool
	}{
		{"nil reminder", nil, false},
		{"zero next date", &notification.Reminder{ExpirationDate: exp}, false},
		{"epoch next date", &notification.Reminder{NextReminderDate: time.Unix(0, 0), ExpirationDate: exp}, false},
		{"before expiration", &notification.Reminder{NextReminderDate: exp.Add(-time.Hour), ExpirationDate: exp}, true},
		{"equal to expiration", &notification.Reminder{NextReminderDate: exp, ExpirationDate: exp}, true},
		{"after expiration", &notification.Reminder{NextReminderDate: exp.Add(time.Second), ExpirationDate: exp}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.reminder.Due())
		})
	}
}

func TestReminderSubject(t *testing.T) {
	t.Parallel()

	once := notification.ReminderSubject("Approve expense")
	assert.Equal(t, "Reminder: Approve expense", once)
	assert.Equal(t, once, notification.ReminderSubject(once))
	assert.Equal(t, "Reminder - legacy", notification.ReminderSubject("Reminder - legacy"))
}

func TestItem_ReminderCopy(t *testing.T) {
	t.Parallel()

	send := time.Now().Add(time.Hour)
	orig := &notification.Item{
		ID:                "item-1",
		Subject:           "Approve expense",
		NotificationTypes: []notification.Type{notification.Mail, notification.Toast},
		SendOnUTCDate:     &send,
		SequenceNumber:    42,
		Reminder: &notification.Reminder{
			NextReminderDate:  send,
			ExpirationDate:    send.Add(time.Hour),
			NotificationTypes: []notification.Type{notification.Toast},
		},
		Telemetry: &notification.Telemetry{Xcv: "xcv", MessageID: "msg"},
	}

	c := orig.ReminderCopy()

	assert.Equal(t, []notification.Type{notification.Toast}, c.NotificationTypes)
	assert.Equal(t, "Reminder: Approve expense", c.Subject)
	assert.Nil(t, c.Reminder)
	assert.Nil(t, c.SendOnUTCDate)
	assert.Zero(t, c.SequenceNumber)
	assert.Equal(t, "xcv", c.Xcv())

	// original untouched
	assert.Equal(t, "Approve expense", orig.Subject)
	assert.NotNil(t, orig.Reminder)
	c.Telemetry.Xcv = "changed"
	assert.Equal(t, "xcv", orig.Xcv())
}

func TestItem_Tenant(t *testing.T) {
	t.Parallel()

	assert.Equal(t, notification.DefaultTenant, (&notification.Item{}).Tenant())
	assert.Equal(t, "contoso", (&notification.Item{TenantIdentifier: "contoso"}).Tenant())
}

func TestItem_JSON(t *testing.T) {
	t.Parallel()

	payload := `{
		"applicationName": "expenses",
		"tenantIdentifier": "contoso",
		"id": "item-1",
		"to": "ann@contoso.com",
		"subject": "Hi",
		"notificationTypes": ["Mail", "Cancel"],
		"templateData": {"name": "Ann"},
		"attachments": [{"fileName": "a.pdf", "fileUrl": "attachments/a.pdf"}],
		"reminder": {"nextReminderDate": "2030-01-01T00:00:00Z", "expirationDate": "2030-01-02T00:00:00Z", "notificationTypes": ["Toast"]},
		"telemetry": {"xcv": "xcv-1", "messageId": "msg-1"}
	}`

	var it notification.Item
	require.NoError(t, json.Unmarshal([]byte(payload), &it))

	assert.Equal(t, "contoso", it.Tenant())
	assert.Equal(t, []notification.Type{notification.Mail, notification.Cancel}, it.NotificationTypes)
	assert.True(t, it.Reminder.Due())
	assert.Equal(t, "msg-1", it.MessageID())
	assert.False(t, it.Attachments[0].Inline())

	flat, err := it.TemplateData.Flat()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Ann"}, flat)
}
