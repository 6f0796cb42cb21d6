package notification

import (
	"slices"
	"strings"
	"time"
)

// DefaultTenant is used when an item carries no tenant identifier.
const DefaultTenant = "root"

// ReminderSubjectPrefix marks the subject of a reminder re-send.
const ReminderSubjectPrefix = "Reminder: "

// Item is one logical notification.
type Item struct {
	ApplicationName   string       `json:"applicationName,omitempty"`
	TenantIdentifier  string       `json:"tenantIdentifier,omitempty"`
	ID                string       `json:"id,omitempty"`
	From              string       `json:"from,omitempty"`
	To                string       `json:"to,omitempty"`
	CC                string       `json:"cc,omitempty"`
	BCC               string       `json:"bcc,omitempty"`
	Subject           string       `json:"subject,omitempty"`
	Body              string       `json:"body,omitempty"`
	NotificationTypes []Type       `json:"notificationTypes" validate:"required,min=1"`
	TemplateData      TemplateData `json:"templateData,omitempty"`
	TemplateContent   string       `json:"templateContent,omitempty"`
	Attachments       []Attachment `json:"attachments,omitempty" validate:"dive"`
	SendOnUTCDate     *time.Time   `json:"sendOnUtcDate,omitempty"`
	Reminder          *Reminder    `json:"reminder,omitempty"`
	Telemetry         *Telemetry   `json:"telemetry,omitempty"`

	DeeplinkURL            string `json:"deeplinkUrl,omitempty"`
	WebPushNotificationTag string `json:"webPushNotificationTag,omitempty"`

	// Assigned by the orchestrator.
	SequenceNumber     int64  `json:"sequenceNumber,omitempty"`
	AttachmentBlobName string `json:"attachmentBlobName,omitempty"`
}

// Tenant returns the tenant identifier, or DefaultTenant when unset.
func (it *Item) Tenant() string {
	if it.TenantIdentifier == "" {
		return DefaultTenant
	}
	return it.TenantIdentifier
}

// Xcv returns the correlation vector, or "" when no telemetry is attached.
func (it *Item) Xcv() string {
	if it.Telemetry == nil {
		return ""
	}
	return it.Telemetry.Xcv
}

// MessageID returns the caller supplied message id, or "".
func (it *Item) MessageID() string {
	if it.Telemetry == nil {
		return ""
	}
	return it.Telemetry.MessageID
}

// Clone returns a deep copy of it.
func (it *Item) Clone() *Item {
	c := *it
	c.NotificationTypes = slices.Clone(it.NotificationTypes)
	c.Attachments = slices.Clone(it.Attachments)
	if it.TemplateData.IsDocument() {
		doc, _ := it.TemplateData.Document()
		c.TemplateData = DocumentData(doc)
	} else if !it.TemplateData.IsZero() {
		flat, _ := it.TemplateData.Flat()
		c.TemplateData = FlatData(flat)
	}
	if it.SendOnUTCDate != nil {
		t := *it.SendOnUTCDate
		c.SendOnUTCDate = &t
	}
	if it.Reminder != nil {
		r := *it.Reminder
		r.NotificationTypes = slices.Clone(it.Reminder.NotificationTypes)
		c.Reminder = &r
	}
	if it.Telemetry != nil {
		t := *it.Telemetry
		c.Telemetry = &t
	}
	return &c
}

// ReminderCopy derives the item re-sent when a reminder fires: the reminder's
// types replace the original ones, the subject gains the reminder prefix and
// the reminder itself is dropped so the copy is not rescheduled again.
func (it *Item) ReminderCopy() *Item {
	c := it.Clone()
	if it.Reminder != nil {
		c.NotificationTypes = slices.Clone(it.Reminder.NotificationTypes)
	}
	c.Subject = ReminderSubject(c.Subject)
	c.Reminder = nil
	c.SendOnUTCDate = nil
	c.SequenceNumber = 0
	c.AttachmentBlobName = ""
	return c
}

// ReminderSubject prefixes subject with ReminderSubjectPrefix unless it
// already starts with "Reminder".
func ReminderSubject(subject string) string {
	if strings.HasPrefix(subject, "Reminder") {
		return subject
	}
	return ReminderSubjectPrefix + subject
}

// Reminder describes a deferred re-send of an item.
type Reminder struct {
	NextReminderDate  time.Time `json:"nextReminderDate"`
	ExpirationDate    time.Time `json:"expirationDate"`
	NotificationTypes []Type    `json:"notificationTypes"`
}

// Due reports whether the reminder should be scheduled: the next reminder
// time is set, after the Unix epoch and not after the expiration time.
func (r *Reminder) Due() bool {
	if r == nil || r.NextReminderDate.IsZero() {
		return false
	}
	if !r.NextReminderDate.After(time.Unix(0, 0)) {
		return false
	}
	return !r.NextReminderDate.After(r.ExpirationDate)
}

// Telemetry is the correlation pair carried through every component.
type Telemetry struct {
	Xcv       string `json:"xcv,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// Attachment is a file sent with an email. FileURL references a blob,
// FileBase64 carries the content inline.
type Attachment struct {
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	FileBase64  string `json:"fileBase64,omitempty"`
}

// Inline reports whether the attachment content is already embedded.
func (a Attachment) Inline() bool {
	return a.FileBase64 != ""
}
