package notification

// Transport message properties shared by the orchestrator and the workers.
const (
	PropertyTenantID   = "tenantId"
	PropertyDataInBlob = "IsDataInBlob"
)

// PayloadContainer is the blob container holding offloaded payloads.
const PayloadContainer = "attachments"

// PayloadKey is the blob key of an offloaded payload.
func PayloadKey(tenant, messageID string) string {
	return tenant + "/" + messageID
}
