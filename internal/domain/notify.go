package domain

// NotificationDelivery is the outcome for a single role channel.
type NotificationDelivery struct {
	Role  Role
	Error string
}

// NotificationResult summarizes a best-effort dispatch. Failures never
// roll back the operation that triggered the notification.
type NotificationResult struct {
	Delivered int
	Failed    int
	Results   []NotificationDelivery
}
