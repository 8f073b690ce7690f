package notify

import (
	"context"
	"sync"

	"payscope/internal/domain"
)

// MemoryDispatcher records notifications in process. Used in tests and
// when no redis address is configured.
type MemoryDispatcher struct {
	mu   sync.Mutex
	sent []Sent
}

type Sent struct {
	CompanyID string
	Roles     []domain.Role
	Subject   string
	Body      string
}

func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{}
}

func (d *MemoryDispatcher) NotifyRoles(ctx context.Context, companyID string, roles []domain.Role, subject, body string) domain.NotificationResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, Sent{CompanyID: companyID, Roles: roles, Subject: subject, Body: body})
	return domain.NotificationResult{
		Delivered: len(roles),
		Results:   deliveries(roles),
	}
}

func (d *MemoryDispatcher) Sent() []Sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Sent, len(d.sent))
	copy(out, d.sent)
	return out
}

func deliveries(roles []domain.Role) []domain.NotificationDelivery {
	out := make([]domain.NotificationDelivery, 0, len(roles))
	for _, role := range roles {
		out = append(out, domain.NotificationDelivery{Role: role})
	}
	return out
}
