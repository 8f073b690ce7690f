// Package notify delivers role-addressed notifications. Dispatch is
// best effort: per-role failures are reported in the result, never as
// an error that could roll back the triggering operation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"payscope/internal/domain"
)

const channelPrefix = "payscope:notify"

type message struct {
	CompanyID string `json:"companyId"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// RedisDispatcher publishes one message per (company, role) channel;
// the external delivery layer (email, chat) subscribes and fans out.
type RedisDispatcher struct {
	client *redis.Client
}

func NewRedisDispatcher(addr, password string, db int) (*RedisDispatcher, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisDispatcher{client: client}, nil
}

func (d *RedisDispatcher) NotifyRoles(ctx context.Context, companyID string, roles []domain.Role, subject, body string) domain.NotificationResult {
	payload, err := json.Marshal(message{CompanyID: companyID, Subject: subject, Body: body})
	if err != nil {
		result := domain.NotificationResult{Failed: len(roles)}
		for _, role := range roles {
			result.Results = append(result.Results, domain.NotificationDelivery{Role: role, Error: err.Error()})
		}
		return result
	}

	var result domain.NotificationResult
	for _, role := range roles {
		channel := fmt.Sprintf("%s:%s:%s", channelPrefix, companyID, role)
		delivery := domain.NotificationDelivery{Role: role}
		if err := d.client.Publish(ctx, channel, payload).Err(); err != nil {
			delivery.Error = err.Error()
			result.Failed++
		} else {
			result.Delivered++
		}
		result.Results = append(result.Results, delivery)
	}
	return result
}
