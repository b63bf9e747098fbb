// Package triage produces pre-visit guidance for patient messages. The model
// collaborator is advisory: every failure path yields a safe fallback reply
// instead of an error, and emergencies never reach the model at all.
package triage

import (
	"context"
	"strings"
	"time"

	"carefront.org/internal/health"
	"carefront.org/internal/obs"
	"carefront.org/internal/retry"
)

const systemPrompt = "You are a healthcare intake triage assistant. " +
	"Do not provide diagnosis. " +
	"Give concise pre-visit guidance and clear next-step suggestions. " +
	"If symptoms appear severe, direct user to emergency care. " +
	"Always include that this is not medical diagnosis."

const (
	emergencyReply = "Your message suggests potentially severe symptoms. This assistant cannot evaluate emergencies. Seek emergency care now."

	unconfiguredReply = "The triage assistant is not configured. Based on your note, consider scheduling a clinical visit and monitor symptoms for worsening."

	unavailableReply = "Triage assistant is temporarily unavailable. Please use standard appointment booking to speak with a clinician."
)

// Reply is the assistant's answer to one patient message.
type Reply struct {
	Reply        string               `json:"reply"`
	Urgency      health.TriageUrgency `json:"urgency"`
	SafetyNotice string               `json:"safety_notice"`

	// Degraded marks replies served without a model round trip.
	Degraded bool `json:"-"`
}

// Service gates and executes triage requests.
type Service struct {
	client     *Client
	maxRetries int
	baseDelay  time.Duration
}

// NewService creates a Service. client may be nil when no model key is
// configured; the service then always answers from the fallback path.
func NewService(client *Client, maxRetries int, baseDelay time.Duration) *Service {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return &Service{client: client, maxRetries: maxRetries, baseDelay: baseDelay}
}

// Respond answers a validated patient message. It never returns an error:
// upstream failures after retries degrade to a fallback reply.
func (s *Service) Respond(ctx context.Context, message string) Reply {
	urgency := health.InferUrgency(message)
	if urgency == health.UrgencyEmergency {
		return Reply{
			Reply:        emergencyReply,
			Urgency:      urgency,
			SafetyNotice: health.SafetyNotice,
			Degraded:     true,
		}
	}

	if s.client == nil {
		obs.CountTriageFallback()
		return Reply{
			Reply:        unconfiguredReply,
			Urgency:      urgency,
			SafetyNotice: health.SafetyNotice,
			Degraded:     true,
		}
	}

	text, err := retry.DoValue(ctx, s.maxRetries, s.baseDelay, func(ctx context.Context) (string, error) {
		return s.client.Complete(ctx, systemPrompt, message)
	})
	if err != nil || strings.TrimSpace(text) == "" {
		obs.CountTriageFallback()
		return Reply{
			Reply:        unavailableReply,
			Urgency:      urgency,
			SafetyNotice: health.SafetyNotice,
			Degraded:     true,
		}
	}

	return Reply{
		Reply:        text,
		Urgency:      urgency,
		SafetyNotice: health.SafetyNotice,
	}
}
