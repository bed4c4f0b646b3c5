// Package notification delivers strong-signal alerts to external channels
// (Telegram, webhooks) and to the log.
package notification

import (
	"context"
	"fmt"
	"log"

	"stock-signals/internal/model"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// strongConfidence is the confidence floor for alerting on a BUY or SELL.
const strongConfidence = 80.0

// SignalAlert builds an alert for a completed analysis. Only BUY and SELL
// results at high confidence produce an alert; everything else returns
// ok=false.
func SignalAlert(symbol string, price float64, res model.SignalResult) (Alert, bool) {
	if res.Signal != model.Buy && res.Signal != model.Sell {
		return Alert{}, false
	}
	if res.Confidence < strongConfidence {
		return Alert{}, false
	}

	level := AlertWarning
	if res.Signal == model.Sell {
		level = AlertCritical
	}

	return Alert{
		Level: level,
		Title: fmt.Sprintf("%s: %s (%.0f%% confidence)", symbol, res.Signal, res.Confidence),
		Message: fmt.Sprintf("Price: %.2f\nRisk: %s\n%s",
			price, res.Risk, res.Explanation),
	}, true
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// MultiNotifier fans an alert out to several backends. Delivery failures
// are logged, not returned, so one broken channel never blocks the rest.
type MultiNotifier struct {
	backends []Notifier
}

// NewMultiNotifier creates a fan-out notifier.
func NewMultiNotifier(backends ...Notifier) *MultiNotifier {
	return &MultiNotifier{backends: backends}
}

func (m *MultiNotifier) Send(ctx context.Context, alert Alert) error {
	for _, b := range m.backends {
		if err := b.Send(ctx, alert); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
		}
	}
	return nil
}
