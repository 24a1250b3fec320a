package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshsense/freshsense/pkg/types"
	"github.com/freshsense/freshsense/server/internal/config"
)

const severityCritical = "critical"

// Alert is one spoilage notification.
type Alert struct {
	ID       string         `json:"id"`
	DeviceID string         `json:"device_id"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Readings types.Readings `json:"readings"`
	Result   types.Result   `json:"result"`
	FiredAt  time.Time      `json:"fired_at"`
}

// Engine turns Spoiled analyses into webhook notifications.
//
// Engine is safe for concurrent use. Only the last fire time per device is
// retained, and entries whose cooldown has lapsed are swept at most once per
// cooldown window, so the map only holds devices seen in the last two windows.
type Engine struct {
	cooldown time.Duration

	mu        sync.Mutex
	webhooks  []config.WebhookConfig
	lastFire  map[string]time.Time
	lastSweep time.Time
	now       func() time.Time

	client *http.Client
	wg     sync.WaitGroup
}

// New creates an Engine from the alert configuration.
// An Engine without webhooks is valid; Notify still applies the cooldown.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		cooldown: cfg.Cooldown,
		webhooks: cfg.Webhooks,
		lastFire: make(map[string]time.Time),
		now:      time.Now,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetWebhooks swaps the delivery targets, e.g. after a config reload.
func (e *Engine) SetWebhooks(webhooks []config.WebhookConfig) {
	e.mu.Lock()
	e.webhooks = webhooks
	e.mu.Unlock()
}

// Notify fires an alert for a when its status is Spoiled and the device is
// outside its cooldown window. Delivery runs asynchronously. It reports
// whether an alert fired.
func (e *Engine) Notify(a types.Analysis) bool {
	if a.Result.Status != types.Spoiled {
		return false
	}

	e.mu.Lock()
	now := e.now()
	e.sweep(now)
	if last, ok := e.lastFire[a.DeviceID]; ok && now.Sub(last) < e.cooldown {
		e.mu.Unlock()
		return false
	}
	e.lastFire[a.DeviceID] = now
	targets := e.webhooks
	e.mu.Unlock()

	alert := &Alert{
		ID:       uuid.NewString(),
		DeviceID: a.DeviceID,
		Severity: severityCritical,
		Message:  message(a),
		Readings: a.Readings,
		Result:   a.Result,
		FiredAt:  now,
	}

	slog.Warn("alert fired",
		"device", a.DeviceID,
		"alert_id", alert.ID,
		"red", redGases(a.Result),
	)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.deliver(targets, alert)
	}()
	return true
}

// sweep drops devices whose cooldown has lapsed. Caller holds e.mu.
func (e *Engine) sweep(now time.Time) {
	if now.Sub(e.lastSweep) < e.cooldown {
		return
	}
	for dev, last := range e.lastFire {
		if now.Sub(last) >= e.cooldown {
			delete(e.lastFire, dev)
		}
	}
	e.lastSweep = now
}

// Wait blocks until all in-flight deliveries have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func message(a types.Analysis) string {
	return fmt.Sprintf("[%s] food spoiled on %s: %s at or above threshold",
		severityCritical, a.DeviceID, strings.Join(redGases(a.Result), ", "))
}

// redGases lists the Red gases in canonical order.
func redGases(r types.Result) []string {
	var out []string
	for _, g := range types.Gases {
		if r.LEDs[g] == types.Red {
			out = append(out, string(g))
		}
	}
	return out
}
