package queue

import (
	"testing"
	"time"

	"github.com/ayurcare-next/internal/config"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client should not report enabled")
	}
	if err := client.EnqueuePaymentReconcile(PaymentReconcilePayload{Kind: "appointment", PurchasableID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.EnqueueTierExpire(TierExpirePayload{UserID: 1}, time.Hour); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestPaymentReconcileTaskRoundTrip(t *testing.T) {
	task, err := NewPaymentReconcileTask(PaymentReconcilePayload{
		Kind:            "product_order",
		PurchasableID:   42,
		RemotePaymentID: "pay_1",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskPaymentReconcile {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParsePaymentReconcilePayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.PurchasableID != 42 || payload.RemotePaymentID != "pay_1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestReconcileTaskIDIsStable(t *testing.T) {
	a := ReconcileTaskID(PaymentReconcilePayload{Kind: "appointment", PurchasableID: 3, RemotePaymentID: "pay_9"})
	b := ReconcileTaskID(PaymentReconcilePayload{Kind: " appointment ", PurchasableID: 3, RemotePaymentID: "pay_9 "})
	if a != b || a != "reconcile:appointment:3:pay_9" {
		t.Fatalf("task id should be normalized, got %q and %q", a, b)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected default addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected default concurrency: %d", cfg.Concurrency)
	}
	if cfg.Queues[CriticalQueue] <= cfg.Queues[DefaultQueue] {
		t.Fatalf("critical queue should outweigh default: %+v", cfg.Queues)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2, Concurrency: 4})
	if opt.Addr != "redis:6380" || opt.DB != 2 || cfg.Concurrency != 4 {
		t.Fatalf("unexpected server config: %+v %+v", opt, cfg)
	}
}
