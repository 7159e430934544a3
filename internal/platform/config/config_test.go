package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{
		"API_FIRESTORE_PROJECT_ID": "demo-project",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("read timeout = %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "demo-project" {
		t.Fatalf("firestore project = %q", cfg.Firestore.ProjectID)
	}
	if cfg.Features.GuestCheckout {
		t.Fatal("guest checkout should default to disabled")
	}
}

func TestLoadFirestoreProjectFallsBackToFirebase(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{
		"API_FIREBASE_PROJECT_ID": "demo-project",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Firestore.ProjectID != "demo-project" {
		t.Fatalf("firestore project = %q, want firebase fallback", cfg.Firestore.ProjectID)
	}
	if cfg.PubSub.ProjectID != "demo-project" {
		t.Fatalf("pubsub project = %q, want firestore fallback", cfg.PubSub.ProjectID)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{
		"API_SERVER_PORT":              "9090",
		"API_SERVER_READ_TIMEOUT":      "5s",
		"API_FIRESTORE_PROJECT_ID":     "demo-project",
		"API_FIRESTORE_EMULATOR_HOST":  "localhost:8200",
		"API_STORAGE_IMAGES_BUCKET":    "demo-images",
		"API_PUBSUB_ORDER_EVENT_TOPIC": "order-events",
		"API_FEATURES_GUEST_CHECKOUT":  "true",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("read timeout = %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.EmulatorHost != "localhost:8200" {
		t.Fatalf("emulator host = %q", cfg.Firestore.EmulatorHost)
	}
	if cfg.Storage.ImagesBucket != "demo-images" {
		t.Fatalf("images bucket = %q", cfg.Storage.ImagesBucket)
	}
	if cfg.PubSub.OrderEventTopic != "order-events" {
		t.Fatalf("order topic = %q", cfg.PubSub.OrderEventTopic)
	}
	if !cfg.Features.GuestCheckout {
		t.Fatal("guest checkout should be enabled")
	}
}

func TestLoadValidationErrors(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{
		"API_SERVER_PORT": "not-a-port",
	}))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("error type = %T", err)
	}

	fields := invalid.Fields()
	want := map[string]bool{"Firestore.ProjectID": false, "Server.Port": false}
	for _, field := range fields {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Fatalf("missing field %s in %v", field, fields)
		}
	}
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{
		"API_FIRESTORE_PROJECT_ID": "demo-project",
		"API_SERVER_READ_TIMEOUT":  "soon",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("read timeout = %s, want default", cfg.Server.ReadTimeout)
	}
}
