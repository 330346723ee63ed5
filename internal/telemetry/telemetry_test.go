package telemetry

import (
	"context"
	"testing"
)

func TestResolveServiceName(t *testing.T) {
	if got := resolveServiceName("workforce-service"); got != "workforce-service" {
		t.Fatalf("name = %q, want compiled-in fallback", got)
	}

	t.Setenv("OTEL_SERVICE_NAME", "workforce-service-staging")
	if got := resolveServiceName("workforce-service"); got != "workforce-service-staging" {
		t.Fatalf("name = %q, want env override", got)
	}
}

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	shutdown := Setup("workforce-service")
	if shutdown == nil {
		t.Fatal("expected a shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
