package cache

import (
	"context"
	"testing"
)

func TestConnectWithoutURLDisablesCaching(t *testing.T) {
	if rdb := Connect(context.Background(), "", nil); rdb != nil {
		t.Fatalf("expected nil client for empty url")
	}
}

func TestConnectWithMalformedURLDisablesCaching(t *testing.T) {
	if rdb := Connect(context.Background(), "://not-a-url", nil); rdb != nil {
		t.Fatalf("expected nil client for malformed url")
	}
}
