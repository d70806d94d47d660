package listener

import (
	"strings"
	"testing"
)

func TestValidSignature_RoundTrip(t *testing.T) {
	payload := []byte(`{"webhookId": 1}`)
	signature := SignPayload(payload, "secret")
	if !ValidSignature(payload, signature, "secret") {
		t.Fatalf("expected signature to verify")
	}
	if !ValidSignature(payload, strings.ToUpper(signature), "secret") {
		t.Fatalf("expected case-insensitive hex digest to verify")
	}
}

func TestValidSignature_Rejections(t *testing.T) {
	payload := []byte(`{"webhookId": 1}`)
	signature := SignPayload(payload, "secret")

	if ValidSignature(payload, signature, "other-secret") {
		t.Fatalf("wrong secret must not verify")
	}
	if ValidSignature([]byte(`tampered`), signature, "secret") {
		t.Fatalf("tampered payload must not verify")
	}
	if ValidSignature(payload, "", "secret") {
		t.Fatalf("empty signature must not verify")
	}
	if ValidSignature(payload, signature, "") {
		t.Fatalf("empty secret must not verify")
	}
	if ValidSignature(payload, "not-hex-at-all", "secret") {
		t.Fatalf("malformed signature must not verify")
	}
}
