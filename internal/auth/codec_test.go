package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte("access-secret"), []byte("refresh-secret"))
	if err != nil {
		t.Fatalf("NewCodec returned error: %v", err)
	}
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	for _, kind := range []TokenKind{KindAccess, KindRefresh} {
		token, expiresAt, err := codec.Sign("user-123", kind, time.Minute)
		if err != nil {
			t.Fatalf("Sign(%s) returned error: %v", kind, err)
		}
		if token == "" {
			t.Fatalf("expected non-empty %s token", kind)
		}
		if expiresAt.Before(time.Now()) {
			t.Fatalf("expected %s expiry in the future", kind)
		}
		userID, err := codec.Verify(token, kind)
		if err != nil {
			t.Fatalf("Verify(%s) returned error: %v", kind, err)
		}
		if userID != "user-123" {
			t.Fatalf("expected user id user-123, got %s", userID)
		}
	}
}

func TestCodecExpiry(t *testing.T) {
	codec := newTestCodec(t)
	token, _, err := codec.Sign("user-123", KindAccess, -time.Second)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if _, err := codec.Verify(token, KindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCodecKindIsolation(t *testing.T) {
	codec := newTestCodec(t)
	access, _, err := codec.Sign("user-123", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Sign access returned error: %v", err)
	}
	refresh, _, err := codec.Sign("user-123", KindRefresh, time.Minute)
	if err != nil {
		t.Fatalf("Sign refresh returned error: %v", err)
	}
	// Kind-specific secrets reject the cross-check before the kind claim is
	// even consulted.
	if _, err := codec.Verify(access, KindRefresh); err == nil {
		t.Fatal("expected access token to fail refresh-kind verification")
	}
	if _, err := codec.Verify(refresh, KindAccess); err == nil {
		t.Fatal("expected refresh token to fail access-kind verification")
	}
}

func TestCodecKindClaimChecked(t *testing.T) {
	// With identical secrets only the kind claim separates the two, so the
	// discriminator must still reject a cross-kind replay.
	codec, err := NewCodec([]byte("shared"), []byte("shared"))
	if err != nil {
		t.Fatalf("NewCodec returned error: %v", err)
	}
	access, _, err := codec.Sign("user-123", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if _, err := codec.Verify(access, KindRefresh); !errors.Is(err, ErrTokenKind) {
		t.Fatalf("expected ErrTokenKind, got %v", err)
	}
}

func TestCodecVerifyFailures(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec([]byte("different"), []byte("secrets"))
	if err != nil {
		t.Fatalf("NewCodec returned error: %v", err)
	}
	forged, _, err := other.Sign("user-123", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{name: "garbage", token: "not-a-token", want: ErrTokenMalformed},
		{name: "wrong secret", token: forged, want: ErrTokenSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := codec.Verify(tc.token, KindAccess); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCodecRequiresSecrets(t *testing.T) {
	if _, err := NewCodec(nil, []byte("refresh")); err == nil {
		t.Fatal("expected error for missing access secret")
	}
	if _, err := NewCodec([]byte("access"), nil); err == nil {
		t.Fatal("expected error for missing refresh secret")
	}
}

func TestCodecTokensAreUnique(t *testing.T) {
	codec := newTestCodec(t)
	first, _, err := codec.Sign("user-123", KindRefresh, time.Minute)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	second, _, err := codec.Sign("user-123", KindRefresh, time.Minute)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected tokens minted back to back to differ")
	}
}
