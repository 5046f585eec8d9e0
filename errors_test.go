package vkvideo

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ErrBadInput, "BadInput"},
		{ErrNoDevice, "NoDevice"},
		{ErrNoVideoQueue, "NoVideoQueue"},
		{ErrMissingExtension, "MissingExtension"},
		{ErrDeviceCreationFailed, "DeviceCreationFailed"},
		{ErrOutOfMemory, "OutOfMemory"},
		{ErrVideoAPIFailed, "VideoApiFailed"},
		{ErrBitstreamParse, "BitstreamParse"},
		{ErrDeviceLost, "DeviceLost"},
		{ErrIO, "IoError"},
		{ErrUnknown, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestVkErrClassification(t *testing.T) {
	tests := []struct {
		res  Result
		kind ErrorKind
	}{
		{ErrorOutOfHostMemory, ErrOutOfMemory},
		{ErrorOutOfDeviceMemory, ErrOutOfMemory},
		{ErrorDeviceLost, ErrDeviceLost},
		{ErrorExtensionNotPresent, ErrVideoAPIFailed},
		{ErrorInitializationFailed, ErrVideoAPIFailed},
	}
	for _, tt := range tests {
		err := vkErr("vkSomething", tt.res)
		if Kind(err) != tt.kind {
			t.Errorf("vkErr(%v) kind = %v, want %v", tt.res, Kind(err), tt.kind)
		}
		if !strings.Contains(err.Error(), "vkSomething") {
			t.Errorf("error %q does not name the operation", err)
		}
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := badInput("unsupported codec")
	if !errors.Is(err, &Error{Kind: ErrBadInput}) {
		t.Error("errors.Is should match on kind")
	}
	if errors.Is(err, &Error{Kind: ErrIO}) {
		t.Error("errors.Is must not match a different kind")
	}
}

func TestErrorMessageShape(t *testing.T) {
	err := &Error{Kind: ErrNoVideoQueue, Detail: "role = encode"}
	if got := err.Error(); got != "NoVideoQueue: role = encode" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindUnwrapsChains(t *testing.T) {
	inner := vkErr("vkQueueSubmit2", ErrorDeviceLost)
	wrapped := &Error{Kind: ErrIO, Op: "outer", Err: inner}
	// The outermost kind wins; unwrap reaches the cause for errors.Is.
	if Kind(wrapped) != ErrIO {
		t.Errorf("Kind = %v, want ErrIO", Kind(wrapped))
	}
	if !errors.Is(wrapped, &Error{Kind: ErrDeviceLost}) {
		t.Error("wrapped chain should still match the inner kind")
	}
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, defaultRingSize},
		{1, defaultRingSize},
		{2, 2},
		{5, 5},
	}
	for _, tt := range tests {
		c := Config{RingSize: tt.in}
		c.normalize()
		if c.RingSize != tt.want {
			t.Errorf("normalize(%d) = %d, want %d", tt.in, c.RingSize, tt.want)
		}
	}
}
