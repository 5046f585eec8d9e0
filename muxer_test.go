package vkvideo

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestAnnexBToLengthPrefixed(t *testing.T) {
	nal1 := []byte{0x26, 0x01, 0xAA, 0xBB}
	nal2 := []byte{0x02, 0x01, 0xCC}
	au := append([]byte{0, 0, 0, 1}, nal1...)
	au = append(au, 0, 0, 1)
	au = append(au, nal2...)

	out := annexBToLengthPrefixed(au)
	if len(out) != 4+len(nal1)+4+len(nal2) {
		t.Fatalf("length = %d", len(out))
	}
	if binary.BigEndian.Uint32(out[:4]) != uint32(len(nal1)) {
		t.Error("first length prefix wrong")
	}
	if !bytes.Equal(out[4:4+len(nal1)], nal1) {
		t.Error("first NAL mangled")
	}
	rest := out[4+len(nal1):]
	if binary.BigEndian.Uint32(rest[:4]) != uint32(len(nal2)) {
		t.Error("second length prefix wrong")
	}
	if !bytes.Equal(rest[4:], nal2) {
		t.Error("second NAL mangled")
	}
}

func TestRemoveEmulationPrevention(t *testing.T) {
	in := []byte{0x42, 0x00, 0x00, 0x03, 0x01, 0x00, 0x00, 0x03, 0x03, 0xFF}
	want := []byte{0x42, 0x00, 0x00, 0x01, 0x00, 0x00, 0x03, 0xFF}
	if got := removeEmulationPrevention(in); !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

// testHevcSPS fabricates an SPS NAL with a recognizable profile_tier_level.
func testHevcSPS() []byte {
	sps := make([]byte, 20)
	sps[0] = HevcNalSps << 1
	sps[1] = 0x01
	sps[2] = 0x01 // vps id 0, max_sub_layers 0, nesting 1
	// profile_tier_level: profile_space 0, tier 0, profile_idc 1 (Main)
	sps[3] = 0x01
	sps[4], sps[5], sps[6], sps[7] = 0x60, 0, 0, 0 // compatibility flags
	sps[8] = 0xB0                                  // progressive + non-packed + frame-only
	sps[14] = 123                                  // general_level_idc
	return sps
}

func TestBuildHvcC(t *testing.T) {
	vps := []byte{HevcNalVps << 1, 0x01, 0x0C}
	sps := testHevcSPS()
	pps := []byte{HevcNalPps << 1, 0x01, 0xC0}

	hvcc, err := buildHvcC(vps, sps, pps)
	if err != nil {
		t.Fatalf("buildHvcC: %v", err)
	}
	if hvcc[0] != 1 {
		t.Error("configurationVersion must be 1")
	}
	if hvcc[1] != 0x01 {
		t.Errorf("profile byte = %#x, want 0x01 (Main)", hvcc[1])
	}
	if hvcc[12] != 123 {
		t.Errorf("general_level_idc = %d, want 123", hvcc[12])
	}
	if hvcc[21]&0x03 != 3 {
		t.Error("lengthSizeMinusOne must be 3")
	}
	if hvcc[22] != 3 {
		t.Errorf("numOfArrays = %d, want 3", hvcc[22])
	}
	// The three parameter sets ride along verbatim.
	for _, nal := range [][]byte{vps, sps, pps} {
		if !bytes.Contains(hvcc, nal) {
			t.Errorf("hvcC does not embed NAL %x", nal[0])
		}
	}
}

func TestBuildHvcCIncomplete(t *testing.T) {
	if _, err := buildHvcC(nil, testHevcSPS(), []byte{0x44}); err == nil {
		t.Error("missing VPS must fail")
	}
	if _, err := buildHvcC([]byte{0x40}, []byte{0x42, 0x01}, []byte{0x44}); err == nil {
		t.Error("short SPS must fail")
	}
}
