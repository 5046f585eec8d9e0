package vkvideo

import (
	"bytes"
	"testing"
)

func TestGopPosition(t *testing.T) {
	s := &EncodeSession{gopLength: 30}
	tests := []struct {
		frame uint32
		idr   bool
		poc   int32
	}{
		{0, true, 0},
		{1, false, 1},
		{29, false, 29},
		{30, true, 0},
		{31, false, 1},
	}
	for _, tt := range tests {
		s.frameIndex = tt.frame
		idr, poc := s.gopPosition()
		if idr != tt.idr || poc != tt.poc {
			t.Errorf("frame %d: (%v, %d), want (%v, %d)", tt.frame, idr, poc, tt.idr, tt.poc)
		}
	}
}

func TestBuildStdParameterSetsAligned(t *testing.T) {
	s := &EncodeSession{width: 1920, height: 1080}
	s.buildStdParameterSets()

	if s.stdSPS.PicWidthInLumaSamples != 1920 || s.stdSPS.PicHeightInLumaSamples != 1080 {
		t.Errorf("luma samples = %dx%d", s.stdSPS.PicWidthInLumaSamples, s.stdSPS.PicHeightInLumaSamples)
	}
	if s.stdSPS.Flags&H265SpsConformanceWindowFlag != 0 {
		t.Error("aligned geometry must not set a conformance window")
	}
	if s.vui.VuiTimeScale != 30 || s.vui.VuiNumUnitsInTick != 1 {
		t.Errorf("vui timing = %d/%d, want 30/1", s.vui.VuiTimeScale, s.vui.VuiNumUnitsInTick)
	}
	if s.ptl.GeneralProfileIdc != StdVideoH265ProfileIdcMain {
		t.Error("profile must be Main")
	}
}

func TestBuildStdParameterSetsConformanceWindow(t *testing.T) {
	s := &EncodeSession{width: 1922, height: 1082}
	s.buildStdParameterSets()

	if s.stdSPS.PicWidthInLumaSamples != 1928 || s.stdSPS.PicHeightInLumaSamples != 1088 {
		t.Errorf("luma samples = %dx%d, want 1928x1088",
			s.stdSPS.PicWidthInLumaSamples, s.stdSPS.PicHeightInLumaSamples)
	}
	if s.stdSPS.Flags&H265SpsConformanceWindowFlag == 0 {
		t.Fatal("unaligned geometry requires a conformance window")
	}
	if s.stdSPS.ConfWinRightOffset != 3 || s.stdSPS.ConfWinBottomOffset != 3 {
		t.Errorf("conf window = %d/%d, want 3/3 (chroma units)",
			s.stdSPS.ConfWinRightOffset, s.stdSPS.ConfWinBottomOffset)
	}
}

func TestSplitAnnexB(t *testing.T) {
	vps := []byte{0x40, 0x01, 0x0C}
	sps := []byte{0x42, 0x01, 0x01}
	pps := []byte{0x44, 0x01, 0xC0}
	blob := append([]byte{0, 0, 0, 1}, vps...)
	blob = append(blob, 0, 0, 1)
	blob = append(blob, sps...)
	blob = append(blob, 0, 0, 0, 1)
	blob = append(blob, pps...)

	nals := splitAnnexB(blob)
	if len(nals) != 3 {
		t.Fatalf("got %d NAL units, want 3", len(nals))
	}
	if !bytes.Equal(nals[0], vps) || !bytes.Equal(nals[1], sps) || !bytes.Equal(nals[2], pps) {
		t.Errorf("split mismatch: %x", nals)
	}
}

func TestSplitAnnexBEmpty(t *testing.T) {
	if nals := splitAnnexB(nil); nals != nil {
		t.Errorf("expected no NAL units, got %v", nals)
	}
	if nals := splitAnnexB([]byte{0, 0}); nals != nil {
		t.Errorf("expected no NAL units, got %v", nals)
	}
}

func TestHevcKeyframe(t *testing.T) {
	mk := func(nalType byte) []byte {
		return []byte{0, 0, 0, 1, nalType << 1, 0x01, 0xAA}
	}
	tests := []struct {
		name string
		au   []byte
		want bool
	}{
		{"idr_w_radl", mk(HevcNalIdrWRadl), true},
		{"idr_n_lp", mk(HevcNalIdrNLp), true},
		{"cra", mk(HevcNalCra), true},
		{"trail_r", mk(1), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hevcKeyframe(tt.au); got != tt.want {
				t.Errorf("hevcKeyframe = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRateModeString(t *testing.T) {
	if RateModeIntraOnly.String() != "intra-only" || RateModeLowDelayP.String() != "low-delay-p" {
		t.Error("RateMode.String mismatch")
	}
}
