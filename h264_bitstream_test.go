package vkvideo

import (
	"bytes"
	"testing"

	"github.com/cnotch/ipchub/av/codec/h264"
	"github.com/cnotch/ipchub/utils/bits"
)

// bitWriter builds test bitstreams bit by bit.
type bitWriter struct {
	buf  []byte
	nBit int
}

func (w *bitWriter) WriteBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		if w.nBit%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>uint(i)&1 == 1 {
			w.buf[len(w.buf)-1] |= 1 << uint(7-w.nBit%8)
		}
		w.nBit++
	}
}

func (w *bitWriter) WriteUe(v uint32) {
	leading := 0
	for tmp := v + 1; tmp > 1; tmp >>= 1 {
		leading++
	}
	w.WriteBits(0, leading)
	w.WriteBits(v+1, leading+1)
}

func (w *bitWriter) WriteSe(v int32) {
	if v > 0 {
		w.WriteUe(uint32(2*v - 1))
	} else {
		w.WriteUe(uint32(-2 * v))
	}
}

func (w *bitWriter) Bytes() []byte {
	// rbsp_stop_one_bit plus alignment, as emitted by real encoders
	w.WriteBits(1, 1)
	for w.nBit%8 != 0 {
		w.WriteBits(0, 1)
	}
	return w.buf
}

// testRawSPS matches the geometry assumed by the crafted slice headers:
// frame_num and poc lsb both 8 bits, progressive, poc type 0.
func testRawSPS() *h264.RawSPS {
	return &h264.RawSPS{
		ProfileIdc:                  100,
		LevelIdc:                    41,
		ChromaFormatIdc:             1,
		Log2MaxFrameNumMinus4:       4,
		Log2MaxPicOrderCntLsbMinus4: 4,
		FrameMbsOnlyFlag:            1,
		MaxNumRefFrames:             4,
	}
}

func TestReadSe(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, 7, -7, 100, -100}
	var w bitWriter
	for _, v := range values {
		w.WriteSe(v)
	}
	r := bits.NewReader(w.Bytes())
	for _, want := range values {
		if got := readSe(r); got != want {
			t.Fatalf("readSe = %d, want %d", got, want)
		}
	}
}

func buildTestAVCC(sps, pps []byte) []byte {
	b := []byte{1, 0x64, 0x00, 0x28, 0xFF, 0xE1}
	b = append(b, byte(len(sps)>>8), byte(len(sps)))
	b = append(b, sps...)
	b = append(b, 1, byte(len(pps)>>8), byte(len(pps)))
	b = append(b, pps...)
	return b
}

func TestParseAVCC(t *testing.T) {
	sps := []byte{0x67, 0x64, 0x00, 0x28, 0xAA}
	pps := []byte{0x68, 0xEE, 0x3C, 0x80}
	cfg, err := parseAVCC(buildTestAVCC(sps, pps))
	if err != nil {
		t.Fatalf("parseAVCC: %v", err)
	}
	if cfg.NalLengthSize != 4 {
		t.Errorf("NalLengthSize = %d, want 4", cfg.NalLengthSize)
	}
	if !bytes.Equal(cfg.SPS[0], sps) || !bytes.Equal(cfg.PPS[0], pps) {
		t.Error("parameter sets do not round-trip")
	}
}

func TestParseAVCCErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind ErrorKind
	}{
		{"empty", nil, ErrBadInput},
		{"bad version", []byte{2, 0, 0, 0, 0xFF, 0xE0, 0}, ErrBitstreamParse},
		{"no parameter sets", []byte{1, 0x64, 0, 0x28, 0xFF, 0xE0, 0}, ErrBadInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAVCC(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if Kind(err) != tt.kind {
				t.Errorf("kind = %v, want %v", Kind(err), tt.kind)
			}
		})
	}
}

func TestSplitNALUnits(t *testing.T) {
	nal1 := []byte{0x65, 1, 2, 3}
	nal2 := []byte{0x06, 9}
	sample := []byte{0, 0, 0, 4}
	sample = append(sample, nal1...)
	sample = append(sample, 0, 0, 0, 2)
	sample = append(sample, nal2...)

	nals, err := splitNALUnits(sample, 4)
	if err != nil {
		t.Fatalf("splitNALUnits: %v", err)
	}
	if len(nals) != 2 || !bytes.Equal(nals[0], nal1) || !bytes.Equal(nals[1], nal2) {
		t.Fatalf("unexpected split: %v", nals)
	}

	if _, err := splitNALUnits([]byte{0, 0, 0, 9, 1}, 4); err == nil {
		t.Error("expected error on truncated NAL")
	}
}

// buildTestPPS emits a minimal CABAC PPS.
func buildTestPPS() []byte {
	var w bitWriter
	w.WriteUe(0)      // pic_parameter_set_id
	w.WriteUe(0)      // seq_parameter_set_id
	w.WriteBits(1, 1) // entropy_coding_mode_flag
	w.WriteBits(0, 1) // bottom_field_pic_order_in_frame_present_flag
	w.WriteUe(0)      // num_slice_groups_minus1
	w.WriteUe(2)      // num_ref_idx_l0_default_active_minus1
	w.WriteUe(0)      // num_ref_idx_l1_default_active_minus1
	w.WriteBits(0, 1) // weighted_pred_flag
	w.WriteBits(0, 2) // weighted_bipred_idc
	w.WriteSe(-3)     // pic_init_qp_minus26
	w.WriteSe(0)      // pic_init_qs_minus26
	w.WriteSe(2)      // chroma_qp_index_offset
	w.WriteBits(1, 1) // deblocking_filter_control_present_flag
	w.WriteBits(0, 1) // constrained_intra_pred_flag
	w.WriteBits(0, 1) // redundant_pic_cnt_present_flag
	return append([]byte{0x68}, w.Bytes()...)
}

func TestParsePPS(t *testing.T) {
	pps, err := parsePPS(buildTestPPS())
	if err != nil {
		t.Fatalf("parsePPS: %v", err)
	}
	if pps.EntropyCodingMode != 1 {
		t.Error("entropy_coding_mode_flag not parsed")
	}
	if pps.NumRefIdxL0DefaultActiveMinus1 != 2 {
		t.Errorf("num_ref_idx_l0_default = %d, want 2", pps.NumRefIdxL0DefaultActiveMinus1)
	}
	if pps.PicInitQpMinus26 != -3 {
		t.Errorf("pic_init_qp_minus26 = %d, want -3", pps.PicInitQpMinus26)
	}
	if pps.ChromaQpIndexOffset != 2 {
		t.Errorf("chroma_qp_index_offset = %d, want 2", pps.ChromaQpIndexOffset)
	}

	std := buildStdPPS(pps)
	if std.Flags&H264PpsEntropyCodingModeFlag == 0 {
		t.Error("Std PPS entropy flag missing")
	}
	if std.Flags&H264PpsDeblockingFilterControlPresentFlag == 0 {
		t.Error("Std PPS deblocking flag missing")
	}
	if std.PicInitQpMinus26 != -3 {
		t.Error("Std PPS qp not carried over")
	}
}

// buildTestIdrSlice emits an IDR slice header compatible with
// log2_max_frame_num = 8, poc type 0, log2_max_poc_lsb = 8.
func buildTestIdrSlice(frameNum, idrPicID, pocLsb uint32) []byte {
	var w bitWriter
	w.WriteUe(0)             // first_mb_in_slice
	w.WriteUe(7)             // slice_type (I, all slices)
	w.WriteUe(0)             // pic_parameter_set_id
	w.WriteBits(frameNum, 8) // frame_num
	w.WriteUe(idrPicID)      // idr_pic_id
	w.WriteBits(pocLsb, 8)   // pic_order_cnt_lsb
	w.WriteBits(0, 1)        // no_output_of_prior_pics_flag
	w.WriteBits(0, 1)        // long_term_reference_flag
	return append([]byte{0x65}, w.Bytes()...)
}

func TestParseSliceHeaderIDR(t *testing.T) {
	sps := testRawSPS()
	pps := &rawPPS{}
	hdr, err := parseSliceHeader(buildTestIdrSlice(0, 3, 0), sps, pps)
	if err != nil {
		t.Fatalf("parseSliceHeader: %v", err)
	}
	if !hdr.IsIDR() || !hdr.IsReference() || !hdr.IsIntra() {
		t.Error("IDR slice misclassified")
	}
	if hdr.IdrPicID != 3 {
		t.Errorf("idr_pic_id = %d, want 3", hdr.IdrPicID)
	}
	if hdr.FrameNum != 0 {
		t.Errorf("frame_num = %d, want 0", hdr.FrameNum)
	}
}

func TestParseSliceHeaderPWithMMCO(t *testing.T) {
	sps := testRawSPS()
	pps := &rawPPS{NumRefIdxL0DefaultActiveMinus1: 0}

	var w bitWriter
	w.WriteUe(0)      // first_mb_in_slice
	w.WriteUe(5)      // slice_type (P, all slices)
	w.WriteUe(0)      // pic_parameter_set_id
	w.WriteBits(2, 8) // frame_num
	w.WriteBits(4, 8) // pic_order_cnt_lsb
	w.WriteBits(0, 1) // num_ref_idx_active_override_flag
	w.WriteBits(0, 1) // ref_pic_list_modification_flag_l0
	w.WriteBits(1, 1) // adaptive_ref_pic_marking_mode_flag
	w.WriteUe(1)      // mmco 1
	w.WriteUe(0)      // difference_of_pic_nums_minus1
	w.WriteUe(0)      // mmco end
	nal := append([]byte{0x41}, w.Bytes()...)

	hdr, err := parseSliceHeader(nal, sps, pps)
	if err != nil {
		t.Fatalf("parseSliceHeader: %v", err)
	}
	if hdr.IsIDR() || !hdr.IsReference() || hdr.IsIntra() {
		t.Error("P slice misclassified")
	}
	if hdr.FrameNum != 2 || hdr.PicOrderCntLsb != 4 {
		t.Errorf("frame_num/poc = %d/%d", hdr.FrameNum, hdr.PicOrderCntLsb)
	}
	if !hdr.AdaptiveRefPicMarking || len(hdr.MMCO) != 1 || hdr.MMCO[0].Op != 1 {
		t.Errorf("MMCO not parsed: %+v", hdr.MMCO)
	}
}

func TestH264LevelIdcToStd(t *testing.T) {
	tests := []struct {
		levelIdc uint8
		want     uint32
	}{
		{10, 0},
		{31, 8},
		{40, 10},
		{41, 11},
		{52, 15},
		{99, 18},
	}
	for _, tt := range tests {
		if got := h264LevelIdcToStd(tt.levelIdc); got != tt.want {
			t.Errorf("level %d -> %d, want %d", tt.levelIdc, got, tt.want)
		}
	}
}
