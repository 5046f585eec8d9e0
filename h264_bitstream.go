package vkvideo

import (
	"github.com/cnotch/ipchub/av/codec/h264"
	"github.com/cnotch/ipchub/utils"
	"github.com/cnotch/ipchub/utils/bits"
)

// H.264 bitstream parsing: avcC extradata, the PPS fields the decoder needs,
// and per-slice headers up to the reference-picture marking syntax. The SPS
// itself is decoded with the h264 package's RawSPS.

// H.264 NAL unit types the pipeline cares about.
const (
	h264NalSliceNonIdr = 1
	h264NalSliceIdr    = 5
	h264NalSps         = 7
	h264NalPps         = 8
)

// h264SliceType after mod 5.
const (
	h264SliceP  = 0
	h264SliceB  = 1
	h264SliceI  = 2
	h264SliceSP = 3
	h264SliceSI = 4
)

// avcConfig is the parsed avcC codec-specific data of the input track.
type avcConfig struct {
	SPS           [][]byte // raw SPS NAL units, header byte included
	PPS           [][]byte
	NalLengthSize int
}

// parseAVCC decodes AVCDecoderConfigurationRecord extradata.
func parseAVCC(extradata []byte) (*avcConfig, error) {
	if len(extradata) < 7 {
		return nil, badInput("missing parameter sets")
	}
	if extradata[0] != 1 {
		return nil, parseErr("bad avcC version", nil)
	}
	cfg := &avcConfig{NalLengthSize: int(extradata[4]&0x03) + 1}
	pos := 5
	numSPS := int(extradata[pos] & 0x1F)
	pos++
	for i := 0; i < numSPS; i++ {
		if pos+2 > len(extradata) {
			return nil, parseErr("truncated avcC sps", nil)
		}
		n := int(extradata[pos])<<8 | int(extradata[pos+1])
		pos += 2
		if pos+n > len(extradata) {
			return nil, parseErr("truncated avcC sps", nil)
		}
		cfg.SPS = append(cfg.SPS, extradata[pos:pos+n])
		pos += n
	}
	if pos >= len(extradata) {
		return nil, parseErr("truncated avcC pps", nil)
	}
	numPPS := int(extradata[pos])
	pos++
	for i := 0; i < numPPS; i++ {
		if pos+2 > len(extradata) {
			return nil, parseErr("truncated avcC pps", nil)
		}
		n := int(extradata[pos])<<8 | int(extradata[pos+1])
		pos += 2
		if pos+n > len(extradata) {
			return nil, parseErr("truncated avcC pps", nil)
		}
		cfg.PPS = append(cfg.PPS, extradata[pos:pos+n])
		pos += n
	}
	if len(cfg.SPS) == 0 || len(cfg.PPS) == 0 {
		return nil, badInput("missing parameter sets")
	}
	return cfg, nil
}

// splitNALUnits walks a length-prefixed access unit as stored in ISO-BMFF
// samples and returns the contained NAL units.
func splitNALUnits(sample []byte, nalLengthSize int) ([][]byte, error) {
	var nals [][]byte
	pos := 0
	for pos < len(sample) {
		if pos+nalLengthSize > len(sample) {
			return nil, parseErr("truncated NAL length prefix", nil)
		}
		n := 0
		for i := 0; i < nalLengthSize; i++ {
			n = n<<8 | int(sample[pos+i])
		}
		pos += nalLengthSize
		if n == 0 || pos+n > len(sample) {
			return nil, parseErr("truncated NAL unit", nil)
		}
		nals = append(nals, sample[pos:pos+n])
		pos += n
	}
	return nals, nil
}

// readSe decodes a signed exp-golomb value.
func readSe(r *bits.Reader) int32 {
	ue := r.ReadUe()
	if ue&1 == 1 {
		return int32(ue/2 + 1)
	}
	return -int32(ue / 2)
}

// rawPPS carries the picture-parameter-set fields the Std PPS and the
// slice-header parser consume.
type rawPPS struct {
	PicParameterSetID                 uint8
	SeqParameterSetID                 uint8
	EntropyCodingMode                 uint8
	BottomFieldPicOrderInFramePresent uint8
	NumRefIdxL0DefaultActiveMinus1    uint8
	NumRefIdxL1DefaultActiveMinus1    uint8
	WeightedPredFlag                  uint8
	WeightedBipredIdc                 uint8
	PicInitQpMinus26                  int8
	PicInitQsMinus26                  int8
	ChromaQpIndexOffset               int8
	DeblockingFilterControlPresent    uint8
	ConstrainedIntraPred              uint8
	RedundantPicCntPresent            uint8
	Transform8x8Mode                  uint8
	PicScalingMatrixPresent           uint8
	SecondChromaQpIndexOffset         int8
}

// parsePPS decodes a PPS NAL unit (header byte included).
func parsePPS(nal []byte) (pps *rawPPS, err error) {
	defer func() {
		if r := recover(); r != nil {
			pps, err = nil, parseErr("pps decode", nil)
		}
	}()

	rbsp := utils.RemoveH264or5EmulationBytes(nal)
	if len(rbsp) < 2 || rbsp[0]&0x1F != h264NalPps {
		return nil, parseErr("not a pps NAL unit", nil)
	}
	r := bits.NewReader(rbsp[1:])

	pps = &rawPPS{}
	pps.PicParameterSetID = r.ReadUe8()
	pps.SeqParameterSetID = r.ReadUe8()
	pps.EntropyCodingMode = r.ReadBit()
	pps.BottomFieldPicOrderInFramePresent = r.ReadBit()
	if numSliceGroups := r.ReadUe(); numSliceGroups != 0 {
		return nil, badInput("slice groups are not supported")
	}
	pps.NumRefIdxL0DefaultActiveMinus1 = r.ReadUe8()
	pps.NumRefIdxL1DefaultActiveMinus1 = r.ReadUe8()
	pps.WeightedPredFlag = r.ReadBit()
	pps.WeightedBipredIdc = r.ReadUint8(2)
	pps.PicInitQpMinus26 = int8(readSe(r))
	pps.PicInitQsMinus26 = int8(readSe(r))
	pps.ChromaQpIndexOffset = int8(readSe(r))
	pps.DeblockingFilterControlPresent = r.ReadBit()
	pps.ConstrainedIntraPred = r.ReadBit()
	pps.RedundantPicCntPresent = r.ReadBit()
	// more_rbsp_data(): the optional tail is present only if a set bit
	// remains before the rbsp_stop_one_bit, the last set bit of the payload.
	payload := rbsp[1:]
	stopBit := -1
	for i := len(payload)*8 - 1; i >= 0; i-- {
		if payload[i>>3]>>(7-uint(i&7))&1 == 1 {
			stopBit = i
			break
		}
	}
	if len(payload)*8-r.BitsLeft() < stopBit {
		pps.Transform8x8Mode = r.ReadBit()
		pps.PicScalingMatrixPresent = r.ReadBit()
		if pps.PicScalingMatrixPresent == 1 {
			// The Std PPS would need the decoded matrices plus per-list
			// default markers, which this parser does not recover.
			return nil, badInput("PPS scaling matrices are not supported")
		}
		pps.SecondChromaQpIndexOffset = int8(readSe(r))
	} else {
		pps.SecondChromaQpIndexOffset = pps.ChromaQpIndexOffset
	}
	return pps, nil
}

// mmcoOp is one memory_management_control_operation with its arguments.
type mmcoOp struct {
	Op                        uint32
	DifferenceOfPicNumsMinus1 uint32
	LongTermPicNum            uint32
	LongTermFrameIdx          uint32
	MaxLongTermFrameIdxPlus1  uint32
}

// sliceHeader carries the parsed slice-header fields of the first VCL NAL
// unit of an access unit.
type sliceHeader struct {
	NalRefIdc   uint8
	NalUnitType uint8
	SliceType   uint32

	FrameNum               uint32
	IdrPicID               uint32
	PicOrderCntLsb         uint32
	DeltaPicOrderCntBottom int32
	DeltaPicOrderCnt       [2]int32

	// Reference picture marking.
	NoOutputOfPriorPics   bool
	LongTermReferenceFlag bool
	AdaptiveRefPicMarking bool
	MMCO                  []mmcoOp
}

func (h *sliceHeader) IsIDR() bool       { return h.NalUnitType == h264NalSliceIdr }
func (h *sliceHeader) IsReference() bool { return h.NalRefIdc != 0 }
func (h *sliceHeader) IsIntra() bool {
	t := h.SliceType % 5
	return t == h264SliceI || t == h264SliceSI
}

// parseSliceHeader decodes the header of a VCL NAL unit far enough to reach
// dec_ref_pic_marking. sps and pps must be the active parameter sets.
func parseSliceHeader(nal []byte, sps *h264.RawSPS, pps *rawPPS) (hdr *sliceHeader, err error) {
	defer func() {
		if r := recover(); r != nil {
			hdr, err = nil, parseErr("slice header decode", nil)
		}
	}()

	rbsp := utils.RemoveH264or5EmulationBytes(nal)
	if len(rbsp) < 2 {
		return nil, parseErr("short slice NAL unit", nil)
	}
	hdr = &sliceHeader{
		NalRefIdc:   rbsp[0] >> 5 & 0x3,
		NalUnitType: rbsp[0] & 0x1F,
	}
	r := bits.NewReader(rbsp[1:])

	_ = r.ReadUe() // first_mb_in_slice
	hdr.SliceType = r.ReadUe()
	_ = r.ReadUe() // pic_parameter_set_id
	if sps.SeparateColourPlaneFlag == 1 {
		r.Skip(2)
	}
	hdr.FrameNum = r.Read(int(sps.Log2MaxFrameNumMinus4) + 4)
	if sps.FrameMbsOnlyFlag == 0 {
		if r.ReadBit() == 1 {
			return nil, badInput("interlaced content is not supported")
		}
	}
	if hdr.IsIDR() {
		hdr.IdrPicID = r.ReadUe()
	}
	switch sps.PicOrderCntType {
	case 0:
		hdr.PicOrderCntLsb = r.Read(int(sps.Log2MaxPicOrderCntLsbMinus4) + 4)
		if pps.BottomFieldPicOrderInFramePresent == 1 {
			hdr.DeltaPicOrderCntBottom = readSe(r)
		}
	case 1:
		if sps.DeltaPicOrderAlwaysZeroFlag == 0 {
			hdr.DeltaPicOrderCnt[0] = readSe(r)
			if pps.BottomFieldPicOrderInFramePresent == 1 {
				hdr.DeltaPicOrderCnt[1] = readSe(r)
			}
		}
	}
	if pps.RedundantPicCntPresent == 1 {
		_ = r.ReadUe()
	}

	sliceType := hdr.SliceType % 5
	numRefL0 := uint32(pps.NumRefIdxL0DefaultActiveMinus1) + 1
	numRefL1 := uint32(pps.NumRefIdxL1DefaultActiveMinus1) + 1
	if sliceType == h264SliceB {
		r.Skip(1) // direct_spatial_mv_pred_flag
	}
	if sliceType == h264SliceP || sliceType == h264SliceSP || sliceType == h264SliceB {
		if r.ReadBit() == 1 { // num_ref_idx_active_override_flag
			numRefL0 = r.ReadUe() + 1
			if sliceType == h264SliceB {
				numRefL1 = r.ReadUe() + 1
			}
		}
	}

	// ref_pic_list_modification
	if sliceType != h264SliceI && sliceType != h264SliceSI {
		skipRefPicListModification(r)
	}
	if sliceType == h264SliceB {
		skipRefPicListModification(r)
	}

	// pred_weight_table
	if (pps.WeightedPredFlag == 1 && (sliceType == h264SliceP || sliceType == h264SliceSP)) ||
		(pps.WeightedBipredIdc == 1 && sliceType == h264SliceB) {
		skipPredWeightTable(r, sps, sliceType, numRefL0, numRefL1)
	}

	// dec_ref_pic_marking
	if hdr.IsReference() {
		if hdr.IsIDR() {
			hdr.NoOutputOfPriorPics = r.ReadBool()
			hdr.LongTermReferenceFlag = r.ReadBool()
		} else if r.ReadBool() { // adaptive_ref_pic_marking_mode_flag
			hdr.AdaptiveRefPicMarking = true
			for {
				op := r.ReadUe()
				if op == 0 {
					break
				}
				m := mmcoOp{Op: op}
				switch op {
				case 1:
					m.DifferenceOfPicNumsMinus1 = r.ReadUe()
				case 2:
					m.LongTermPicNum = r.ReadUe()
				case 3:
					m.DifferenceOfPicNumsMinus1 = r.ReadUe()
					m.LongTermFrameIdx = r.ReadUe()
				case 4:
					m.MaxLongTermFrameIdxPlus1 = r.ReadUe()
				case 6:
					m.LongTermFrameIdx = r.ReadUe()
				}
				hdr.MMCO = append(hdr.MMCO, m)
			}
		}
	}
	return hdr, nil
}

func skipRefPicListModification(r *bits.Reader) {
	if r.ReadBit() == 0 {
		return
	}
	for {
		idc := r.ReadUe()
		if idc == 3 {
			return
		}
		_ = r.ReadUe() // abs_diff_pic_num_minus1 or long_term_pic_num
	}
}

func skipPredWeightTable(r *bits.Reader, sps *h264.RawSPS, sliceType, numRefL0, numRefL1 uint32) {
	_ = r.ReadUe() // luma_log2_weight_denom
	chroma := sps.ChromaFormatIdc != 0 && sps.SeparateColourPlaneFlag == 0
	if chroma {
		_ = r.ReadUe() // chroma_log2_weight_denom
	}
	skipEntries := func(count uint32) {
		for i := uint32(0); i < count; i++ {
			if r.ReadBit() == 1 { // luma_weight_flag
				readSe(r)
				readSe(r)
			}
			if chroma && r.ReadBit() == 1 { // chroma_weight_flag
				for j := 0; j < 4; j++ {
					readSe(r)
				}
			}
		}
	}
	skipEntries(numRefL0)
	if sliceType == h264SliceB {
		skipEntries(numRefL1)
	}
}

// buildStdSPS converts a parsed SPS into the decoder's Std structure.
func buildStdSPS(sps *h264.RawSPS) StdVideoH264SequenceParameterSet {
	var flags uint32
	setIf := func(cond bool, bit uint32) {
		if cond {
			flags |= bit
		}
	}
	setIf(sps.ConstraintSet0Flag == 1, H264SpsConstraintSet0Flag)
	setIf(sps.ConstraintSet1Flag == 1, H264SpsConstraintSet1Flag)
	setIf(sps.ConstraintSet2Flag == 1, H264SpsConstraintSet2Flag)
	setIf(sps.ConstraintSet3Flag == 1, H264SpsConstraintSet3Flag)
	setIf(sps.ConstraintSet4Flag == 1, H264SpsConstraintSet4Flag)
	setIf(sps.ConstraintSet5Flag == 1, H264SpsConstraintSet5Flag)
	setIf(sps.Direct8x8InferenceFlag == 1, H264SpsDirect8x8InferenceFlag)
	setIf(sps.MbAdaptiveFrameFieldFlag == 1, H264SpsMbAdaptiveFrameFieldFlag)
	setIf(sps.FrameMbsOnlyFlag == 1, H264SpsFrameMbsOnlyFlag)
	setIf(sps.DeltaPicOrderAlwaysZeroFlag == 1, H264SpsDeltaPicOrderAlwaysZeroFlag)
	setIf(sps.SeparateColourPlaneFlag == 1, H264SpsSeparateColourPlaneFlag)
	setIf(sps.GapsInFrameNumAllowedFlag == 1, H264SpsGapsInFrameNumValueAllowedFlag)
	setIf(sps.QpprimeYZeroTransformBypassFlag == 1, H264SpsQpprimeYZeroTransformBypassFlag)
	setIf(sps.FrameCroppingFlag == 1, H264SpsFrameCroppingFlag)
	setIf(sps.VuiParametersPresentFlag == 1, H264SpsVuiParametersPresentFlag)

	return StdVideoH264SequenceParameterSet{
		Flags:                          flags,
		ProfileIdc:                     uint32(sps.ProfileIdc),
		LevelIdc:                       h264LevelIdcToStd(sps.LevelIdc),
		ChromaFormatIdc:                uint32(sps.ChromaFormatIdc),
		SeqParameterSetId:              sps.SeqParameterSetID,
		BitDepthLumaMinus8:             sps.BitDepthLumaMinus8,
		BitDepthChromaMinus8:           sps.BitDepthChromaMinus8,
		Log2MaxFrameNumMinus4:          sps.Log2MaxFrameNumMinus4,
		PicOrderCntType:                uint32(sps.PicOrderCntType),
		OffsetForNonRefPic:             sps.OffsetForNonRefPic,
		OffsetForTopToBottomField:      sps.OffsetForTopToBottomField,
		Log2MaxPicOrderCntLsbMinus4:    sps.Log2MaxPicOrderCntLsbMinus4,
		NumRefFramesInPicOrderCntCycle: sps.NumRefFramesInPicOrderCntCycle,
		MaxNumRefFrames:                sps.MaxNumRefFrames,
		PicWidthInMbsMinus1:            uint32(sps.PicWidthInMbsMinus1),
		PicHeightInMapUnitsMinus1:      uint32(sps.PicHeightInMapUnitsMinus1),
		FrameCropLeftOffset:            uint32(sps.FrameCropLeftOffset),
		FrameCropRightOffset:           uint32(sps.FrameCropRightOffset),
		FrameCropTopOffset:             uint32(sps.FrameCropTopOffset),
		FrameCropBottomOffset:          uint32(sps.FrameCropBottomOffset),
	}
}

// h264LevelIdcToStd maps level_idc (e.g. 41) onto StdVideoH264LevelIdc
// enumerants, which count levels from zero.
func h264LevelIdcToStd(levelIdc uint8) uint32 {
	levels := []uint8{10, 11, 12, 13, 20, 21, 22, 30, 31, 32, 40, 41, 42, 50, 51, 52, 60, 61, 62}
	for i, l := range levels {
		if levelIdc <= l {
			return uint32(i)
		}
	}
	return uint32(len(levels) - 1)
}

// buildStdPPS converts a parsed PPS into the decoder's Std structure.
func buildStdPPS(pps *rawPPS) StdVideoH264PictureParameterSet {
	var flags uint32
	setIf := func(cond bool, bit uint32) {
		if cond {
			flags |= bit
		}
	}
	setIf(pps.Transform8x8Mode == 1, H264PpsTransform8x8ModeFlag)
	setIf(pps.RedundantPicCntPresent == 1, H264PpsRedundantPicCntPresentFlag)
	setIf(pps.ConstrainedIntraPred == 1, H264PpsConstrainedIntraPredFlag)
	setIf(pps.DeblockingFilterControlPresent == 1, H264PpsDeblockingFilterControlPresentFlag)
	setIf(pps.WeightedPredFlag == 1, H264PpsWeightedPredFlag)
	setIf(pps.BottomFieldPicOrderInFramePresent == 1, H264PpsBottomFieldPicOrderInFramePresentFlag)
	setIf(pps.EntropyCodingMode == 1, H264PpsEntropyCodingModeFlag)
	setIf(pps.PicScalingMatrixPresent == 1, H264PpsPicScalingMatrixPresentFlag)

	return StdVideoH264PictureParameterSet{
		Flags:                          flags,
		SeqParameterSetId:              pps.SeqParameterSetID,
		PicParameterSetId:              pps.PicParameterSetID,
		NumRefIdxL0DefaultActiveMinus1: pps.NumRefIdxL0DefaultActiveMinus1,
		NumRefIdxL1DefaultActiveMinus1: pps.NumRefIdxL1DefaultActiveMinus1,
		WeightedBipredIdc:              uint32(pps.WeightedBipredIdc),
		PicInitQpMinus26:               pps.PicInitQpMinus26,
		PicInitQsMinus26:               pps.PicInitQsMinus26,
		ChromaQpIndexOffset:            pps.ChromaQpIndexOffset,
		SecondChromaQpIndexOffset:      pps.SecondChromaQpIndexOffset,
	}
}
