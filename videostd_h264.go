package vkvideo

// Mirrors of vulkan_video_codec_h264std.h and the decode variant. The C
// headers express flag sets as uint32 bitfields; each fits one uint32 word,
// mirrored here as plain uint32 with bit constants.

// StdVideoH264ProfileIdc values.
const (
	StdVideoH264ProfileIdcBaseline uint32 = 66
	StdVideoH264ProfileIdcMain     uint32 = 77
	StdVideoH264ProfileIdcHigh     uint32 = 100
)

// StdVideoH264PocType values map directly to pic_order_cnt_type.

// StdVideoH264PictureType values.
const (
	StdVideoH264PictureTypeP   uint32 = 0
	StdVideoH264PictureTypeB   uint32 = 1
	StdVideoH264PictureTypeI   uint32 = 2
	StdVideoH264PictureTypeIdr uint32 = 5
)

// StdVideoH264SpsFlags bits, in bitfield declaration order.
const (
	H264SpsConstraintSet0Flag uint32 = 1 << iota
	H264SpsConstraintSet1Flag
	H264SpsConstraintSet2Flag
	H264SpsConstraintSet3Flag
	H264SpsConstraintSet4Flag
	H264SpsConstraintSet5Flag
	H264SpsDirect8x8InferenceFlag
	H264SpsMbAdaptiveFrameFieldFlag
	H264SpsFrameMbsOnlyFlag
	H264SpsDeltaPicOrderAlwaysZeroFlag
	H264SpsSeparateColourPlaneFlag
	H264SpsGapsInFrameNumValueAllowedFlag
	H264SpsQpprimeYZeroTransformBypassFlag
	H264SpsFrameCroppingFlag
	H264SpsSeqScalingMatrixPresentFlag
	H264SpsVuiParametersPresentFlag
)

// StdVideoH264PpsFlags bits.
const (
	H264PpsTransform8x8ModeFlag uint32 = 1 << iota
	H264PpsRedundantPicCntPresentFlag
	H264PpsConstrainedIntraPredFlag
	H264PpsDeblockingFilterControlPresentFlag
	H264PpsWeightedPredFlag
	H264PpsBottomFieldPicOrderInFramePresentFlag
	H264PpsEntropyCodingModeFlag
	H264PpsPicScalingMatrixPresentFlag
)

// StdVideoDecodeH264PictureInfoFlags bits.
const (
	H264PicFieldPicFlag uint32 = 1 << iota
	H264PicIsIntra
	H264PicIdrFlag
	H264PicBottomFieldFlag
	H264PicIsReference
	H264PicComplementaryFieldPair
)

// StdVideoDecodeH264ReferenceInfoFlags bits.
const (
	H264RefTopFieldFlag uint32 = 1 << iota
	H264RefBottomFieldFlag
	H264RefUsedForLongTermReference
	H264RefIsNonExisting
)

type StdVideoH264ScalingLists struct {
	ScalingListPresentMask      uint16
	UseDefaultScalingMatrixMask uint16
	ScalingList4x4              [6][16]uint8
	ScalingList8x8              [6][64]uint8
}

type StdVideoH264HrdParameters struct {
	CpbCntMinus1                       uint8
	BitRateScale                       uint8
	CpbSizeScale                       uint8
	Reserved1                          uint8
	BitRateValueMinus1                 [32]uint32
	CpbSizeValueMinus1                 [32]uint32
	CbrFlag                            [32]uint8
	InitialCpbRemovalDelayLengthMinus1 uint32
	CpbRemovalDelayLengthMinus1        uint32
	DpbOutputDelayLengthMinus1         uint32
	TimeOffsetLength                   uint32
}

type StdVideoH264SequenceParameterSetVui struct {
	Flags                          uint32
	AspectRatioIdc                 uint32
	SarWidth                       uint16
	SarHeight                      uint16
	VideoFormat                    uint8
	ColourPrimaries                uint8
	TransferCharacteristics        uint8
	MatrixCoefficients             uint8
	NumUnitsInTick                 uint32
	TimeScale                      uint32
	MaxNumReorderFrames            uint8
	MaxDecFrameBuffering           uint8
	ChromaSampleLocTypeTopField    uint8
	ChromaSampleLocTypeBottomField uint8
	Reserved1                      uint32
	PHrdParameters                 *StdVideoH264HrdParameters
}

type StdVideoH264SequenceParameterSet struct {
	Flags                          uint32
	ProfileIdc                     uint32
	LevelIdc                       uint32
	ChromaFormatIdc                uint32
	SeqParameterSetId              uint8
	BitDepthLumaMinus8             uint8
	BitDepthChromaMinus8           uint8
	Log2MaxFrameNumMinus4          uint8
	PicOrderCntType                uint32
	OffsetForNonRefPic             int32
	OffsetForTopToBottomField      int32
	Log2MaxPicOrderCntLsbMinus4    uint8
	NumRefFramesInPicOrderCntCycle uint8
	MaxNumRefFrames                uint8
	Reserved1                      uint8
	PicWidthInMbsMinus1            uint32
	PicHeightInMapUnitsMinus1      uint32
	FrameCropLeftOffset            uint32
	FrameCropRightOffset           uint32
	FrameCropTopOffset             uint32
	FrameCropBottomOffset          uint32
	Reserved2                      uint32
	POffsetForRefFrame             *int32
	PScalingLists                  *StdVideoH264ScalingLists
	PSequenceParameterSetVui       *StdVideoH264SequenceParameterSetVui
}

type StdVideoH264PictureParameterSet struct {
	Flags                          uint32
	SeqParameterSetId              uint8
	PicParameterSetId              uint8
	NumRefIdxL0DefaultActiveMinus1 uint8
	NumRefIdxL1DefaultActiveMinus1 uint8
	WeightedBipredIdc              uint32
	PicInitQpMinus26               int8
	PicInitQsMinus26               int8
	ChromaQpIndexOffset            int8
	SecondChromaQpIndexOffset      int8
	PScalingLists                  *StdVideoH264ScalingLists
}

type StdVideoDecodeH264PictureInfo struct {
	Flags             uint32
	SeqParameterSetId uint8
	PicParameterSetId uint8
	Reserved1         uint8
	Reserved2         uint8
	FrameNum          uint16
	IdrPicId          uint16
	PicOrderCnt       [2]int32
}

type StdVideoDecodeH264ReferenceInfo struct {
	Flags       uint32
	FrameNum    uint16
	Reserved    uint16
	PicOrderCnt [2]int32
}
