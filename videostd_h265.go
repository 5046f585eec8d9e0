package vkvideo

// Mirrors of vulkan_video_codec_h265std.h and the encode variant, complete
// enough for parameter-set generation and per-picture encode info.

const (
	StdVideoH265ProfileIdcMain uint32 = 1

	StdVideoH265LevelIdc51 uint32 = 8 // STD_VIDEO_H265_LEVEL_IDC_5_1

	StdVideoH265SliceTypeB uint32 = 0
	StdVideoH265SliceTypeP uint32 = 1
	StdVideoH265SliceTypeI uint32 = 2

	StdVideoH265PictureTypeP   uint32 = 0
	StdVideoH265PictureTypeB   uint32 = 1
	StdVideoH265PictureTypeI   uint32 = 2
	StdVideoH265PictureTypeIdr uint32 = 3
)

// HEVC NAL unit types needed for keyframe flagging of encoder output.
const (
	HevcNalIdrWRadl = 19
	HevcNalIdrNLp   = 20
	HevcNalCra      = 21
	HevcNalVps      = 32
	HevcNalSps      = 33
	HevcNalPps      = 34
)

// StdVideoH265ProfileTierLevelFlags bits.
const (
	H265PtlGeneralTierFlag uint32 = 1 << iota
	H265PtlGeneralProgressiveSourceFlag
	H265PtlGeneralInterlacedSourceFlag
	H265PtlGeneralNonPackedConstraintFlag
	H265PtlGeneralFrameOnlyConstraintFlag
)

// StdVideoH265VpsFlags bits.
const (
	H265VpsTemporalIdNestingFlag uint32 = 1 << iota
	H265VpsSubLayerOrderingInfoPresentFlag
	H265VpsTimingInfoPresentFlag
	H265VpsPocProportionalToTimingFlag
)

// StdVideoH265SpsFlags bits, in bitfield declaration order.
const (
	H265SpsTemporalIdNestingFlag uint32 = 1 << iota
	H265SpsSeparateColourPlaneFlag
	H265SpsConformanceWindowFlag
	H265SpsSubLayerOrderingInfoPresentFlag
	H265SpsScalingListEnabledFlag
	H265SpsScalingListDataPresentFlag
	H265SpsAmpEnabledFlag
	H265SpsSampleAdaptiveOffsetEnabledFlag
	H265SpsPcmEnabledFlag
	H265SpsPcmLoopFilterDisabledFlag
	H265SpsLongTermRefPicsPresentFlag
	H265SpsTemporalMvpEnabledFlag
	H265SpsStrongIntraSmoothingEnabledFlag
	H265SpsVuiParametersPresentFlag
	H265SpsExtensionPresentFlag
	H265SpsRangeExtensionFlag
	H265SpsTransformSkipRotationEnabledFlag
	H265SpsTransformSkipContextEnabledFlag
	H265SpsImplicitRdpcmEnabledFlag
	H265SpsExplicitRdpcmEnabledFlag
	H265SpsExtendedPrecisionProcessingFlag
	H265SpsIntraSmoothingDisabledFlag
	H265SpsHighPrecisionOffsetsEnabledFlag
	H265SpsPersistentRiceAdaptationEnabledFlag
	H265SpsCabacBypassAlignmentEnabledFlag
	H265SpsSccExtensionFlag
	H265SpsCurrPicRefEnabledFlag
	H265SpsPaletteModeEnabledFlag
	H265SpsPalettePredictorInitializersPresentFlag
	H265SpsIntraBoundaryFilteringDisabledFlag
)

// StdVideoH265PpsFlags bits.
const (
	H265PpsDependentSliceSegmentsEnabledFlag uint32 = 1 << iota
	H265PpsOutputFlagPresentFlag
	H265PpsSignDataHidingEnabledFlag
	H265PpsCabacInitPresentFlag
	H265PpsConstrainedIntraPredFlag
	H265PpsTransformSkipEnabledFlag
	H265PpsCuQpDeltaEnabledFlag
	H265PpsSliceChromaQpOffsetsPresentFlag
	H265PpsWeightedPredFlag
	H265PpsWeightedBipredFlag
	H265PpsTransquantBypassEnabledFlag
	H265PpsTilesEnabledFlag
	H265PpsEntropyCodingSyncEnabledFlag
	H265PpsUniformSpacingFlag
	H265PpsLoopFilterAcrossTilesEnabledFlag
	H265PpsLoopFilterAcrossSlicesEnabledFlag
	H265PpsDeblockingFilterControlPresentFlag
	H265PpsDeblockingFilterOverrideEnabledFlag
	H265PpsDeblockingFilterDisabledFlag
	H265PpsListsModificationPresentFlag
	H265PpsSliceSegmentHeaderExtensionPresentFlag
	H265PpsExtensionPresentFlag
	H265PpsCrossComponentPredictionEnabledFlag
	H265PpsChromaQpOffsetListEnabledFlag
	H265PpsRangeExtensionFlag
)

// StdVideoH265SpsVuiFlags bits, in bitfield declaration order.
const (
	h265VuiAspectRatioInfoPresentFlag uint32 = 1 << iota
	h265VuiOverscanInfoPresentFlag
	h265VuiOverscanAppropriateFlag
	h265VuiVideoSignalTypePresentFlag
	h265VuiVideoFullRangeFlag
	h265VuiColourDescriptionPresentFlag
	h265VuiChromaLocInfoPresentFlag
	h265VuiNeutralChromaIndicationFlag
	h265VuiFieldSeqFlag
	h265VuiFrameFieldInfoPresentFlag
	h265VuiDefaultDisplayWindowFlag
	h265VuiTimingInfoPresentFlag
	h265VuiPocProportionalToTimingFlag
	h265VuiHrdParametersPresentFlag
	h265VuiBitstreamRestrictionFlag
	h265VuiTilesFixedStructureFlag
	h265VuiMotionVectorsOverPicBoundariesFlag
	h265VuiRestrictedRefPicListsFlag
)

// StdVideoEncodeH265PictureInfoFlags bits.
const (
	H265EncPicIsReference uint32 = 1 << iota
	H265EncPicIrapPicFlag
	H265EncPicUsedForLongTermReference
	H265EncPicDiscardableFlag
	H265EncPicCrossLayerBlaFlag
	H265EncPicOutputFlag
	H265EncPicNoOutputOfPriorPicsFlag
	H265EncPicShortTermRefPicSetSpsFlag
	H265EncPicSliceTemporalMvpEnabledFlag
)

// StdVideoEncodeH265SliceSegmentHeaderFlags bits.
const (
	H265EncSliceFirstSliceSegmentInPicFlag uint32 = 1 << iota
	H265EncSliceDependentSliceSegmentFlag
	H265EncSliceSaoLumaFlag
	H265EncSliceSaoChromaFlag
	H265EncSliceNumRefIdxActiveOverrideFlag
	H265EncSliceMvdL1ZeroFlag
	H265EncSliceCabacInitFlag
	H265EncSliceCuChromaQpOffsetEnabledFlag
	H265EncSliceDeblockingFilterOverrideFlag
	H265EncSliceDeblockingFilterDisabledFlag
	H265EncSliceCollocatedFromL0Flag
	H265EncSliceLoopFilterAcrossSlicesEnabledFlag
)

// StdVideoEncodeH265ReferenceInfoFlags bits.
const (
	H265EncRefUsedForLongTermReference uint32 = 1 << iota
	H265EncRefUnusedForReference
)

const MaxNumListRef = 15

type StdVideoH265ProfileTierLevel struct {
	Flags             uint32
	GeneralProfileIdc uint32
	GeneralLevelIdc   uint32
}

type StdVideoH265DecPicBufMgr struct {
	MaxLatencyIncreasePlus1  [7]uint32
	MaxDecPicBufferingMinus1 [7]uint8
	MaxNumReorderPics        [7]uint8
}

type StdVideoH265SubLayerHrdParameters struct {
	BitRateValueMinus1   [32]uint32
	CpbSizeValueMinus1   [32]uint32
	CpbSizeDuValueMinus1 [32]uint32
	BitRateDuValueMinus1 [32]uint32
	CbrFlag              uint32
}

type StdVideoH265HrdParameters struct {
	Flags                                  uint32
	TickDivisorMinus2                      uint8
	DuCpbRemovalDelayIncrementLengthMinus1 uint8
	DpbOutputDelayDuLengthMinus1           uint8
	BitRateScale                           uint8
	CpbSizeScale                           uint8
	CpbSizeDuScale                         uint8
	InitialCpbRemovalDelayLengthMinus1     uint8
	AuCpbRemovalDelayLengthMinus1          uint8
	DpbOutputDelayLengthMinus1             uint8
	CpbCntMinus1                           [7]uint8
	ElementalDurationInTcMinus1            [7]uint16
	Reserved                               [3]uint16
	PSubLayerHrdParametersNal              *StdVideoH265SubLayerHrdParameters
	PSubLayerHrdParametersVcl              *StdVideoH265SubLayerHrdParameters
}

type StdVideoH265VideoParameterSet struct {
	Flags                       uint32
	VpsVideoParameterSetId      uint8
	VpsMaxSubLayersMinus1       uint8
	Reserved1                   uint8
	Reserved2                   uint8
	VpsNumUnitsInTick           uint32
	VpsTimeScale                uint32
	VpsNumTicksPocDiffOneMinus1 uint32
	Reserved3                   uint32
	PDecPicBufMgr               *StdVideoH265DecPicBufMgr
	PHrdParameters              *StdVideoH265HrdParameters
	PProfileTierLevel           *StdVideoH265ProfileTierLevel
}

type StdVideoH265ScalingLists struct {
	ScalingList4x4         [6][16]uint8
	ScalingList8x8         [6][64]uint8
	ScalingList16x16       [6][64]uint8
	ScalingList32x32       [2][64]uint8
	ScalingListDCCoef16x16 [6]uint8
	ScalingListDCCoef32x32 [2]uint8
}

type StdVideoH265ShortTermRefPicSet struct {
	Flags               uint32
	DeltaIdxMinus1      uint32
	UseDeltaFlag        uint16
	AbsDeltaRpsMinus1   uint16
	UsedByCurrPicFlag   uint16
	UsedByCurrPicS0Flag uint16
	UsedByCurrPicS1Flag uint16
	Reserved1           uint16
	Reserved2           uint8
	Reserved3           uint8
	NumNegativePics     uint8
	NumPositivePics     uint8
	DeltaPocS0Minus1    [16]uint16
	DeltaPocS1Minus1    [16]uint16
}

type StdVideoH265LongTermRefPicsSps struct {
	UsedByCurrPicLtSpsFlag uint32
	LtRefPicPocLsbSps      [32]uint32
}

type StdVideoH265SequenceParameterSetVui struct {
	Flags                          uint32
	AspectRatioIdc                 uint32
	SarWidth                       uint16
	SarHeight                      uint16
	VideoFormat                    uint8
	ColourPrimaries                uint8
	TransferCharacteristics        uint8
	MatrixCoeffs                   uint8
	ChromaSampleLocTypeTopField    uint8
	ChromaSampleLocTypeBottomField uint8
	Reserved1                      uint8
	Reserved2                      uint8
	DefDispWinLeftOffset           uint16
	DefDispWinRightOffset          uint16
	DefDispWinTopOffset            uint16
	DefDispWinBottomOffset         uint16
	VuiNumUnitsInTick              uint32
	VuiTimeScale                   uint32
	VuiNumTicksPocDiffOneMinus1    uint32
	MinSpatialSegmentationIdc      uint16
	Reserved3                      uint16
	MaxBytesPerPicDenom            uint8
	MaxBitsPerMinCuDenom           uint8
	Log2MaxMvLengthHorizontal      uint8
	Log2MaxMvLengthVertical        uint8
	PHrdParameters                 *StdVideoH265HrdParameters
}

type StdVideoH265PredictorPaletteEntries struct {
	PredictorPaletteEntries [3][128]uint16
}

type StdVideoH265SequenceParameterSet struct {
	Flags                                    uint32
	ChromaFormatIdc                          uint32
	PicWidthInLumaSamples                    uint32
	PicHeightInLumaSamples                   uint32
	SpsVideoParameterSetId                   uint8
	SpsMaxSubLayersMinus1                    uint8
	SpsSeqParameterSetId                     uint8
	BitDepthLumaMinus8                       uint8
	BitDepthChromaMinus8                     uint8
	Log2MaxPicOrderCntLsbMinus4              uint8
	Log2MinLumaCodingBlockSizeMinus3         uint8
	Log2DiffMaxMinLumaCodingBlockSize        uint8
	Log2MinLumaTransformBlockSizeMinus2      uint8
	Log2DiffMaxMinLumaTransformBlockSize     uint8
	MaxTransformHierarchyDepthInter          uint8
	MaxTransformHierarchyDepthIntra          uint8
	NumShortTermRefPicSets                   uint8
	NumLongTermRefPicsSps                    uint8
	PcmSampleBitDepthLumaMinus1              uint8
	PcmSampleBitDepthChromaMinus1            uint8
	Log2MinPcmLumaCodingBlockSizeMinus3      uint8
	Log2DiffMaxMinPcmLumaCodingBlockSize     uint8
	Reserved1                                uint8
	Reserved2                                uint8
	PaletteMaxSize                           uint8
	DeltaPaletteMaxPredictorSize             uint8
	MotionVectorResolutionControlIdc         uint8
	SpsNumPalettePredictorInitializersMinus1 uint8
	ConfWinLeftOffset                        uint32
	ConfWinRightOffset                       uint32
	ConfWinTopOffset                         uint32
	ConfWinBottomOffset                      uint32
	PProfileTierLevel                        *StdVideoH265ProfileTierLevel
	PDecPicBufMgr                            *StdVideoH265DecPicBufMgr
	PScalingLists                            *StdVideoH265ScalingLists
	PShortTermRefPicSet                      *StdVideoH265ShortTermRefPicSet
	PLongTermRefPicsSps                      *StdVideoH265LongTermRefPicsSps
	PSequenceParameterSetVui                 *StdVideoH265SequenceParameterSetVui
	PPredictorPaletteEntries                 *StdVideoH265PredictorPaletteEntries
}

type StdVideoH265PictureParameterSet struct {
	Flags                               uint32
	PpsPicParameterSetId                uint8
	PpsSeqParameterSetId                uint8
	SpsVideoParameterSetId              uint8
	NumExtraSliceHeaderBits             uint8
	NumRefIdxL0DefaultActiveMinus1      uint8
	NumRefIdxL1DefaultActiveMinus1      uint8
	InitQpMinus26                       int8
	DiffCuQpDeltaDepth                  uint8
	PpsCbQpOffset                       int8
	PpsCrQpOffset                       int8
	PpsBetaOffsetDiv2                   int8
	PpsTcOffsetDiv2                     int8
	Log2ParallelMergeLevelMinus2        uint8
	Log2MaxTransformSkipBlockSizeMinus2 uint8
	DiffCuChromaQpOffsetDepth           uint8
	ChromaQpOffsetListLenMinus1         uint8
	CbQpOffsetList                      [6]int8
	CrQpOffsetList                      [6]int8
	Log2SaoOffsetScaleLuma              uint8
	Log2SaoOffsetScaleChroma            uint8
	PpsActYQpOffsetPlus5                int8
	PpsActCbQpOffsetPlus5               int8
	PpsActCrQpOffsetPlus3               int8
	PpsNumPalettePredictorInitializers  uint8
	LumaBitDepthEntryMinus8             uint8
	ChromaBitDepthEntryMinus8           uint8
	NumTileColumnsMinus1                uint8
	NumTileRowsMinus1                   uint8
	Reserved1                           uint8
	Reserved2                           uint8
	ColumnWidthMinus1                   [19]uint16
	RowHeightMinus1                     [21]uint16
	Reserved3                           uint32
	PScalingLists                       *StdVideoH265ScalingLists
	PPredictorPaletteEntries            *StdVideoH265PredictorPaletteEntries
}

type StdVideoEncodeH265ReferenceListsInfo struct {
	Flags                   uint32
	NumRefIdxL0ActiveMinus1 uint8
	NumRefIdxL1ActiveMinus1 uint8
	RefPicList0             [MaxNumListRef]uint8
	RefPicList1             [MaxNumListRef]uint8
	ListEntryL0             [MaxNumListRef]uint8
	ListEntryL1             [MaxNumListRef]uint8
}

type StdVideoEncodeH265PictureInfo struct {
	Flags                  uint32
	PicType                uint32
	SpsVideoParameterSetId uint8
	PpsSeqParameterSetId   uint8
	PpsPicParameterSetId   uint8
	ShortTermRefPicSetIdx  uint8
	PicOrderCntVal         int32
	TemporalId             uint8
	Reserved1              [7]uint8
	PRefLists              *StdVideoEncodeH265ReferenceListsInfo
	PShortTermRefPicSet    *StdVideoH265ShortTermRefPicSet
	PLongTermRefPics       *StdVideoEncodeH265LongTermRefPics
}

type StdVideoEncodeH265LongTermRefPics struct {
	NumLongTermSps         uint8
	NumLongTermPics        uint8
	LtIdxSps               [32]uint8
	PocLsbLt               [16]uint8
	UsedByCurrPicLtFlag    uint16
	DeltaPocMsbPresentFlag [48]uint8
	DeltaPocMsbCycleLt     [48]uint8
}

type StdVideoEncodeH265SliceSegmentHeader struct {
	Flags               uint32
	SliceType           uint32
	SliceSegmentAddress uint32
	CollocatedRefIdx    uint8
	MaxNumMergeCand     uint8
	SliceCbQpOffset     int8
	SliceCrQpOffset     int8
	SliceBetaOffsetDiv2 int8
	SliceTcOffsetDiv2   int8
	SliceActYQpOffset   int8
	SliceActCbQpOffset  int8
	SliceActCrQpOffset  int8
	SliceQpDelta        int8
	Reserved1           uint16
	PWeightTable        *byte
}

type StdVideoEncodeH265ReferenceInfo struct {
	Flags          uint32
	PicType        uint32
	PicOrderCntVal int32
	TemporalId     uint8
}
