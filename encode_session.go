package vkvideo

import (
	"unsafe"
)

// RateMode selects the encoder's GOP and rate-control strategy.
type RateMode int

const (
	// RateModeIntraOnly emits every picture as an IDR with rate control
	// disabled at a constant QP. This is the default.
	RateModeIntraOnly RateMode = iota
	// RateModeLowDelayP emits an IDR at each GOP boundary and trailing P
	// pictures referencing the previous frame otherwise.
	RateModeLowDelayP
)

func (m RateMode) String() string {
	switch m {
	case RateModeLowDelayP:
		return "low-delay-p"
	default:
		return "intra-only"
	}
}

const (
	encodeConstantQp  = 26
	lowDelayGopLength = 30

	h265NoReferencePicture = 0xFF
)

// ParameterSets carries the generated HEVC parameter sets handed to the
// muxer as codec-specific data.
type ParameterSets struct {
	VPS []byte
	SPS []byte
	PPS []byte
}

// EncodeSession wraps an H.265 encode video session, its generated
// VPS/SPS/PPS, the encode-side DPB array, and the bitstream feedback query
// pool (one query slot per frame slot).
type EncodeSession struct {
	ctx *VideoContext

	profile     VideoProfileInfo
	h265Profile VideoEncodeH265ProfileInfo

	session VideoSession
	params  VideoSessionParameters
	memory  []DeviceMemory

	dpbImage  *deviceImage
	slotViews [dpbSlotCount]ImageView

	queryPool QueryPool

	// Std parameter sets; the SPS points into ptl/dpbMgr/vui below, so they
	// live as fields to keep the addresses stable.
	stdVPS StdVideoH265VideoParameterSet
	stdSPS StdVideoH265SequenceParameterSet
	stdPPS StdVideoH265PictureParameterSet
	ptl    StdVideoH265ProfileTierLevel
	dpbMgr StdVideoH265DecPicBufMgr
	vui    StdVideoH265SequenceParameterSetVui

	paramSets ParameterSets

	width, height uint32
	rateMode      RateMode
	gopLength     uint32

	frameIndex  uint32 // position within the stream
	lastSlot    int32  // DPB slot of the previous reference, -1 if none
	lastPoc     int32
	lastPicType uint32
	initialized bool
	dpbTouched  bool
}

func newEncodeProfile() (VideoProfileInfo, VideoEncodeH265ProfileInfo) {
	h265Profile := VideoEncodeH265ProfileInfo{
		SType:         StructureTypeVideoEncodeH265ProfileInfo,
		StdProfileIdc: StdVideoH265ProfileIdcMain,
	}
	profile := VideoProfileInfo{
		SType:               StructureTypeVideoProfileInfo,
		VideoCodecOperation: VideoCodecOperationEncodeH265,
		ChromaSubsampling:   VideoChromaSubsampling420Bit,
		LumaBitDepth:        VideoComponentBitDepth8Bit,
		ChromaBitDepth:      VideoComponentBitDepth8Bit,
	}
	return profile, h265Profile
}

// NewEncodeSession builds a memory-bound encode session for the stream
// geometry, generates HEVC parameter sets consistent with it, and creates
// the feedback query pool with querySlots entries.
func NewEncodeSession(ctx *VideoContext, width, height uint32, rateMode RateMode, querySlots uint32) (*EncodeSession, error) {
	s := &EncodeSession{
		ctx:       ctx,
		width:     width,
		height:    height,
		rateMode:  rateMode,
		gopLength: 1,
		lastSlot:  -1,
	}
	if rateMode == RateModeLowDelayP {
		s.gopLength = lowDelayGopLength
	}
	s.profile, s.h265Profile = newEncodeProfile()
	s.profile.PNext = unsafe.Pointer(&s.h265Profile)
	s.buildStdParameterSets()

	if err := s.createSession(); err != nil {
		return nil, err
	}
	if err := s.createParameters(); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.retrieveParameterSets(); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.createDpbImages(); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.createQueryPool(querySlots); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

// ProfileList returns a single-profile list for encode-only resources.
func (s *EncodeSession) ProfileList() *VideoProfileListInfo {
	return &VideoProfileListInfo{
		SType:        StructureTypeVideoProfileListInfo,
		ProfileCount: 1,
		PProfiles:    &s.profile,
	}
}

// Profile exposes the encode profile for resources shared with decode.
func (s *EncodeSession) Profile() VideoProfileInfo { return s.profile }

// buildStdParameterSets fills the Std VPS/SPS/PPS from the input geometry:
// Main profile level 5.1, 30 fps timing, 8-sample coding-block alignment
// with a conformance window when the source is not aligned.
func (s *EncodeSession) buildStdParameterSets() {
	const minCbSize = 8
	alignedW := (s.width + minCbSize - 1) &^ (minCbSize - 1)
	alignedH := (s.height + minCbSize - 1) &^ (minCbSize - 1)

	s.ptl = StdVideoH265ProfileTierLevel{
		Flags:             H265PtlGeneralProgressiveSourceFlag | H265PtlGeneralFrameOnlyConstraintFlag,
		GeneralProfileIdc: StdVideoH265ProfileIdcMain,
		GeneralLevelIdc:   StdVideoH265LevelIdc51,
	}
	for i := range s.dpbMgr.MaxDecPicBufferingMinus1 {
		s.dpbMgr.MaxDecPicBufferingMinus1[i] = dpbSlotCount - 1
	}
	s.vui = StdVideoH265SequenceParameterSetVui{
		Flags:             h265VuiTimingInfoPresentFlag,
		VuiNumUnitsInTick: 1,
		VuiTimeScale:      outputFps,
	}

	s.stdVPS = StdVideoH265VideoParameterSet{
		Flags:             H265VpsTemporalIdNestingFlag | H265VpsTimingInfoPresentFlag,
		VpsNumUnitsInTick: 1,
		VpsTimeScale:      outputFps,
		PDecPicBufMgr:     &s.dpbMgr,
		PProfileTierLevel: &s.ptl,
	}

	spsFlags := H265SpsTemporalIdNestingFlag | H265SpsVuiParametersPresentFlag
	if alignedW != s.width || alignedH != s.height {
		spsFlags |= H265SpsConformanceWindowFlag
	}
	s.stdSPS = StdVideoH265SequenceParameterSet{
		Flags:                                spsFlags,
		ChromaFormatIdc:                      1, // 4:2:0
		PicWidthInLumaSamples:                alignedW,
		PicHeightInLumaSamples:               alignedH,
		Log2MaxPicOrderCntLsbMinus4:          4,
		Log2MinLumaCodingBlockSizeMinus3:     0, // 8x8
		Log2DiffMaxMinLumaCodingBlockSize:    2, // CTB 32x32
		Log2MinLumaTransformBlockSizeMinus2:  0, // 4x4
		Log2DiffMaxMinLumaTransformBlockSize: 2, // max 16x16
		MaxTransformHierarchyDepthInter:      2,
		MaxTransformHierarchyDepthIntra:      2,
		// Conformance offsets are in chroma units for 4:2:0.
		ConfWinRightOffset:       (alignedW - s.width) / 2,
		ConfWinBottomOffset:      (alignedH - s.height) / 2,
		PProfileTierLevel:        &s.ptl,
		PDecPicBufMgr:            &s.dpbMgr,
		PSequenceParameterSetVui: &s.vui,
	}

	s.stdPPS = StdVideoH265PictureParameterSet{
		Flags: H265PpsLoopFilterAcrossSlicesEnabledFlag,
	}
}

func (s *EncodeSession) createSession() error {
	stdVersion := ExtensionProperties{SpecVersion: makeVideoStdVersion(1, 0, 0)}
	copy(stdVersion.ExtensionName[:], stdHeaderH265Encode)

	ci := VideoSessionCreateInfo{
		SType:                      StructureTypeVideoSessionCreateInfo,
		QueueFamilyIndex:           s.ctx.encodeFamily,
		PVideoProfile:              &s.profile,
		PictureFormat:              FormatG8B8R82Plane420Unorm,
		MaxCodedExtent:             Extent2D{Width: s.width, Height: s.height},
		ReferencePictureFormat:     FormatG8B8R82Plane420Unorm,
		MaxDpbSlots:                dpbSlotCount,
		MaxActiveReferencePictures: dpbSlotCount,
		PStdHeaderVersion:          &stdVersion,
	}
	if res := s.ctx.vk.CreateVideoSession(&ci, &s.session); res != Success {
		return vkErr("vkCreateVideoSessionKHR", res)
	}
	var err error
	s.memory, err = s.ctx.bindVideoSessionMemory(s.session)
	return err
}

func (s *EncodeSession) createParameters() error {
	addInfo := VideoEncodeH265SessionParametersAddInfo{
		SType:       StructureTypeVideoEncodeH265SessionParametersAddInfo,
		StdVPSCount: 1,
		PStdVPSs:    &s.stdVPS,
		StdSPSCount: 1,
		PStdSPSs:    &s.stdSPS,
		StdPPSCount: 1,
		PStdPPSs:    &s.stdPPS,
	}
	h265Create := VideoEncodeH265SessionParametersCreateInfo{
		SType:              StructureTypeVideoEncodeH265SessionParametersCreateInfo,
		MaxStdVPSCount:     1,
		MaxStdSPSCount:     1,
		MaxStdPPSCount:     1,
		PParametersAddInfo: &addInfo,
	}
	ci := VideoSessionParametersCreateInfo{
		SType:        StructureTypeVideoSessionParametersCreateInfo,
		PNext:        unsafe.Pointer(&h265Create),
		VideoSession: s.session,
	}
	if res := s.ctx.vk.CreateVideoSessionParameters(&ci, &s.params); res != Success {
		return vkErr("vkCreateVideoSessionParametersKHR", res)
	}
	return nil
}

// retrieveParameterSets asks the driver for the encoded VPS/SPS/PPS bytes;
// drivers may override the templates, so the returned bitstream is the
// authoritative codec-specific data.
func (s *EncodeSession) retrieveParameterSets() error {
	h265Get := VideoEncodeH265SessionParametersGetInfo{
		SType:       StructureTypeVideoEncodeH265SessionParametersGetInfo,
		WriteStdVPS: 1,
		WriteStdSPS: 1,
		WriteStdPPS: 1,
	}
	getInfo := VideoEncodeSessionParametersGetInfo{
		SType:                  StructureTypeVideoEncodeSessionParametersGetInfo,
		PNext:                  unsafe.Pointer(&h265Get),
		VideoSessionParameters: s.params,
	}
	fb := VideoEncodeSessionParametersFeedbackInfo{
		SType: StructureTypeVideoEncodeSessionParametersFeedbackInfo,
	}

	var size uintptr
	if res := s.ctx.vk.GetEncodedVideoSessionParameters(&getInfo, &fb, &size, nil); res != Success {
		return vkErr("vkGetEncodedVideoSessionParametersKHR", res)
	}
	blob := make([]byte, size)
	if res := s.ctx.vk.GetEncodedVideoSessionParameters(&getInfo, &fb, &size, unsafe.Pointer(&blob[0])); res != Success {
		return vkErr("vkGetEncodedVideoSessionParametersKHR", res)
	}
	blob = blob[:size]

	for _, nal := range splitAnnexB(blob) {
		if len(nal) < 2 {
			continue
		}
		switch nal[0] >> 1 & 0x3F {
		case HevcNalVps:
			s.paramSets.VPS = nal
		case HevcNalSps:
			s.paramSets.SPS = nal
		case HevcNalPps:
			s.paramSets.PPS = nal
		}
	}
	if s.paramSets.VPS == nil || s.paramSets.SPS == nil || s.paramSets.PPS == nil {
		return &Error{Kind: ErrVideoAPIFailed, Op: "vkGetEncodedVideoSessionParametersKHR",
			Detail: "driver did not return VPS/SPS/PPS"}
	}
	return nil
}

// ParameterSets returns the generated HEVC parameter sets.
func (s *EncodeSession) ParameterSets() ParameterSets { return s.paramSets }

func (s *EncodeSession) createDpbImages() error {
	img, err := s.ctx.createImage(s.width, s.height, FormatG8B8R82Plane420Unorm,
		ImageUsageVideoEncodeDpbBit, dpbSlotCount, s.ProfileList())
	if err != nil {
		return err
	}
	s.dpbImage = img
	for layer := uint32(0); layer < dpbSlotCount; layer++ {
		view, err := s.ctx.layerView(img.image, FormatG8B8R82Plane420Unorm, layer)
		if err != nil {
			return err
		}
		s.slotViews[layer] = view
	}
	return nil
}

func (s *EncodeSession) createQueryPool(querySlots uint32) error {
	feedback := QueryPoolVideoEncodeFeedbackCreateInfo{
		SType:               StructureTypeQueryPoolVideoEncodeFeedbackCreateInfo,
		PNext:               unsafe.Pointer(&s.profile),
		EncodeFeedbackFlags: VideoEncodeFeedbackBitstreamBufferOffsetBit | VideoEncodeFeedbackBitstreamBytesWrittenBit,
	}
	ci := QueryPoolCreateInfo{
		SType:      StructureTypeQueryPoolCreateInfo,
		PNext:      unsafe.Pointer(&feedback),
		QueryType:  QueryTypeVideoEncodeFeedback,
		QueryCount: querySlots,
	}
	if res := s.ctx.vk.CreateQueryPool(&ci, &s.queryPool); res != Success {
		return vkErr("vkCreateQueryPool", res)
	}
	return nil
}

// gopPosition reports whether the next picture is an IDR and its POC within
// the current GOP.
func (s *EncodeSession) gopPosition() (idr bool, poc int32) {
	pos := s.frameIndex % s.gopLength
	return pos == 0, int32(pos)
}

// Record writes the encode of the frame slot's decoded picture into cb and
// surrounds the encode command with the slot's feedback query.
func (s *EncodeSession) Record(cb CommandBuffer, src decodedPicture, dst Buffer, dstRange DeviceSize, querySlot uint32) {
	vk := s.ctx.vk
	idr, poc := s.gopPosition()
	if s.rateMode == RateModeIntraOnly {
		idr, poc = true, 0
	}

	setupSlot := int32(s.frameIndex % 2) // ping-pong between two DPB layers

	if !s.dpbTouched {
		s.ctx.transitionImageLayout(cb, s.dpbImage.image,
			ImageLayoutUndefined, ImageLayoutVideoEncodeDpb, 0, dpbSlotCount)
		s.dpbTouched = true
	}

	// Query slots are reset on the GPU before reuse; reset must happen
	// outside the video coding scope.
	vk.CmdResetQueryPool(cb, s.queryPool, querySlot, 1)

	rateControl := VideoEncodeRateControlInfo{
		SType:           StructureTypeVideoEncodeRateControlInfo,
		RateControlMode: VideoEncodeRateControlModeDisabled,
	}

	// Begin-coding lists every DPB slot the command may touch: the setup
	// slot (index -1 until activated) plus the previous reference for P.
	var refStdInfos [2]StdVideoEncodeH265ReferenceInfo
	var refDpbInfos [2]VideoEncodeH265DpbSlotInfo
	var picResources [2]VideoPictureResourceInfo
	var beginSlots [2]VideoReferenceSlotInfo
	nBegin := 0

	addBeginSlot := func(slotIndex int32, view ImageView, picType uint32, refPoc int32) *VideoReferenceSlotInfo {
		refStdInfos[nBegin] = StdVideoEncodeH265ReferenceInfo{
			PicType:        picType,
			PicOrderCntVal: refPoc,
		}
		refDpbInfos[nBegin] = VideoEncodeH265DpbSlotInfo{
			SType:             StructureTypeVideoEncodeH265DpbSlotInfo,
			PStdReferenceInfo: &refStdInfos[nBegin],
		}
		picResources[nBegin] = VideoPictureResourceInfo{
			SType:            StructureTypeVideoPictureResourceInfo,
			CodedExtent:      Extent2D{Width: s.width, Height: s.height},
			ImageViewBinding: view,
		}
		beginSlots[nBegin] = VideoReferenceSlotInfo{
			SType:            StructureTypeVideoReferenceSlotInfo,
			PNext:            unsafe.Pointer(&refDpbInfos[nBegin]),
			SlotIndex:        slotIndex,
			PPictureResource: &picResources[nBegin],
		}
		nBegin++
		return &beginSlots[nBegin-1]
	}

	picType := StdVideoH265PictureTypeIdr
	if !idr {
		picType = StdVideoH265PictureTypeP
	}
	setupBegin := addBeginSlot(-1, s.slotViews[setupSlot], picType, poc)
	var prevRef *VideoReferenceSlotInfo
	if !idr && s.lastSlot >= 0 {
		prevRef = addBeginSlot(s.lastSlot, s.slotViews[s.lastSlot], s.lastPicType, s.lastPoc)
	}

	beginInfo := VideoBeginCodingInfo{
		SType:                  StructureTypeVideoBeginCodingInfo,
		PNext:                  unsafe.Pointer(&rateControl),
		VideoSession:           s.session,
		VideoSessionParameters: s.params,
		ReferenceSlotCount:     uint32(nBegin),
		PReferenceSlots:        &beginSlots[0],
	}
	vk.CmdBeginVideoCoding(cb, &beginInfo)

	if !s.initialized {
		vk.CmdControlVideoCoding(cb, &VideoCodingControlInfo{
			SType: StructureTypeVideoCodingControlInfo,
			PNext: unsafe.Pointer(&rateControl),
			Flags: VideoCodingControlReset | VideoCodingControlEncodeRateControl,
		})
		s.initialized = true
	}

	// Std picture info and slice segment header for one full-frame slice.
	sliceFlags := H265EncSliceFirstSliceSegmentInPicFlag
	sliceType := StdVideoH265SliceTypeI
	if !idr {
		sliceType = StdVideoH265SliceTypeP
	}
	sliceHdr := StdVideoEncodeH265SliceSegmentHeader{
		Flags:           sliceFlags,
		SliceType:       sliceType,
		MaxNumMergeCand: 5,
	}
	naluSlice := VideoEncodeH265NaluSliceSegmentInfo{
		SType:                  StructureTypeVideoEncodeH265NaluSliceSegmentInfo,
		ConstantQp:             encodeConstantQp,
		PStdSliceSegmentHeader: &sliceHdr,
	}

	var refLists StdVideoEncodeH265ReferenceListsInfo
	for i := range refLists.RefPicList0 {
		refLists.RefPicList0[i] = h265NoReferencePicture
		refLists.RefPicList1[i] = h265NoReferencePicture
	}
	var strps StdVideoH265ShortTermRefPicSet

	stdPic := StdVideoEncodeH265PictureInfo{
		Flags:          H265EncPicIsReference | H265EncPicOutputFlag,
		PicType:        picType,
		PicOrderCntVal: poc,
		PRefLists:      &refLists,
	}
	if idr {
		stdPic.Flags |= H265EncPicIrapPicFlag
	} else {
		refLists.RefPicList0[0] = uint8(s.lastSlot)
		strps.NumNegativePics = 1
		strps.UsedByCurrPicS0Flag = 1
		// DeltaPocS0Minus1[0] = 0: the reference is the previous picture.
		stdPic.PShortTermRefPicSet = &strps
	}

	picInfo := VideoEncodeH265PictureInfo{
		SType:                      StructureTypeVideoEncodeH265PictureInfo,
		NaluSliceSegmentEntryCount: 1,
		PNaluSliceSegmentEntries:   &naluSlice,
		PStdPictureInfo:            &stdPic,
	}

	// The activation target carries its real slot index in the encode
	// command; the begin-coding entry keeps -1 until the slot is live.
	setupStdRef := StdVideoEncodeH265ReferenceInfo{
		PicType:        picType,
		PicOrderCntVal: poc,
	}
	setupDpbInfo := VideoEncodeH265DpbSlotInfo{
		SType:             StructureTypeVideoEncodeH265DpbSlotInfo,
		PStdReferenceInfo: &setupStdRef,
	}
	setupSlotInfo := VideoReferenceSlotInfo{
		SType:            StructureTypeVideoReferenceSlotInfo,
		PNext:            unsafe.Pointer(&setupDpbInfo),
		SlotIndex:        setupSlot,
		PPictureResource: setupBegin.PPictureResource,
	}

	encodeInfo := VideoEncodeInfo{
		SType:           StructureTypeVideoEncodeInfo,
		PNext:           unsafe.Pointer(&picInfo),
		DstBuffer:       dst,
		DstBufferOffset: 0,
		DstBufferRange:  dstRange,
		SrcPictureResource: VideoPictureResourceInfo{
			SType:            StructureTypeVideoPictureResourceInfo,
			CodedExtent:      Extent2D{Width: s.width, Height: s.height},
			ImageViewBinding: src.View,
		},
		PSetupReferenceSlot: &setupSlotInfo,
	}
	if prevRef != nil {
		encodeInfo.ReferenceSlotCount = 1
		encodeInfo.PReferenceSlots = prevRef
	}

	vk.CmdBeginQuery(cb, s.queryPool, querySlot)
	vk.CmdEncodeVideo(cb, &encodeInfo)
	vk.CmdEndQuery(cb, s.queryPool, querySlot)
	vk.CmdEndVideoCoding(cb)

	s.lastSlot = setupSlot
	s.lastPoc = poc
	s.lastPicType = picType
	s.frameIndex++
	keepAliveAll(&refStdInfos, &refDpbInfos, &picResources, &beginSlots,
		&sliceHdr, &refLists, &strps, &stdPic, &rateControl, &setupStdRef, &setupDpbInfo, &setupSlotInfo)
}

// FetchEncodedSize blocks until the slot's feedback query is available and
// returns the offset and byte count the encoder wrote into the bitstream
// buffer.
func (s *EncodeSession) FetchEncodedSize(querySlot uint32) (offset, size uint32, err error) {
	var results [2]uint32
	res := s.ctx.vk.GetQueryPoolResults(s.queryPool, querySlot, 1,
		unsafe.Sizeof(results), unsafe.Pointer(&results[0]), DeviceSize(unsafe.Sizeof(results)),
		QueryResultWaitBit)
	if res != Success {
		return 0, 0, vkErr("vkGetQueryPoolResults", res)
	}
	return results[0], results[1], nil
}

// Destroy releases every encode-side resource.
func (s *EncodeSession) Destroy() {
	vk := s.ctx.vk
	vk.DestroyQueryPool(s.queryPool)
	s.queryPool = 0
	for _, v := range s.slotViews {
		vk.DestroyImageView(v)
	}
	s.slotViews = [dpbSlotCount]ImageView{}
	s.dpbImage.destroy(s.ctx)
	s.dpbImage = nil
	vk.DestroyVideoSessionParameters(s.params)
	s.params = 0
	vk.DestroyVideoSession(s.session)
	s.session = 0
	for _, m := range s.memory {
		vk.FreeMemory(m)
	}
	s.memory = nil
}

// splitAnnexB slices a buffer of start-code-delimited NAL units, as used
// both for the encoded parameter-set blob and for produced access units.
func splitAnnexB(b []byte) [][]byte {
	var nals [][]byte
	start := -1
	i := 0
	for i+2 < len(b) {
		if b[i] == 0 && b[i+1] == 0 && (b[i+2] == 1 || (i+3 < len(b) && b[i+2] == 0 && b[i+3] == 1)) {
			if start >= 0 {
				end := i
				for end > start && b[end-1] == 0 {
					// trailing zeros belong to the next start code
					end--
				}
				nals = append(nals, b[start:end])
			}
			if b[i+2] == 1 {
				i += 3
			} else {
				i += 4
			}
			start = i
			continue
		}
		i++
	}
	if start >= 0 && start < len(b) {
		nals = append(nals, b[start:])
	}
	return nals
}

// hevcKeyframe reports whether an Annex-B access unit contains an IRAP
// picture, used to flag container samples as sync points.
func hevcKeyframe(au []byte) bool {
	for _, nal := range splitAnnexB(au) {
		if len(nal) == 0 {
			continue
		}
		switch nal[0] >> 1 & 0x3F {
		case HevcNalIdrWRadl, HevcNalIdrNLp, HevcNalCra:
			return true
		}
	}
	return false
}
