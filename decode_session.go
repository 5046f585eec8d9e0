package vkvideo

import (
	"unsafe"

	"github.com/cnotch/ipchub/av/codec/h264"
)

// Fixed pipeline geometry: the decoded-picture buffer has eight slots and
// an equal active-reference maximum on both sessions.
const dpbSlotCount = 8

const (
	stdHeaderH264Decode = "VK_STD_vulkan_video_codec_h264_decode"
	stdHeaderH265Encode = "VK_STD_vulkan_video_codec_h265_encode"
)

// makeVideoStdVersion packs a std-header version the way
// VK_MAKE_VIDEO_STD_VERSION does.
func makeVideoStdVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// bindVideoSessionMemory queries a session's memory bindings, allocates
// device-local memory for each, and binds them all in a single call.
func (c *VideoContext) bindVideoSessionMemory(session VideoSession) ([]DeviceMemory, error) {
	var count uint32
	if res := c.vk.GetVideoSessionMemoryRequirements(session, &count, nil); res != Success {
		return nil, vkErr("vkGetVideoSessionMemoryRequirementsKHR", res)
	}
	if count == 0 {
		return nil, nil
	}
	reqs := make([]VideoSessionMemoryRequirements, count)
	for i := range reqs {
		reqs[i].SType = StructureTypeVideoSessionMemoryRequirements
	}
	if res := c.vk.GetVideoSessionMemoryRequirements(session, &count, &reqs[0]); res != Success {
		return nil, vkErr("vkGetVideoSessionMemoryRequirementsKHR", res)
	}

	memories := make([]DeviceMemory, 0, count)
	binds := make([]BindVideoSessionMemoryInfo, 0, count)
	fail := func(err error) ([]DeviceMemory, error) {
		for _, m := range memories {
			c.vk.FreeMemory(m)
		}
		return nil, err
	}
	for i := range reqs[:count] {
		memType, err := findMemoryType(&c.memProps, reqs[i].MemoryRequirements.MemoryTypeBits, MemoryPropertyDeviceLocalBit)
		if err != nil {
			// Session bindings may allow host memory types only.
			memType, err = findMemoryType(&c.memProps, reqs[i].MemoryRequirements.MemoryTypeBits, 0)
			if err != nil {
				return fail(err)
			}
		}
		ai := MemoryAllocateInfo{
			SType:           StructureTypeMemoryAllocateInfo,
			AllocationSize:  reqs[i].MemoryRequirements.Size,
			MemoryTypeIndex: memType,
		}
		var mem DeviceMemory
		if res := c.vk.AllocateMemory(&ai, &mem); res != Success {
			return fail(vkErr("vkAllocateMemory", res))
		}
		memories = append(memories, mem)
		binds = append(binds, BindVideoSessionMemoryInfo{
			SType:           StructureTypeBindVideoSessionMemoryInfo,
			MemoryBindIndex: reqs[i].MemoryBindIndex,
			Memory:          mem,
			MemorySize:      reqs[i].MemoryRequirements.Size,
		})
	}
	if res := c.vk.BindVideoSessionMemory(session, uint32(len(binds)), &binds[0]); res != Success {
		return fail(vkErr("vkBindVideoSessionMemoryKHR", res))
	}
	return memories, nil
}

// DecodeSession wraps an H.264 decode video session, its parameter object
// built from the container's SPS/PPS, and the decode-side DPB image array.
type DecodeSession struct {
	ctx *VideoContext

	profile     VideoProfileInfo
	h264Profile VideoDecodeH264ProfileInfo

	session VideoSession
	params  VideoSessionParameters
	memory  []DeviceMemory

	dpbImage  *deviceImage
	slotViews [dpbSlotCount]ImageView

	sps    *h264.RawSPS
	pps    *rawPPS
	stdSPS StdVideoH264SequenceParameterSet
	stdPPS StdVideoH264PictureParameterSet

	dpb *dpbManager

	width, height uint32
	initialized   bool // first submission still has to reset the session
	dpbTouched    bool
}

// newDecodeProfile builds the H.264 High / progressive / 4:2:0 / 8-bit
// decode profile chain. The chained struct is stored alongside the profile
// so pointers stay valid for the session's lifetime.
func newDecodeProfile() (VideoProfileInfo, VideoDecodeH264ProfileInfo) {
	h264Profile := VideoDecodeH264ProfileInfo{
		SType:         StructureTypeVideoDecodeH264ProfileInfo,
		StdProfileIdc: StdVideoH264ProfileIdcHigh,
		PictureLayout: VideoDecodeH264PictureLayoutProgressive,
	}
	profile := VideoProfileInfo{
		SType:               StructureTypeVideoProfileInfo,
		VideoCodecOperation: VideoCodecOperationDecodeH264,
		ChromaSubsampling:   VideoChromaSubsampling420Bit,
		LumaBitDepth:        VideoComponentBitDepth8Bit,
		ChromaBitDepth:      VideoComponentBitDepth8Bit,
	}
	return profile, h264Profile
}

// NewDecodeSession parses the track's avcC parameter sets and builds a
// fully memory-bound decode session for the stream geometry.
func NewDecodeSession(ctx *VideoContext, cfg *avcConfig, width, height uint32) (*DecodeSession, error) {
	var sps h264.RawSPS
	if err := sps.Decode(cfg.SPS[0]); err != nil {
		return nil, parseErr("sps decode", err)
	}
	if sps.FrameMbsOnlyFlag == 0 {
		return nil, badInput("interlaced content is not supported")
	}
	if sps.SeqScalingMatrixPresentFlag == 1 {
		return nil, badInput("SPS scaling matrices are not supported")
	}
	if sps.PicOrderCntType == 1 {
		return nil, badInput("pic_order_cnt_type 1 is not supported")
	}
	if sps.ChromaFormatIdc != 1 || sps.BitDepthLumaMinus8 != 0 || sps.BitDepthChromaMinus8 != 0 {
		return nil, badInput("only 8-bit 4:2:0 streams are supported")
	}
	pps, err := parsePPS(cfg.PPS[0])
	if err != nil {
		return nil, err
	}

	s := &DecodeSession{
		ctx:    ctx,
		sps:    &sps,
		pps:    pps,
		width:  width,
		height: height,
	}
	s.profile, s.h264Profile = newDecodeProfile()
	s.profile.PNext = unsafe.Pointer(&s.h264Profile)
	s.stdSPS = buildStdSPS(&sps)
	s.stdPPS = buildStdPPS(pps)
	s.dpb = newDpbManager(dpbSlotCount, sps.MaxNumRefFrames,
		sps.Log2MaxFrameNumMinus4, sps.Log2MaxPicOrderCntLsbMinus4, sps.PicOrderCntType)

	if err := s.createSession(); err != nil {
		return nil, err
	}
	if err := s.createParameters(); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.createDpbImages(); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

// ProfileList returns a single-profile list for decode-only resources.
func (s *DecodeSession) ProfileList() *VideoProfileListInfo {
	return &VideoProfileListInfo{
		SType:        StructureTypeVideoProfileListInfo,
		ProfileCount: 1,
		PProfiles:    &s.profile,
	}
}

func (s *DecodeSession) createSession() error {
	stdVersion := ExtensionProperties{SpecVersion: makeVideoStdVersion(1, 0, 0)}
	copy(stdVersion.ExtensionName[:], stdHeaderH264Decode)

	ci := VideoSessionCreateInfo{
		SType:                      StructureTypeVideoSessionCreateInfo,
		QueueFamilyIndex:           s.ctx.decodeFamily,
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

func (s *DecodeSession) createParameters() error {
	addInfo := VideoDecodeH264SessionParametersAddInfo{
		SType:       StructureTypeVideoDecodeH264SessionParametersAddInfo,
		StdSPSCount: 1,
		PStdSPSs:    &s.stdSPS,
		StdPPSCount: 1,
		PStdPPSs:    &s.stdPPS,
	}
	h264Create := VideoDecodeH264SessionParametersCreateInfo{
		SType:              StructureTypeVideoDecodeH264SessionParametersCreateInfo,
		MaxStdSPSCount:     1,
		MaxStdPPSCount:     1,
		PParametersAddInfo: &addInfo,
	}
	ci := VideoSessionParametersCreateInfo{
		SType:        StructureTypeVideoSessionParametersCreateInfo,
		PNext:        unsafe.Pointer(&h264Create),
		VideoSession: s.session,
	}
	if res := s.ctx.vk.CreateVideoSessionParameters(&ci, &s.params); res != Success {
		return vkErr("vkCreateVideoSessionParametersKHR", res)
	}
	return nil
}

// ReplaceParameters atomically swaps in new in-band SPS/PPS between frames.
// The caller must have drained the decode queue first.
func (s *DecodeSession) ReplaceParameters(spsNal, ppsNal []byte) error {
	if spsNal != nil {
		var sps h264.RawSPS
		if err := sps.Decode(spsNal); err != nil {
			return parseErr("sps decode", err)
		}
		s.sps = &sps
		s.stdSPS = buildStdSPS(&sps)
	}
	if ppsNal != nil {
		pps, err := parsePPS(ppsNal)
		if err != nil {
			return err
		}
		s.pps = pps
		s.stdPPS = buildStdPPS(pps)
	}
	old := s.params
	s.params = 0
	if err := s.createParameters(); err != nil {
		s.params = old
		return err
	}
	s.ctx.vk.DestroyVideoSessionParameters(old)
	return nil
}

func (s *DecodeSession) createDpbImages() error {
	img, err := s.ctx.createImage(s.width, s.height, FormatG8B8R82Plane420Unorm,
		ImageUsageVideoDecodeDpbBit, dpbSlotCount, s.ProfileList())
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

// decodedPicture describes the destination of one decode command.
type decodedPicture struct {
	Image Image
	View  ImageView
}

// Record writes the decode of one staged access unit into cb. The staged
// bitstream holds Annex-B slices at sliceOffsets within [0, bitstreamSize).
func (s *DecodeSession) Record(cb CommandBuffer, src Buffer, bitstreamSize DeviceSize, sliceOffsets []uint32, hdr *sliceHeader, dst decodedPicture) {
	vk := s.ctx.vk
	poc := s.dpb.PicOrderCnt(hdr)
	setupSlot, refs := s.dpb.BeginPicture(hdr)

	// First touch of the DPB array: take every layer to the DPB layout.
	if !s.dpbTouched {
		s.ctx.transitionImageLayout(cb, s.dpbImage.image,
			ImageLayoutUndefined, ImageLayoutVideoDecodeDpb, 0, dpbSlotCount)
		s.dpbTouched = true
	}
	// The destination picture is overwritten wholesale each frame.
	s.ctx.transitionImageLayout(cb, dst.Image,
		ImageLayoutUndefined, ImageLayoutVideoDecodeDst, 0, 1)

	// Reference slot descriptors: active references plus the setup slot,
	// which begin-coding wants listed with a negative index.
	stdRefs := make([]StdVideoDecodeH264ReferenceInfo, len(refs))
	dpbSlotInfos := make([]VideoDecodeH264DpbSlotInfo, len(refs))
	picResources := make([]VideoPictureResourceInfo, len(refs)+1)
	beginSlots := make([]VideoReferenceSlotInfo, len(refs)+1)
	for i, ref := range refs {
		stdRefs[i] = StdVideoDecodeH264ReferenceInfo{
			FrameNum:    uint16(ref.FrameNum),
			PicOrderCnt: [2]int32{ref.PicOrderCnt, ref.PicOrderCnt},
		}
		if ref.LongTerm {
			stdRefs[i].Flags = H264RefUsedForLongTermReference
		}
		dpbSlotInfos[i] = VideoDecodeH264DpbSlotInfo{
			SType:             StructureTypeVideoDecodeH264DpbSlotInfo,
			PStdReferenceInfo: &stdRefs[i],
		}
		picResources[i] = VideoPictureResourceInfo{
			SType:            StructureTypeVideoPictureResourceInfo,
			CodedExtent:      Extent2D{Width: s.width, Height: s.height},
			ImageViewBinding: s.slotViews[ref.Slot],
		}
		beginSlots[i] = VideoReferenceSlotInfo{
			SType:            StructureTypeVideoReferenceSlotInfo,
			PNext:            unsafe.Pointer(&dpbSlotInfos[i]),
			SlotIndex:        ref.Slot,
			PPictureResource: &picResources[i],
		}
	}
	setupResource := &picResources[len(refs)]
	*setupResource = VideoPictureResourceInfo{
		SType:            StructureTypeVideoPictureResourceInfo,
		CodedExtent:      Extent2D{Width: s.width, Height: s.height},
		ImageViewBinding: s.slotViews[setupSlot],
	}
	beginSlots[len(refs)] = VideoReferenceSlotInfo{
		SType:            StructureTypeVideoReferenceSlotInfo,
		SlotIndex:        -1, // slot to be activated by this picture
		PPictureResource: setupResource,
	}

	beginInfo := VideoBeginCodingInfo{
		SType:                  StructureTypeVideoBeginCodingInfo,
		VideoSession:           s.session,
		VideoSessionParameters: s.params,
		ReferenceSlotCount:     uint32(len(beginSlots)),
		PReferenceSlots:        &beginSlots[0],
	}
	vk.CmdBeginVideoCoding(cb, &beginInfo)

	if !s.initialized {
		vk.CmdControlVideoCoding(cb, &VideoCodingControlInfo{
			SType: StructureTypeVideoCodingControlInfo,
			Flags: VideoCodingControlReset,
		})
		s.initialized = true
	}

	stdPic := StdVideoDecodeH264PictureInfo{
		SeqParameterSetId: s.sps.SeqParameterSetID,
		PicParameterSetId: s.pps.PicParameterSetID,
		FrameNum:          uint16(hdr.FrameNum),
		IdrPicId:          uint16(hdr.IdrPicID),
		PicOrderCnt:       [2]int32{poc, poc},
	}
	if hdr.IsIntra() {
		stdPic.Flags |= H264PicIsIntra
	}
	if hdr.IsIDR() {
		stdPic.Flags |= H264PicIdrFlag
	}
	if hdr.IsReference() {
		stdPic.Flags |= H264PicIsReference
	}

	picInfo := VideoDecodeH264PictureInfo{
		SType:           StructureTypeVideoDecodeH264PictureInfo,
		PStdPictureInfo: &stdPic,
		SliceCount:      uint32(len(sliceOffsets)),
		PSliceOffsets:   &sliceOffsets[0],
	}

	// Setup reference slot: where this picture lands in the DPB.
	setupStdRef := StdVideoDecodeH264ReferenceInfo{
		FrameNum:    uint16(hdr.FrameNum),
		PicOrderCnt: [2]int32{poc, poc},
	}
	setupDpbInfo := VideoDecodeH264DpbSlotInfo{
		SType:             StructureTypeVideoDecodeH264DpbSlotInfo,
		PStdReferenceInfo: &setupStdRef,
	}
	setupSlotInfo := VideoReferenceSlotInfo{
		SType:            StructureTypeVideoReferenceSlotInfo,
		PNext:            unsafe.Pointer(&setupDpbInfo),
		SlotIndex:        setupSlot,
		PPictureResource: setupResource,
	}

	decodeInfo := VideoDecodeInfo{
		SType:           StructureTypeVideoDecodeInfo,
		PNext:           unsafe.Pointer(&picInfo),
		SrcBuffer:       src,
		SrcBufferOffset: 0,
		SrcBufferRange:  bitstreamSize,
		DstPictureResource: VideoPictureResourceInfo{
			SType:            StructureTypeVideoPictureResourceInfo,
			CodedExtent:      Extent2D{Width: s.width, Height: s.height},
			ImageViewBinding: dst.View,
		},
	}
	if hdr.IsReference() {
		decodeInfo.PSetupReferenceSlot = &setupSlotInfo
	}
	if len(refs) > 0 {
		decodeInfo.ReferenceSlotCount = uint32(len(refs))
		decodeInfo.PReferenceSlots = &beginSlots[0]
	}
	vk.CmdDecodeVideo(cb, &decodeInfo)
	vk.CmdEndVideoCoding(cb)

	s.dpb.EndPicture(hdr, setupSlot, poc)
	keepAliveAll(stdRefs, dpbSlotInfos, picResources, beginSlots, &stdPic, &setupStdRef, &setupDpbInfo, sliceOffsets)
}

// Destroy releases the session, its parameters, memory, and the DPB array.
func (s *DecodeSession) Destroy() {
	vk := s.ctx.vk
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
