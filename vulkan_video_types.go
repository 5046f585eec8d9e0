package vkvideo

import "unsafe"

// Mirrors of the VK_KHR_video_* structures, following vulkan_core.h field
// order. Codec-specific Std structures live in videostd_h264.go and
// videostd_h265.go.

// Structure types contributed by the video extensions.
const (
	StructureTypeVideoProfileInfo                 StructureType = 1000023000
	StructureTypeVideoCapabilities                StructureType = 1000023001
	StructureTypeVideoPictureResourceInfo         StructureType = 1000023002
	StructureTypeVideoSessionMemoryRequirements   StructureType = 1000023003
	StructureTypeBindVideoSessionMemoryInfo       StructureType = 1000023004
	StructureTypeVideoSessionCreateInfo           StructureType = 1000023005
	StructureTypeVideoSessionParametersCreateInfo StructureType = 1000023006
	StructureTypeVideoSessionParametersUpdateInfo StructureType = 1000023007
	StructureTypeVideoBeginCodingInfo             StructureType = 1000023008
	StructureTypeVideoEndCodingInfo               StructureType = 1000023009
	StructureTypeVideoCodingControlInfo           StructureType = 1000023010
	StructureTypeVideoReferenceSlotInfo           StructureType = 1000023011
	StructureTypeQueueFamilyVideoProperties       StructureType = 1000023012
	StructureTypeVideoProfileListInfo             StructureType = 1000023013

	StructureTypeVideoDecodeInfo StructureType = 1000024000

	StructureTypeVideoEncodeH265SessionParametersCreateInfo   StructureType = 1000039001
	StructureTypeVideoEncodeH265SessionParametersAddInfo      StructureType = 1000039002
	StructureTypeVideoEncodeH265PictureInfo                   StructureType = 1000039003
	StructureTypeVideoEncodeH265DpbSlotInfo                   StructureType = 1000039004
	StructureTypeVideoEncodeH265NaluSliceSegmentInfo          StructureType = 1000039005
	StructureTypeVideoEncodeH265ProfileInfo                   StructureType = 1000039007
	StructureTypeVideoEncodeH265RateControlInfo               StructureType = 1000039009
	StructureTypeVideoEncodeH265SessionParametersGetInfo      StructureType = 1000039012
	StructureTypeVideoEncodeH265SessionParametersFeedbackInfo StructureType = 1000039013

	StructureTypeVideoDecodeH264PictureInfo                 StructureType = 1000040001
	StructureTypeVideoDecodeH264ProfileInfo                 StructureType = 1000040003
	StructureTypeVideoDecodeH264SessionParametersCreateInfo StructureType = 1000040004
	StructureTypeVideoDecodeH264SessionParametersAddInfo    StructureType = 1000040005
	StructureTypeVideoDecodeH264DpbSlotInfo                 StructureType = 1000040006

	StructureTypeVideoEncodeInfo                          StructureType = 1000299000
	StructureTypeVideoEncodeRateControlInfo               StructureType = 1000299001
	StructureTypeVideoEncodeRateControlLayerInfo          StructureType = 1000299002
	StructureTypeVideoEncodeSessionParametersGetInfo      StructureType = 1000299007
	StructureTypeVideoEncodeSessionParametersFeedbackInfo StructureType = 1000299008
	StructureTypeQueryPoolVideoEncodeFeedbackCreateInfo   StructureType = 1000299009
)

// Video codec operations.
const (
	VideoCodecOperationNone       Flags = 0
	VideoCodecOperationDecodeH264 Flags = 0x00000001
	VideoCodecOperationDecodeH265 Flags = 0x00000002
	VideoCodecOperationEncodeH264 Flags = 0x00010000
	VideoCodecOperationEncodeH265 Flags = 0x00020000
)

const (
	VideoChromaSubsampling420Bit Flags = 0x00000002
	VideoComponentBitDepth8Bit   Flags = 0x00000001
)

// H.264 decode picture layouts.
const (
	VideoDecodeH264PictureLayoutProgressive Flags = 0
)

// Video coding control flags.
const (
	VideoCodingControlReset             Flags = 0x00000001
	VideoCodingControlEncodeRateControl Flags = 0x00000002
)

// Rate control modes.
const (
	VideoEncodeRateControlModeDefault  Flags = 0
	VideoEncodeRateControlModeDisabled Flags = 0x00000001
	VideoEncodeRateControlModeCbr      Flags = 0x00000002
	VideoEncodeRateControlModeVbr      Flags = 0x00000004
)

// Encode feedback query flags.
const (
	VideoEncodeFeedbackBitstreamBufferOffsetBit Flags = 0x00000001
	VideoEncodeFeedbackBitstreamBytesWrittenBit Flags = 0x00000002
)

// Extension names probed and enabled on the logical device.
const (
	ExtVideoQueue       = "VK_KHR_video_queue"
	ExtVideoDecodeQueue = "VK_KHR_video_decode_queue"
	ExtVideoDecodeH264  = "VK_KHR_video_decode_h264"
	ExtVideoEncodeQueue = "VK_KHR_video_encode_queue"
	ExtVideoEncodeH265  = "VK_KHR_video_encode_h265"
	ExtSynchronization2 = "VK_KHR_synchronization2"
	ExtSamplerYcbcrConv = "VK_KHR_sampler_ycbcr_conversion"
)

type VideoProfileInfo struct {
	SType               StructureType
	PNext               unsafe.Pointer
	VideoCodecOperation Flags
	ChromaSubsampling   Flags
	LumaBitDepth        Flags
	ChromaBitDepth      Flags
}

type VideoProfileListInfo struct {
	SType        StructureType
	PNext        unsafe.Pointer
	ProfileCount uint32
	PProfiles    *VideoProfileInfo
}

type VideoDecodeH264ProfileInfo struct {
	SType         StructureType
	PNext         unsafe.Pointer
	StdProfileIdc uint32
	PictureLayout Flags
}

type VideoEncodeH265ProfileInfo struct {
	SType         StructureType
	PNext         unsafe.Pointer
	StdProfileIdc uint32
}

type QueueFamilyVideoProperties struct {
	SType                StructureType
	PNext                unsafe.Pointer
	VideoCodecOperations Flags
}

type VideoSessionCreateInfo struct {
	SType                      StructureType
	PNext                      unsafe.Pointer
	QueueFamilyIndex           uint32
	Flags                      Flags
	PVideoProfile              *VideoProfileInfo
	PictureFormat              Format
	MaxCodedExtent             Extent2D
	ReferencePictureFormat     Format
	MaxDpbSlots                uint32
	MaxActiveReferencePictures uint32
	PStdHeaderVersion          *ExtensionProperties
}

type VideoSessionMemoryRequirements struct {
	SType              StructureType
	PNext              unsafe.Pointer
	MemoryBindIndex    uint32
	MemoryRequirements MemoryRequirements
}

type BindVideoSessionMemoryInfo struct {
	SType           StructureType
	PNext           unsafe.Pointer
	MemoryBindIndex uint32
	Memory          DeviceMemory
	MemoryOffset    DeviceSize
	MemorySize      DeviceSize
}

type VideoSessionParametersCreateInfo struct {
	SType                          StructureType
	PNext                          unsafe.Pointer
	Flags                          Flags
	VideoSessionParametersTemplate VideoSessionParameters
	VideoSession                   VideoSession
}

type VideoDecodeH264SessionParametersAddInfo struct {
	SType       StructureType
	PNext       unsafe.Pointer
	StdSPSCount uint32
	PStdSPSs    *StdVideoH264SequenceParameterSet
	StdPPSCount uint32
	PStdPPSs    *StdVideoH264PictureParameterSet
}

type VideoDecodeH264SessionParametersCreateInfo struct {
	SType              StructureType
	PNext              unsafe.Pointer
	MaxStdSPSCount     uint32
	MaxStdPPSCount     uint32
	PParametersAddInfo *VideoDecodeH264SessionParametersAddInfo
}

type VideoEncodeH265SessionParametersAddInfo struct {
	SType       StructureType
	PNext       unsafe.Pointer
	StdVPSCount uint32
	PStdVPSs    *StdVideoH265VideoParameterSet
	StdSPSCount uint32
	PStdSPSs    *StdVideoH265SequenceParameterSet
	StdPPSCount uint32
	PStdPPSs    *StdVideoH265PictureParameterSet
}

type VideoEncodeH265SessionParametersCreateInfo struct {
	SType              StructureType
	PNext              unsafe.Pointer
	MaxStdVPSCount     uint32
	MaxStdSPSCount     uint32
	MaxStdPPSCount     uint32
	PParametersAddInfo *VideoEncodeH265SessionParametersAddInfo
}

type VideoEncodeSessionParametersGetInfo struct {
	SType                  StructureType
	PNext                  unsafe.Pointer
	VideoSessionParameters VideoSessionParameters
}

type VideoEncodeH265SessionParametersGetInfo struct {
	SType       StructureType
	PNext       unsafe.Pointer
	WriteStdVPS uint32
	WriteStdSPS uint32
	WriteStdPPS uint32
	StdVPSId    uint32
	StdSPSId    uint32
	StdPPSId    uint32
}

type VideoEncodeSessionParametersFeedbackInfo struct {
	SType        StructureType
	PNext        unsafe.Pointer
	HasOverrides uint32
}

type VideoPictureResourceInfo struct {
	SType            StructureType
	PNext            unsafe.Pointer
	CodedOffset      Offset2D
	CodedExtent      Extent2D
	BaseArrayLayer   uint32
	ImageViewBinding ImageView
}

type VideoReferenceSlotInfo struct {
	SType            StructureType
	PNext            unsafe.Pointer
	SlotIndex        int32
	PPictureResource *VideoPictureResourceInfo
}

type VideoBeginCodingInfo struct {
	SType                  StructureType
	PNext                  unsafe.Pointer
	Flags                  Flags
	VideoSession           VideoSession
	VideoSessionParameters VideoSessionParameters
	ReferenceSlotCount     uint32
	PReferenceSlots        *VideoReferenceSlotInfo
}

type VideoEndCodingInfo struct {
	SType StructureType
	PNext unsafe.Pointer
	Flags Flags
}

type VideoCodingControlInfo struct {
	SType StructureType
	PNext unsafe.Pointer
	Flags Flags
}

type VideoDecodeInfo struct {
	SType               StructureType
	PNext               unsafe.Pointer
	Flags               Flags
	SrcBuffer           Buffer
	SrcBufferOffset     DeviceSize
	SrcBufferRange      DeviceSize
	DstPictureResource  VideoPictureResourceInfo
	PSetupReferenceSlot *VideoReferenceSlotInfo
	ReferenceSlotCount  uint32
	PReferenceSlots     *VideoReferenceSlotInfo
}

type VideoDecodeH264PictureInfo struct {
	SType           StructureType
	PNext           unsafe.Pointer
	PStdPictureInfo *StdVideoDecodeH264PictureInfo
	SliceCount      uint32
	PSliceOffsets   *uint32
}

type VideoDecodeH264DpbSlotInfo struct {
	SType             StructureType
	PNext             unsafe.Pointer
	PStdReferenceInfo *StdVideoDecodeH264ReferenceInfo
}

type VideoEncodeInfo struct {
	SType                           StructureType
	PNext                           unsafe.Pointer
	Flags                           Flags
	DstBuffer                       Buffer
	DstBufferOffset                 DeviceSize
	DstBufferRange                  DeviceSize
	SrcPictureResource              VideoPictureResourceInfo
	PSetupReferenceSlot             *VideoReferenceSlotInfo
	ReferenceSlotCount              uint32
	PReferenceSlots                 *VideoReferenceSlotInfo
	PrecedingExternallyEncodedBytes uint32
}

type VideoEncodeH265PictureInfo struct {
	SType                      StructureType
	PNext                      unsafe.Pointer
	NaluSliceSegmentEntryCount uint32
	PNaluSliceSegmentEntries   *VideoEncodeH265NaluSliceSegmentInfo
	PStdPictureInfo            *StdVideoEncodeH265PictureInfo
}

type VideoEncodeH265NaluSliceSegmentInfo struct {
	SType                  StructureType
	PNext                  unsafe.Pointer
	ConstantQp             int32
	PStdSliceSegmentHeader *StdVideoEncodeH265SliceSegmentHeader
}

type VideoEncodeH265DpbSlotInfo struct {
	SType             StructureType
	PNext             unsafe.Pointer
	PStdReferenceInfo *StdVideoEncodeH265ReferenceInfo
}

type VideoEncodeRateControlLayerInfo struct {
	SType                StructureType
	PNext                unsafe.Pointer
	AverageBitrate       uint64
	MaxBitrate           uint64
	FrameRateNumerator   uint32
	FrameRateDenominator uint32
}

type VideoEncodeRateControlInfo struct {
	SType                        StructureType
	PNext                        unsafe.Pointer
	Flags                        Flags
	RateControlMode              Flags
	LayerCount                   uint32
	PLayers                      *VideoEncodeRateControlLayerInfo
	VirtualBufferSizeInMs        uint32
	InitialVirtualBufferSizeInMs uint32
}

type QueryPoolVideoEncodeFeedbackCreateInfo struct {
	SType               StructureType
	PNext               unsafe.Pointer
	EncodeFeedbackFlags Flags
}
