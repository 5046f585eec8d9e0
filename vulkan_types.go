package vkvideo

import "unsafe"

// Layout-exact mirrors of the Vulkan structures this package touches,
// restricted to 64-bit platforms (the only ones with Vulkan Video drivers).
// Field order and widths follow vulkan_core.h; sizes are pinned by tests.

// Dispatchable and non-dispatchable handles. Both are 64-bit here.
type (
	Instance       uintptr
	PhysicalDevice uintptr
	Device         uintptr
	Queue          uintptr
	CommandBuffer  uintptr

	Buffer                 uint64
	DeviceMemory           uint64
	Image                  uint64
	ImageView              uint64
	CommandPool            uint64
	Fence                  uint64
	Semaphore              uint64
	QueryPool              uint64
	VideoSession           uint64
	VideoSessionParameters uint64
)

type (
	DeviceSize    = uint64
	StructureType = uint32
	Format        = uint32
	ImageLayout   = uint32
	Flags         = uint32
	Flags64       = uint64
)

// Result mirrors VkResult.
type Result int32

const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	EventSet                  Result = 3
	EventReset                Result = 4
	Incomplete                Result = 5
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorLayerNotPresent      Result = -6
	ErrorExtensionNotPresent  Result = -7
	ErrorFeatureNotPresent    Result = -8
	ErrorIncompatibleDriver   Result = -9
)

func (r Result) String() string {
	switch r {
	case Success:
		return "VK_SUCCESS"
	case NotReady:
		return "VK_NOT_READY"
	case Timeout:
		return "VK_TIMEOUT"
	case Incomplete:
		return "VK_INCOMPLETE"
	case ErrorOutOfHostMemory:
		return "VK_ERROR_OUT_OF_HOST_MEMORY"
	case ErrorOutOfDeviceMemory:
		return "VK_ERROR_OUT_OF_DEVICE_MEMORY"
	case ErrorInitializationFailed:
		return "VK_ERROR_INITIALIZATION_FAILED"
	case ErrorDeviceLost:
		return "VK_ERROR_DEVICE_LOST"
	case ErrorLayerNotPresent:
		return "VK_ERROR_LAYER_NOT_PRESENT"
	case ErrorExtensionNotPresent:
		return "VK_ERROR_EXTENSION_NOT_PRESENT"
	case ErrorFeatureNotPresent:
		return "VK_ERROR_FEATURE_NOT_PRESENT"
	case ErrorIncompatibleDriver:
		return "VK_ERROR_INCOMPATIBLE_DRIVER"
	default:
		if r < 0 {
			return "VK_ERROR_UNKNOWN"
		}
		return "VK_RESULT_UNKNOWN"
	}
}

// Structure types.
const (
	StructureTypeApplicationInfo           StructureType = 0
	StructureTypeInstanceCreateInfo        StructureType = 1
	StructureTypeDeviceQueueCreateInfo     StructureType = 2
	StructureTypeDeviceCreateInfo          StructureType = 3
	StructureTypeSubmitInfo                StructureType = 4
	StructureTypeMemoryAllocateInfo        StructureType = 5
	StructureTypeFenceCreateInfo           StructureType = 8
	StructureTypeSemaphoreCreateInfo       StructureType = 9
	StructureTypeQueryPoolCreateInfo       StructureType = 11
	StructureTypeBufferCreateInfo          StructureType = 12
	StructureTypeImageCreateInfo           StructureType = 14
	StructureTypeImageViewCreateInfo       StructureType = 15
	StructureTypeCommandPoolCreateInfo     StructureType = 39
	StructureTypeCommandBufferAllocateInfo StructureType = 40
	StructureTypeCommandBufferBeginInfo    StructureType = 42

	StructureTypePhysicalDeviceProperties2 StructureType = 1000059001
	StructureTypeQueueFamilyProperties2    StructureType = 1000059005

	StructureTypeMemoryBarrier2                         StructureType = 1000314000
	StructureTypeBufferMemoryBarrier2                   StructureType = 1000314001
	StructureTypeImageMemoryBarrier2                    StructureType = 1000314002
	StructureTypeDependencyInfo                         StructureType = 1000314003
	StructureTypeSubmitInfo2                            StructureType = 1000314004
	StructureTypeSemaphoreSubmitInfo                    StructureType = 1000314005
	StructureTypeCommandBufferSubmitInfo                StructureType = 1000314006
	StructureTypePhysicalDeviceSynchronization2Features StructureType = 1000314007
)

// Queue capability bits.
const (
	QueueGraphicsBit    Flags = 0x00000001
	QueueComputeBit     Flags = 0x00000002
	QueueTransferBit    Flags = 0x00000004
	QueueVideoDecodeBit Flags = 0x00000020
	QueueVideoEncodeBit Flags = 0x00000040
)

// Physical device types.
const (
	PhysicalDeviceTypeIntegratedGPU uint32 = 1
	PhysicalDeviceTypeDiscreteGPU   uint32 = 2
)

// Memory property bits.
const (
	MemoryPropertyDeviceLocalBit  Flags = 0x00000001
	MemoryPropertyHostVisibleBit  Flags = 0x00000002
	MemoryPropertyHostCoherentBit Flags = 0x00000004
)

// Buffer usage bits.
const (
	BufferUsageVideoDecodeSrcBit Flags = 0x00002000
	BufferUsageVideoDecodeDstBit Flags = 0x00004000
	BufferUsageVideoEncodeDstBit Flags = 0x00008000
	BufferUsageVideoEncodeSrcBit Flags = 0x00010000
)

// Image usage bits.
const (
	ImageUsageVideoDecodeDstBit Flags = 0x00000400
	ImageUsageVideoDecodeSrcBit Flags = 0x00000800
	ImageUsageVideoDecodeDpbBit Flags = 0x00001000
	ImageUsageVideoEncodeDstBit Flags = 0x00002000
	ImageUsageVideoEncodeSrcBit Flags = 0x00004000
	ImageUsageVideoEncodeDpbBit Flags = 0x00008000
)

// Image layouts.
const (
	ImageLayoutUndefined ImageLayout = 0

	ImageLayoutVideoDecodeDst ImageLayout = 1000024000
	ImageLayoutVideoDecodeSrc ImageLayout = 1000024001
	ImageLayoutVideoDecodeDpb ImageLayout = 1000024002
	ImageLayoutVideoEncodeDst ImageLayout = 1000299000
	ImageLayoutVideoEncodeSrc ImageLayout = 1000299001
	ImageLayoutVideoEncodeDpb ImageLayout = 1000299002
)

// Synchronization2 pipeline stage and access bits (64-bit flags).
const (
	PipelineStage2None        Flags64 = 0
	PipelineStage2AllCommands Flags64 = 0x00010000
	PipelineStage2VideoDecode Flags64 = 0x04000000
	PipelineStage2VideoEncode Flags64 = 0x08000000

	Access2None             Flags64 = 0
	Access2VideoDecodeRead  Flags64 = 0x800000000
	Access2VideoDecodeWrite Flags64 = 0x1000000000
	Access2VideoEncodeRead  Flags64 = 0x2000000000
	Access2VideoEncodeWrite Flags64 = 0x4000000000
)

const (
	FormatG8B8R82Plane420Unorm Format = 1000156003

	ImageAspectColorBit Flags = 0x00000001

	ImageTilingOptimal   uint32 = 0
	ImageType2D          uint32 = 1
	ImageViewType2D      uint32 = 1
	ImageViewType2DArray uint32 = 5

	SharingModeExclusive uint32 = 0

	SampleCount1Bit Flags = 0x00000001

	CommandBufferLevelPrimary uint32 = 0

	CommandPoolCreateResetCommandBufferBit Flags = 0x00000002

	FenceCreateSignaledBit Flags = 0x00000001

	QueueFamilyIgnored uint32 = 0xFFFFFFFF

	WholeSize = ^DeviceSize(0)
)

// Query bits.
const (
	QueryTypeVideoEncodeFeedback uint32 = 1000299000

	QueryResultWaitBit Flags = 0x00000002
)

const (
	MaxMemoryTypes            = 32
	MaxMemoryHeaps            = 16
	MaxPhysicalDeviceNameSize = 256
	MaxExtensionNameSize      = 256
	UUIDSize                  = 16
)

type Extent2D struct {
	Width  uint32
	Height uint32
}

type Offset2D struct {
	X int32
	Y int32
}

type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

type ApplicationInfo struct {
	SType              StructureType
	PNext              unsafe.Pointer
	PApplicationName   *byte
	ApplicationVersion uint32
	PEngineName        *byte
	EngineVersion      uint32
	APIVersion         uint32
}

type InstanceCreateInfo struct {
	SType                   StructureType
	PNext                   unsafe.Pointer
	Flags                   Flags
	PApplicationInfo        *ApplicationInfo
	EnabledLayerCount       uint32
	PPEnabledLayerNames     **byte
	EnabledExtensionCount   uint32
	PPEnabledExtensionNames **byte
}

// PhysicalDeviceLimits carries the full Vulkan 1.0 limits block. The
// transcoder reads none of it, but vkGetPhysicalDeviceProperties writes the
// whole structure, so the layout must be complete.
type PhysicalDeviceLimits struct {
	MaxImageDimension1D                             uint32
	MaxImageDimension2D                             uint32
	MaxImageDimension3D                             uint32
	MaxImageDimensionCube                           uint32
	MaxImageArrayLayers                             uint32
	MaxTexelBufferElements                          uint32
	MaxUniformBufferRange                           uint32
	MaxStorageBufferRange                           uint32
	MaxPushConstantsSize                            uint32
	MaxMemoryAllocationCount                        uint32
	MaxSamplerAllocationCount                       uint32
	BufferImageGranularity                          DeviceSize
	SparseAddressSpaceSize                          DeviceSize
	MaxBoundDescriptorSets                          uint32
	MaxPerStageDescriptorSamplers                   uint32
	MaxPerStageDescriptorUniformBuffers             uint32
	MaxPerStageDescriptorStorageBuffers             uint32
	MaxPerStageDescriptorSampledImages              uint32
	MaxPerStageDescriptorStorageImages              uint32
	MaxPerStageDescriptorInputAttachments           uint32
	MaxPerStageResources                            uint32
	MaxDescriptorSetSamplers                        uint32
	MaxDescriptorSetUniformBuffers                  uint32
	MaxDescriptorSetUniformBuffersDynamic           uint32
	MaxDescriptorSetStorageBuffers                  uint32
	MaxDescriptorSetStorageBuffersDynamic           uint32
	MaxDescriptorSetSampledImages                   uint32
	MaxDescriptorSetStorageImages                   uint32
	MaxDescriptorSetInputAttachments                uint32
	MaxVertexInputAttributes                        uint32
	MaxVertexInputBindings                          uint32
	MaxVertexInputAttributeOffset                   uint32
	MaxVertexInputBindingStride                     uint32
	MaxVertexOutputComponents                       uint32
	MaxTessellationGenerationLevel                  uint32
	MaxTessellationPatchSize                        uint32
	MaxTessellationControlPerVertexInputComponents  uint32
	MaxTessellationControlPerVertexOutputComponents uint32
	MaxTessellationControlPerPatchOutputComponents  uint32
	MaxTessellationControlTotalOutputComponents     uint32
	MaxTessellationEvaluationInputComponents        uint32
	MaxTessellationEvaluationOutputComponents       uint32
	MaxGeometryShaderInvocations                    uint32
	MaxGeometryInputComponents                      uint32
	MaxGeometryOutputComponents                     uint32
	MaxGeometryOutputVertices                       uint32
	MaxGeometryTotalOutputComponents                uint32
	MaxFragmentInputComponents                      uint32
	MaxFragmentOutputAttachments                    uint32
	MaxFragmentDualSrcAttachments                   uint32
	MaxFragmentCombinedOutputResources              uint32
	MaxComputeSharedMemorySize                      uint32
	MaxComputeWorkGroupCount                        [3]uint32
	MaxComputeWorkGroupInvocations                  uint32
	MaxComputeWorkGroupSize                         [3]uint32
	SubPixelPrecisionBits                           uint32
	SubTexelPrecisionBits                           uint32
	MipmapPrecisionBits                             uint32
	MaxDrawIndexedIndexValue                        uint32
	MaxDrawIndirectCount                            uint32
	MaxSamplerLodBias                               float32
	MaxSamplerAnisotropy                            float32
	MaxViewports                                    uint32
	MaxViewportDimensions                           [2]uint32
	ViewportBoundsRange                             [2]float32
	ViewportSubPixelBits                            uint32
	MinMemoryMapAlignment                           uint64
	MinTexelBufferOffsetAlignment                   DeviceSize
	MinUniformBufferOffsetAlignment                 DeviceSize
	MinStorageBufferOffsetAlignment                 DeviceSize
	MinTexelOffset                                  int32
	MaxTexelOffset                                  uint32
	MinTexelGatherOffset                            int32
	MaxTexelGatherOffset                            uint32
	MinInterpolationOffset                          float32
	MaxInterpolationOffset                          float32
	SubPixelInterpolationOffsetBits                 uint32
	MaxFramebufferWidth                             uint32
	MaxFramebufferHeight                            uint32
	MaxFramebufferLayers                            uint32
	FramebufferColorSampleCounts                    Flags
	FramebufferDepthSampleCounts                    Flags
	FramebufferStencilSampleCounts                  Flags
	FramebufferNoAttachmentsSampleCounts            Flags
	MaxColorAttachments                             uint32
	SampledImageColorSampleCounts                   Flags
	SampledImageIntegerSampleCounts                 Flags
	SampledImageDepthSampleCounts                   Flags
	SampledImageStencilSampleCounts                 Flags
	StorageImageSampleCounts                        Flags
	MaxSampleMaskWords                              uint32
	TimestampComputeAndGraphics                     uint32
	TimestampPeriod                                 float32
	MaxClipDistances                                uint32
	MaxCullDistances                                uint32
	MaxCombinedClipAndCullDistances                 uint32
	DiscreteQueuePriorities                         uint32
	PointSizeRange                                  [2]float32
	LineWidthRange                                  [2]float32
	PointSizeGranularity                            float32
	LineWidthGranularity                            float32
	StrictLines                                     uint32
	StandardSampleLocations                         uint32
	OptimalBufferCopyOffsetAlignment                DeviceSize
	OptimalBufferCopyRowPitchAlignment              DeviceSize
	NonCoherentAtomSize                             DeviceSize
}

type PhysicalDeviceSparseProperties struct {
	ResidencyStandard2DBlockShape            uint32
	ResidencyStandard2DMultisampleBlockShape uint32
	ResidencyStandard3DBlockShape            uint32
	ResidencyAlignedMipSize                  uint32
	ResidencyNonResidentStrict               uint32
}

type PhysicalDeviceProperties struct {
	APIVersion        uint32
	DriverVersion     uint32
	VendorID          uint32
	DeviceID          uint32
	DeviceType        uint32
	DeviceName        [MaxPhysicalDeviceNameSize]byte
	PipelineCacheUUID [UUIDSize]byte
	Limits            PhysicalDeviceLimits
	SparseProperties  PhysicalDeviceSparseProperties
}

// Name returns the NUL-terminated device name as a Go string.
func (p *PhysicalDeviceProperties) Name() string {
	n := 0
	for n < len(p.DeviceName) && p.DeviceName[n] != 0 {
		n++
	}
	return string(p.DeviceName[:n])
}

type QueueFamilyProperties struct {
	QueueFlags                  Flags
	QueueCount                  uint32
	TimestampValidBits          uint32
	MinImageTransferGranularity Extent3D
}

type QueueFamilyProperties2 struct {
	SType                 StructureType
	PNext                 unsafe.Pointer
	QueueFamilyProperties QueueFamilyProperties
}

type ExtensionProperties struct {
	ExtensionName [MaxExtensionNameSize]byte
	SpecVersion   uint32
}

// Name returns the NUL-terminated extension name.
func (e *ExtensionProperties) Name() string {
	n := 0
	for n < len(e.ExtensionName) && e.ExtensionName[n] != 0 {
		n++
	}
	return string(e.ExtensionName[:n])
}

type DeviceQueueCreateInfo struct {
	SType            StructureType
	PNext            unsafe.Pointer
	Flags            Flags
	QueueFamilyIndex uint32
	QueueCount       uint32
	PQueuePriorities *float32
}

type DeviceCreateInfo struct {
	SType                   StructureType
	PNext                   unsafe.Pointer
	Flags                   Flags
	QueueCreateInfoCount    uint32
	PQueueCreateInfos       *DeviceQueueCreateInfo
	EnabledLayerCount       uint32
	PPEnabledLayerNames     **byte
	EnabledExtensionCount   uint32
	PPEnabledExtensionNames **byte
	PEnabledFeatures        unsafe.Pointer
}

type PhysicalDeviceSynchronization2Features struct {
	SType            StructureType
	PNext            unsafe.Pointer
	Synchronization2 uint32
}

type MemoryType struct {
	PropertyFlags Flags
	HeapIndex     uint32
}

type MemoryHeap struct {
	Size  DeviceSize
	Flags Flags
	_     uint32
}

type PhysicalDeviceMemoryProperties struct {
	MemoryTypeCount uint32
	MemoryTypes     [MaxMemoryTypes]MemoryType
	MemoryHeapCount uint32
	MemoryHeaps     [MaxMemoryHeaps]MemoryHeap
}

type MemoryRequirements struct {
	Size           DeviceSize
	Alignment      DeviceSize
	MemoryTypeBits uint32
}

type MemoryAllocateInfo struct {
	SType           StructureType
	PNext           unsafe.Pointer
	AllocationSize  DeviceSize
	MemoryTypeIndex uint32
}

type BufferCreateInfo struct {
	SType                 StructureType
	PNext                 unsafe.Pointer
	Flags                 Flags
	Size                  DeviceSize
	Usage                 Flags
	SharingMode           uint32
	QueueFamilyIndexCount uint32
	PQueueFamilyIndices   *uint32
}

type ImageCreateInfo struct {
	SType                 StructureType
	PNext                 unsafe.Pointer
	Flags                 Flags
	ImageType             uint32
	Format                Format
	Extent                Extent3D
	MipLevels             uint32
	ArrayLayers           uint32
	Samples               Flags
	Tiling                uint32
	Usage                 Flags
	SharingMode           uint32
	QueueFamilyIndexCount uint32
	PQueueFamilyIndices   *uint32
	InitialLayout         ImageLayout
}

type ComponentMapping struct {
	R uint32
	G uint32
	B uint32
	A uint32
}

type ImageSubresourceRange struct {
	AspectMask     Flags
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

type ImageViewCreateInfo struct {
	SType            StructureType
	PNext            unsafe.Pointer
	Flags            Flags
	Image            Image
	ViewType         uint32
	Format           Format
	Components       ComponentMapping
	SubresourceRange ImageSubresourceRange
}

type CommandPoolCreateInfo struct {
	SType            StructureType
	PNext            unsafe.Pointer
	Flags            Flags
	QueueFamilyIndex uint32
}

type CommandBufferAllocateInfo struct {
	SType              StructureType
	PNext              unsafe.Pointer
	CommandPool        CommandPool
	Level              uint32
	CommandBufferCount uint32
}

type CommandBufferBeginInfo struct {
	SType            StructureType
	PNext            unsafe.Pointer
	Flags            Flags
	PInheritanceInfo unsafe.Pointer
}

type FenceCreateInfo struct {
	SType StructureType
	PNext unsafe.Pointer
	Flags Flags
}

type SemaphoreCreateInfo struct {
	SType StructureType
	PNext unsafe.Pointer
	Flags Flags
}

type QueryPoolCreateInfo struct {
	SType              StructureType
	PNext              unsafe.Pointer
	Flags              Flags
	QueryType          uint32
	QueryCount         uint32
	PipelineStatistics Flags
}

type ImageMemoryBarrier2 struct {
	SType               StructureType
	PNext               unsafe.Pointer
	SrcStageMask        Flags64
	SrcAccessMask       Flags64
	DstStageMask        Flags64
	DstAccessMask       Flags64
	OldLayout           ImageLayout
	NewLayout           ImageLayout
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Image               Image
	SubresourceRange    ImageSubresourceRange
}

type DependencyInfo struct {
	SType                    StructureType
	PNext                    unsafe.Pointer
	DependencyFlags          Flags
	MemoryBarrierCount       uint32
	PMemoryBarriers          unsafe.Pointer
	BufferMemoryBarrierCount uint32
	PBufferMemoryBarriers    unsafe.Pointer
	ImageMemoryBarrierCount  uint32
	PImageMemoryBarriers     *ImageMemoryBarrier2
}

type SemaphoreSubmitInfo struct {
	SType       StructureType
	PNext       unsafe.Pointer
	Semaphore   Semaphore
	Value       uint64
	StageMask   Flags64
	DeviceIndex uint32
}

type CommandBufferSubmitInfo struct {
	SType         StructureType
	PNext         unsafe.Pointer
	CommandBuffer CommandBuffer
	DeviceMask    uint32
}

type SubmitInfo2 struct {
	SType                    StructureType
	PNext                    unsafe.Pointer
	Flags                    Flags
	WaitSemaphoreInfoCount   uint32
	PWaitSemaphoreInfos      *SemaphoreSubmitInfo
	CommandBufferInfoCount   uint32
	PCommandBufferInfos      *CommandBufferSubmitInfo
	SignalSemaphoreInfoCount uint32
	PSignalSemaphoreInfos    *SemaphoreSubmitInfo
}

// MakeAPIVersion packs a Vulkan version number.
func MakeAPIVersion(variant, major, minor, patch uint32) uint32 {
	return variant<<29 | major<<22 | minor<<12 | patch
}
