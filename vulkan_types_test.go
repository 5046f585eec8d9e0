package vkvideo

import (
	"testing"
	"unsafe"
)

// The purego binding depends on these mirrors matching the C ABI exactly;
// the expected numbers are sizeof() on 64-bit Linux.
func TestStructLayouts(t *testing.T) {
	tests := []struct {
		name string
		size uintptr
		want uintptr
	}{
		{"ApplicationInfo", unsafe.Sizeof(ApplicationInfo{}), 48},
		{"InstanceCreateInfo", unsafe.Sizeof(InstanceCreateInfo{}), 64},
		{"PhysicalDeviceLimits", unsafe.Sizeof(PhysicalDeviceLimits{}), 504},
		{"PhysicalDeviceProperties", unsafe.Sizeof(PhysicalDeviceProperties{}), 824},
		{"QueueFamilyProperties2", unsafe.Sizeof(QueueFamilyProperties2{}), 40},
		{"ExtensionProperties", unsafe.Sizeof(ExtensionProperties{}), 260},
		{"DeviceQueueCreateInfo", unsafe.Sizeof(DeviceQueueCreateInfo{}), 40},
		{"DeviceCreateInfo", unsafe.Sizeof(DeviceCreateInfo{}), 72},
		{"PhysicalDeviceMemoryProperties", unsafe.Sizeof(PhysicalDeviceMemoryProperties{}), 520},
		{"MemoryRequirements", unsafe.Sizeof(MemoryRequirements{}), 24},
		{"BufferCreateInfo", unsafe.Sizeof(BufferCreateInfo{}), 56},
		{"ImageCreateInfo", unsafe.Sizeof(ImageCreateInfo{}), 88},
		{"ImageViewCreateInfo", unsafe.Sizeof(ImageViewCreateInfo{}), 80},
		{"ImageMemoryBarrier2", unsafe.Sizeof(ImageMemoryBarrier2{}), 96},
		{"DependencyInfo", unsafe.Sizeof(DependencyInfo{}), 64},
		{"SemaphoreSubmitInfo", unsafe.Sizeof(SemaphoreSubmitInfo{}), 48},
		{"CommandBufferSubmitInfo", unsafe.Sizeof(CommandBufferSubmitInfo{}), 32},
		{"SubmitInfo2", unsafe.Sizeof(SubmitInfo2{}), 64},
		{"QueryPoolCreateInfo", unsafe.Sizeof(QueryPoolCreateInfo{}), 32},

		{"VideoProfileInfo", unsafe.Sizeof(VideoProfileInfo{}), 32},
		{"VideoProfileListInfo", unsafe.Sizeof(VideoProfileListInfo{}), 32},
		{"VideoSessionCreateInfo", unsafe.Sizeof(VideoSessionCreateInfo{}), 64},
		{"VideoSessionMemoryRequirements", unsafe.Sizeof(VideoSessionMemoryRequirements{}), 48},
		{"BindVideoSessionMemoryInfo", unsafe.Sizeof(BindVideoSessionMemoryInfo{}), 48},
		{"VideoPictureResourceInfo", unsafe.Sizeof(VideoPictureResourceInfo{}), 48},
		{"VideoReferenceSlotInfo", unsafe.Sizeof(VideoReferenceSlotInfo{}), 32},
		{"VideoBeginCodingInfo", unsafe.Sizeof(VideoBeginCodingInfo{}), 56},
		{"VideoDecodeInfo", unsafe.Sizeof(VideoDecodeInfo{}), 120},
		{"VideoEncodeInfo", unsafe.Sizeof(VideoEncodeInfo{}), 128},

		{"StdVideoH264SequenceParameterSet", unsafe.Sizeof(StdVideoH264SequenceParameterSet{}), 88},
		{"StdVideoH264PictureParameterSet", unsafe.Sizeof(StdVideoH264PictureParameterSet{}), 24},
		{"StdVideoH264SequenceParameterSetVui", unsafe.Sizeof(StdVideoH264SequenceParameterSetVui{}), 40},
		{"StdVideoH264HrdParameters", unsafe.Sizeof(StdVideoH264HrdParameters{}), 308},
		{"StdVideoDecodeH264PictureInfo", unsafe.Sizeof(StdVideoDecodeH264PictureInfo{}), 20},
		{"StdVideoDecodeH264ReferenceInfo", unsafe.Sizeof(StdVideoDecodeH264ReferenceInfo{}), 16},

		{"StdVideoH265ProfileTierLevel", unsafe.Sizeof(StdVideoH265ProfileTierLevel{}), 12},
		{"StdVideoH265DecPicBufMgr", unsafe.Sizeof(StdVideoH265DecPicBufMgr{}), 44},
		{"StdVideoH265VideoParameterSet", unsafe.Sizeof(StdVideoH265VideoParameterSet{}), 48},
		{"StdVideoH265SequenceParameterSet", unsafe.Sizeof(StdVideoH265SequenceParameterSet{}), 112},
		{"StdVideoH265PictureParameterSet", unsafe.Sizeof(StdVideoH265PictureParameterSet{}), 144},
		{"StdVideoH265ShortTermRefPicSet", unsafe.Sizeof(StdVideoH265ShortTermRefPicSet{}), 88},
		{"StdVideoEncodeH265PictureInfo", unsafe.Sizeof(StdVideoEncodeH265PictureInfo{}), 48},
		{"StdVideoEncodeH265ReferenceListsInfo", unsafe.Sizeof(StdVideoEncodeH265ReferenceListsInfo{}), 68},
		{"StdVideoEncodeH265SliceSegmentHeader", unsafe.Sizeof(StdVideoEncodeH265SliceSegmentHeader{}), 32},
		{"StdVideoEncodeH265ReferenceInfo", unsafe.Sizeof(StdVideoEncodeH265ReferenceInfo{}), 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.size != tt.want {
				t.Errorf("sizeof(%s) = %d, want %d", tt.name, tt.size, tt.want)
			}
		})
	}
}

func TestMakeAPIVersion(t *testing.T) {
	if v := MakeAPIVersion(0, 1, 3, 0); v != 1<<22|3<<12 {
		t.Errorf("MakeAPIVersion(0,1,3,0) = %#x", v)
	}
	if v := makeVideoStdVersion(1, 0, 0); v != 1<<22 {
		t.Errorf("makeVideoStdVersion(1,0,0) = %#x", v)
	}
}
