//go:build linux || darwin

// Vulkan entry points are resolved at runtime with purego; nothing links
// against libvulkan at build time. All resolved pointers live in a single
// read-only vkProcs table owned by the VideoContext.

package vkvideo

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	vulkanOnce    sync.Once
	vulkanHandle  uintptr
	vulkanInitErr error

	procGetInstanceProcAddr uintptr
)

func loadVulkan() error {
	vulkanOnce.Do(func() {
		vulkanInitErr = loadVulkanLib()
	})
	return vulkanInitErr
}

func loadVulkanLib() error {
	var paths []string
	if env := os.Getenv("VKVIDEO_LIBVULKAN"); env != "" {
		paths = append(paths, env)
	}
	if runtime.GOOS == "darwin" {
		paths = append(paths, "libvulkan.1.dylib", "libvulkan.dylib")
	} else {
		paths = append(paths, "libvulkan.so.1", "libvulkan.so")
	}

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		sym, err := purego.Dlsym(handle, "vkGetInstanceProcAddr")
		if err != nil {
			purego.Dlclose(handle)
			lastErr = err
			continue
		}
		vulkanHandle = handle
		procGetInstanceProcAddr = sym
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to load libvulkan: %w", lastErr)
	}
	return errors.New("libvulkan not found")
}

func call(fn uintptr, args ...uintptr) Result {
	r1, _, _ := purego.SyscallN(fn, args...)
	return Result(int32(uint32(r1)))
}

func callVoid(fn uintptr, args ...uintptr) {
	purego.SyscallN(fn, args...)
}

// cstr returns a NUL-terminated copy of s.
func cstr(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// cstrArray builds a C array of char pointers. The returned backing slice
// must be kept alive across the call that consumes the array.
func cstrArray(ss []string) (**byte, []*byte) {
	if len(ss) == 0 {
		return nil, nil
	}
	ptrs := make([]*byte, len(ss))
	for i, s := range ss {
		ptrs[i] = cstr(s)
	}
	return &ptrs[0], ptrs
}

func up(p unsafe.Pointer) uintptr { return uintptr(p) }

// vkProcs is the capability table: every Vulkan entry point the transcoder
// uses, resolved by name once and immutable afterwards.
type vkProcs struct {
	instance Instance
	device   Device

	// Global and instance level.
	createInstance                          uintptr
	destroyInstance                         uintptr
	enumeratePhysicalDevices                uintptr
	getPhysicalDeviceProperties             uintptr
	getPhysicalDeviceQueueFamilyProperties2 uintptr
	getPhysicalDeviceMemoryProperties       uintptr
	enumerateDeviceExtensionProperties      uintptr
	createDevice                            uintptr
	getDeviceProcAddr                       uintptr

	// Device level, core.
	destroyDevice               uintptr
	getDeviceQueue              uintptr
	deviceWaitIdle              uintptr
	queueWaitIdle               uintptr
	allocateMemory              uintptr
	freeMemory                  uintptr
	mapMemory                   uintptr
	unmapMemory                 uintptr
	createBuffer                uintptr
	destroyBuffer               uintptr
	getBufferMemoryRequirements uintptr
	bindBufferMemory            uintptr
	createImage                 uintptr
	destroyImage                uintptr
	getImageMemoryRequirements  uintptr
	bindImageMemory             uintptr
	createImageView             uintptr
	destroyImageView            uintptr
	createCommandPool           uintptr
	destroyCommandPool          uintptr
	allocateCommandBuffers      uintptr
	resetCommandBuffer          uintptr
	beginCommandBuffer          uintptr
	endCommandBuffer            uintptr
	createFence                 uintptr
	destroyFence                uintptr
	waitForFences               uintptr
	resetFences                 uintptr
	createSemaphore             uintptr
	destroySemaphore            uintptr
	createQueryPool             uintptr
	destroyQueryPool            uintptr
	getQueryPoolResults         uintptr
	cmdResetQueryPool           uintptr
	cmdBeginQuery               uintptr
	cmdEndQuery                 uintptr

	// Extensions.
	cmdPipelineBarrier2               uintptr
	queueSubmit2                      uintptr
	createVideoSession                uintptr
	destroyVideoSession               uintptr
	getVideoSessionMemoryRequirements uintptr
	bindVideoSessionMemory            uintptr
	createVideoSessionParameters      uintptr
	destroyVideoSessionParameters     uintptr
	getEncodedVideoSessionParameters  uintptr
	cmdBeginVideoCoding               uintptr
	cmdEndVideoCoding                 uintptr
	cmdControlVideoCoding             uintptr
	cmdDecodeVideo                    uintptr
	cmdEncodeVideo                    uintptr
}

func getInstanceProcAddr(instance Instance, name string) uintptr {
	p := cstr(name)
	r1, _, _ := purego.SyscallN(procGetInstanceProcAddr, uintptr(instance), up(unsafe.Pointer(p)))
	runtime.KeepAlive(p)
	return r1
}

func (vk *vkProcs) getDeviceProc(name string) uintptr {
	p := cstr(name)
	r1, _, _ := purego.SyscallN(vk.getDeviceProcAddr, uintptr(vk.device), up(unsafe.Pointer(p)))
	runtime.KeepAlive(p)
	return r1
}

// newVkProcs resolves the global entry points needed before an instance
// exists.
func newVkProcs() (*vkProcs, error) {
	if err := loadVulkan(); err != nil {
		return nil, &Error{Kind: ErrNoDevice, Detail: "Vulkan loader unavailable", Err: err}
	}
	vk := &vkProcs{}
	vk.createInstance = getInstanceProcAddr(0, "vkCreateInstance")
	if vk.createInstance == 0 {
		return nil, &Error{Kind: ErrNoDevice, Detail: "vkCreateInstance not exported by loader"}
	}
	return vk, nil
}

// bindInstance resolves instance-level entry points.
func (vk *vkProcs) bindInstance(instance Instance) error {
	vk.instance = instance
	for _, e := range []struct {
		dst  *uintptr
		name string
	}{
		{&vk.destroyInstance, "vkDestroyInstance"},
		{&vk.enumeratePhysicalDevices, "vkEnumeratePhysicalDevices"},
		{&vk.getPhysicalDeviceProperties, "vkGetPhysicalDeviceProperties"},
		{&vk.getPhysicalDeviceQueueFamilyProperties2, "vkGetPhysicalDeviceQueueFamilyProperties2"},
		{&vk.getPhysicalDeviceMemoryProperties, "vkGetPhysicalDeviceMemoryProperties"},
		{&vk.enumerateDeviceExtensionProperties, "vkEnumerateDeviceExtensionProperties"},
		{&vk.createDevice, "vkCreateDevice"},
		{&vk.getDeviceProcAddr, "vkGetDeviceProcAddr"},
	} {
		*e.dst = getInstanceProcAddr(instance, e.name)
		if *e.dst == 0 {
			return &Error{Kind: ErrNoDevice, Detail: "missing instance entry point " + e.name}
		}
	}
	return nil
}

// bindDevice resolves device-level entry points, including the video
// extension commands.
func (vk *vkProcs) bindDevice(device Device) error {
	vk.device = device
	for _, e := range []struct {
		dst  *uintptr
		name string
	}{
		{&vk.destroyDevice, "vkDestroyDevice"},
		{&vk.getDeviceQueue, "vkGetDeviceQueue"},
		{&vk.deviceWaitIdle, "vkDeviceWaitIdle"},
		{&vk.queueWaitIdle, "vkQueueWaitIdle"},
		{&vk.allocateMemory, "vkAllocateMemory"},
		{&vk.freeMemory, "vkFreeMemory"},
		{&vk.mapMemory, "vkMapMemory"},
		{&vk.unmapMemory, "vkUnmapMemory"},
		{&vk.createBuffer, "vkCreateBuffer"},
		{&vk.destroyBuffer, "vkDestroyBuffer"},
		{&vk.getBufferMemoryRequirements, "vkGetBufferMemoryRequirements"},
		{&vk.bindBufferMemory, "vkBindBufferMemory"},
		{&vk.createImage, "vkCreateImage"},
		{&vk.destroyImage, "vkDestroyImage"},
		{&vk.getImageMemoryRequirements, "vkGetImageMemoryRequirements"},
		{&vk.bindImageMemory, "vkBindImageMemory"},
		{&vk.createImageView, "vkCreateImageView"},
		{&vk.destroyImageView, "vkDestroyImageView"},
		{&vk.createCommandPool, "vkCreateCommandPool"},
		{&vk.destroyCommandPool, "vkDestroyCommandPool"},
		{&vk.allocateCommandBuffers, "vkAllocateCommandBuffers"},
		{&vk.resetCommandBuffer, "vkResetCommandBuffer"},
		{&vk.beginCommandBuffer, "vkBeginCommandBuffer"},
		{&vk.endCommandBuffer, "vkEndCommandBuffer"},
		{&vk.createFence, "vkCreateFence"},
		{&vk.destroyFence, "vkDestroyFence"},
		{&vk.waitForFences, "vkWaitForFences"},
		{&vk.resetFences, "vkResetFences"},
		{&vk.createSemaphore, "vkCreateSemaphore"},
		{&vk.destroySemaphore, "vkDestroySemaphore"},
		{&vk.createQueryPool, "vkCreateQueryPool"},
		{&vk.destroyQueryPool, "vkDestroyQueryPool"},
		{&vk.getQueryPoolResults, "vkGetQueryPoolResults"},
		{&vk.cmdResetQueryPool, "vkCmdResetQueryPool"},
		{&vk.cmdBeginQuery, "vkCmdBeginQuery"},
		{&vk.cmdEndQuery, "vkCmdEndQuery"},
		{&vk.cmdPipelineBarrier2, "vkCmdPipelineBarrier2KHR"},
		{&vk.queueSubmit2, "vkQueueSubmit2KHR"},
		{&vk.createVideoSession, "vkCreateVideoSessionKHR"},
		{&vk.destroyVideoSession, "vkDestroyVideoSessionKHR"},
		{&vk.getVideoSessionMemoryRequirements, "vkGetVideoSessionMemoryRequirementsKHR"},
		{&vk.bindVideoSessionMemory, "vkBindVideoSessionMemoryKHR"},
		{&vk.createVideoSessionParameters, "vkCreateVideoSessionParametersKHR"},
		{&vk.destroyVideoSessionParameters, "vkDestroyVideoSessionParametersKHR"},
		{&vk.getEncodedVideoSessionParameters, "vkGetEncodedVideoSessionParametersKHR"},
		{&vk.cmdBeginVideoCoding, "vkCmdBeginVideoCodingKHR"},
		{&vk.cmdEndVideoCoding, "vkCmdEndVideoCodingKHR"},
		{&vk.cmdControlVideoCoding, "vkCmdControlVideoCodingKHR"},
		{&vk.cmdDecodeVideo, "vkCmdDecodeVideoKHR"},
		{&vk.cmdEncodeVideo, "vkCmdEncodeVideoKHR"},
	} {
		*e.dst = vk.getDeviceProc(e.name)
		if *e.dst == 0 {
			return &Error{Kind: ErrVideoAPIFailed, Op: "vkGetDeviceProcAddr", Detail: "missing device entry point " + e.name}
		}
	}
	return nil
}

// ---- Typed wrappers ----
//
// Each wrapper converts pointers inside the call expression so purego pins
// them for the duration of the native call; nested pointees are kept alive
// by an explicit KeepAlive on the root structure.

func (vk *vkProcs) CreateInstance(ci *InstanceCreateInfo, out *Instance) Result {
	r := call(vk.createInstance, up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyInstance() {
	if vk.destroyInstance != 0 && vk.instance != 0 {
		callVoid(vk.destroyInstance, uintptr(vk.instance), 0)
	}
}

func (vk *vkProcs) EnumeratePhysicalDevices(count *uint32, devices *PhysicalDevice) Result {
	return call(vk.enumeratePhysicalDevices, uintptr(vk.instance),
		up(unsafe.Pointer(count)), up(unsafe.Pointer(devices)))
}

func (vk *vkProcs) GetPhysicalDeviceProperties(pd PhysicalDevice, props *PhysicalDeviceProperties) {
	callVoid(vk.getPhysicalDeviceProperties, uintptr(pd), up(unsafe.Pointer(props)))
}

func (vk *vkProcs) GetPhysicalDeviceQueueFamilyProperties2(pd PhysicalDevice, count *uint32, props *QueueFamilyProperties2) {
	callVoid(vk.getPhysicalDeviceQueueFamilyProperties2, uintptr(pd),
		up(unsafe.Pointer(count)), up(unsafe.Pointer(props)))
}

func (vk *vkProcs) GetPhysicalDeviceMemoryProperties(pd PhysicalDevice, props *PhysicalDeviceMemoryProperties) {
	callVoid(vk.getPhysicalDeviceMemoryProperties, uintptr(pd), up(unsafe.Pointer(props)))
}

func (vk *vkProcs) EnumerateDeviceExtensionProperties(pd PhysicalDevice, count *uint32, props *ExtensionProperties) Result {
	return call(vk.enumerateDeviceExtensionProperties, uintptr(pd), 0,
		up(unsafe.Pointer(count)), up(unsafe.Pointer(props)))
}

func (vk *vkProcs) CreateDevice(pd PhysicalDevice, ci *DeviceCreateInfo, out *Device) Result {
	r := call(vk.createDevice, uintptr(pd), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyDevice() {
	if vk.destroyDevice != 0 && vk.device != 0 {
		callVoid(vk.destroyDevice, uintptr(vk.device), 0)
	}
}

func (vk *vkProcs) GetDeviceQueue(family, index uint32, out *Queue) {
	callVoid(vk.getDeviceQueue, uintptr(vk.device), uintptr(family), uintptr(index), up(unsafe.Pointer(out)))
}

func (vk *vkProcs) DeviceWaitIdle() Result {
	return call(vk.deviceWaitIdle, uintptr(vk.device))
}

func (vk *vkProcs) AllocateMemory(ai *MemoryAllocateInfo, out *DeviceMemory) Result {
	r := call(vk.allocateMemory, uintptr(vk.device), up(unsafe.Pointer(ai)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ai)
	return r
}

func (vk *vkProcs) FreeMemory(mem DeviceMemory) {
	if mem != 0 {
		callVoid(vk.freeMemory, uintptr(vk.device), uintptr(mem), 0)
	}
}

func (vk *vkProcs) MapMemory(mem DeviceMemory, offset, size DeviceSize, out *unsafe.Pointer) Result {
	return call(vk.mapMemory, uintptr(vk.device), uintptr(mem), uintptr(offset), uintptr(size), 0,
		up(unsafe.Pointer(out)))
}

func (vk *vkProcs) UnmapMemory(mem DeviceMemory) {
	callVoid(vk.unmapMemory, uintptr(vk.device), uintptr(mem))
}

func (vk *vkProcs) CreateBuffer(ci *BufferCreateInfo, out *Buffer) Result {
	r := call(vk.createBuffer, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyBuffer(b Buffer) {
	if b != 0 {
		callVoid(vk.destroyBuffer, uintptr(vk.device), uintptr(b), 0)
	}
}

func (vk *vkProcs) GetBufferMemoryRequirements(b Buffer, out *MemoryRequirements) {
	callVoid(vk.getBufferMemoryRequirements, uintptr(vk.device), uintptr(b), up(unsafe.Pointer(out)))
}

func (vk *vkProcs) BindBufferMemory(b Buffer, mem DeviceMemory, offset DeviceSize) Result {
	return call(vk.bindBufferMemory, uintptr(vk.device), uintptr(b), uintptr(mem), uintptr(offset))
}

func (vk *vkProcs) CreateImage(ci *ImageCreateInfo, out *Image) Result {
	r := call(vk.createImage, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyImage(img Image) {
	if img != 0 {
		callVoid(vk.destroyImage, uintptr(vk.device), uintptr(img), 0)
	}
}

func (vk *vkProcs) GetImageMemoryRequirements(img Image, out *MemoryRequirements) {
	callVoid(vk.getImageMemoryRequirements, uintptr(vk.device), uintptr(img), up(unsafe.Pointer(out)))
}

func (vk *vkProcs) BindImageMemory(img Image, mem DeviceMemory, offset DeviceSize) Result {
	return call(vk.bindImageMemory, uintptr(vk.device), uintptr(img), uintptr(mem), uintptr(offset))
}

func (vk *vkProcs) CreateImageView(ci *ImageViewCreateInfo, out *ImageView) Result {
	r := call(vk.createImageView, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyImageView(v ImageView) {
	if v != 0 {
		callVoid(vk.destroyImageView, uintptr(vk.device), uintptr(v), 0)
	}
}

func (vk *vkProcs) CreateCommandPool(ci *CommandPoolCreateInfo, out *CommandPool) Result {
	r := call(vk.createCommandPool, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyCommandPool(p CommandPool) {
	if p != 0 {
		callVoid(vk.destroyCommandPool, uintptr(vk.device), uintptr(p), 0)
	}
}

func (vk *vkProcs) AllocateCommandBuffers(ai *CommandBufferAllocateInfo, out *CommandBuffer) Result {
	r := call(vk.allocateCommandBuffers, uintptr(vk.device), up(unsafe.Pointer(ai)), up(unsafe.Pointer(out)))
	runtime.KeepAlive(ai)
	return r
}

func (vk *vkProcs) ResetCommandBuffer(cb CommandBuffer) Result {
	return call(vk.resetCommandBuffer, uintptr(cb), 0)
}

func (vk *vkProcs) BeginCommandBuffer(cb CommandBuffer, bi *CommandBufferBeginInfo) Result {
	r := call(vk.beginCommandBuffer, uintptr(cb), up(unsafe.Pointer(bi)))
	runtime.KeepAlive(bi)
	return r
}

func (vk *vkProcs) EndCommandBuffer(cb CommandBuffer) Result {
	return call(vk.endCommandBuffer, uintptr(cb))
}

func (vk *vkProcs) CreateFence(ci *FenceCreateInfo, out *Fence) Result {
	r := call(vk.createFence, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyFence(f Fence) {
	if f != 0 {
		callVoid(vk.destroyFence, uintptr(vk.device), uintptr(f), 0)
	}
}

func (vk *vkProcs) WaitForFences(f *Fence, count uint32, timeoutNs uint64) Result {
	return call(vk.waitForFences, uintptr(vk.device), uintptr(count), up(unsafe.Pointer(f)),
		1, uintptr(timeoutNs))
}

func (vk *vkProcs) ResetFences(f *Fence, count uint32) Result {
	return call(vk.resetFences, uintptr(vk.device), uintptr(count), up(unsafe.Pointer(f)))
}

func (vk *vkProcs) CreateSemaphore(ci *SemaphoreCreateInfo, out *Semaphore) Result {
	r := call(vk.createSemaphore, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroySemaphore(s Semaphore) {
	if s != 0 {
		callVoid(vk.destroySemaphore, uintptr(vk.device), uintptr(s), 0)
	}
}

func (vk *vkProcs) CreateQueryPool(ci *QueryPoolCreateInfo, out *QueryPool) Result {
	r := call(vk.createQueryPool, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyQueryPool(qp QueryPool) {
	if qp != 0 {
		callVoid(vk.destroyQueryPool, uintptr(vk.device), uintptr(qp), 0)
	}
}

func (vk *vkProcs) GetQueryPoolResults(qp QueryPool, firstQuery, queryCount uint32, dataSize uintptr, data unsafe.Pointer, stride DeviceSize, flags Flags) Result {
	return call(vk.getQueryPoolResults, uintptr(vk.device), uintptr(qp),
		uintptr(firstQuery), uintptr(queryCount), dataSize, up(data), uintptr(stride), uintptr(flags))
}

func (vk *vkProcs) CmdResetQueryPool(cb CommandBuffer, qp QueryPool, firstQuery, queryCount uint32) {
	callVoid(vk.cmdResetQueryPool, uintptr(cb), uintptr(qp), uintptr(firstQuery), uintptr(queryCount))
}

func (vk *vkProcs) CmdBeginQuery(cb CommandBuffer, qp QueryPool, query uint32) {
	callVoid(vk.cmdBeginQuery, uintptr(cb), uintptr(qp), uintptr(query), 0)
}

func (vk *vkProcs) CmdEndQuery(cb CommandBuffer, qp QueryPool, query uint32) {
	callVoid(vk.cmdEndQuery, uintptr(cb), uintptr(qp), uintptr(query))
}

func (vk *vkProcs) CmdPipelineBarrier2(cb CommandBuffer, dep *DependencyInfo) {
	callVoid(vk.cmdPipelineBarrier2, uintptr(cb), up(unsafe.Pointer(dep)))
	runtime.KeepAlive(dep)
}

func (vk *vkProcs) QueueSubmit2(q Queue, si *SubmitInfo2, fence Fence) Result {
	r := call(vk.queueSubmit2, uintptr(q), 1, up(unsafe.Pointer(si)), uintptr(fence))
	runtime.KeepAlive(si)
	return r
}

func (vk *vkProcs) QueueWaitIdle(q Queue) Result {
	return call(vk.queueWaitIdle, uintptr(q))
}

func (vk *vkProcs) CreateVideoSession(ci *VideoSessionCreateInfo, out *VideoSession) Result {
	r := call(vk.createVideoSession, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyVideoSession(s VideoSession) {
	if s != 0 {
		callVoid(vk.destroyVideoSession, uintptr(vk.device), uintptr(s), 0)
	}
}

func (vk *vkProcs) GetVideoSessionMemoryRequirements(s VideoSession, count *uint32, reqs *VideoSessionMemoryRequirements) Result {
	return call(vk.getVideoSessionMemoryRequirements, uintptr(vk.device), uintptr(s),
		up(unsafe.Pointer(count)), up(unsafe.Pointer(reqs)))
}

func (vk *vkProcs) BindVideoSessionMemory(s VideoSession, count uint32, binds *BindVideoSessionMemoryInfo) Result {
	return call(vk.bindVideoSessionMemory, uintptr(vk.device), uintptr(s),
		uintptr(count), up(unsafe.Pointer(binds)))
}

func (vk *vkProcs) CreateVideoSessionParameters(ci *VideoSessionParametersCreateInfo, out *VideoSessionParameters) Result {
	r := call(vk.createVideoSessionParameters, uintptr(vk.device), up(unsafe.Pointer(ci)), 0, up(unsafe.Pointer(out)))
	runtime.KeepAlive(ci)
	return r
}

func (vk *vkProcs) DestroyVideoSessionParameters(p VideoSessionParameters) {
	if p != 0 {
		callVoid(vk.destroyVideoSessionParameters, uintptr(vk.device), uintptr(p), 0)
	}
}

func (vk *vkProcs) GetEncodedVideoSessionParameters(gi *VideoEncodeSessionParametersGetInfo, fb *VideoEncodeSessionParametersFeedbackInfo, size *uintptr, data unsafe.Pointer) Result {
	r := call(vk.getEncodedVideoSessionParameters, uintptr(vk.device),
		up(unsafe.Pointer(gi)), up(unsafe.Pointer(fb)), up(unsafe.Pointer(size)), up(data))
	runtime.KeepAlive(gi)
	runtime.KeepAlive(fb)
	return r
}

func (vk *vkProcs) CmdBeginVideoCoding(cb CommandBuffer, bi *VideoBeginCodingInfo) {
	callVoid(vk.cmdBeginVideoCoding, uintptr(cb), up(unsafe.Pointer(bi)))
	runtime.KeepAlive(bi)
}

func (vk *vkProcs) CmdEndVideoCoding(cb CommandBuffer) {
	ei := VideoEndCodingInfo{SType: StructureTypeVideoEndCodingInfo}
	callVoid(vk.cmdEndVideoCoding, uintptr(cb), up(unsafe.Pointer(&ei)))
	runtime.KeepAlive(&ei)
}

func (vk *vkProcs) CmdControlVideoCoding(cb CommandBuffer, ci *VideoCodingControlInfo) {
	callVoid(vk.cmdControlVideoCoding, uintptr(cb), up(unsafe.Pointer(ci)))
	runtime.KeepAlive(ci)
}

func (vk *vkProcs) CmdDecodeVideo(cb CommandBuffer, di *VideoDecodeInfo) {
	callVoid(vk.cmdDecodeVideo, uintptr(cb), up(unsafe.Pointer(di)))
	runtime.KeepAlive(di)
}

func (vk *vkProcs) CmdEncodeVideo(cb CommandBuffer, ei *VideoEncodeInfo) {
	callVoid(vk.cmdEncodeVideo, uintptr(cb), up(unsafe.Pointer(ei)))
	runtime.KeepAlive(ei)
}

// keepAliveAll pins a set of values past the preceding native call.
func keepAliveAll(vals ...any) {
	runtime.KeepAlive(vals)
}
