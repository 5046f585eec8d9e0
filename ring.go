package vkvideo

// The frame ring: per-slot GPU resources cycled by the pipeline driver.
// Each slot alternates between "in flight on GPU" and "available to host",
// guarded by its encode-completion fence.

const bitstreamBufferSize DeviceSize = 2 << 20 // 2 MiB staging default

type frameSlot struct {
	index int

	input   *deviceBuffer // host-visible, holds the staged H.264 access unit
	output  *deviceBuffer // host-visible, receives the HEVC access unit
	picture *deviceImage  // shared NV12 decode target / encode source

	decodeCB CommandBuffer
	encodeCB CommandBuffer

	decodeDone Semaphore // decode submission -> encode submission
	encodeDone Fence     // encode submission -> host

	pending    bool  // a frame is in flight or awaiting readback
	pendingPts int64 // pts of the in-flight frame
}

type frameRing struct {
	ctx   *VideoContext
	slots []*frameSlot

	decodePool CommandPool
	encodePool CommandPool

	// Profile lists used at resource creation; the shared picture carries
	// both profiles so the encode queue may read it without a copy.
	decodeProfiles   []VideoProfileInfo
	encodeProfiles   []VideoProfileInfo
	combinedProfiles []VideoProfileInfo
}

func (r *frameRing) decodeList() *VideoProfileListInfo {
	return &VideoProfileListInfo{
		SType:        StructureTypeVideoProfileListInfo,
		ProfileCount: uint32(len(r.decodeProfiles)),
		PProfiles:    &r.decodeProfiles[0],
	}
}

func (r *frameRing) encodeList() *VideoProfileListInfo {
	return &VideoProfileListInfo{
		SType:        StructureTypeVideoProfileListInfo,
		ProfileCount: uint32(len(r.encodeProfiles)),
		PProfiles:    &r.encodeProfiles[0],
	}
}

func (r *frameRing) combinedList() *VideoProfileListInfo {
	return &VideoProfileListInfo{
		SType:        StructureTypeVideoProfileListInfo,
		ProfileCount: uint32(len(r.combinedProfiles)),
		PProfiles:    &r.combinedProfiles[0],
	}
}

// newFrameRing creates size slots plus one command pool per queue family.
// The profile values keep pointing into the sessions' codec-profile chains,
// which outlive the ring.
func newFrameRing(ctx *VideoContext, dec *DecodeSession, enc *EncodeSession, width, height uint32, size int) (*frameRing, error) {
	r := &frameRing{
		ctx:              ctx,
		decodeProfiles:   []VideoProfileInfo{dec.profile},
		encodeProfiles:   []VideoProfileInfo{enc.profile},
		combinedProfiles: []VideoProfileInfo{dec.profile, enc.profile},
	}

	poolInfo := CommandPoolCreateInfo{
		SType:            StructureTypeCommandPoolCreateInfo,
		Flags:            CommandPoolCreateResetCommandBufferBit,
		QueueFamilyIndex: ctx.decodeFamily,
	}
	if res := ctx.vk.CreateCommandPool(&poolInfo, &r.decodePool); res != Success {
		return nil, vkErr("vkCreateCommandPool", res)
	}
	poolInfo.QueueFamilyIndex = ctx.encodeFamily
	if res := ctx.vk.CreateCommandPool(&poolInfo, &r.encodePool); res != Success {
		r.destroy()
		return nil, vkErr("vkCreateCommandPool", res)
	}

	for i := 0; i < size; i++ {
		slot, err := r.newSlot(i, width, height)
		if err != nil {
			r.destroy()
			return nil, err
		}
		r.slots = append(r.slots, slot)
	}
	return r, nil
}

func (r *frameRing) newSlot(index int, width, height uint32) (*frameSlot, error) {
	ctx := r.ctx
	slot := &frameSlot{index: index}

	var err error
	slot.input, err = ctx.createBuffer(bitstreamBufferSize, BufferUsageVideoDecodeSrcBit,
		MemoryPropertyHostVisibleBit|MemoryPropertyHostCoherentBit, r.decodeList())
	if err != nil {
		return nil, err
	}
	if err = slot.input.mapPersistent(ctx); err != nil {
		return nil, err
	}

	slot.output, err = ctx.createBuffer(bitstreamBufferSize, BufferUsageVideoEncodeDstBit,
		MemoryPropertyHostVisibleBit|MemoryPropertyHostCoherentBit, r.encodeList())
	if err != nil {
		return nil, err
	}
	if err = slot.output.mapPersistent(ctx); err != nil {
		return nil, err
	}

	slot.picture, err = ctx.createImage(width, height, FormatG8B8R82Plane420Unorm,
		ImageUsageVideoDecodeDstBit|ImageUsageVideoEncodeSrcBit, 1, r.combinedList())
	if err != nil {
		return nil, err
	}

	ai := CommandBufferAllocateInfo{
		SType:              StructureTypeCommandBufferAllocateInfo,
		CommandPool:        r.decodePool,
		Level:              CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	if res := ctx.vk.AllocateCommandBuffers(&ai, &slot.decodeCB); res != Success {
		return nil, vkErr("vkAllocateCommandBuffers", res)
	}
	ai.CommandPool = r.encodePool
	if res := ctx.vk.AllocateCommandBuffers(&ai, &slot.encodeCB); res != Success {
		return nil, vkErr("vkAllocateCommandBuffers", res)
	}

	semInfo := SemaphoreCreateInfo{SType: StructureTypeSemaphoreCreateInfo}
	if res := ctx.vk.CreateSemaphore(&semInfo, &slot.decodeDone); res != Success {
		return nil, vkErr("vkCreateSemaphore", res)
	}
	// Unsignaled; the pipeline only waits on slots with a frame in flight.
	fenceInfo := FenceCreateInfo{SType: StructureTypeFenceCreateInfo}
	if res := ctx.vk.CreateFence(&fenceInfo, &slot.encodeDone); res != Success {
		return nil, vkErr("vkCreateFence", res)
	}
	return slot, nil
}

// ensureInputCapacity grows the slot's input staging buffer to the next
// power of two that fits, recreating it with the decode profile list. Only
// legal while the slot is idle.
func (r *frameRing) ensureInputCapacity(slot *frameSlot, need DeviceSize) error {
	if need <= slot.input.size {
		return nil
	}
	capacity := slot.input.size
	for capacity < need {
		capacity *= 2
	}
	slot.input.destroy(r.ctx)
	buf, err := r.ctx.createBuffer(capacity, BufferUsageVideoDecodeSrcBit,
		MemoryPropertyHostVisibleBit|MemoryPropertyHostCoherentBit, r.decodeList())
	if err != nil {
		return err
	}
	if err := buf.mapPersistent(r.ctx); err != nil {
		buf.destroy(r.ctx)
		return err
	}
	slot.input = buf
	return nil
}

func (r *frameRing) destroy() {
	ctx := r.ctx
	for _, slot := range r.slots {
		ctx.vk.DestroyFence(slot.encodeDone)
		ctx.vk.DestroySemaphore(slot.decodeDone)
		slot.picture.destroy(ctx)
		slot.input.destroy(ctx)
		slot.output.destroy(ctx)
	}
	r.slots = nil
	ctx.vk.DestroyCommandPool(r.decodePool)
	ctx.vk.DestroyCommandPool(r.encodePool)
	r.decodePool, r.encodePool = 0, 0
}
