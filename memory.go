package vkvideo

import "unsafe"

// Memory and resource helpers. Every buffer or image that a video queue
// touches must be created with a chained VideoProfileListInfo so the driver
// can pick a codec-compatible memory layout.

// findMemoryType returns the smallest memory-type index whose bits intersect
// typeBits and whose property flags contain properties.
func findMemoryType(memProps *PhysicalDeviceMemoryProperties, typeBits uint32, properties Flags) (uint32, error) {
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		if memProps.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, &Error{Kind: ErrOutOfMemory, Op: "findMemoryType", Detail: "no compatible memory type"}
}

// deviceBuffer owns a buffer and its backing memory.
type deviceBuffer struct {
	buffer Buffer
	memory DeviceMemory
	size   DeviceSize
	mapped unsafe.Pointer
}

func (c *VideoContext) createBuffer(size DeviceSize, usage Flags, properties Flags, profiles *VideoProfileListInfo) (*deviceBuffer, error) {
	ci := BufferCreateInfo{
		SType:       StructureTypeBufferCreateInfo,
		PNext:       unsafe.Pointer(profiles),
		Size:        size,
		Usage:       usage,
		SharingMode: SharingModeExclusive,
	}
	var buf Buffer
	if res := c.vk.CreateBuffer(&ci, &buf); res != Success {
		return nil, vkErr("vkCreateBuffer", res)
	}

	var reqs MemoryRequirements
	c.vk.GetBufferMemoryRequirements(buf, &reqs)
	memType, err := findMemoryType(&c.memProps, reqs.MemoryTypeBits, properties)
	if err != nil {
		c.vk.DestroyBuffer(buf)
		return nil, err
	}
	ai := MemoryAllocateInfo{
		SType:           StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem DeviceMemory
	if res := c.vk.AllocateMemory(&ai, &mem); res != Success {
		c.vk.DestroyBuffer(buf)
		return nil, vkErr("vkAllocateMemory", res)
	}
	if res := c.vk.BindBufferMemory(buf, mem, 0); res != Success {
		c.vk.FreeMemory(mem)
		c.vk.DestroyBuffer(buf)
		return nil, vkErr("vkBindBufferMemory", res)
	}
	return &deviceBuffer{buffer: buf, memory: mem, size: size}, nil
}

// mapPersistent maps the whole buffer and keeps the pointer for the life of
// the buffer; only valid for host-visible allocations.
func (b *deviceBuffer) mapPersistent(c *VideoContext) error {
	if res := c.vk.MapMemory(b.memory, 0, WholeSize, &b.mapped); res != Success {
		return vkErr("vkMapMemory", res)
	}
	return nil
}

// bytes views the mapped region as a byte slice of the buffer's size.
func (b *deviceBuffer) bytes() []byte {
	return unsafe.Slice((*byte)(b.mapped), int(b.size))
}

func (b *deviceBuffer) destroy(c *VideoContext) {
	if b == nil {
		return
	}
	if b.mapped != nil {
		c.vk.UnmapMemory(b.memory)
		b.mapped = nil
	}
	c.vk.DestroyBuffer(b.buffer)
	c.vk.FreeMemory(b.memory)
	b.buffer, b.memory = 0, 0
}

// deviceImage owns an image, its memory, and one array view.
type deviceImage struct {
	image  Image
	memory DeviceMemory
	view   ImageView
	layers uint32
}

func (c *VideoContext) createImage(width, height uint32, format Format, usage Flags, layers uint32, profiles *VideoProfileListInfo) (*deviceImage, error) {
	ci := ImageCreateInfo{
		SType:         StructureTypeImageCreateInfo,
		PNext:         unsafe.Pointer(profiles),
		ImageType:     ImageType2D,
		Format:        format,
		Extent:        Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   layers,
		Samples:       SampleCount1Bit,
		Tiling:        ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   SharingModeExclusive,
		InitialLayout: ImageLayoutUndefined,
	}
	var img Image
	if res := c.vk.CreateImage(&ci, &img); res != Success {
		return nil, vkErr("vkCreateImage", res)
	}

	var reqs MemoryRequirements
	c.vk.GetImageMemoryRequirements(img, &reqs)
	memType, err := findMemoryType(&c.memProps, reqs.MemoryTypeBits, MemoryPropertyDeviceLocalBit)
	if err != nil {
		c.vk.DestroyImage(img)
		return nil, err
	}
	ai := MemoryAllocateInfo{
		SType:           StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem DeviceMemory
	if res := c.vk.AllocateMemory(&ai, &mem); res != Success {
		c.vk.DestroyImage(img)
		return nil, vkErr("vkAllocateMemory", res)
	}
	if res := c.vk.BindImageMemory(img, mem, 0); res != Success {
		c.vk.FreeMemory(mem)
		c.vk.DestroyImage(img)
		return nil, vkErr("vkBindImageMemory", res)
	}

	view, err := c.createImageView(img, format, layers)
	if err != nil {
		c.vk.FreeMemory(mem)
		c.vk.DestroyImage(img)
		return nil, err
	}
	return &deviceImage{image: img, memory: mem, view: view, layers: layers}, nil
}

// createImageView builds a 2D or 2D-array color view over all layers. NV12
// is a multi-planar format but video commands address it through the COLOR
// aspect.
func (c *VideoContext) createImageView(img Image, format Format, layers uint32) (ImageView, error) {
	viewType := ImageViewType2D
	if layers > 1 {
		viewType = ImageViewType2DArray
	}
	ci := ImageViewCreateInfo{
		SType:    StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: viewType,
		Format:   format,
		SubresourceRange: ImageSubresourceRange{
			AspectMask: ImageAspectColorBit,
			LevelCount: 1,
			LayerCount: layers,
		},
	}
	var view ImageView
	if res := c.vk.CreateImageView(&ci, &view); res != Success {
		return 0, vkErr("vkCreateImageView", res)
	}
	return view, nil
}

// layerView builds a single-layer view at the given base layer, used to bind
// one DPB slot as a picture resource.
func (c *VideoContext) layerView(img Image, format Format, baseLayer uint32) (ImageView, error) {
	ci := ImageViewCreateInfo{
		SType:    StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: ImageViewType2DArray,
		Format:   format,
		SubresourceRange: ImageSubresourceRange{
			AspectMask:     ImageAspectColorBit,
			LevelCount:     1,
			BaseArrayLayer: baseLayer,
			LayerCount:     1,
		},
	}
	var view ImageView
	if res := c.vk.CreateImageView(&ci, &view); res != Success {
		return 0, vkErr("vkCreateImageView", res)
	}
	return view, nil
}

func (i *deviceImage) destroy(c *VideoContext) {
	if i == nil {
		return
	}
	c.vk.DestroyImageView(i.view)
	c.vk.DestroyImage(i.image)
	c.vk.FreeMemory(i.memory)
	i.image, i.memory, i.view = 0, 0, 0
}

// stageAccessFor maps a video image layout to the stage and access masks of
// the operation that uses it.
func stageAccessFor(layout ImageLayout) (Flags64, Flags64) {
	switch layout {
	case ImageLayoutVideoDecodeDst:
		return PipelineStage2VideoDecode, Access2VideoDecodeWrite
	case ImageLayoutVideoDecodeDpb:
		return PipelineStage2VideoDecode, Access2VideoDecodeRead | Access2VideoDecodeWrite
	case ImageLayoutVideoEncodeSrc:
		return PipelineStage2VideoEncode, Access2VideoEncodeRead
	case ImageLayoutVideoEncodeDpb:
		return PipelineStage2VideoEncode, Access2VideoEncodeRead | Access2VideoEncodeWrite
	case ImageLayoutUndefined:
		return PipelineStage2AllCommands, Access2None
	default:
		return PipelineStage2AllCommands, Access2None
	}
}

// imageBarrier records one synchronization2 layout transition covering the
// given layer range, with optional queue-family ownership transfer.
func (c *VideoContext) imageBarrier(cb CommandBuffer, img Image, oldLayout, newLayout ImageLayout, baseLayer, layerCount uint32, srcFamily, dstFamily uint32) {
	srcStage, srcAccess := stageAccessFor(oldLayout)
	dstStage, dstAccess := stageAccessFor(newLayout)

	barrier := ImageMemoryBarrier2{
		SType:               StructureTypeImageMemoryBarrier2,
		SrcStageMask:        srcStage,
		SrcAccessMask:       srcAccess,
		DstStageMask:        dstStage,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: srcFamily,
		DstQueueFamilyIndex: dstFamily,
		Image:               img,
		SubresourceRange: ImageSubresourceRange{
			AspectMask:     ImageAspectColorBit,
			LevelCount:     1,
			BaseArrayLayer: baseLayer,
			LayerCount:     layerCount,
		},
	}
	dep := DependencyInfo{
		SType:                   StructureTypeDependencyInfo,
		ImageMemoryBarrierCount: 1,
		PImageMemoryBarriers:    &barrier,
	}
	c.vk.CmdPipelineBarrier2(cb, &dep)
}

// transitionImageLayout is the in-family variant used for first-touch and
// same-family handoffs.
func (c *VideoContext) transitionImageLayout(cb CommandBuffer, img Image, oldLayout, newLayout ImageLayout, baseLayer, layerCount uint32) {
	c.imageBarrier(cb, img, oldLayout, newLayout, baseLayer, layerCount, QueueFamilyIgnored, QueueFamilyIgnored)
}
