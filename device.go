package vkvideo

import (
	"strings"
	"unsafe"

	"github.com/rs/zerolog"
)

const vendorIDNvidia = 0x10DE

// AdapterPolicy controls physical-device selection. The zero value accepts
// any suitable adapter; DefaultAdapterPolicy prefers discrete NVIDIA parts,
// the vendor with the broadest Vulkan Video support today.
type AdapterPolicy struct {
	PreferDiscrete  bool
	VendorAllowlist []uint32
	NameSubstring   string
}

func DefaultAdapterPolicy() AdapterPolicy {
	return AdapterPolicy{
		PreferDiscrete:  true,
		VendorAllowlist: []uint32{vendorIDNvidia},
	}
}

// requiredExtensions is the device-extension set a suitable adapter must
// advertise, and exactly what gets enabled on the logical device.
var requiredExtensions = []string{
	ExtVideoQueue,
	ExtVideoDecodeQueue,
	ExtVideoDecodeH264,
	ExtVideoEncodeQueue,
	ExtVideoEncodeH265,
	ExtSynchronization2,
	ExtSamplerYcbcrConv,
}

// queueFamilyIndices holds the chosen decode and encode families. The two
// may be equal on adapters exposing a combined video family.
type queueFamilyIndices struct {
	decode      uint32
	encode      uint32
	decodeFound bool
	encodeFound bool
}

func (q queueFamilyIndices) complete() bool { return q.decodeFound && q.encodeFound }

// videoQueueFamily pairs the generic and video-specific properties of one
// queue family, decoupled from the API for testability.
type videoQueueFamily struct {
	Flags           Flags
	CodecOperations Flags
}

// selectQueueFamilies picks the lowest-index family advertising H.264
// decode and the lowest advertising H.265 encode.
func selectQueueFamilies(families []videoQueueFamily) queueFamilyIndices {
	var idx queueFamilyIndices
	for i, f := range families {
		if !idx.decodeFound && f.Flags&QueueVideoDecodeBit != 0 &&
			f.CodecOperations&VideoCodecOperationDecodeH264 != 0 {
			idx.decode = uint32(i)
			idx.decodeFound = true
		}
		if !idx.encodeFound && f.Flags&QueueVideoEncodeBit != 0 &&
			f.CodecOperations&VideoCodecOperationEncodeH265 != 0 {
			idx.encode = uint32(i)
			idx.encodeFound = true
		}
	}
	return idx
}

// VideoContext owns the Vulkan instance, the selected adapter, the logical
// device, and the two video queues. It is read-only after NewVideoContext
// and must outlive every session created from it.
type VideoContext struct {
	vk *vkProcs

	physicalDevice PhysicalDevice
	deviceName     string
	memProps       PhysicalDeviceMemoryProperties

	decodeFamily uint32
	encodeFamily uint32
	decodeQueue  Queue
	encodeQueue  Queue

	log zerolog.Logger
}

// SameQueueFamily reports whether decode and encode share one family, which
// decides if the shared picture needs queue-ownership transfer barriers.
func (c *VideoContext) SameQueueFamily() bool { return c.decodeFamily == c.encodeFamily }

// NewVideoContext enumerates adapters, selects one able to decode H.264 and
// encode H.265 in hardware under the given policy, and builds the logical
// device with both video queues.
func NewVideoContext(policy AdapterPolicy, log zerolog.Logger) (*VideoContext, error) {
	vk, err := newVkProcs()
	if err != nil {
		return nil, err
	}

	c := &VideoContext{vk: vk, log: log}
	if err := c.createInstance(); err != nil {
		return nil, err
	}
	if err := c.pickPhysicalDevice(policy); err != nil {
		c.vk.DestroyInstance()
		return nil, err
	}
	if err := c.createLogicalDevice(); err != nil {
		c.vk.DestroyInstance()
		return nil, err
	}
	return c, nil
}

func (c *VideoContext) createInstance() error {
	appName := cstr("vkvideo")
	app := ApplicationInfo{
		SType:              StructureTypeApplicationInfo,
		PApplicationName:   appName,
		ApplicationVersion: MakeAPIVersion(0, 1, 0, 0),
		APIVersion:         MakeAPIVersion(0, 1, 3, 0),
	}
	ci := InstanceCreateInfo{
		SType:            StructureTypeInstanceCreateInfo,
		PApplicationInfo: &app,
	}
	var instance Instance
	if res := c.vk.CreateInstance(&ci, &instance); res != Success {
		return vkErr("vkCreateInstance", res)
	}
	return c.vk.bindInstance(instance)
}

func (c *VideoContext) enumerateAdapters() ([]PhysicalDevice, error) {
	var count uint32
	if res := c.vk.EnumeratePhysicalDevices(&count, nil); res != Success {
		return nil, vkErr("vkEnumeratePhysicalDevices", res)
	}
	if count == 0 {
		return nil, &Error{Kind: ErrNoDevice, Detail: "no Vulkan-capable adapter"}
	}
	devices := make([]PhysicalDevice, count)
	if res := c.vk.EnumeratePhysicalDevices(&count, &devices[0]); res != Success && res != Incomplete {
		return nil, vkErr("vkEnumeratePhysicalDevices", res)
	}
	return devices[:count], nil
}

func (c *VideoContext) queryQueueFamilies(pd PhysicalDevice) []videoQueueFamily {
	var count uint32
	c.vk.GetPhysicalDeviceQueueFamilyProperties2(pd, &count, nil)
	if count == 0 {
		return nil
	}
	props := make([]QueueFamilyProperties2, count)
	videoProps := make([]QueueFamilyVideoProperties, count)
	for i := range props {
		props[i].SType = StructureTypeQueueFamilyProperties2
		videoProps[i].SType = StructureTypeQueueFamilyVideoProperties
		props[i].PNext = unsafe.Pointer(&videoProps[i])
	}
	c.vk.GetPhysicalDeviceQueueFamilyProperties2(pd, &count, &props[0])

	families := make([]videoQueueFamily, count)
	for i := range families {
		families[i] = videoQueueFamily{
			Flags:           props[i].QueueFamilyProperties.QueueFlags,
			CodecOperations: videoProps[i].VideoCodecOperations,
		}
	}
	return families
}

func (c *VideoContext) queryExtensions(pd PhysicalDevice) (map[string]bool, error) {
	var count uint32
	if res := c.vk.EnumerateDeviceExtensionProperties(pd, &count, nil); res != Success {
		return nil, vkErr("vkEnumerateDeviceExtensionProperties", res)
	}
	available := make(map[string]bool, count)
	if count == 0 {
		return available, nil
	}
	props := make([]ExtensionProperties, count)
	if res := c.vk.EnumerateDeviceExtensionProperties(pd, &count, &props[0]); res != Success && res != Incomplete {
		return nil, vkErr("vkEnumerateDeviceExtensionProperties", res)
	}
	for i := range props[:count] {
		available[props[i].Name()] = true
	}
	return available, nil
}

// suitable probes one adapter and reports its queue families plus the first
// missing extension, logging a per-extension report the way the device
// selection is expected to explain itself.
func (c *VideoContext) suitable(pd PhysicalDevice, name string) (queueFamilyIndices, string, bool) {
	idx := selectQueueFamilies(c.queryQueueFamilies(pd))
	if idx.decodeFound {
		c.log.Debug().Str("device", name).Uint32("family", idx.decode).Msg("video decode queue family found")
	} else {
		c.log.Debug().Str("device", name).Msg("no H.264 decode queue family")
	}
	if idx.encodeFound {
		c.log.Debug().Str("device", name).Uint32("family", idx.encode).Msg("video encode queue family found")
	} else {
		c.log.Debug().Str("device", name).Msg("no H.265 encode queue family")
	}

	available, err := c.queryExtensions(pd)
	if err != nil {
		return idx, "", false
	}
	missing := ""
	for _, ext := range requiredExtensions {
		if available[ext] {
			c.log.Debug().Str("device", name).Str("extension", ext).Msg("found")
		} else {
			c.log.Debug().Str("device", name).Str("extension", ext).Msg("missing")
			if missing == "" {
				missing = ext
			}
		}
	}
	return idx, missing, idx.complete() && missing == ""
}

func (c *VideoContext) pickPhysicalDevice(policy AdapterPolicy) error {
	devices, err := c.enumerateAdapters()
	if err != nil {
		return err
	}

	type candidate struct {
		pd    PhysicalDevice
		props PhysicalDeviceProperties
	}
	candidates := make([]candidate, 0, len(devices))
	for _, pd := range devices {
		var props PhysicalDeviceProperties
		c.vk.GetPhysicalDeviceProperties(pd, &props)
		if policy.NameSubstring != "" &&
			!strings.Contains(strings.ToLower(props.Name()), strings.ToLower(policy.NameSubstring)) {
			continue
		}
		candidates = append(candidates, candidate{pd, props})
	}
	if len(candidates) == 0 {
		return &Error{Kind: ErrNoDevice, Detail: "no adapter matches " + policy.NameSubstring}
	}

	preferred := func(p *PhysicalDeviceProperties) bool {
		if !policy.PreferDiscrete || p.DeviceType != PhysicalDeviceTypeDiscreteGPU {
			return false
		}
		if len(policy.VendorAllowlist) == 0 {
			return true
		}
		for _, v := range policy.VendorAllowlist {
			if p.VendorID == v {
				return true
			}
		}
		return false
	}

	// Two-tier scan: preferred discrete adapters first, then anything.
	var lastIdx queueFamilyIndices
	var lastMissing string
	for _, tier := range []bool{true, false} {
		for i := range candidates {
			cand := &candidates[i]
			if preferred(&cand.props) != tier {
				continue
			}
			name := cand.props.Name()
			c.log.Info().Str("device", name).Msg("probing adapter")
			idx, missing, ok := c.suitable(cand.pd, name)
			lastIdx, lastMissing = idx, missing
			if !ok {
				continue
			}
			c.physicalDevice = cand.pd
			c.deviceName = name
			c.decodeFamily = idx.decode
			c.encodeFamily = idx.encode
			c.vk.GetPhysicalDeviceMemoryProperties(cand.pd, &c.memProps)
			c.log.Info().Str("device", name).
				Uint32("decode_family", idx.decode).
				Uint32("encode_family", idx.encode).
				Msg("selected adapter")
			return nil
		}
	}

	// Report the most specific failure observed.
	if !lastIdx.decodeFound {
		return &Error{Kind: ErrNoVideoQueue, Detail: "role = decode"}
	}
	if !lastIdx.encodeFound {
		return &Error{Kind: ErrNoVideoQueue, Detail: "role = encode"}
	}
	if lastMissing != "" {
		return &Error{Kind: ErrMissingExtension, Detail: lastMissing}
	}
	return &Error{Kind: ErrNoDevice, Detail: "no suitable adapter"}
}

func (c *VideoContext) createLogicalDevice() error {
	priority := float32(1.0)
	queueInfos := []DeviceQueueCreateInfo{{
		SType:            StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: c.decodeFamily,
		QueueCount:       1,
		PQueuePriorities: &priority,
	}}
	if c.encodeFamily != c.decodeFamily {
		queueInfos = append(queueInfos, DeviceQueueCreateInfo{
			SType:            StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: c.encodeFamily,
			QueueCount:       1,
			PQueuePriorities: &priority,
		})
	}

	sync2 := PhysicalDeviceSynchronization2Features{
		SType:            StructureTypePhysicalDeviceSynchronization2Features,
		Synchronization2: 1,
	}
	extNames, extKeep := cstrArray(requiredExtensions)

	ci := DeviceCreateInfo{
		SType:                   StructureTypeDeviceCreateInfo,
		PNext:                   unsafe.Pointer(&sync2),
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       &queueInfos[0],
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PPEnabledExtensionNames: extNames,
	}
	var device Device
	res := c.vk.CreateDevice(c.physicalDevice, &ci, &device)
	keepAliveAll(queueInfos, extKeep, &sync2)
	if res != Success {
		return &Error{Kind: ErrDeviceCreationFailed, Op: "vkCreateDevice", Detail: res.String()}
	}
	if err := c.vk.bindDevice(device); err != nil {
		return err
	}

	c.vk.GetDeviceQueue(c.decodeFamily, 0, &c.decodeQueue)
	c.vk.GetDeviceQueue(c.encodeFamily, 0, &c.encodeQueue)
	c.log.Info().Msg("logical device and video queues created")
	return nil
}

// WaitIdle blocks until the device finishes all submitted work.
func (c *VideoContext) WaitIdle() error {
	if res := c.vk.DeviceWaitIdle(); res != Success {
		return vkErr("vkDeviceWaitIdle", res)
	}
	return nil
}

// Close destroys the logical device and the instance. Sessions and ring
// resources must already be gone.
func (c *VideoContext) Close() {
	c.vk.DestroyDevice()
	c.vk.DestroyInstance()
}
