// Package vkvideo transcodes H.264 video into HEVC entirely on the GPU via
// the Vulkan Video extensions.
//
// The compressed input bitstream is staged into host-visible buffers, fed
// to a hardware decode queue, and the decoded NV12 pictures are handed to a
// hardware encode queue without ever leaving device memory. Only the final
// HEVC access units are read back for muxing.
//
// # Architecture
//
//	Demuxer -> staging buffer -> decode queue -> shared NV12 picture
//	        -> encode queue -> output buffer -> Muxer
//
// Key pieces:
//   - VideoContext: adapter selection (video queue families + extensions)
//     and the logical device with its decode and encode queues
//   - DecodeSession / EncodeSession: codec sessions, parameter objects, and
//     their DPB image arrays
//   - the frame ring: per-slot staging buffers, shared picture, command
//     buffers, and synchronization primitives
//   - Pipeline: the per-frame loop with a semaphore hand-off between the
//     queues and a per-slot fence toward the host
//
// # Native Libraries
//
// Vulkan entry points are resolved at runtime from libvulkan with purego;
// no Vulkan SDK is needed at build time. Set VKVIDEO_LIBVULKAN to override
// the loader path and VKVIDEO_ADAPTER to select a GPU by name substring.
// Container demuxing and muxing go through libavformat (go-astiav), which
// is the only cgo dependency.
package vkvideo
