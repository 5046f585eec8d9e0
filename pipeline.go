package vkvideo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// fenceTimeoutNs bounds every fence wait; expiry means the device stopped
// making progress and is treated as lost.
const fenceTimeoutNs = 10_000_000_000

// PipelineStats counts pipeline progress for logging and tests.
type PipelineStats struct {
	FramesSubmitted uint64
	FramesMuxed     uint64
	BytesOut        uint64
	SlotWaits       []uint64 // fence waits per ring slot
}

// Pipeline owns the frame ring and drives packets through decode and encode
// until the demuxer runs dry. It is the single error catch site: every
// component failure surfaces here and stops the run.
type Pipeline struct {
	cfg Config
	log zerolog.Logger

	ctx   *VideoContext
	dec   *DecodeSession
	enc   *EncodeSession
	ring  *frameRing
	demux Demuxer
	mux   Muxer

	avc        *avcConfig
	frameCount int64
	stats      PipelineStats
}

// NewPipeline opens both containers, builds the device context and the two
// sessions, hands the generated HEVC parameter sets to the muxer, and
// allocates the frame ring.
func NewPipeline(cfg Config, log zerolog.Logger) (*Pipeline, error) {
	cfg.normalize()
	if cfg.Adapter.VendorAllowlist == nil && !cfg.Adapter.PreferDiscrete {
		cfg.Adapter = DefaultAdapterPolicy()
	}
	if cfg.Adapter.NameSubstring == "" {
		cfg.Adapter.NameSubstring = os.Getenv("VKVIDEO_ADAPTER")
	}

	p := &Pipeline{cfg: cfg, log: log}
	fail := func(err error) (*Pipeline, error) {
		p.Close()
		return nil, err
	}

	var err error
	if p.demux, err = OpenDemuxer(cfg.InputPath); err != nil {
		return fail(err)
	}
	if p.avc, err = parseAVCC(p.demux.ExtraData()); err != nil {
		return fail(err)
	}
	w, h := uint32(p.demux.Width()), uint32(p.demux.Height())
	if w == 0 || h == 0 {
		return fail(badInput("container reports no video geometry"))
	}
	if p.mux, err = OpenMuxer(cfg.OutputPath, int(w), int(h), outputFps); err != nil {
		return fail(err)
	}

	if p.ctx, err = NewVideoContext(cfg.Adapter, log); err != nil {
		return fail(err)
	}
	if p.dec, err = NewDecodeSession(p.ctx, p.avc, w, h); err != nil {
		return fail(err)
	}
	if p.enc, err = NewEncodeSession(p.ctx, w, h, cfg.RateMode, uint32(cfg.RingSize)); err != nil {
		return fail(err)
	}
	ps := p.enc.ParameterSets()
	if err = p.mux.SetCodecParameters(ps.VPS, ps.SPS, ps.PPS); err != nil {
		return fail(err)
	}
	if p.ring, err = newFrameRing(p.ctx, p.dec, p.enc, w, h, cfg.RingSize); err != nil {
		return fail(err)
	}
	p.stats.SlotWaits = make([]uint64, cfg.RingSize)

	log.Info().
		Uint32("width", w).Uint32("height", h).
		Int("ring", cfg.RingSize).
		Str("rate_mode", cfg.RateMode.String()).
		Msg("pipeline ready")
	return p, nil
}

// Stats returns a copy of the pipeline counters.
func (p *Pipeline) Stats() PipelineStats { return p.stats }

// Run pulls packets until end of stream, then drains in-flight slots and
// writes the trailer. A canceled context stops after the current slot and
// leaves the output without a trailer.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			p.drain()
			p.mux.Abort()
			return err
		}
		data, _, err := p.demux.NextPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return p.fail(err)
		}
		if err := p.processPacket(data); err != nil {
			return p.fail(err)
		}
	}

	if err := p.drain(); err != nil {
		return p.fail(err)
	}
	if err := p.mux.Close(); err != nil {
		return p.fail(err)
	}
	p.log.Info().Uint64("frames", p.stats.FramesMuxed).Uint64("bytes", p.stats.BytesOut).Msg("transcode complete")
	return nil
}

// processPacket stages one access unit and submits its decode and encode.
func (p *Pipeline) processPacket(data []byte) error {
	nals, err := splitNALUnits(data, p.avc.NalLengthSize)
	if err != nil {
		return err
	}

	var slices [][]byte
	var newSPS, newPPS []byte
	for _, nal := range nals {
		if len(nal) == 0 {
			continue
		}
		switch nal[0] & 0x1F {
		case h264NalSliceNonIdr, h264NalSliceIdr:
			slices = append(slices, nal)
		case h264NalSps:
			newSPS = nal
		case h264NalPps:
			newPPS = nal
		}
	}
	// Streams often repeat the container parameter sets in-band; only a
	// genuine change forces a session-parameter swap.
	if newSPS != nil && bytes.Equal(newSPS, p.avc.SPS[0]) {
		newSPS = nil
	}
	if newPPS != nil && bytes.Equal(newPPS, p.avc.PPS[0]) {
		newPPS = nil
	}
	if newSPS != nil || newPPS != nil {
		// Parameter objects are replaced only with the device idle, between
		// frames.
		if err := p.drain(); err != nil {
			return err
		}
		if err := p.ctx.WaitIdle(); err != nil {
			return err
		}
		if err := p.dec.ReplaceParameters(newSPS, newPPS); err != nil {
			return err
		}
		if newSPS != nil {
			p.avc.SPS[0] = newSPS
		}
		if newPPS != nil {
			p.avc.PPS[0] = newPPS
		}
	}
	if len(slices) == 0 {
		return nil
	}

	hdr, err := parseSliceHeader(slices[0], p.dec.sps, p.dec.pps)
	if err != nil {
		return err
	}

	slot := p.ring.slots[p.frameCount%int64(p.cfg.RingSize)]
	vk := p.ctx.vk
	if slot.pending {
		// One fence wait per submitted frame, here or in drain; a fresh
		// slot has nothing to wait for.
		if err := p.waitSlot(slot); err != nil {
			return err
		}
		if err := p.reclaim(slot); err != nil {
			return err
		}
	}
	if res := vk.ResetCommandBuffer(slot.decodeCB); res != Success {
		return vkErr("vkResetCommandBuffer", res)
	}
	if res := vk.ResetCommandBuffer(slot.encodeCB); res != Success {
		return vkErr("vkResetCommandBuffer", res)
	}

	// Stage the slices as Annex-B with one offset per slice NAL unit.
	staged := DeviceSize(0)
	for _, s := range slices {
		staged += DeviceSize(3 + len(s))
	}
	if err := p.ring.ensureInputCapacity(slot, staged); err != nil {
		return err
	}
	dst := slot.input.bytes()
	sliceOffsets := make([]uint32, 0, len(slices))
	n := 0
	for _, s := range slices {
		sliceOffsets = append(sliceOffsets, uint32(n))
		n += copy(dst[n:], []byte{0, 0, 1})
		n += copy(dst[n:], s)
	}

	if err := p.recordDecode(slot, DeviceSize(n), sliceOffsets, hdr); err != nil {
		return err
	}
	if err := p.recordEncode(slot); err != nil {
		return err
	}
	if err := p.submit(slot); err != nil {
		return err
	}

	slot.pending = true
	slot.pendingPts = p.frameCount
	p.frameCount++
	p.stats.FramesSubmitted++
	p.log.Debug().Int64("frame", slot.pendingPts).Int("slot", slot.index).Msg("submitted")
	return nil
}

func (p *Pipeline) waitSlot(slot *frameSlot) error {
	p.stats.SlotWaits[slot.index]++
	switch res := p.ctx.vk.WaitForFences(&slot.encodeDone, 1, fenceTimeoutNs); res {
	case Success:
		return nil
	case Timeout:
		return &Error{Kind: ErrDeviceLost, Op: "vkWaitForFences", Detail: "fence timeout"}
	default:
		return vkErr("vkWaitForFences", res)
	}
}

// reclaim reads back the slot's finished frame, if any, and hands it to the
// muxer. The byte count comes from the encode feedback query, never the
// buffer capacity.
func (p *Pipeline) reclaim(slot *frameSlot) error {
	if !slot.pending {
		return nil
	}
	offset, size, err := p.enc.FetchEncodedSize(uint32(slot.index))
	if err != nil {
		return err
	}
	if DeviceSize(offset)+DeviceSize(size) > slot.output.size {
		return &Error{Kind: ErrVideoAPIFailed, Op: "encode feedback",
			Detail: "reported range exceeds bitstream buffer"}
	}
	au := make([]byte, size)
	copy(au, slot.output.bytes()[offset:])

	if err := p.mux.WritePacket(au, slot.pendingPts, hevcKeyframe(au)); err != nil {
		return err
	}
	// Leave the fence reusable no matter which path retired the slot.
	if res := p.ctx.vk.ResetFences(&slot.encodeDone, 1); res != Success {
		return vkErr("vkResetFences", res)
	}
	slot.pending = false
	p.stats.FramesMuxed++
	p.stats.BytesOut += uint64(size)
	p.log.Debug().Int64("frame", slot.pendingPts).Int("bytes", int(size)).Msg("muxed")
	return nil
}

func (p *Pipeline) recordDecode(slot *frameSlot, bitstreamSize DeviceSize, sliceOffsets []uint32, hdr *sliceHeader) error {
	vk := p.ctx.vk
	begin := CommandBufferBeginInfo{SType: StructureTypeCommandBufferBeginInfo}
	if res := vk.BeginCommandBuffer(slot.decodeCB, &begin); res != Success {
		return vkErr("vkBeginCommandBuffer", res)
	}

	p.dec.Record(slot.decodeCB, slot.input.buffer, bitstreamSize, sliceOffsets, hdr,
		decodedPicture{Image: slot.picture.image, View: slot.picture.view})

	// Hand the decoded picture to the encode queue. Different families need
	// a release here and a matching acquire in the encode command buffer.
	if p.ctx.SameQueueFamily() {
		p.ctx.transitionImageLayout(slot.decodeCB, slot.picture.image,
			ImageLayoutVideoDecodeDst, ImageLayoutVideoEncodeSrc, 0, 1)
	} else {
		p.ctx.imageBarrier(slot.decodeCB, slot.picture.image,
			ImageLayoutVideoDecodeDst, ImageLayoutVideoEncodeSrc, 0, 1,
			p.ctx.decodeFamily, p.ctx.encodeFamily)
	}

	if res := vk.EndCommandBuffer(slot.decodeCB); res != Success {
		return vkErr("vkEndCommandBuffer", res)
	}
	return nil
}

func (p *Pipeline) recordEncode(slot *frameSlot) error {
	vk := p.ctx.vk
	begin := CommandBufferBeginInfo{SType: StructureTypeCommandBufferBeginInfo}
	if res := vk.BeginCommandBuffer(slot.encodeCB, &begin); res != Success {
		return vkErr("vkBeginCommandBuffer", res)
	}

	if !p.ctx.SameQueueFamily() {
		// Acquire side of the ownership transfer recorded on decode.
		p.ctx.imageBarrier(slot.encodeCB, slot.picture.image,
			ImageLayoutVideoDecodeDst, ImageLayoutVideoEncodeSrc, 0, 1,
			p.ctx.decodeFamily, p.ctx.encodeFamily)
	}

	p.enc.Record(slot.encodeCB,
		decodedPicture{Image: slot.picture.image, View: slot.picture.view},
		slot.output.buffer, slot.output.size, uint32(slot.index))

	if res := vk.EndCommandBuffer(slot.encodeCB); res != Success {
		return vkErr("vkEndCommandBuffer", res)
	}
	return nil
}

// submit sends decode then encode, chained by the slot's binary semaphore at
// the video-encode stage, with the slot fence signalled by encode.
func (p *Pipeline) submit(slot *frameSlot) error {
	vk := p.ctx.vk

	decodeCmd := CommandBufferSubmitInfo{
		SType:         StructureTypeCommandBufferSubmitInfo,
		CommandBuffer: slot.decodeCB,
	}
	decodeSignal := SemaphoreSubmitInfo{
		SType:     StructureTypeSemaphoreSubmitInfo,
		Semaphore: slot.decodeDone,
		StageMask: PipelineStage2VideoDecode,
	}
	decodeSubmit := SubmitInfo2{
		SType:                    StructureTypeSubmitInfo2,
		CommandBufferInfoCount:   1,
		PCommandBufferInfos:      &decodeCmd,
		SignalSemaphoreInfoCount: 1,
		PSignalSemaphoreInfos:    &decodeSignal,
	}
	if res := vk.QueueSubmit2(p.ctx.decodeQueue, &decodeSubmit, 0); res != Success {
		return vkErr("vkQueueSubmit2", res)
	}

	encodeCmd := CommandBufferSubmitInfo{
		SType:         StructureTypeCommandBufferSubmitInfo,
		CommandBuffer: slot.encodeCB,
	}
	encodeWait := SemaphoreSubmitInfo{
		SType:     StructureTypeSemaphoreSubmitInfo,
		Semaphore: slot.decodeDone,
		StageMask: PipelineStage2VideoEncode,
	}
	encodeSubmit := SubmitInfo2{
		SType:                  StructureTypeSubmitInfo2,
		WaitSemaphoreInfoCount: 1,
		PWaitSemaphoreInfos:    &encodeWait,
		CommandBufferInfoCount: 1,
		PCommandBufferInfos:    &encodeCmd,
	}
	if res := vk.QueueSubmit2(p.ctx.encodeQueue, &encodeSubmit, slot.encodeDone); res != Success {
		return vkErr("vkQueueSubmit2", res)
	}
	keepAliveAll(&decodeCmd, &decodeSignal, &encodeCmd, &encodeWait)
	return nil
}

// drain retires every in-flight slot in submission order.
func (p *Pipeline) drain() error {
	size := int64(p.cfg.RingSize)
	for k := int64(0); k < size; k++ {
		slot := p.ring.slots[(p.frameCount+k)%size]
		if !slot.pending {
			continue
		}
		if err := p.waitSlot(slot); err != nil {
			return err
		}
		if err := p.reclaim(slot); err != nil {
			return err
		}
	}
	return nil
}

// fail applies the error policy: wait for the device unless it is lost or
// out of memory, close the output without a trailer, propagate.
func (p *Pipeline) fail(err error) error {
	switch Kind(err) {
	case ErrDeviceLost, ErrOutOfMemory:
	default:
		if p.ctx != nil {
			_ = p.ctx.WaitIdle()
		}
	}
	if p.mux != nil {
		p.mux.Abort()
		p.mux = nil
	}
	return err
}

// Close tears everything down in reverse creation order, waiting for the
// device first.
func (p *Pipeline) Close() {
	if p.ctx != nil {
		_ = p.ctx.WaitIdle()
	}
	if p.ring != nil {
		p.ring.destroy()
		p.ring = nil
	}
	if p.enc != nil {
		p.enc.Destroy()
		p.enc = nil
	}
	if p.dec != nil {
		p.dec.Destroy()
		p.dec = nil
	}
	if p.ctx != nil {
		p.ctx.Close()
		p.ctx = nil
	}
	if p.mux != nil {
		p.mux.Abort()
		p.mux = nil
	}
	if p.demux != nil {
		p.demux.Close()
		p.demux = nil
	}
}
