package vkvideo

import (
	"encoding/binary"

	"github.com/asticode/go-astiav"
)

// Muxer is the container-side sink for encoded HEVC access units.
type Muxer interface {
	// SetCodecParameters installs the track's codec-specific data; it must
	// be called before the first WritePacket.
	SetCodecParameters(vps, sps, pps []byte) error
	// WritePacket appends one access unit (Annex-B NAL units) at the given
	// pts in the stream timebase.
	WritePacket(au []byte, pts int64, keyframe bool) error
	// Close writes the container trailer. Abort closes without it, leaving
	// the file recognizable as incomplete.
	Close() error
	Abort()
}

// fileMuxer writes a single-track HEVC ISO-BMFF file through libavformat.
type fileMuxer struct {
	fc     *astiav.FormatContext
	stream *astiav.Stream
	ioCtx  *astiav.IOContext
	pkt    *astiav.Packet
	path   string

	headerWritten bool
}

// OpenMuxer prepares the output container for a w x h HEVC track at a
// constant fps. The file itself is created when the header is written.
func OpenMuxer(path string, w, h, fps int) (Muxer, error) {
	fc, err := astiav.AllocOutputFormatContext(nil, "", path)
	if err != nil {
		return nil, ioErr("alloc output context", err)
	}
	m := &fileMuxer{fc: fc, path: path}

	m.stream = fc.NewStream(nil)
	if m.stream == nil {
		m.close(false)
		return nil, &Error{Kind: ErrOutOfMemory, Op: "avformat_new_stream"}
	}
	cp := m.stream.CodecParameters()
	cp.SetMediaType(astiav.MediaTypeVideo)
	cp.SetCodecID(astiav.CodecIDHevc)
	cp.SetWidth(w)
	cp.SetHeight(h)
	m.stream.SetTimeBase(astiav.NewRational(1, fps))

	m.pkt = astiav.AllocPacket()
	return m, nil
}

func (m *fileMuxer) SetCodecParameters(vps, sps, pps []byte) error {
	hvcc, err := buildHvcC(vps, sps, pps)
	if err != nil {
		return err
	}
	if err := m.stream.CodecParameters().SetExtraData(hvcc); err != nil {
		return ioErr("set extradata", err)
	}
	return nil
}

func (m *fileMuxer) writeHeader() error {
	if !m.fc.OutputFormat().Flags().Has(astiav.IOFormatFlagNofile) {
		ioCtx, err := astiav.OpenIOContext(m.path, astiav.NewIOContextFlags(astiav.IOContextFlagWrite))
		if err != nil {
			return ioErr("open output", err)
		}
		m.ioCtx = ioCtx
		m.fc.SetPb(ioCtx)
	}
	if err := m.fc.WriteHeader(nil); err != nil {
		return ioErr("write header", err)
	}
	m.headerWritten = true
	return nil
}

func (m *fileMuxer) WritePacket(au []byte, pts int64, keyframe bool) error {
	if !m.headerWritten {
		if err := m.writeHeader(); err != nil {
			return err
		}
	}
	if err := m.pkt.FromData(annexBToLengthPrefixed(au)); err != nil {
		return ioErr("packet alloc", err)
	}
	m.pkt.SetStreamIndex(m.stream.Index())
	m.pkt.SetPts(pts)
	m.pkt.SetDts(pts)
	if keyframe {
		m.pkt.SetFlags(m.pkt.Flags().Add(astiav.PacketFlagKey))
	}
	err := m.fc.WriteInterleavedFrame(m.pkt)
	m.pkt.Unref()
	if err != nil {
		return ioErr("write frame", err)
	}
	return nil
}

func (m *fileMuxer) Close() error {
	var err error
	if m.headerWritten {
		if werr := m.fc.WriteTrailer(); werr != nil {
			err = ioErr("write trailer", werr)
		}
	}
	m.close(true)
	return err
}

func (m *fileMuxer) Abort() { m.close(true) }

func (m *fileMuxer) close(closeIO bool) {
	if m.pkt != nil {
		m.pkt.Free()
		m.pkt = nil
	}
	if closeIO && m.ioCtx != nil {
		m.ioCtx.Close()
		m.ioCtx = nil
	}
	if m.fc != nil {
		m.fc.Free()
		m.fc = nil
	}
}

// annexBToLengthPrefixed rewrites an Annex-B access unit into the 4-byte
// length-prefixed sample layout ISO-BMFF expects.
func annexBToLengthPrefixed(au []byte) []byte {
	nals := splitAnnexB(au)
	size := 0
	for _, nal := range nals {
		size += 4 + len(nal)
	}
	out := make([]byte, 0, size)
	var length [4]byte
	for _, nal := range nals {
		binary.BigEndian.PutUint32(length[:], uint32(len(nal)))
		out = append(out, length[:]...)
		out = append(out, nal...)
	}
	return out
}

// buildHvcC assembles the HEVCDecoderConfigurationRecord from the three
// parameter-set NAL units, lifting the profile/tier/level words straight
// out of the SPS.
func buildHvcC(vps, sps, pps []byte) ([]byte, error) {
	if len(vps) == 0 || len(sps) == 0 || len(pps) == 0 {
		return nil, &Error{Kind: ErrVideoAPIFailed, Op: "buildHvcC", Detail: "incomplete parameter sets"}
	}
	rbsp := removeEmulationPrevention(sps)
	// NAL header (2) + sps_video_parameter_set_id/max_sub_layers/nesting (1),
	// then profile_tier_level: 12 bytes up to general_level_idc.
	if len(rbsp) < 15 {
		return nil, parseErr("short HEVC sps", nil)
	}
	ptl := rbsp[3:15]

	var b []byte
	b = append(b, 1)            // configurationVersion
	b = append(b, ptl[0])       // profile_space/tier/profile_idc
	b = append(b, ptl[1:5]...)  // general_profile_compatibility_flags
	b = append(b, ptl[5:11]...) // general_constraint_indicator_flags
	b = append(b, ptl[11])      // general_level_idc
	b = append(b, 0xF0, 0x00)   // min_spatial_segmentation_idc
	b = append(b, 0xFC)         // parallelismType
	b = append(b, 0xFC|1)       // chromaFormat 4:2:0
	b = append(b, 0xF8)         // bitDepthLumaMinus8
	b = append(b, 0xF8)         // bitDepthChromaMinus8
	b = append(b, 0, 0)         // avgFrameRate unknown
	// numTemporalLayers=1, temporalIdNested=1, lengthSizeMinusOne=3
	b = append(b, 1<<3|1<<2|3)
	b = append(b, 3) // numOfArrays

	appendArray := func(nalType byte, nal []byte) {
		b = append(b, 0x80|nalType) // array_completeness=1
		b = append(b, 0, 1)         // numNalus
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], uint16(len(nal)))
		b = append(b, n[:]...)
		b = append(b, nal...)
	}
	appendArray(HevcNalVps, vps)
	appendArray(HevcNalSps, sps)
	appendArray(HevcNalPps, pps)
	return b, nil
}

// removeEmulationPrevention strips 00 00 03 escape bytes from a NAL unit.
func removeEmulationPrevention(nal []byte) []byte {
	out := make([]byte, 0, len(nal))
	zeros := 0
	for i := 0; i < len(nal); i++ {
		if zeros >= 2 && nal[i] == 3 {
			zeros = 0
			continue
		}
		if nal[i] == 0 {
			zeros++
		} else {
			zeros = 0
		}
		out = append(out, nal[i])
	}
	return out
}
