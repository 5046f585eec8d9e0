package vkvideo

import (
	"errors"
	"io"

	"github.com/asticode/go-astiav"
)

// Demuxer is the container-side packet source the pipeline consumes.
type Demuxer interface {
	Width() int
	Height() int
	ExtraData() []byte // avcC codec-specific data
	// NextPacket returns the next video packet's bytes and pts, io.EOF at
	// end of stream.
	NextPacket() ([]byte, int64, error)
	Close()
}

// fileDemuxer reads the single H.264 video track of an ISO-BMFF file
// through libavformat.
type fileDemuxer struct {
	fc          *astiav.FormatContext
	pkt         *astiav.Packet
	streamIndex int

	width, height int
	extraData     []byte
}

// OpenDemuxer opens the input container and locates its H.264 video track.
// The track must carry SPS/PPS in its codec-specific data.
func OpenDemuxer(path string) (Demuxer, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, &Error{Kind: ErrOutOfMemory, Op: "avformat_alloc_context"}
	}
	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, ioErr("open input", err)
	}
	d := &fileDemuxer{fc: fc, streamIndex: -1}
	if err := fc.FindStreamInfo(nil); err != nil {
		d.Close()
		return nil, &Error{Kind: ErrBadInput, Detail: "could not read stream info", Err: err}
	}

	for _, s := range fc.Streams() {
		cp := s.CodecParameters()
		if cp.MediaType() != astiav.MediaTypeVideo {
			continue
		}
		if cp.CodecID() != astiav.CodecIDH264 {
			d.Close()
			return nil, badInput("unsupported codec")
		}
		d.streamIndex = s.Index()
		d.width = cp.Width()
		d.height = cp.Height()
		if ed := cp.ExtraData(); len(ed) > 0 {
			d.extraData = append([]byte(nil), ed...)
		}
		break
	}
	if d.streamIndex < 0 {
		d.Close()
		return nil, badInput("no video track")
	}
	if len(d.extraData) == 0 {
		d.Close()
		return nil, badInput("missing parameter sets")
	}

	d.pkt = astiav.AllocPacket()
	return d, nil
}

func (d *fileDemuxer) Width() int        { return d.width }
func (d *fileDemuxer) Height() int       { return d.height }
func (d *fileDemuxer) ExtraData() []byte { return d.extraData }

func (d *fileDemuxer) NextPacket() ([]byte, int64, error) {
	for {
		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				return nil, 0, io.EOF
			}
			return nil, 0, ioErr("read frame", err)
		}
		if d.pkt.StreamIndex() != d.streamIndex {
			d.pkt.Unref()
			continue
		}
		data := append([]byte(nil), d.pkt.Data()...)
		pts := d.pkt.Pts()
		d.pkt.Unref()
		return data, pts, nil
	}
}

func (d *fileDemuxer) Close() {
	if d.pkt != nil {
		d.pkt.Free()
		d.pkt = nil
	}
	if d.fc != nil {
		d.fc.CloseInput()
		d.fc.Free()
		d.fc = nil
	}
}
