package vkvideo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/rs/zerolog"
)

// End-to-end transcode over real hardware. Requires a Vulkan ICD with video
// queues plus an H.264 test file; skipped otherwise so the suite stays
// runnable on machines without a capable GPU.
func TestTranscodeEndToEnd(t *testing.T) {
	input := os.Getenv("VKVIDEO_TEST_INPUT")
	if input == "" {
		t.Skip("VKVIDEO_TEST_INPUT not set")
	}
	if err := loadVulkan(); err != nil {
		t.Skipf("libvulkan unavailable: %v", err)
	}

	output := filepath.Join(t.TempDir(), "out.mp4")
	cfg := Config{
		InputPath:  input,
		OutputPath: output,
		RingSize:   3,
	}
	log := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)

	p, err := NewPipeline(cfg, log)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && (e.Kind == ErrNoDevice || e.Kind == ErrNoVideoQueue || e.Kind == ErrMissingExtension) {
			t.Skipf("no video-capable adapter: %v", err)
		}
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Close()

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := p.Stats()
	if stats.FramesMuxed == 0 {
		t.Fatal("no frames muxed")
	}
	if stats.FramesMuxed != stats.FramesSubmitted {
		t.Errorf("muxed %d of %d submitted frames", stats.FramesMuxed, stats.FramesSubmitted)
	}
	// Fence accounting: a slot is waited on exactly once per frame it
	// carried (the reuse wait in the loop, plus the final drain wait), so
	// the counts sum to the frame total and are equal when the frame count
	// divides by the ring size.
	var total uint64
	for _, w := range stats.SlotWaits {
		total += w
	}
	if total != stats.FramesMuxed {
		t.Errorf("slot waits %v sum to %d, want %d", stats.SlotWaits, total, stats.FramesMuxed)
	}
	ring := uint64(cfg.RingSize)
	if stats.FramesMuxed%ring == 0 {
		for i, w := range stats.SlotWaits {
			if w != stats.FramesMuxed/ring {
				t.Errorf("slot %d waited %d times, want exactly %d", i, w, stats.FramesMuxed/ring)
			}
		}
	}

	verifyHevcOutput(t, output, int64(stats.FramesMuxed))
}

// verifyHevcOutput re-opens the produced file and checks track codec,
// sample count, and the 0..n-1 pts progression in the 1/30 timebase.
func verifyHevcOutput(t *testing.T, path string, wantFrames int64) {
	t.Helper()

	fc := astiav.AllocFormatContext()
	if fc == nil {
		t.Fatal("alloc format context")
	}
	defer fc.Free()
	if err := fc.OpenInput(path, nil, nil); err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer fc.CloseInput()
	if err := fc.FindStreamInfo(nil); err != nil {
		t.Fatalf("stream info: %v", err)
	}

	streams := fc.Streams()
	if len(streams) != 1 {
		t.Fatalf("output has %d streams, want 1", len(streams))
	}
	cp := streams[0].CodecParameters()
	if cp.CodecID() != astiav.CodecIDHevc {
		t.Fatalf("output codec = %v, want HEVC", cp.CodecID())
	}
	if len(cp.ExtraData()) == 0 {
		t.Error("output track is missing hvcC extradata")
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()
	var count, wantPts int64
	for {
		if err := fc.ReadFrame(pkt); err != nil {
			break
		}
		if pkt.Pts() != wantPts {
			t.Errorf("sample %d pts = %d, want %d", count, pkt.Pts(), wantPts)
		}
		wantPts++
		count++
		pkt.Unref()
	}
	if count != wantFrames {
		t.Errorf("output has %d samples, want %d", count, wantFrames)
	}
}

// A vanished input surfaces as a classified error before any GPU work, and
// no trailer is written.
func TestPipelineMissingInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	_, err := NewPipeline(Config{
		InputPath:  filepath.Join(t.TempDir(), "does-not-exist.mp4"),
		OutputPath: out,
	}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error")
	}
	if k := Kind(err); k != ErrIO && k != ErrBadInput {
		t.Errorf("kind = %v, want IoError or BadInput", k)
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Error("no output file should exist before the header is written")
	}
}
