package vkvideo

import "testing"

func idrHeader(frameNum uint32) *sliceHeader {
	return &sliceHeader{NalRefIdc: 3, NalUnitType: h264NalSliceIdr, SliceType: 2, FrameNum: frameNum}
}

func pHeader(frameNum uint32, pocLsb uint32) *sliceHeader {
	return &sliceHeader{NalRefIdc: 2, NalUnitType: h264NalSliceNonIdr, SliceType: 0, FrameNum: frameNum, PicOrderCntLsb: pocLsb}
}

func TestDpbSetupSlotNeverInReferences(t *testing.T) {
	d := newDpbManager(dpbSlotCount, 4, 4, 4, 0)
	for frame := uint32(0); frame < 64; frame++ {
		var hdr *sliceHeader
		if frame == 0 {
			hdr = idrHeader(0)
		} else {
			hdr = pHeader(frame%256, (2*frame)%256)
		}
		poc := d.PicOrderCnt(hdr)
		setup, refs := d.BeginPicture(hdr)
		if setup < 0 || setup >= dpbSlotCount {
			t.Fatalf("frame %d: setup slot %d out of range", frame, setup)
		}
		for _, ref := range refs {
			if ref.Slot == setup {
				t.Fatalf("frame %d: setup slot %d present in reference list", frame, setup)
			}
		}
		d.EndPicture(hdr, setup, poc)
	}
}

func TestDpbIdrFlushes(t *testing.T) {
	d := newDpbManager(dpbSlotCount, 4, 4, 4, 0)
	hdr := idrHeader(0)
	setup, _ := d.BeginPicture(hdr)
	d.EndPicture(hdr, setup, d.PicOrderCnt(hdr))
	for i := uint32(1); i < 4; i++ {
		h := pHeader(i, 2*i)
		s, _ := d.BeginPicture(h)
		d.EndPicture(h, s, d.PicOrderCnt(h))
	}
	if len(d.refs) != 4 {
		t.Fatalf("expected 4 references, got %d", len(d.refs))
	}

	hdr2 := idrHeader(0)
	_, refs := d.BeginPicture(hdr2)
	if len(refs) != 0 {
		t.Fatalf("IDR should flush the DPB, still %d references", len(refs))
	}
}

func TestDpbSlidingWindow(t *testing.T) {
	d := newDpbManager(dpbSlotCount, 2, 4, 4, 0)
	hdr := idrHeader(0)
	setup, _ := d.BeginPicture(hdr)
	d.EndPicture(hdr, setup, 0)

	for i := uint32(1); i <= 5; i++ {
		h := pHeader(i, 2*i)
		s, refs := d.BeginPicture(h)
		if len(refs) > 2 {
			t.Fatalf("frame %d: %d references exceed max_num_ref_frames", i, len(refs))
		}
		d.EndPicture(h, s, d.PicOrderCnt(h))
	}
	if len(d.refs) != 2 {
		t.Fatalf("expected window of 2, got %d", len(d.refs))
	}
	// The survivors must be the most recent frames.
	for _, ref := range d.refs {
		if ref.FrameNum != 4 && ref.FrameNum != 5 {
			t.Errorf("unexpected reference frame_num %d after sliding window", ref.FrameNum)
		}
	}
}

func TestDpbMMCOUnmarkShortTerm(t *testing.T) {
	d := newDpbManager(dpbSlotCount, 4, 4, 4, 0)
	hdr := idrHeader(0)
	s, _ := d.BeginPicture(hdr)
	d.EndPicture(hdr, s, 0)
	h1 := pHeader(1, 2)
	s1, _ := d.BeginPicture(h1)
	d.EndPicture(h1, s1, d.PicOrderCnt(h1))

	// MMCO 1 against frame_num 0: difference_of_pic_nums_minus1 = 1.
	h2 := pHeader(2, 4)
	h2.AdaptiveRefPicMarking = true
	h2.MMCO = []mmcoOp{{Op: 1, DifferenceOfPicNumsMinus1: 1}}
	s2, _ := d.BeginPicture(h2)
	d.EndPicture(h2, s2, d.PicOrderCnt(h2))

	for _, ref := range d.refs {
		if ref.FrameNum == 0 {
			t.Error("MMCO 1 should have unmarked frame_num 0")
		}
	}
	if len(d.refs) != 2 {
		t.Errorf("expected 2 references after MMCO, got %d", len(d.refs))
	}
}

func TestDpbMMCOReset(t *testing.T) {
	d := newDpbManager(dpbSlotCount, 4, 4, 4, 0)
	hdr := idrHeader(0)
	s, _ := d.BeginPicture(hdr)
	d.EndPicture(hdr, s, 0)

	h := pHeader(1, 2)
	h.AdaptiveRefPicMarking = true
	h.MMCO = []mmcoOp{{Op: 5}}
	s1, _ := d.BeginPicture(h)
	d.EndPicture(h, s1, d.PicOrderCnt(h))

	if len(d.refs) != 1 {
		t.Fatalf("expected only the current picture after MMCO 5, got %d", len(d.refs))
	}
	if d.refs[0].FrameNum != 0 {
		t.Errorf("MMCO 5 resets the current frame_num, got %d", d.refs[0].FrameNum)
	}
}

// A stream may drive every reference long-term via MMCO 6 without ever
// trimming them; eviction must still make progress instead of spinning.
func TestDpbAllLongTermStillEvicts(t *testing.T) {
	d := newDpbManager(dpbSlotCount, dpbSlotCount, 4, 4, 0)
	hdr := idrHeader(0)
	s, _ := d.BeginPicture(hdr)
	d.EndPicture(hdr, s, 0)

	// Fill every slot with a long-term reference.
	for i := uint32(1); i < dpbSlotCount+4; i++ {
		h := pHeader(i%256, (2*i)%256)
		h.AdaptiveRefPicMarking = true
		h.MMCO = []mmcoOp{{Op: 6, LongTermFrameIdx: i}}
		setup, refs := d.BeginPicture(h)
		if setup < 0 || setup >= dpbSlotCount {
			t.Fatalf("picture %d: no usable setup slot (%d)", i, setup)
		}
		for _, ref := range refs {
			if ref.Slot == setup {
				t.Fatalf("picture %d: setup slot %d still referenced", i, setup)
			}
		}
		d.EndPicture(h, setup, d.PicOrderCnt(h))
	}
	if len(d.refs) > dpbSlotCount {
		t.Fatalf("DPB overflowed: %d references", len(d.refs))
	}
}

func TestPicOrderCntType0Wrap(t *testing.T) {
	d := newDpbManager(dpbSlotCount, 4, 4, 4, 0) // MaxPicOrderCntLsb = 256
	poc := d.PicOrderCnt(idrHeader(0))
	if poc != 0 {
		t.Fatalf("IDR poc = %d, want 0", poc)
	}
	last := poc
	lsb := uint32(0)
	for i := 0; i < 300; i++ {
		lsb = (lsb + 2) % 256
		h := pHeader(uint32(i+1)%16, lsb)
		poc = d.PicOrderCnt(h)
		if poc <= last {
			t.Fatalf("poc not monotonic at step %d: %d after %d", i, poc, last)
		}
		last = poc
	}
}

func TestPicOrderCntType2(t *testing.T) {
	d := newDpbManager(dpbSlotCount, 4, 4, 4, 2)
	if got := d.PicOrderCnt(idrHeader(0)); got != 0 {
		t.Errorf("poc(IDR) = %d, want 0", got)
	}
	if got := d.PicOrderCnt(pHeader(3, 0)); got != 6 {
		t.Errorf("poc(frame 3) = %d, want 6", got)
	}
}
