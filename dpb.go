package vkvideo

// dpbManager tracks which DPB slots hold reference pictures and applies the
// H.264 reference-marking process (sliding window and MMCO) to produce slot
// assignments for each decode command. All state is host-side bookkeeping;
// the images themselves live in the decode session's DPB array.

type dpbPicture struct {
	Slot             int32
	FrameNum         uint32
	PicOrderCnt      int32
	LongTerm         bool
	LongTermFrameIdx uint32
}

type dpbManager struct {
	slotCount    int
	maxRefFrames int
	maxFrameNum  uint32

	refs []dpbPicture

	maxLongTermFrameIdx int32 // -1 while disabled

	// Picture order count state for poc type 0.
	prevPocMsb int32
	prevPocLsb int32
	maxPocLsb  uint32
	pocType    uint8
}

func newDpbManager(slotCount int, maxRefFrames uint8, log2MaxFrameNumMinus4, log2MaxPocLsbMinus4, pocType uint8) *dpbManager {
	m := int(maxRefFrames)
	if m < 1 {
		m = 1
	}
	if m > slotCount {
		m = slotCount
	}
	return &dpbManager{
		slotCount:           slotCount,
		maxRefFrames:        m,
		maxFrameNum:         1 << (log2MaxFrameNumMinus4 + 4),
		maxPocLsb:           1 << (log2MaxPocLsbMinus4 + 4),
		pocType:             pocType,
		maxLongTermFrameIdx: -1,
	}
}

// flush drops every reference, returning the DPB to its IDR state.
func (d *dpbManager) flush() {
	d.refs = d.refs[:0]
	d.maxLongTermFrameIdx = -1
	d.prevPocMsb, d.prevPocLsb = 0, 0
}

// PicOrderCnt derives the current picture's POC from the slice header. Only
// poc types 0 and 2 occur in progressive container streams; type 1 is
// rejected at session setup.
func (d *dpbManager) PicOrderCnt(hdr *sliceHeader) int32 {
	switch d.pocType {
	case 0:
		if hdr.IsIDR() {
			d.prevPocMsb, d.prevPocLsb = 0, 0
		}
		lsb := int32(hdr.PicOrderCntLsb)
		maxLsb := int32(d.maxPocLsb)
		msb := d.prevPocMsb
		switch {
		case lsb < d.prevPocLsb && d.prevPocLsb-lsb >= maxLsb/2:
			msb = d.prevPocMsb + maxLsb
		case lsb > d.prevPocLsb && lsb-d.prevPocLsb > maxLsb/2:
			msb = d.prevPocMsb - maxLsb
		}
		if hdr.IsReference() {
			d.prevPocMsb, d.prevPocLsb = msb, lsb
		}
		return msb + lsb
	default: // type 2: output order equals decode order
		poc := 2 * int32(hdr.FrameNum)
		if !hdr.IsReference() {
			poc--
		}
		return poc
	}
}

// occupied reports whether a slot currently holds a reference.
func (d *dpbManager) occupied(slot int32) bool {
	for i := range d.refs {
		if d.refs[i].Slot == slot {
			return true
		}
	}
	return false
}

// slidingWindowEvict removes the oldest short-term reference (smallest
// FrameNumWrap relative to currFrameNum).
func (d *dpbManager) slidingWindowEvict(currFrameNum uint32) {
	oldest := -1
	var oldestWrap int32
	for i := range d.refs {
		if d.refs[i].LongTerm {
			continue
		}
		wrap := d.frameNumWrap(d.refs[i].FrameNum, currFrameNum)
		if oldest == -1 || wrap < oldestWrap {
			oldest, oldestWrap = i, wrap
		}
	}
	if oldest >= 0 {
		d.refs = append(d.refs[:oldest], d.refs[oldest+1:]...)
	}
}

// evictOneRef removes the oldest short-term reference, falling back to the
// lowest-index long-term reference when only long-term pictures remain.
// MMCO ops 3/6 can legally drive the whole window long-term; room for the
// next setup slot still has to come from somewhere, and a no-op here would
// stall the eviction loops forever.
func (d *dpbManager) evictOneRef(currFrameNum uint32) {
	if len(d.refs) == 0 {
		return
	}
	if d.shortTermCount() > 0 {
		d.slidingWindowEvict(currFrameNum)
		return
	}
	lowest := 0
	for i := range d.refs {
		if d.refs[i].LongTermFrameIdx < d.refs[lowest].LongTermFrameIdx {
			lowest = i
		}
	}
	d.removeAt(lowest)
}

func (d *dpbManager) frameNumWrap(frameNum, currFrameNum uint32) int32 {
	if frameNum > currFrameNum {
		return int32(frameNum) - int32(d.maxFrameNum)
	}
	return int32(frameNum)
}

// shortTermCount counts short-term references.
func (d *dpbManager) shortTermCount() int {
	n := 0
	for i := range d.refs {
		if !d.refs[i].LongTerm {
			n++
		}
	}
	return n
}

// BeginPicture prepares the DPB for decoding one picture and returns the
// setup slot plus the active reference pictures. The setup slot is never
// among the returned references.
func (d *dpbManager) BeginPicture(hdr *sliceHeader) (setupSlot int32, refs []dpbPicture) {
	if hdr.IsIDR() {
		d.flush()
	}

	// Make room up front so a free slot always exists for the setup picture.
	for len(d.refs) >= d.slotCount {
		d.evictOneRef(hdr.FrameNum)
	}

	setupSlot = -1
	for s := int32(0); s < int32(d.slotCount); s++ {
		if !d.occupied(s) {
			setupSlot = s
			break
		}
	}

	refs = make([]dpbPicture, len(d.refs))
	copy(refs, d.refs)
	return setupSlot, refs
}

// EndPicture applies the reference-marking process for the picture just
// recorded and, when it is a reference, stores it in the DPB at setupSlot.
func (d *dpbManager) EndPicture(hdr *sliceHeader, setupSlot int32, poc int32) {
	if !hdr.IsReference() {
		return
	}

	curr := dpbPicture{
		Slot:        setupSlot,
		FrameNum:    hdr.FrameNum,
		PicOrderCnt: poc,
	}

	if hdr.IsIDR() {
		if hdr.LongTermReferenceFlag {
			curr.LongTerm = true
			curr.LongTermFrameIdx = 0
			d.maxLongTermFrameIdx = 0
		}
		d.refs = append(d.refs[:0], curr)
		return
	}

	if hdr.AdaptiveRefPicMarking {
		d.applyMMCO(hdr, &curr)
	} else {
		for len(d.refs) > 0 && d.shortTermCount() >= d.maxRefFrames-d.longTermCount() {
			d.evictOneRef(hdr.FrameNum)
		}
	}
	d.refs = append(d.refs, curr)

	// The marking process must never leave more pictures than the stream's
	// reference limit; drop the oldest entries if it does.
	for len(d.refs) > d.maxRefFrames {
		d.evictOneRef(hdr.FrameNum)
	}
}

func (d *dpbManager) longTermCount() int {
	n := 0
	for i := range d.refs {
		if d.refs[i].LongTerm {
			n++
		}
	}
	return n
}

func (d *dpbManager) removeAt(i int) {
	d.refs = append(d.refs[:i], d.refs[i+1:]...)
}

// applyMMCO executes the slice header's memory-management control
// operations against the DPB. curr is the picture being marked.
func (d *dpbManager) applyMMCO(hdr *sliceHeader, curr *dpbPicture) {
	currPicNum := int32(hdr.FrameNum)
	for _, op := range hdr.MMCO {
		switch op.Op {
		case 1: // unmark short-term
			picNumX := currPicNum - int32(op.DifferenceOfPicNumsMinus1) - 1
			for i := range d.refs {
				if !d.refs[i].LongTerm && d.frameNumWrap(d.refs[i].FrameNum, hdr.FrameNum) == picNumX {
					d.removeAt(i)
					break
				}
			}
		case 2: // unmark long-term by LongTermPicNum
			for i := range d.refs {
				if d.refs[i].LongTerm && d.refs[i].LongTermFrameIdx == op.LongTermPicNum {
					d.removeAt(i)
					break
				}
			}
		case 3: // short-term becomes long-term
			picNumX := currPicNum - int32(op.DifferenceOfPicNumsMinus1) - 1
			for i := range d.refs {
				if d.refs[i].LongTerm && d.refs[i].LongTermFrameIdx == op.LongTermFrameIdx {
					d.removeAt(i)
					break
				}
			}
			for i := range d.refs {
				if !d.refs[i].LongTerm && d.frameNumWrap(d.refs[i].FrameNum, hdr.FrameNum) == picNumX {
					d.refs[i].LongTerm = true
					d.refs[i].LongTermFrameIdx = op.LongTermFrameIdx
					break
				}
			}
		case 4: // new max long-term index
			d.maxLongTermFrameIdx = int32(op.MaxLongTermFrameIdxPlus1) - 1
			for i := len(d.refs) - 1; i >= 0; i-- {
				if d.refs[i].LongTerm && int32(d.refs[i].LongTermFrameIdx) > d.maxLongTermFrameIdx {
					d.removeAt(i)
				}
			}
		case 5: // reset
			d.flush()
			curr.FrameNum = 0
			curr.PicOrderCnt = 0
		case 6: // current becomes long-term
			for i := range d.refs {
				if d.refs[i].LongTerm && d.refs[i].LongTermFrameIdx == op.LongTermFrameIdx {
					d.removeAt(i)
					break
				}
			}
			curr.LongTerm = true
			curr.LongTermFrameIdx = op.LongTermFrameIdx
		}
	}
}
