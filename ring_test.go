package vkvideo

import "testing"

func TestRingProfileLists(t *testing.T) {
	decProfile, _ := newDecodeProfile()
	encProfile, _ := newEncodeProfile()
	r := &frameRing{
		decodeProfiles:   []VideoProfileInfo{decProfile},
		encodeProfiles:   []VideoProfileInfo{encProfile},
		combinedProfiles: []VideoProfileInfo{decProfile, encProfile},
	}

	if l := r.decodeList(); l.ProfileCount != 1 || l.PProfiles.VideoCodecOperation != VideoCodecOperationDecodeH264 {
		t.Error("decode staging buffers must carry exactly the decode profile")
	}
	if l := r.encodeList(); l.ProfileCount != 1 || l.PProfiles.VideoCodecOperation != VideoCodecOperationEncodeH265 {
		t.Error("encode output buffers must carry exactly the encode profile")
	}
	l := r.combinedList()
	if l.ProfileCount != 2 {
		t.Fatalf("shared picture must carry both profiles, got %d", l.ProfileCount)
	}
	if l.SType != StructureTypeVideoProfileListInfo {
		t.Error("profile list sType mismatch")
	}
}
