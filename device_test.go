package vkvideo

import "testing"

func TestSelectQueueFamilies(t *testing.T) {
	tests := []struct {
		name       string
		families   []videoQueueFamily
		wantDecode uint32
		wantEncode uint32
		complete   bool
	}{
		{
			name: "separate families",
			families: []videoQueueFamily{
				{Flags: QueueGraphicsBit},
				{Flags: QueueVideoDecodeBit, CodecOperations: VideoCodecOperationDecodeH264},
				{Flags: QueueVideoEncodeBit, CodecOperations: VideoCodecOperationEncodeH265},
			},
			wantDecode: 1,
			wantEncode: 2,
			complete:   true,
		},
		{
			name: "combined family",
			families: []videoQueueFamily{
				{Flags: QueueGraphicsBit},
				{
					Flags:           QueueVideoDecodeBit | QueueVideoEncodeBit,
					CodecOperations: VideoCodecOperationDecodeH264 | VideoCodecOperationEncodeH265,
				},
			},
			wantDecode: 1,
			wantEncode: 1,
			complete:   true,
		},
		{
			name: "lowest index wins",
			families: []videoQueueFamily{
				{Flags: QueueVideoDecodeBit, CodecOperations: VideoCodecOperationDecodeH264},
				{Flags: QueueVideoDecodeBit, CodecOperations: VideoCodecOperationDecodeH264},
				{Flags: QueueVideoEncodeBit, CodecOperations: VideoCodecOperationEncodeH265},
				{Flags: QueueVideoEncodeBit, CodecOperations: VideoCodecOperationEncodeH265},
			},
			wantDecode: 0,
			wantEncode: 2,
			complete:   true,
		},
		{
			name: "decode family with wrong codec is skipped",
			families: []videoQueueFamily{
				{Flags: QueueVideoDecodeBit, CodecOperations: VideoCodecOperationDecodeH265},
				{Flags: QueueVideoDecodeBit, CodecOperations: VideoCodecOperationDecodeH264},
			},
			wantDecode: 1,
			complete:   false,
		},
		{
			name: "no encode family",
			families: []videoQueueFamily{
				{Flags: QueueVideoDecodeBit, CodecOperations: VideoCodecOperationDecodeH264},
			},
			wantDecode: 0,
			complete:   false,
		},
		{
			name:     "empty",
			families: nil,
			complete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := selectQueueFamilies(tt.families)
			if idx.complete() != tt.complete {
				t.Fatalf("complete() = %v, want %v", idx.complete(), tt.complete)
			}
			if idx.decodeFound && idx.decode != tt.wantDecode {
				t.Errorf("decode = %d, want %d", idx.decode, tt.wantDecode)
			}
			if idx.encodeFound && idx.encode != tt.wantEncode {
				t.Errorf("encode = %d, want %d", idx.encode, tt.wantEncode)
			}
		})
	}
}

func TestDefaultAdapterPolicy(t *testing.T) {
	p := DefaultAdapterPolicy()
	if !p.PreferDiscrete {
		t.Error("default policy should prefer discrete adapters")
	}
	if len(p.VendorAllowlist) == 0 {
		t.Error("default policy should carry a vendor allowlist")
	}
}

func TestPhysicalDevicePropertiesName(t *testing.T) {
	var props PhysicalDeviceProperties
	copy(props.DeviceName[:], "NVIDIA GeForce RTX 4070\x00garbage")
	if got := props.Name(); got != "NVIDIA GeForce RTX 4070" {
		t.Errorf("Name() = %q", got)
	}
}
