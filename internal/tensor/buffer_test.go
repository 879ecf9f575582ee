package tensor

import "testing"

func assertState(t *testing.T, expected Residency, b *SyncedBuffer, msg string) {
	t.Helper()
	if b.State() != expected {
		t.Errorf("%s: state = %v, want %v", msg, b.State(), expected)
	}
}

func TestSyncedBufferStartsUninitialized(t *testing.T) {
	b := NewSyncedBuffer(16, nil)
	assertState(t, Uninitialized, b, "fresh buffer")
	assertEqualInt(t, 16, b.Size(), "size")
}

func TestSyncedBufferHostFirstTouch(t *testing.T) {
	b := NewSyncedBuffer(8, nil)
	host := b.HostBytes()
	assertState(t, HeadAtHost, b, "after host read")
	for i, v := range host {
		if v != 0 {
			t.Fatalf("host[%d] = %d, storage must be zeroed", i, v)
		}
	}
}

func TestSyncedBufferNoContextPanicsOnDevice(t *testing.T) {
	b := NewSyncedBuffer(8, nil)
	assertPanics(t, "device access without context", func() { b.DeviceData() })
}

func TestSyncedBufferDeviceFirstTouch(t *testing.T) {
	dev := NewMockDevice()
	b := NewSyncedBuffer(8, dev)

	b.DeviceData()
	assertState(t, HeadAtDevice, b, "after device read")
	assertEqualInt(t, 1, dev.Allocs, "allocs")
	assertEqualInt(t, 0, dev.Uploads, "no upload on first touch")
}

func TestSyncedBufferHostToDeviceSync(t *testing.T) {
	dev := NewMockDevice()
	b := NewSyncedBuffer(4, dev)

	b.MutableHostBytes()[0] = 7
	assertState(t, HeadAtHost, b, "after host write")

	d := b.DeviceData()
	assertState(t, Synced, b, "after crossing to device")
	assertEqualInt(t, 1, dev.Uploads, "one upload")
	if dev.Bytes(d)[0] != 7 {
		t.Error("content did not reach the device")
	}

	// Reading either side again moves no data.
	b.HostBytes()
	b.DeviceData()
	assertEqualInt(t, 1, dev.Uploads, "synced reads are free")
	assertEqualInt(t, 0, dev.Downloads, "synced reads are free")
}

func TestSyncedBufferDeviceToHostSync(t *testing.T) {
	dev := NewMockDevice()
	b := NewSyncedBuffer(4, dev)

	d := b.MutableDeviceData()
	dev.Bytes(d)[1] = 9
	assertState(t, HeadAtDevice, b, "after device write")

	host := b.HostBytes()
	assertState(t, Synced, b, "after crossing to host")
	assertEqualInt(t, 1, dev.Downloads, "one download")
	if host[1] != 9 {
		t.Error("content did not reach the host")
	}

	// A host mutation invalidates the device copy again.
	b.MutableHostBytes()[1] = 3
	assertState(t, HeadAtHost, b, "after host mutation")
	b.DeviceData()
	assertEqualInt(t, 1, dev.Uploads, "re-upload after invalidation")
}

func TestSyncedBufferSetHostBytes(t *testing.T) {
	b := NewSyncedBuffer(4, nil)
	data := []byte{1, 2, 3, 4}
	b.SetHostBytes(data)
	assertState(t, HeadAtHost, b, "after adoption")
	if &b.HostBytes()[0] != &data[0] {
		t.Error("adopted storage must alias the caller's slice")
	}
	assertPanics(t, "wrong size", func() { b.SetHostBytes([]byte{1}) })
}

func TestSyncedBufferSetDeviceData(t *testing.T) {
	dev := NewMockDevice()
	b := NewSyncedBuffer(4, dev)
	d := dev.Alloc(4)
	dev.Bytes(d)[0] = 5
	b.SetDeviceData(d)
	assertState(t, HeadAtDevice, b, "after adoption")
	if b.HostBytes()[0] != 5 {
		t.Error("adopted device content must be visible from the host")
	}
	assertPanics(t, "undersized buffer", func() { b.SetDeviceData(dev.Alloc(2)) })
}

func TestSyncedBufferRefCounting(t *testing.T) {
	dev := NewMockDevice()
	b := NewSyncedBuffer(4, dev)
	b.DeviceData()

	b.Retain()
	b.Release()
	assertEqualInt(t, 0, dev.Frees, "buffer alive with one reference")

	b.Release()
	assertEqualInt(t, 1, dev.Frees, "buffer freed at zero references")
	assertState(t, Uninitialized, b, "state after free")
}

func TestTensorDeviceAccessors(t *testing.T) {
	dev := NewMockDevice()
	x := New[float32](Shape{2, 3}, dev)
	if x.Device() != dev {
		t.Fatal("tensor must report its device context")
	}

	host := x.MutableHostValues()
	for i := range host {
		host[i] = float32(i)
	}
	d := x.DeviceValues()
	got := bytesAs[float32](dev.Bytes(d), 6)
	assertEqualFloat64(t, 5, float64(got[5]), "values on device")

	// Shape mirror is int32 and reflects the current extents.
	shape := bytesAs[int32](dev.Bytes(x.DeviceShape()), 2)
	if shape[0] != 2 || shape[1] != 3 {
		t.Errorf("device shape = %v, want [2 3]", shape)
	}
	x.Reshape(Shape{3, 2})
	shape = bytesAs[int32](dev.Bytes(x.DeviceShape()), 2)
	if shape[0] != 3 || shape[1] != 2 {
		t.Errorf("device shape after reshape = %v, want [3 2]", shape)
	}
}
