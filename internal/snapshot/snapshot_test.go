package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/latte-ml/latte/internal/tensor"
)

// writeSample writes a two-tensor snapshot and returns its path.
func writeSample(t *testing.T) string {
	t.Helper()
	dev := tensor.NewMockDevice()

	weight := tensor.New[float32](tensor.Shape{2, 3}, dev)
	vals := weight.MutableHostValues()
	for i := range vals {
		vals[i] = float32(i + 1)
	}
	grads := weight.MutableHostGradients()
	for i := range grads {
		grads[i] = float32(-i)
	}

	bias := tensor.New[float64](tensor.Shape{4}, dev)
	bvals := bias.MutableHostValues()
	for i := range bvals {
		bvals[i] = 0.5 * float64(i)
	}

	w := NewWriter()
	w.SetMetadata("arch", "lenet")
	if err := AddTensor(w, "conv1.weight", weight, true); err != nil {
		t.Fatalf("AddTensor(conv1.weight): %v", err)
	}
	if err := AddTensor(w, "fc.bias", bias, false); err != nil {
		t.Fatalf("AddTensor(fc.bias): %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.latte")
	if err := w.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	path := writeSample(t)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	names := r.TensorNames()
	if len(names) != 2 || names[0] != "conv1.weight" || names[1] != "fc.bias" {
		t.Fatalf("TensorNames() = %v", names)
	}
	if r.Metadata()["arch"] != "lenet" {
		t.Errorf("Metadata()[arch] = %q", r.Metadata()["arch"])
	}
	if r.Flags()&FlagHasGradients == 0 {
		t.Error("gradients flag not set")
	}
	if r.Flags()&FlagHasMetadata == 0 {
		t.Error("metadata flag not set")
	}

	meta, err := r.TensorInfo("conv1.weight")
	if err != nil {
		t.Fatalf("TensorInfo: %v", err)
	}
	if meta.DType != DTypeFloat32 {
		t.Errorf("dtype = %q", meta.DType)
	}
	if len(meta.Shape) != 2 || meta.Shape[0] != 2 || meta.Shape[1] != 3 {
		t.Errorf("shape = %v", meta.Shape)
	}
	if !meta.Gradients {
		t.Error("gradients flag missing on conv1.weight")
	}

	dev := tensor.NewMockDevice()
	weight, err := Load[float32](r, "conv1.weight", dev)
	if err != nil {
		t.Fatalf("Load(conv1.weight): %v", err)
	}
	for i, v := range weight.HostValues() {
		if v != float32(i+1) {
			t.Errorf("value[%d] = %v, want %v", i, v, i+1)
		}
	}
	for i, g := range weight.HostGradients() {
		if g != float32(-i) {
			t.Errorf("gradient[%d] = %v, want %v", i, g, -i)
		}
	}

	bias, err := Load[float64](r, "fc.bias", dev)
	if err != nil {
		t.Fatalf("Load(fc.bias): %v", err)
	}
	if got := bias.HostValues()[3]; got != 1.5 {
		t.Errorf("bias[3] = %v, want 1.5", got)
	}
}

func TestEntryAlignment(t *testing.T) {
	path := writeSample(t)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	for _, name := range r.TensorNames() {
		meta, err := r.TensorInfo(name)
		if err != nil {
			t.Fatal(err)
		}
		if meta.Offset%HeaderAlignment != 0 {
			t.Errorf("tensor %q offset %d not 64-byte aligned", name, meta.Offset)
		}
	}
}

func TestLoadDtypeMismatch(t *testing.T) {
	path := writeSample(t)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := Load[float64](r, "conv1.weight", tensor.NewMockDevice()); err == nil {
		t.Error("loading float32 entry as float64 should fail")
	}
}

func TestLoadMissing(t *testing.T) {
	path := writeSample(t)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := Load[float32](r, "nope", tensor.NewMockDevice()); err == nil {
		t.Error("loading a missing tensor should fail")
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	path := writeSample(t)

	// Flip a byte near the end of the data section.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Open() error = %v, want ErrChecksumMismatch", err)
	}

	// Skipping the checksum lets the file open anyway.
	r, err := OpenWithOptions(path, ReaderOptions{SkipChecksum: true})
	if err != nil {
		t.Fatalf("OpenWithOptions(skip checksum): %v", err)
	}
	r.Close()
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := writeSample(t)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[0] = 'X'
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Open() error = %v, want ErrBadMagic", err)
	}
}

func TestOpenRejectsBadVersion(t *testing.T) {
	path := writeSample(t)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[4] = 9
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Open() error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.latte")
	if err := os.WriteFile(path, []byte("LATT"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("opening a truncated file should fail")
	}
}

func TestWriterRejectsBadNames(t *testing.T) {
	dev := tensor.NewMockDevice()
	a := tensor.New[float32](tensor.Shape{2}, dev)
	a.MutableHostValues()

	w := NewWriter()
	if err := AddTensor(w, "../escape", a, false); err == nil {
		t.Error("path traversal name should be rejected")
	}
	if err := AddTensor(w, "a", a, false); err != nil {
		t.Fatalf("AddTensor: %v", err)
	}
	if err := AddTensor(w, "a", a, false); err == nil {
		t.Error("duplicate name should be rejected")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

func TestEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.latte")
	if err := NewWriter().WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if len(r.TensorNames()) != 0 {
		t.Errorf("TensorNames() = %v, want empty", r.TensorNames())
	}
	if r.Flags() != 0 {
		t.Errorf("Flags() = %#x, want 0", r.Flags())
	}
}

func TestChecksumHelpers(t *testing.T) {
	data := []byte("hello latte")
	sum := ComputeChecksum(data)
	if err := ValidateChecksum(sum, sum); err != nil {
		t.Errorf("matching checksums should validate: %v", err)
	}

	var other [32]byte
	if err := ValidateChecksum(sum, other); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("ValidateChecksum() error = %v, want ErrChecksumMismatch", err)
	}
}
