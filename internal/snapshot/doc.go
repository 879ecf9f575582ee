// Package snapshot implements the .latte container for named tensor states.
//
//	Format Structure:
//	  [0x00: Magic "LATT"]
//	  [0x04: Version (uint32 LE)]
//	  [0x08: Flags (uint32 LE)]
//	  [0x0C: Reserved]
//	  [0x10: Header Size (uint64 LE)]
//	  [0x18: Data Size (uint64 LE)]
//	  [0x20: SHA-256 of the data section (32 bytes)]
//	  [0x40: Header: JSON index]
//	  [Data section: wire-encoded tensor messages, 64-byte aligned]
//
// Each data-section entry is one tensorpb message holding a tensor's shape,
// values, and optionally gradients. Entries start on 64-byte boundaries.
//
// Example usage:
//
//	// Save
//	w := snapshot.NewWriter()
//	if err := snapshot.AddTensor(w, "conv1.weight", weights, false); err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.WriteFile("model.latte"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load
//	r, err := snapshot.Open("model.latte")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	weights, err := snapshot.Load[float32](r, "conv1.weight", dev)
package snapshot
