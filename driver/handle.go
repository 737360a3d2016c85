package driver

import (
	"github.com/wisentfmt/wisent/image"
	"github.com/wisentfmt/wisent/segment"
)

// ImageHandle is the live result of a Load: the viewed Image, attached to
// its shared-memory segment, plus the bookkeeping Unload/Free need to
// release it (spec.md §6.2's "companions unload(segment_name),
// free(segment_name)"). The Flattener's transient Arena is freed once its
// bytes are copied into the segment; from here on the segment is the sole
// owner of the Image's backing memory.
type ImageHandle struct {
	Image       *image.Image
	SegmentName string

	provider segment.Provider
}

// Unload detaches the handle's segment binding without releasing its
// backing memory, so a later Load with the same segment name can reattach.
func (h ImageHandle) Unload() error {
	return h.provider.Unload(h.SegmentName)
}

// Free releases the handle's segment binding and its backing memory
// entirely. Call this instead of Unload when the image will never be
// reattached.
func (h ImageHandle) Free() error {
	return h.provider.Erase(h.SegmentName)
}
