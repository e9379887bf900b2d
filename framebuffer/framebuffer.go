// Package framebuffer drives the operating system's native framebuffer
// device as if it were a panel. This is mostly useful for previewing
// layouts on a desk machine before moving to real hardware: the device
// satisfies the same display interface as the panel drivers, so drawing
// and refresh code runs unchanged.
//
// The device must already be configured for 16 bits per pixel with the
// usual 5/6/5 channel layout.
package framebuffer
