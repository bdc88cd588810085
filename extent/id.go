package extent

// GenerateID deterministically packs an extent's resource and
// within-beam position into one 64-bit identifier: rgt (11 bits),
// cycle (6 bits), region (5 bits), track (3 bits), pair (1 bit), and a
// monotonically increasing per-beam counter (38 bits). This layout is
// this module's own design — the original reader's bit assignment was
// not available for reuse — chosen to keep every field collision-free
// for rgt<=2047 (ICESat-2 has 1387), cycle<=63, region<=31, track<=7 and
// pair<=1 while leaving ample counter headroom. Bits of a larger value
// beyond its field width are masked off.
func GenerateID(rgt, cycle, region, track, pair int, counter uint64) uint64 {
	const counterBits = 38
	const counterMask = (uint64(1) << counterBits) - 1
	id := uint64(rgt&0x7FF) << 53
	id |= uint64(cycle&0x3F) << 47
	id |= uint64(region&0x1F) << 42
	id |= uint64(track&0x7) << 39
	id |= uint64(pair&0x1) << 38
	id |= counter & counterMask
	return id
}
