//go:build linux

package process

import (
	"context"
	"math"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/mabhi256/memlab/internal/model"
)

// privateBytes sums the private clean and dirty pages from smaps, the
// closest Linux analogue of committed private memory.
func privateBytes(ctx context.Context, p *process.Process, _ *process.MemoryInfoStat) (model.ByteSize, error) {
	maps, err := p.MemoryMapsWithContext(ctx, true)
	if err != nil {
		return 0, err
	}
	if maps == nil {
		return 0, nil
	}
	return sumPrivate(*maps), nil
}

// sumPrivate adds up Private_Clean and Private_Dirty, which smaps reports in kB.
func sumPrivate(maps []process.MemoryMapsStat) model.ByteSize {
	var total model.ByteSize
	for _, m := range maps {
		kb := m.PrivateClean + m.PrivateDirty
		if kb < m.PrivateClean || kb > math.MaxUint64/uint64(model.KB) {
			return model.MaxByteSize
		}
		total = total.SaturatingAdd(model.BytesFromUint64(kb * uint64(model.KB)))
	}
	return total
}
