//go:build !linux

package process

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/mabhi256/memlab/internal/model"
)

func privateBytes(_ context.Context, _ *process.Process, mem *process.MemoryInfoStat) (model.ByteSize, error) {
	return model.BytesFromUint64(mem.RSS), nil
}
