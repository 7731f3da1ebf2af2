package planner

import (
	"sort"
	"strings"

	"github.com/pgavriel/MOADv2/aws/s3/internal/validation"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/fs"
)

// Planner creates operation plans for mirror operations.
type Planner struct {
	fs fs.Filesystem
}

// NewPlanner creates a planner that checks for existing files on filesystem.
func NewPlanner(filesystem fs.Filesystem) *Planner {
	return &Planner{
		fs: filesystem,
	}
}

// Plan creates one operation per remote object, sorted by key.
// Zero-byte directory placeholder keys ending in "/" produce no operation.
func (p *Planner) Plan(prefix, localRoot string, objects []s3types.Object) ([]s3types.MirrorOperation, error) {
	operations := make([]s3types.MirrorOperation, 0, len(objects))

	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}

		op := s3types.MirrorOperation{
			Key:  obj.Key,
			Size: obj.Size,
		}

		localPath, err := validation.LocalPath(localRoot, prefix, obj.Key)
		if err != nil {
			op.Action = s3types.MirrorReject
			op.Reason = err.Error()
			operations = append(operations, op)
			continue
		}
		op.LocalPath = localPath

		exists, err := p.fs.Exists(localPath)
		if err != nil {
			//nolint:wrapcheck // fs errors already name the operation and path
			return nil, err
		}

		if exists {
			op.Action = s3types.MirrorSkip
			op.Reason = "exists locally"
		} else {
			op.Action = s3types.MirrorDownload
			op.Reason = "missing locally"
		}
		operations = append(operations, op)
	}

	sort.SliceStable(operations, func(i, j int) bool {
		return operations[i].Key < operations[j].Key
	})

	return operations, nil
}

// OperationStats contains statistics about planned operations.
type OperationStats struct {
	DownloadCount int
	SkipCount     int
	RejectCount   int
	DownloadBytes int64
}

// GetOperationStats calculates statistics for a list of operations.
func GetOperationStats(operations []s3types.MirrorOperation) OperationStats {
	var stats OperationStats

	for _, op := range operations {
		switch op.Action {
		case s3types.MirrorDownload:
			stats.DownloadCount++
			stats.DownloadBytes += op.Size
		case s3types.MirrorSkip:
			stats.SkipCount++
		case s3types.MirrorReject:
			stats.RejectCount++
		}
	}

	return stats
}
