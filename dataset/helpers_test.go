package dataset

import (
	"path/filepath"

	"github.com/pgavriel/MOADv2/aws/s3"
	"github.com/pgavriel/MOADv2/aws/s3/s3test"
	"github.com/pgavriel/MOADv2/config"
	"github.com/pgavriel/MOADv2/fs/billy"
	"github.com/pgavriel/MOADv2/internal/logger"
)

const (
	testBucket = "moad-dataset"
	testTarget = "data"
)

func newTestRemote(bucket *s3test.FakeBucket, fsys *billy.FS) *S3Remote {
	client := s3.NewWithClient(bucket,
		s3.WithFilesystem(fsys),
		s3.WithLogger(logger.Discard()),
	)
	return NewS3Remote(client, bucket.Name)
}

// testRunConfig returns a config with every category disabled and no prompts.
func testRunConfig() *config.RunConfig {
	cfg := config.GetDefaultConfig()
	cfg.Bucket = testBucket
	cfg.TargetDir = testTarget
	cfg.Features.RGB.Confirm = false
	return cfg
}

// seedObject stores a complete capture of object with the given poses.
func seedObject(b *s3test.FakeBucket, object string, poses ...string) {
	for _, pose := range poses {
		b.PutN(object+"/"+pose+"/DSLR/", 4, "JPG")
		b.PutN(object+"/"+pose+"/reconstruction/", 2, "ply")
		b.PutN(object+"/"+pose+"/realsense/", 3, "png")
	}
	b.PutN(object+"/cad/", 2, "stl")
	b.Put(object+"/notapose/readme.txt", []byte("readme"))

	fused := object + "/fused_model/"
	b.Put(fused+"raw_cloud/fused_cloud.ply", []byte("cloud"))
	b.Put(fused+"raw_mesh/fused_mesh.ply", []byte("mesh"))
	b.Put(fused+"obj/fused_model.obj", []byte("obj"))
	b.Put(fused+"obj/fused_model.mtl", []byte("mtl"))
	b.Put(fused+"usd/fused_model.usd", []byte("usd"))
	b.Put(fused+"blend/fused_model.blend", []byte("blend"))
	b.Put(fused+"baked_texture.png", []byte("texture"))
}

func localPath(parts ...string) string {
	return filepath.Join(append([]string{testTarget}, parts...)...)
}
