// Package blobstore is the thin capability interface over the S3-compatible object store:
// download, same-store copy, multipart upload, delete. Grounded on the teacher's s3ng and
// ocis/blobstore backends, which wrap an S3 client behind a small interface the storage
// tree calls into rather than importing the SDK directly everywhere.
package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// PartSize is the multipart chunk size used by the large-file upload strategy (5 MiB).
// The final part may be smaller.
const PartSize = 5 * 1024 * 1024

// LargeObjectThreshold is the byte size at or above which the copy strategy switches from
// a single server-side copy to download-then-multipart-upload.
const LargeObjectThreshold = 5_000_000_000

// CopyResult carries the fields the caller needs from a copy or upload call. VersionID is
// empty when the destination bucket has no versioning enabled.
type CopyResult struct {
	VersionID string
}

// Client is the capability interface the copy/share visitors depend on. It is satisfied
// by *MinioClient in production and by a fake in tests.
type Client interface {
	Download(ctx context.Context, bucket, objectPath, destPath string) error
	CopySameStore(ctx context.Context, srcBucket, srcObject, dstBucket, dstObject string) (CopyResult, error)
	PrepareMultipartUpload(ctx context.Context, bucket, objectPath string) (uploadID string, err error)
	PartUpload(ctx context.Context, bucket, objectPath, uploadID string, partNumber int, data []byte) (minio.ObjectPart, error)
	CombineChunks(ctx context.Context, bucket, objectPath, uploadID string, parts []minio.CompletePart) (CopyResult, error)
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader, size int64) (CopyResult, error)
	Delete(ctx context.Context, bucket, objectPath string) error
}

// MinioClient is the production Client backed by github.com/minio/minio-go/v7.
type MinioClient struct {
	core *minio.Core
}

// New dials the S3-compatible endpoint. accessKey/secretKey are opaque credentials; https
// controls whether the endpoint is dialed over TLS.
func New(endpoint, accessKey, secretKey string, https bool) (*MinioClient, error) {
	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: https,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to object store")
	}
	return &MinioClient{core: core}, nil
}

// Download fetches bucket/objectPath into a local file at destPath, creating any missing
// parent directories.
func (c *MinioClient) Download(ctx context.Context, bucket, objectPath, destPath string) error {
	obj, _, _, err := c.core.GetObject(ctx, bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return errors.Wrapf(err, "error downloading %s/%s", bucket, objectPath)
	}
	defer obj.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errors.Wrapf(err, "error creating directory for %s", destPath)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "error creating %s", destPath)
	}
	defer out.Close()

	if _, err := io.Copy(out, obj); err != nil {
		return errors.Wrapf(err, "error writing %s", destPath)
	}
	return nil
}

// CopySameStore performs a single server-side copy between two objects in the same store.
// Used for files under LargeObjectThreshold.
func (c *MinioClient) CopySameStore(ctx context.Context, srcBucket, srcObject, dstBucket, dstObject string) (CopyResult, error) {
	info, err := c.core.CopyObject(ctx, srcBucket, srcObject, dstBucket, dstObject, map[string]string{},
		minio.AdvancedGetOptions{}, minio.AdvancedPutOptions{})
	if err != nil {
		return CopyResult{}, errors.Wrapf(err, "error copying %s/%s to %s/%s", srcBucket, srcObject, dstBucket, dstObject)
	}
	return CopyResult{VersionID: info.VersionID}, nil
}

// PrepareMultipartUpload initiates a multipart upload and returns its upload id.
func (c *MinioClient) PrepareMultipartUpload(ctx context.Context, bucket, objectPath string) (string, error) {
	uploadID, err := c.core.NewMultipartUpload(ctx, bucket, objectPath, minio.PutObjectOptions{})
	if err != nil {
		return "", errors.Wrapf(err, "error preparing multipart upload for %s/%s", bucket, objectPath)
	}
	return uploadID, nil
}

// PartUpload uploads one 1-indexed part of a multipart upload.
func (c *MinioClient) PartUpload(ctx context.Context, bucket, objectPath, uploadID string, partNumber int, data []byte) (minio.ObjectPart, error) {
	part, err := c.core.PutObjectPart(ctx, bucket, objectPath, uploadID, partNumber,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
	if err != nil {
		return minio.ObjectPart{}, errors.Wrapf(err, "error uploading part %d of %s/%s", partNumber, bucket, objectPath)
	}
	return part, nil
}

// CombineChunks finalizes a multipart upload from its uploaded parts.
func (c *MinioClient) CombineChunks(ctx context.Context, bucket, objectPath, uploadID string, parts []minio.CompletePart) (CopyResult, error) {
	info, err := c.core.CompleteMultipartUpload(ctx, bucket, objectPath, uploadID, parts, minio.PutObjectOptions{})
	if err != nil {
		return CopyResult{}, errors.Wrapf(err, "error completing multipart upload for %s/%s", bucket, objectPath)
	}
	return CopyResult{VersionID: info.VersionID}, nil
}

// Upload puts a single object in one call; used by ShareDatasetManager for files imported
// from an extracted dataset archive.
func (c *MinioClient) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, size int64) (CopyResult, error) {
	info, err := c.core.Client.PutObject(ctx, bucket, objectPath, r, size, minio.PutObjectOptions{})
	if err != nil {
		return CopyResult{}, errors.Wrapf(err, "error uploading %s/%s", bucket, objectPath)
	}
	return CopyResult{VersionID: info.VersionID}, nil
}

// Delete removes an object. The delete-archival path calls it only when
// RemoveObjectOnArchive is enabled; by default archival leaves the bytes in place (see
// DESIGN.md).
func (c *MinioClient) Delete(ctx context.Context, bucket, objectPath string) error {
	if err := c.core.RemoveObject(ctx, bucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, "error deleting %s/%s", bucket, objectPath)
	}
	return nil
}
