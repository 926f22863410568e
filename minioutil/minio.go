// Package minioutil publishes store files to and fetches them from
// S3-compatible storage (S3, R2, minio, B2)
package minioutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kjk/excelcsv/atomicfile"
	"github.com/kjk/excelcsv/log"
)

// names of environment variables read by ConfigFromEnv
const (
	EnvAccess   = "EXCELCSV_S3_ACCESS"
	EnvSecret   = "EXCELCSV_S3_SECRET"
	EnvBucket   = "EXCELCSV_S3_BUCKET"
	EnvEndpoint = "EXCELCSV_S3_ENDPOINT"
	EnvRegion   = "EXCELCSV_S3_REGION"
	EnvInsecure = "EXCELCSV_S3_INSECURE"
)

type Config struct {
	Access   string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	// use http instead of https, for local minio
	Insecure     bool
	RequestTrace io.Writer
}

// ConfigFromEnv builds Config from EXCELCSV_S3_* environment variables
func ConfigFromEnv() *Config {
	insecure := strings.ToLower(os.Getenv(EnvInsecure))
	return &Config{
		Access:   os.Getenv(EnvAccess),
		Secret:   os.Getenv(EnvSecret),
		Bucket:   os.Getenv(EnvBucket),
		Endpoint: os.Getenv(EnvEndpoint),
		Region:   os.Getenv(EnvRegion),
		Insecure: insecure == "1" || insecure == "true" || insecure == "yes",
	}
}

// Validate returns an error naming the missing fields
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("must provide config")
	}
	var missing []string
	if c.Access == "" {
		missing = append(missing, "Access")
	}
	if c.Secret == "" {
		missing = append(missing, "Secret")
	}
	if c.Bucket == "" {
		missing = append(missing, "Bucket")
	}
	if c.Endpoint == "" {
		missing = append(missing, "Endpoint")
	}
	if len(missing) > 0 {
		return fmt.Errorf("must provide all fields in config, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Client struct {
	Client *minio.Client
	config *Config
	Bucket string
}

// New connects and checks that the bucket exists
func New(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := config
	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: !c.Insecure,
	})
	if err != nil {
		return nil, err
	}
	if c.RequestTrace != nil {
		mc.TraceOn(c.RequestTrace)
	}
	found, err := mc.BucketExists(ctx(), c.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bucket '%s' doesn't exist", c.Bucket)
	}

	return &Client{
		Client: mc,
		config: c,
		Bucket: c.Bucket,
	}, nil
}

func (c *Client) URLBase() string {
	url := c.Client.EndpointURL()
	return fmt.Sprintf("%s://%s.%s/", url.Scheme, c.Bucket, url.Host)
}

func (c *Client) URLForPath(remotePath string) string {
	return c.URLBase() + strings.TrimPrefix(remotePath, "/")
}

func (c *Client) Exists(remotePath string) bool {
	_, err := c.Client.StatObject(ctx(), c.Bucket, remotePath, minio.StatObjectOptions{})
	return err == nil
}

// contentTypeFor returns content type and encoding of remotePath.
// For compressed files content type is of the uncompressed data.
func contentTypeFor(remotePath string) (string, string) {
	encoding := ""
	ext := strings.ToLower(filepath.Ext(remotePath))
	switch ext {
	case ".br":
		encoding = "br"
	case ".gz":
		encoding = "gzip"
	case ".zst", ".zstd":
		encoding = "zstd"
	}
	if encoding != "" {
		remotePath = strings.TrimSuffix(remotePath, filepath.Ext(remotePath))
		ext = strings.ToLower(filepath.Ext(remotePath))
	}
	if ext == ".csv" {
		return "text/csv; charset=utf-8", encoding
	}
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct, encoding
}

func putOptions(remotePath string, public bool) minio.PutObjectOptions {
	ct, enc := contentTypeFor(remotePath)
	opts := minio.PutObjectOptions{
		ContentType:     ct,
		ContentEncoding: enc,
	}
	if public {
		setPublicObjectMetadata(&opts)
	}
	return opts
}

// DownloadFileAtomically writes remotePath to dstPath as is, without
// decompressing. dstPath is only replaced if the whole object was read.
func (c *Client) DownloadFileAtomically(dstPath string, remotePath string) error {
	obj, err := c.Client.GetObject(ctx(), c.Bucket, remotePath, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	// ensure there's a dir for destination file
	dir := filepath.Dir(dstPath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	f, err := atomicfile.New(dstPath)
	if err != nil {
		return err
	}
	defer f.Abort()
	n, err := io.Copy(f, obj)
	if err != nil {
		return fmt.Errorf("download of '%s' failed with '%w'", remotePath, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	log.Event("minio.download", "remote", remotePath, "path", dstPath, "size", n)
	return nil
}

func (c *Client) UploadFile(remotePath string, path string, public bool) (info minio.UploadInfo, err error) {
	opts := putOptions(remotePath, public)
	info, err = c.Client.FPutObject(ctx(), c.Bucket, remotePath, path, opts)
	if err == nil {
		log.Event("minio.upload", "remote", remotePath, "path", path, "size", info.Size)
	}
	return info, err
}

func (c *Client) ListObjects(prefix string) <-chan minio.ObjectInfo {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}
	return c.Client.ListObjects(ctx(), c.Bucket, opts)
}

func (c *Client) Remove(remotePath string) error {
	opts := minio.RemoveObjectOptions{}
	err := c.Client.RemoveObject(ctx(), c.Bucket, remotePath, opts)
	return err
}

func brotliCompress(path string) ([]byte, error) {
	var buf bytes.Buffer
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	_, err = io.Copy(w, f)
	if err != nil {
		return nil, err
	}
	err = w.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UploadFileBrotliCompressed uploads path compressed with brotli.
// remotePath should end with .br
func (c *Client) UploadFileBrotliCompressed(remotePath string, path string, public bool) (info minio.UploadInfo, err error) {
	// TODO: use io.Pipe() to do compression more efficiently
	d, err := brotliCompress(path)
	if err != nil {
		return
	}
	opts := putOptions(remotePath, public)
	opts.ContentEncoding = "br"
	r := bytes.NewReader(d)
	fsize := int64(len(d))
	info, err = c.Client.PutObject(ctx(), c.Bucket, remotePath, r, fsize, opts)
	if err == nil {
		log.Event("minio.upload", "remote", remotePath, "path", path, "size", fsize, "encoding", "br")
	}
	return info, err
}

// Publish uploads a store file. A remotePath ending with .br is
// compressed with brotli before upload.
func (c *Client) Publish(remotePath string, path string) (minio.UploadInfo, error) {
	if strings.EqualFold(filepath.Ext(remotePath), ".br") {
		return c.UploadFileBrotliCompressed(remotePath, path, false)
	}
	return c.UploadFile(remotePath, path, false)
}

func ctx() context.Context {
	return context.Background()
}

func setPublicObjectMetadata(opts *minio.PutObjectOptions) {
	if opts.UserMetadata == nil {
		opts.UserMetadata = map[string]string{}
	}
	opts.UserMetadata["x-amz-acl"] = "public-read"
}
