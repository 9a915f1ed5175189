// Package gcs publishes generated reports to a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// NewGCSClient authenticates with a service account credential file, or with application
// default credentials when none is given.
func NewGCSClient(ctx context.Context, googleServiceAccountCredentialFile string) (*storage.Client, error) {
	if len(googleServiceAccountCredentialFile) > 0 {
		return storage.NewClient(ctx,
			option.WithCredentialsFile(googleServiceAccountCredentialFile),
		)
	}
	return storage.NewClient(ctx)
}

type uploader interface {
	upload(ctx context.Context, name, contentType string, r io.Reader) error
}

type bucketUploader struct {
	bucket *storage.BucketHandle
}

func (b bucketUploader) upload(ctx context.Context, name, contentType string, r io.Reader) error {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Publisher uploads files to gs://<bucket>/<prefix>/<file name>.
type Publisher struct {
	bucket   string
	prefix   string
	uploader uploader
	client   *storage.Client
}

func NewPublisher(ctx context.Context, bucket, prefix, credentialFile string) (*Publisher, error) {
	client, err := NewGCSClient(ctx, credentialFile)
	if err != nil {
		return nil, errors.Wrap(err, "could not create GCS client")
	}
	return &Publisher{
		bucket:   bucket,
		prefix:   prefix,
		uploader: bucketUploader{bucket: client.Bucket(bucket)},
		client:   client,
	}, nil
}

// ObjectName is the object a file is published to.
func (p *Publisher) ObjectName(file string) string {
	return path.Join(strings.Trim(p.prefix, "/"), filepath.Base(file))
}

// Publish uploads the files and returns their gs:// URLs.
func (p *Publisher) Publish(ctx context.Context, files ...string) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		name := p.ObjectName(file)
		if err := p.publish(ctx, file, name); err != nil {
			return urls, errors.Wrapf(err, "could not publish %s", file)
		}
		url := "gs://" + p.bucket + "/" + name
		log.Infof("published %s", url)
		urls = append(urls, url)
	}
	return urls, nil
}

func (p *Publisher) publish(ctx context.Context, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.uploader.upload(ctx, name, contentType(file), f)
}

func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func contentType(file string) string {
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
