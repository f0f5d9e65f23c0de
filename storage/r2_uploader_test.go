package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeObjects struct {
	put     *s3.PutObjectInput
	body    string
	deleted []string
	err     error
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.put, f.body = params, string(data)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestGetPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "players/1/a.png", "https://cdn.example.com/players/1/a.png"},
		{"https://cdn.example.com/", "/players/1/a.png", "https://cdn.example.com/players/1/a.png"},
		{"https://cdn.example.com/media", "players/2/b.jpg", "https://cdn.example.com/media/players/2/b.jpg"},
		{"https://cdn.example.com/media/", "players/2/b.jpg", "https://cdn.example.com/media/players/2/b.jpg"},
		{"https://cdn.example.com", "", ""},
	}

	for _, tt := range tests {
		u, err := newR2Uploader(&fakeObjects{}, "photos", tt.base)
		if err != nil {
			t.Fatalf("newR2Uploader(%q): %v", tt.base, err)
		}
		if got := u.GetPublicURL(tt.key); got != tt.want {
			t.Errorf("GetPublicURL(%q) with base %q = %q, want %q", tt.key, tt.base, got, tt.want)
		}
	}
}

func TestNewR2UploaderRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "cdn.example.com", "://broken"} {
		if _, err := newR2Uploader(&fakeObjects{}, "photos", base); !errors.Is(err, ErrInvalidR2Config) {
			t.Errorf("base %q: expected ErrInvalidR2Config, got %v", base, err)
		}
	}

	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"})
	if !errors.Is(err, ErrInvalidR2Config) {
		t.Errorf("expected ErrInvalidR2Config for partial config, got %v", err)
	}
}

func TestUploadAndDelete(t *testing.T) {
	objects := &fakeObjects{}
	u, err := newR2Uploader(objects, "photos", "https://cdn.example.com")
	if err != nil {
		t.Fatal(err)
	}

	res, err := u.Upload(context.Background(), "players/7/x.webp", "image/webp", strings.NewReader("pixels"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.ETag != "abc123" || res.Location != "https://cdn.example.com/players/7/x.webp" {
		t.Errorf("unexpected result %+v", res)
	}
	if aws.ToString(objects.put.Bucket) != "photos" || aws.ToString(objects.put.ContentType) != "image/webp" || objects.body != "pixels" {
		t.Errorf("unexpected put input %+v", objects.put)
	}

	if err := u.Delete(context.Background(), "players/7/x.webp"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(objects.deleted) != 1 || objects.deleted[0] != "players/7/x.webp" {
		t.Errorf("unexpected deletes %v", objects.deleted)
	}

	objects.err = errors.New("boom")
	if _, err := u.Upload(context.Background(), "k", "image/png", strings.NewReader("")); err == nil {
		t.Error("expected upload error")
	}
}
