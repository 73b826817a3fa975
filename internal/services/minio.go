package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectInfo is the subset of object metadata the pipeline cares about.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectGateway abstracts the object store for the ingestion pipeline.
type ObjectGateway interface {
	StatObject(key string) (ObjectInfo, error)
	RemoveObject(key string) error
	EnablePublicAccess(key string) error
	ObjectURL(key string) string
	Bucket() string
}

type MinioService struct {
	Client     *minio.Client
	BucketName string

	// policyMu serializes the read-modify-write on the bucket policy;
	// publicRead records that the read statement is already installed.
	policyMu   sync.Mutex
	publicRead bool
}

var minioInstance *MinioService

func InitializeMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool) error {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	// Create bucket if it doesn't exist
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("[MinIO] Created bucket: %s", bucket)
	}

	minioInstance = &MinioService{
		Client:     client,
		BucketName: bucket,
	}

	// Install the public-read grant up front; the upload pipeline re-checks
	// it per object and fails the upload if the grant cannot be confirmed.
	if err := minioInstance.EnablePublicAccess(""); err != nil {
		log.Printf("[MinIO] could not install public-read policy: %v", err)
	}

	log.Println("[MinIO] Connected successfully")
	return nil
}

func GetMinioService() *MinioService {
	return minioInstance
}

func (m *MinioService) CheckConnection() error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("minio service not initialized")
	}
	_, err := m.Client.BucketExists(context.Background(), m.BucketName)
	return err
}

func (m *MinioService) Bucket() string {
	return m.BucketName
}

func (m *MinioService) StatObject(key string) (ObjectInfo, error) {
	info, err := m.Client.StatObject(context.Background(), m.BucketName, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

func (m *MinioService) RemoveObject(key string) error {
	return m.Client.RemoveObject(context.Background(), m.BucketName, key, minio.RemoveObjectOptions{})
}

func (m *MinioService) DownloadFile(key, localFilePath string) error {
	return m.Client.FGetObject(context.Background(), m.BucketName, key, localFilePath, minio.GetObjectOptions{})
}

func (m *MinioService) UploadFile(localFilePath, key, contentType string) error {
	_, err := m.Client.FPutObject(context.Background(), m.BucketName, key, localFilePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// ObjectURL returns the public address of a stored object.
func (m *MinioService) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", m.Client.EndpointURL(), m.BucketName, key)
}

// bucketPolicy mirrors the S3 policy document shape that MinIO accepts.
type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
	Action    []string          `json:"Action"`
	Resource  []string          `json:"Resource"`
}

// EnablePublicAccess makes stored objects anonymously readable. MinIO has no
// per-object ACL call, so reads are granted by a single wildcard s3:GetObject
// statement on the bucket. The policy read-modify-write is serialized by
// policyMu; once the statement is in place the call is a cached no-op, so
// concurrent upload completions cannot clobber each other's grant and the
// policy does not grow with the object count.
func (m *MinioService) EnablePublicAccess(key string) error {
	m.policyMu.Lock()
	defer m.policyMu.Unlock()
	if m.publicRead {
		return nil
	}

	ctx := context.Background()
	current, _ := m.Client.GetBucketPolicy(ctx, m.BucketName)

	updated, changed, err := withPublicReadStatement(current, m.BucketName)
	if err != nil {
		log.Printf("[MinIO] invalid existing bucket policy, replacing: %v", err)
		updated, changed, err = withPublicReadStatement("", m.BucketName)
		if err != nil {
			return err
		}
	}

	if changed {
		if err := m.Client.SetBucketPolicy(ctx, m.BucketName, updated); err != nil {
			return err
		}
	}
	m.publicRead = true
	return nil
}

// withPublicReadStatement ensures the policy document contains the wildcard
// read statement for the bucket, preserving unrelated statements. Reports
// whether the document changed.
func withPublicReadStatement(current, bucket string) (string, bool, error) {
	resource := fmt.Sprintf("arn:aws:s3:::%s/*", bucket)

	policy := bucketPolicy{Version: "2012-10-17"}
	if current != "" {
		if err := json.Unmarshal([]byte(current), &policy); err != nil {
			return "", false, err
		}
	}

	for _, st := range policy.Statement {
		for _, r := range st.Resource {
			if r == resource {
				return current, false, nil
			}
		}
	}

	policy.Statement = append(policy.Statement, policyStatement{
		Effect:    "Allow",
		Principal: map[string]string{"AWS": "*"},
		Action:    []string{"s3:GetObject"},
		Resource:  []string{resource},
	})

	data, err := json.Marshal(policy)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}
