package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/courtcut/courtcut/internal/config"
	"github.com/courtcut/courtcut/internal/courterr"
	"github.com/rs/zerolog"
)

// blobSink persists artifacts to an Azure Blob container under
// <prefix>/<name>, one prefix per input/output kind, returning
// short-lived signed read URLs.
type blobSink struct {
	client       *azblob.Client
	container    string
	inputPrefix  string
	outputPrefix string
	signedURLTTL time.Duration
	accountName  string
	accountKey   string
	logger       zerolog.Logger

	readyOnce sync.Once
	readyErr  error
}

func newBlobSink(sc config.StorageConfig, logger zerolog.Logger) (*blobSink, error) {
	client, err := azblob.NewClientFromConnectionString(sc.AzureConnectionString, nil)
	if err != nil {
		return nil, &courterr.StorageError{Op: "create blob client", Err: err}
	}

	accountName, accountKey := parseConnectionStringCredentials(sc.AzureConnectionString)

	return &blobSink{
		client:       client,
		container:    sc.AzureContainer,
		inputPrefix:  sc.AzureInputFolder,
		outputPrefix: sc.AzureOutputFolder,
		signedURLTTL: sc.SignedURLTTL,
		accountName:  accountName,
		accountKey:   accountKey,
		logger:       logger.With().Str("component", "storage.blob").Logger(),
	}, nil
}

// containerReady creates the configured container if it doesn't already
// exist. Guarded by sync.Once so concurrent callers each await the same
// single creation attempt.
func (s *blobSink) containerReady(ctx context.Context) error {
	s.readyOnce.Do(func() {
		_, err := s.client.CreateContainer(ctx, s.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			s.readyErr = &courterr.StorageError{Op: "create container", Err: err}
		}
	})
	return s.readyErr
}

func (s *blobSink) LocalInputDir() string  { return "" }
func (s *blobSink) LocalOutputDir() string { return "" }

func (s *blobSink) SaveInput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(ctx, localPath, name, s.inputPrefix)
}

func (s *blobSink) SaveOutput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(ctx, localPath, name, s.outputPrefix)
}

func (s *blobSink) save(ctx context.Context, localPath, name, prefix string) (StoredVideo, error) {
	if err := s.containerReady(ctx); err != nil {
		return StoredVideo{}, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return StoredVideo{}, &courterr.StorageError{Op: "open artifact", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return StoredVideo{}, &courterr.StorageError{Op: "stat artifact", Err: err}
	}

	blobName := prefix + "/" + name
	contentType := guessContentType(name)

	_, err = s.client.UploadFile(ctx, s.container, blobName, f, &azblob.UploadFileOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return StoredVideo{}, &courterr.StorageError{Op: "upload blob", Err: err}
	}

	url, err := s.signedURL(blobName, false)
	if err != nil {
		return StoredVideo{}, err
	}

	s.logger.Info().Str("name", name).Str("blob", blobName).Msg("artifact uploaded")

	return StoredVideo{
		Name:         name,
		URL:          url,
		Size:         info.Size(),
		LastModified: time.Now(),
	}, nil
}

func (s *blobSink) ListInputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(ctx, s.inputPrefix)
}

func (s *blobSink) ListOutputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(ctx, s.outputPrefix)
}

func (s *blobSink) list(ctx context.Context, prefix string) ([]StoredVideo, error) {
	if err := s.containerReady(ctx); err != nil {
		return nil, err
	}

	var out []StoredVideo
	pager := s.client.NewListBlobsFlatPager(s.container, &container.ListBlobsFlatOptions{
		Prefix: &prefix,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &courterr.StorageError{Op: "list blobs", Err: err}
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*item.Name, prefix+"/")
			sv := StoredVideo{Name: name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					sv.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					sv.LastModified = *item.Properties.LastModified
				}
			}
			if url, err := s.signedURL(*item.Name, false); err == nil {
				sv.URL = url
			}
			out = append(out, sv)
		}
	}
	return out, nil
}

func (s *blobSink) OutputExists(ctx context.Context, name string) (bool, error) {
	if err := s.containerReady(ctx); err != nil {
		return false, err
	}

	blobName := s.outputPrefix + "/" + name
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(blobName)
	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, &courterr.StorageError{Op: "get blob properties", Err: err}
	}
	return true, nil
}

func (s *blobSink) GetOutputURL(ctx context.Context, name string, asAttachment bool) (string, error) {
	if err := s.containerReady(ctx); err != nil {
		return "", err
	}
	return s.signedURL(s.outputPrefix+"/"+name, asAttachment)
}

// signedURL builds a short-lived SAS read URL for blobName, optionally
// forcing attachment disposition so browsers download rather than
// inline-play the response.
func (s *blobSink) signedURL(blobName string, asAttachment bool) (string, error) {
	if s.accountName == "" || s.accountKey == "" {
		return "", &courterr.StorageError{Op: "sign url", Err: fmt.Errorf("connection string missing AccountName/AccountKey")}
	}

	cred, err := azblob.NewSharedKeyCredential(s.accountName, s.accountKey)
	if err != nil {
		return "", &courterr.StorageError{Op: "sign url", Err: err}
	}

	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     time.Now().Add(-5 * time.Minute).UTC(),
		ExpiryTime:    time.Now().Add(s.signedURLTTL).UTC(),
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
		ContainerName: s.container,
		BlobName:      blobName,
	}

	if asAttachment {
		name := blobName
		if idx := strings.LastIndex(blobName, "/"); idx >= 0 {
			name = blobName[idx+1:]
		}
		values.ContentDisposition = fmt.Sprintf("attachment; filename=%q", name)
	}

	qp, err := values.SignWithSharedKey(cred)
	if err != nil {
		return "", &courterr.StorageError{Op: "sign url", Err: err}
	}

	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(blobName)
	return blobClient.URL() + "?" + qp.Encode(), nil
}

// parseConnectionStringCredentials extracts AccountName/AccountKey from
// an Azure Storage connection string; both are required to mint signed
// read URLs.
func parseConnectionStringCredentials(connStr string) (accountName, accountKey string) {
	for _, part := range strings.Split(connStr, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "AccountName":
			accountName = kv[1]
		case "AccountKey":
			accountKey = kv[1]
		}
	}
	return accountName, accountKey
}
