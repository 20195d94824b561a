package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cumulus-dev/cumulus/internal/payload"
	"github.com/cumulus-dev/cumulus/internal/upload"
)

// NullableTime decodes timestamps the server leaves empty until an event
// happens, such as a message's delivery time.
type NullableTime struct {
	time.Time
}

func (nt *NullableTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("timestamp is not a string: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return err
	}
	nt.Time = t
	return nil
}

// Bucket is a storage container for files
type Bucket struct {
	ID              string      `json:"$id"`
	CreatedAt       time.Time   `json:"$createdAt"`
	UpdatedAt       time.Time   `json:"$updatedAt"`
	Permissions     []string    `json:"$permissions"`
	Name            string      `json:"name"`
	Enabled         bool        `json:"enabled"`
	FileSecurity    bool        `json:"fileSecurity"`
	MaximumFileSize int64       `json:"maximumFileSize"`
	AllowedFileExts []string    `json:"allowedFileExtensions"`
	Compression     Compression `json:"compression"`
	Encryption      bool        `json:"encryption"`
	Antivirus       bool        `json:"antivirus"`
}

// File is a stored file. While a chunked upload is in progress the server
// returns the same shape with ChunksUploaded < ChunksTotal.
type File struct {
	ID             string    `json:"$id"`
	BucketID       string    `json:"bucketId"`
	CreatedAt      time.Time `json:"$createdAt"`
	UpdatedAt      time.Time `json:"$updatedAt"`
	Permissions    []string  `json:"$permissions"`
	Name           string    `json:"name"`
	Signature      string    `json:"signature"`
	MimeType       string    `json:"mimeType"`
	SizeOriginal   int64     `json:"sizeOriginal"`
	ChunksTotal    int64     `json:"chunksTotal"`
	ChunksUploaded int64     `json:"chunksUploaded"`
}

type FileList struct {
	Total int64  `json:"total"`
	Files []File `json:"files"`
}

type Function struct {
	ID           string    `json:"$id"`
	CreatedAt    time.Time `json:"$createdAt"`
	UpdatedAt    time.Time `json:"$updatedAt"`
	Name         string    `json:"name"`
	Enabled      bool      `json:"enabled"`
	Live         bool      `json:"live"`
	Runtime      Runtime   `json:"runtime"`
	DeploymentID string    `json:"deploymentId"`
	Entrypoint   string    `json:"entrypoint"`
	Commands     string    `json:"commands"`
	Timeout      int64     `json:"timeout"`
	Execute      []string  `json:"execute"`
}

type FunctionList struct {
	Total     int64      `json:"total"`
	Functions []Function `json:"functions"`
}

type Site struct {
	ID              string    `json:"$id"`
	CreatedAt       time.Time `json:"$createdAt"`
	UpdatedAt       time.Time `json:"$updatedAt"`
	Name            string    `json:"name"`
	Enabled         bool      `json:"enabled"`
	Live            bool      `json:"live"`
	Framework       Framework `json:"framework"`
	DeploymentID    string    `json:"deploymentId"`
	InstallCommand  string    `json:"installCommand"`
	BuildCommand    string    `json:"buildCommand"`
	OutputDirectory string    `json:"outputDirectory"`
}

// Deployment is a code upload for a function or site
type Deployment struct {
	ID             string           `json:"$id"`
	CreatedAt      time.Time        `json:"$createdAt"`
	UpdatedAt      time.Time        `json:"$updatedAt"`
	Type           string           `json:"type"`
	ResourceID     string           `json:"resourceId"`
	ResourceType   string           `json:"resourceType"`
	Entrypoint     string           `json:"entrypoint"`
	SourceSize     int64            `json:"sourceSize"`
	BuildSize      int64            `json:"buildSize"`
	TotalSize      int64            `json:"totalSize"`
	BuildDuration  int64            `json:"buildDuration"`
	BuildLogs      string           `json:"buildLogs"`
	Status         DeploymentStatus `json:"status"`
	Activate       bool             `json:"activate"`
	ChunksTotal    int64            `json:"chunksTotal"`
	ChunksUploaded int64            `json:"chunksUploaded"`
}

type DeploymentList struct {
	Total       int64        `json:"total"`
	Deployments []Deployment `json:"deployments"`
}

type User struct {
	ID                string         `json:"$id"`
	CreatedAt         time.Time      `json:"$createdAt"`
	UpdatedAt         time.Time      `json:"$updatedAt"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	Status            bool           `json:"status"`
	Labels            []string       `json:"labels"`
	EmailVerification bool           `json:"emailVerification"`
	PhoneVerification bool           `json:"phoneVerification"`
	Registration      time.Time      `json:"registration"`
	Prefs             map[string]any `json:"prefs"`
}

type UserList struct {
	Total int64  `json:"total"`
	Users []User `json:"users"`
}

type Team struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
	UpdatedAt time.Time `json:"$updatedAt"`
	Name      string    `json:"name"`
	Total     int64     `json:"total"`
}

type TeamList struct {
	Total int64  `json:"total"`
	Teams []Team `json:"teams"`
}

// Document is a database row. System attributes are decoded into fields and
// every user-defined attribute lands in Data.
type Document struct {
	ID           string
	CollectionID string
	DatabaseID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Permissions  []string
	Data         map[string]any
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var system struct {
		ID           string    `json:"$id"`
		CollectionID string    `json:"$collectionId"`
		DatabaseID   string    `json:"$databaseId"`
		CreatedAt    time.Time `json:"$createdAt"`
		UpdatedAt    time.Time `json:"$updatedAt"`
		Permissions  []string  `json:"$permissions"`
	}
	if err := json.Unmarshal(b, &system); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, key := range []string{"$id", "$collectionId", "$databaseId", "$createdAt", "$updatedAt", "$permissions", "$sequence"} {
		delete(all, key)
	}

	*d = Document{
		ID:           system.ID,
		CollectionID: system.CollectionID,
		DatabaseID:   system.DatabaseID,
		CreatedAt:    system.CreatedAt,
		UpdatedAt:    system.UpdatedAt,
		Permissions:  system.Permissions,
		Data:         all,
	}
	return nil
}

type DocumentList struct {
	Total     int64      `json:"total"`
	Documents []Document `json:"documents"`
}

type Message struct {
	ID             string         `json:"$id"`
	CreatedAt      time.Time      `json:"$createdAt"`
	UpdatedAt      time.Time      `json:"$updatedAt"`
	ProviderType   string         `json:"providerType"`
	Topics         []string       `json:"topics"`
	Users          []string       `json:"users"`
	Targets        []string       `json:"targets"`
	ScheduledAt    NullableTime   `json:"scheduledAt"`
	DeliveredAt    NullableTime   `json:"deliveredAt"`
	DeliveryErrors []string       `json:"deliveryErrors"`
	DeliveredTotal int64          `json:"deliveredTotal"`
	Data           map[string]any `json:"data"`
	Status         MessageStatus  `json:"status"`
}

type MessageList struct {
	Total    int64     `json:"total"`
	Messages []Message `json:"messages"`
}

// CreateFileParams are the inputs of CreateFile. Payloads larger than the
// chunk size are uploaded in chunks; UploadID resumes an earlier attempt.
type CreateFileParams struct {
	BucketID    string           `json:"bucketId" validate:"required"`
	FileID      string           `json:"fileId" validate:"required"`
	File        *payload.Payload `json:"file" validate:"required"`
	Permissions []string         `json:"permissions"`
	UploadID    string           `json:"-"`
	OnProgress  upload.ProgressFunc
}

type UpdateFileParams struct {
	BucketID    string   `json:"bucketId" validate:"required"`
	FileID      string   `json:"fileId" validate:"required"`
	Name        *string  `json:"name"`
	Permissions []string `json:"permissions"`
}

type CreateDeploymentParams struct {
	FunctionID string           `json:"functionId" validate:"required"`
	Code       *payload.Payload `json:"code" validate:"required"`
	Activate   bool             `json:"activate"`
	Entrypoint *string          `json:"entrypoint"`
	Commands   *string          `json:"commands"`
	UploadID   string           `json:"-"`
	OnProgress upload.ProgressFunc
}

type CreateSiteDeploymentParams struct {
	SiteID          string           `json:"siteId" validate:"required"`
	Code            *payload.Payload `json:"code" validate:"required"`
	Activate        bool             `json:"activate"`
	InstallCommand  *string          `json:"installCommand"`
	BuildCommand    *string          `json:"buildCommand"`
	OutputDirectory *string          `json:"outputDirectory"`
	UploadID        string           `json:"-"`
	OnProgress      upload.ProgressFunc
}

type CreateUserParams struct {
	UserID   string  `json:"userId" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Name     *string `json:"name"`
}

type CreateDocumentParams struct {
	DatabaseID   string         `json:"databaseId" validate:"required"`
	CollectionID string         `json:"collectionId" validate:"required"`
	DocumentID   string         `json:"documentId" validate:"required"`
	Data         map[string]any `json:"data" validate:"required"`
	Permissions  []string       `json:"permissions"`
}

type CreateEmailParams struct {
	MessageID   string   `json:"messageId" validate:"required"`
	Subject     string   `json:"subject" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	Topics      []string `json:"topics"`
	Users       []string `json:"users"`
	Targets     []string `json:"targets"`
	CC          []string `json:"cc"`
	BCC         []string `json:"bcc"`
	Draft       *bool    `json:"draft"`
	HTML        *bool    `json:"html"`
	ScheduledAt *string  `json:"scheduledAt"`
}
