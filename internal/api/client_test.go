package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/cumulus-dev/cumulus/internal/auth"
	"github.com/cumulus-dev/cumulus/internal/payload"
	"github.com/cumulus-dev/cumulus/internal/query"
	"github.com/cumulus-dev/cumulus/internal/transport"
	"github.com/cumulus-dev/cumulus/internal/upload"
	"github.com/cumulus-dev/cumulus/pkg/config"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest is what the test server saw for one request
type recordedRequest struct {
	Method  string
	Path    string
	Query   map[string][]string
	Header  http.Header
	Fields  map[string][]string
	File    string
	FileArg string
	Body    []byte
	JSON    map[string]any
}

type testServer struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (s *testServer) all() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

// newTestClient starts a server that records requests and answers with respond.
func newTestClient(t *testing.T, chunkSize int64, respond func(n int, r recordedRequest) (int, string)) (Client, *testServer) {
	t.Helper()
	ts := &testServer{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			rec.Fields = r.MultipartForm.Value
			for name, files := range r.MultipartForm.File {
				f, err := files[0].Open()
				require.NoError(t, err)
				b, err := io.ReadAll(f)
				require.NoError(t, err)
				rec.FileArg = name
				rec.File = files[0].Filename
				rec.Body = b
			}
		} else if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			if len(b) > 0 {
				require.NoError(t, json.Unmarshal(b, &rec.JSON))
			}
		}

		ts.mu.Lock()
		ts.requests = append(ts.requests, rec)
		n := len(ts.requests)
		ts.mu.Unlock()

		status, body := respond(n, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&config.Config{
		Endpoint:      server.URL + "/v1",
		ProjectID:     "proj-1",
		APIKey:        "secret-key",
		ChunkSize:     chunkSize,
		RetryAttempts: 1,
	})
	require.NoError(t, err)
	return client, ts
}

func patterned(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
	}
	return b
}

func TestNewClient_RequiresProject(t *testing.T) {
	_, err := NewClient(&config.Config{Endpoint: "http://localhost/v1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestCreateFile_Chunked(t *testing.T) {
	client, ts := newTestClient(t, 100, func(n int, _ recordedRequest) (int, string) {
		if n < 3 {
			return http.StatusCreated, fmt.Sprintf(`{"$id":"file-1","chunksTotal":3,"chunksUploaded":%d}`, n)
		}
		return http.StatusCreated, `{"$id":"file-1","bucketId":"b1","name":"photo.jpg","sizeOriginal":250,"chunksTotal":3,"chunksUploaded":3}`
	})

	data := patterned(250)
	p, err := payload.FromBinary(data, "photo.jpg")
	require.NoError(t, err)

	var events []upload.Progress
	file, err := client.CreateFile(context.Background(), CreateFileParams{
		BucketID:    "b1",
		FileID:      "file-1",
		File:        p,
		Permissions: []string{PermissionRead(RoleAny())},
		OnProgress: func(p upload.Progress) error {
			events = append(events, p)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "file-1", file.ID)
	assert.Equal(t, int64(250), file.SizeOriginal)
	assert.Equal(t, file.ChunksTotal, file.ChunksUploaded)

	requests := ts.all()
	require.Len(t, requests, 3)
	ranges := []string{"bytes 0-99/250", "bytes 100-199/250", "bytes 200-249/250"}
	var body []byte
	for i, req := range requests {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/v1/storage/buckets/b1/files", req.Path)
		assert.Equal(t, "proj-1", req.Header.Get(auth.HeaderProject))
		assert.Equal(t, "secret-key", req.Header.Get(auth.HeaderKey))
		assert.Equal(t, ranges[i], req.Header.Get(transport.HeaderContentRange))
		assert.Equal(t, []string{"file-1"}, req.Fields["fileId"])
		assert.Equal(t, []string{`read("any")`}, req.Fields["permissions[]"])
		assert.Equal(t, "file", req.FileArg)
		assert.Equal(t, "photo.jpg", req.File)
		body = append(body, req.Body...)
	}
	assert.Empty(t, requests[0].Header.Get(transport.HeaderUploadID))
	assert.Equal(t, "file-1", requests[1].Header.Get(transport.HeaderUploadID))
	assert.Equal(t, "file-1", requests[2].Header.Get(transport.HeaderUploadID))
	assert.Equal(t, data, body)

	require.Len(t, events, 3)
	assert.InDelta(t, 100, events[2].Progress, 0.001)
}

func TestCreateFile_MissingPayload(t *testing.T) {
	client, ts := newTestClient(t, 100, func(int, recordedRequest) (int, string) {
		return http.StatusCreated, `{}`
	})

	_, err := client.CreateFile(context.Background(), CreateFileParams{BucketID: "b1", FileID: "f1"})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"file"`)

	_, err = client.CreateFile(context.Background(), CreateFileParams{FileID: "f1"})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"bucketId"`)

	assert.Empty(t, ts.all())
}

func TestCreateFile_ServerErrorStopsUpload(t *testing.T) {
	client, ts := newTestClient(t, 100, func(n int, _ recordedRequest) (int, string) {
		if n == 2 {
			return http.StatusInternalServerError, `{"message":"Server Error","code":500,"type":"general_unknown"}`
		}
		return http.StatusCreated, `{"$id":"file-1","chunksTotal":3,"chunksUploaded":1}`
	})

	p, err := payload.FromBinary(patterned(300), "big.bin")
	require.NoError(t, err)

	_, err = client.CreateFile(context.Background(), CreateFileParams{BucketID: "b1", FileID: "file-1", File: p})
	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Code)
	assert.Equal(t, "general_unknown", apiErr.Type)
	assert.Len(t, ts.all(), 2)
}

func TestCreateDeployment_SmallArchive(t *testing.T) {
	client, ts := newTestClient(t, 0, func(int, recordedRequest) (int, string) {
		return http.StatusAccepted, `{"$id":"dep-1","resourceId":"fn-1","status":"waiting","sourceSize":1024}`
	})

	p, err := payload.FromBinary(patterned(1024), "code.tar.gz")
	require.NoError(t, err)

	dep, err := client.CreateDeployment(context.Background(), CreateDeploymentParams{
		FunctionID: "fn-1",
		Code:       p,
		Activate:   true,
		Entrypoint: lo.ToPtr("src/main.go"),
	})
	require.NoError(t, err)
	assert.Equal(t, DeploymentStatusWaiting, dep.Status)
	assert.False(t, dep.Status.IsTerminal())

	requests := ts.all()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "/v1/functions/fn-1/deployments", req.Path)
	assert.Empty(t, req.Header.Get(transport.HeaderContentRange))
	assert.Equal(t, "code", req.FileArg)
	assert.Equal(t, "code.tar.gz", req.File)
	assert.Equal(t, []string{"true"}, req.Fields["activate"])
	assert.Equal(t, []string{"src/main.go"}, req.Fields["entrypoint"])
	assert.NotContains(t, req.Fields, "commands")
}

func TestCreateSiteDeployment_ResumesWithUploadID(t *testing.T) {
	client, ts := newTestClient(t, 100, func(n int, _ recordedRequest) (int, string) {
		return http.StatusAccepted, fmt.Sprintf(`{"$id":"dep-9","status":"processing","chunksTotal":2,"chunksUploaded":%d}`, n)
	})

	p, err := payload.FromBinary(patterned(150), "site.tar.gz")
	require.NoError(t, err)

	dep, err := client.CreateSiteDeployment(context.Background(), CreateSiteDeploymentParams{
		SiteID:       "site-1",
		Code:         p,
		BuildCommand: lo.ToPtr("npm run build"),
		UploadID:     "dep-9",
	})
	require.NoError(t, err)
	assert.Equal(t, "dep-9", dep.ID)

	requests := ts.all()
	require.Len(t, requests, 2)
	for _, req := range requests {
		assert.Equal(t, "/v1/sites/site-1/deployments", req.Path)
		assert.Equal(t, "dep-9", req.Header.Get(transport.HeaderUploadID))
		assert.Equal(t, []string{"npm run build"}, req.Fields["buildCommand"])
		assert.Equal(t, []string{"false"}, req.Fields["activate"])
	}
	assert.Equal(t, "bytes 0-99/150", requests[0].Header.Get(transport.HeaderContentRange))
}

func TestGetFile_NotFound(t *testing.T) {
	client, _ := newTestClient(t, 0, func(int, recordedRequest) (int, string) {
		return http.StatusNotFound, `{"message":"The requested file could not be found.","code":404,"type":"storage_file_not_found","version":"1.7.0"}`
	})

	_, err := client.GetFile(context.Background(), "b1", "missing")
	require.Error(t, err)
	assert.True(t, apperr.IsAPIError(err, http.StatusNotFound))
}

func TestListFiles_EncodesQueries(t *testing.T) {
	client, ts := newTestClient(t, 0, func(int, recordedRequest) (int, string) {
		return http.StatusOK, `{"total":1,"files":[{"$id":"f1","name":"a.txt","sizeOriginal":3,"$createdAt":"2026-01-02T03:04:05.000+00:00"}]}`
	})

	list, err := client.ListFiles(context.Background(), "b1", []string{query.Limit(5), query.OrderDesc("$createdAt")}, "a.txt")
	require.NoError(t, err)
	require.Len(t, list.Files, 1)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 2026, list.Files[0].CreatedAt.Year())

	req := ts.all()[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, []string{`{"method":"limit","values":[5]}`, `{"method":"orderDesc","attribute":"$createdAt"}`}, req.Query["queries[]"])
	assert.Equal(t, []string{"a.txt"}, req.Query["search"])
}

func TestGetFileDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/storage/buckets/b1/files/f%201/download", r.URL.EscapedPath())
		_, _ = w.Write([]byte{0x00, 0x01, 0x02})
	}))
	defer server.Close()

	client, err := NewClient(&config.Config{Endpoint: server.URL + "/v1", ProjectID: "p"})
	require.NoError(t, err)

	data, err := client.GetFileDownload(context.Background(), "b1", "f 1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, data)
}

func TestGetDeploymentDownload_SendsType(t *testing.T) {
	client, ts := newTestClient(t, 0, func(int, recordedRequest) (int, string) {
		return http.StatusOK, `archive`
	})

	data, err := client.GetDeploymentDownload(context.Background(), "fn-1", "dep-1", DeploymentDownloadTypeOutput)
	require.NoError(t, err)
	assert.Equal(t, []byte("archive"), data)
	assert.Equal(t, []string{"output"}, ts.all()[0].Query["type"])
}

func TestCreateUser(t *testing.T) {
	client, ts := newTestClient(t, 0, func(int, recordedRequest) (int, string) {
		return http.StatusCreated, `{"$id":"u1","email":"ada@example.com","name":"Ada","status":true,"registration":"2026-01-01T00:00:00.000+00:00"}`
	})

	t.Run("sends only set fields", func(t *testing.T) {
		user, err := client.CreateUser(context.Background(), CreateUserParams{
			UserID: "u1",
			Email:  lo.ToPtr("ada@example.com"),
			Name:   lo.ToPtr("Ada"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.Name)

		req := ts.all()[0]
		assert.Equal(t, map[string]any{"userId": "u1", "email": "ada@example.com", "name": "Ada"}, req.JSON)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := client.CreateUser(context.Background(), CreateUserParams{UserID: "u2", Email: lo.ToPtr("not-an-email")})
		require.ErrorIs(t, err, apperr.ErrInvalidArgument)
		assert.Contains(t, err.Error(), `"email"`)
	})
}

func TestCreateTeamAndDelete(t *testing.T) {
	client, ts := newTestClient(t, 0, func(n int, _ recordedRequest) (int, string) {
		if n == 1 {
			return http.StatusCreated, `{"$id":"t1","name":"Core","total":1}`
		}
		return http.StatusNoContent, ``
	})

	team, err := client.CreateTeam(context.Background(), "t1", "Core", []string{"owner"})
	require.NoError(t, err)
	assert.Equal(t, "Core", team.Name)
	require.NoError(t, client.DeleteTeam(context.Background(), "t1"))

	requests := ts.all()
	require.Len(t, requests, 2)
	assert.Equal(t, []any{"owner"}, requests[0].JSON["roles"])
	assert.Equal(t, http.MethodDelete, requests[1].Method)
	assert.Equal(t, "/v1/teams/t1", requests[1].Path)

	_, err = client.CreateTeam(context.Background(), "t2", "", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestDocuments(t *testing.T) {
	client, ts := newTestClient(t, 0, func(n int, _ recordedRequest) (int, string) {
		if n == 1 {
			return http.StatusCreated, `{"$id":"d1","$collectionId":"c1","$databaseId":"db1","$permissions":[],"$createdAt":"2026-03-01T10:00:00.000+00:00","$updatedAt":"2026-03-01T10:00:00.000+00:00","title":"Hello","views":3}`
		}
		return http.StatusOK, `{"total":1,"documents":[{"$id":"d1","$collectionId":"c1","$databaseId":"db1","title":"Hello"}]}`
	})

	doc, err := client.CreateDocument(context.Background(), CreateDocumentParams{
		DatabaseID:   "db1",
		CollectionID: "c1",
		DocumentID:   "d1",
		Data:         map[string]any{"title": "Hello", "views": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "c1", doc.CollectionID)
	assert.Equal(t, map[string]any{"title": "Hello", "views": float64(3)}, doc.Data)

	titleQuery, err := query.Equal("title", "Hello")
	require.NoError(t, err)
	list, err := client.ListDocuments(context.Background(), "db1", "c1", []string{titleQuery})
	require.NoError(t, err)
	require.Len(t, list.Documents, 1)
	assert.Equal(t, "Hello", list.Documents[0].Data["title"])

	requests := ts.all()
	assert.Equal(t, "/v1/databases/db1/collections/c1/documents", requests[0].Path)
	assert.Equal(t, map[string]any{"title": "Hello", "views": float64(3)}, requests[0].JSON["data"])

	_, err = client.CreateDocument(context.Background(), CreateDocumentParams{DatabaseID: "db1", CollectionID: "c1", DocumentID: "d2"})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"data"`)
}

func TestMessages(t *testing.T) {
	client, ts := newTestClient(t, 0, func(n int, _ recordedRequest) (int, string) {
		return http.StatusCreated, `{"$id":"m1","providerType":"email","status":"draft","scheduledAt":"","deliveredAt":null,"deliveredTotal":0}`
	})

	msg, err := client.CreateEmail(context.Background(), CreateEmailParams{
		MessageID: "m1",
		Subject:   "Welcome",
		Content:   "<p>Hi</p>",
		Users:     []string{"u1"},
		Draft:     lo.ToPtr(true),
		HTML:      lo.ToPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, MessageStatusDraft, msg.Status)
	assert.True(t, msg.ScheduledAt.IsZero())
	assert.True(t, msg.DeliveredAt.IsZero())

	req := ts.all()[0]
	assert.Equal(t, "/v1/messaging/messages/email", req.Path)
	assert.Equal(t, true, req.JSON["draft"])
	assert.NotContains(t, req.JSON, "cc")
	assert.NotContains(t, req.JSON, "scheduledAt")

	_, err = client.CreateEmail(context.Background(), CreateEmailParams{MessageID: "m2", Subject: "x"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestRequiredPositionalIDs(t *testing.T) {
	client, ts := newTestClient(t, 0, func(int, recordedRequest) (int, string) {
		return http.StatusOK, `{}`
	})
	ctx := context.Background()

	tcs := []struct {
		name string
		call func() error
	}{
		{"GetFile", func() error { _, err := client.GetFile(ctx, "b1", ""); return err }},
		{"DeleteFile", func() error { return client.DeleteFile(ctx, "", "f1") }},
		{"GetFunction", func() error { _, err := client.GetFunction(ctx, ""); return err }},
		{"GetDeployment", func() error { _, err := client.GetDeployment(ctx, "fn", ""); return err }},
		{"GetSiteDeployment", func() error { _, err := client.GetSiteDeployment(ctx, "", "d"); return err }},
		{"GetUser", func() error { _, err := client.GetUser(ctx, ""); return err }},
		{"GetDocument", func() error { _, err := client.GetDocument(ctx, "db", "", "d", nil); return err }},
		{"GetMessage", func() error { _, err := client.GetMessage(ctx, ""); return err }},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.call(), apperr.ErrInvalidArgument)
		})
	}
	assert.Empty(t, ts.all())
}

func TestCompact(t *testing.T) {
	var nilSlice []string
	var nilName *string
	got := compact(map[string]any{
		"name":     nilName,
		"title":    lo.ToPtr("x"),
		"enabled":  lo.ToPtr(false),
		"tags":     nilSlice,
		"roles":    []string{"a"},
		"activate": false,
		"count":    0,
		"empty":    "",
	})
	assert.Equal(t, map[string]any{
		"title":    "x",
		"enabled":  false,
		"roles":    []string{"a"},
		"activate": false,
		"count":    0,
		"empty":    "",
	}, got)
}
