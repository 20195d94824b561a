// Package mock provides a testify-based fake of api.Client.
package mock

import (
	"context"

	"github.com/cumulus-dev/cumulus/internal/api"
	"github.com/stretchr/testify/mock"
)

// MockClient implements api.Client. Set expectations with On:
//
//	client := apimock.NewMockClient(t)
//	client.On("GetFile", apimock.AnyContext, "b1", "f1").Return(&api.File{ID: "f1"}, nil)
type MockClient struct {
	mock.Mock
}

var _ api.Client = (*MockClient)(nil)

// AnyContext matches any context argument.
var AnyContext = mock.Anything

// NewMockClient returns a MockClient whose expectations are asserted when
// the test ends.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockClient) GetBucket(ctx context.Context, bucketID string) (*api.Bucket, error) {
	args := m.Called(ctx, bucketID)
	v, _ := args.Get(0).(*api.Bucket)
	return v, args.Error(1)
}

func (m *MockClient) CreateFile(ctx context.Context, params api.CreateFileParams) (*api.File, error) {
	args := m.Called(ctx, params)
	v, _ := args.Get(0).(*api.File)
	return v, args.Error(1)
}

func (m *MockClient) GetFile(ctx context.Context, bucketID string, fileID string) (*api.File, error) {
	args := m.Called(ctx, bucketID, fileID)
	v, _ := args.Get(0).(*api.File)
	return v, args.Error(1)
}

func (m *MockClient) ListFiles(ctx context.Context, bucketID string, queries []string, search string) (*api.FileList, error) {
	args := m.Called(ctx, bucketID, queries, search)
	v, _ := args.Get(0).(*api.FileList)
	return v, args.Error(1)
}

func (m *MockClient) UpdateFile(ctx context.Context, params api.UpdateFileParams) (*api.File, error) {
	args := m.Called(ctx, params)
	v, _ := args.Get(0).(*api.File)
	return v, args.Error(1)
}

func (m *MockClient) DeleteFile(ctx context.Context, bucketID string, fileID string) error {
	args := m.Called(ctx, bucketID, fileID)
	return args.Error(0)
}

func (m *MockClient) GetFileDownload(ctx context.Context, bucketID string, fileID string) ([]byte, error) {
	args := m.Called(ctx, bucketID, fileID)
	v, _ := args.Get(0).([]byte)
	return v, args.Error(1)
}

func (m *MockClient) ListFunctions(ctx context.Context, queries []string, search string) (*api.FunctionList, error) {
	args := m.Called(ctx, queries, search)
	v, _ := args.Get(0).(*api.FunctionList)
	return v, args.Error(1)
}

func (m *MockClient) GetFunction(ctx context.Context, functionID string) (*api.Function, error) {
	args := m.Called(ctx, functionID)
	v, _ := args.Get(0).(*api.Function)
	return v, args.Error(1)
}

func (m *MockClient) CreateDeployment(ctx context.Context, params api.CreateDeploymentParams) (*api.Deployment, error) {
	args := m.Called(ctx, params)
	v, _ := args.Get(0).(*api.Deployment)
	return v, args.Error(1)
}

func (m *MockClient) ListDeployments(ctx context.Context, functionID string, queries []string, search string) (*api.DeploymentList, error) {
	args := m.Called(ctx, functionID, queries, search)
	v, _ := args.Get(0).(*api.DeploymentList)
	return v, args.Error(1)
}

func (m *MockClient) GetDeployment(ctx context.Context, functionID string, deploymentID string) (*api.Deployment, error) {
	args := m.Called(ctx, functionID, deploymentID)
	v, _ := args.Get(0).(*api.Deployment)
	return v, args.Error(1)
}

func (m *MockClient) DeleteDeployment(ctx context.Context, functionID string, deploymentID string) error {
	args := m.Called(ctx, functionID, deploymentID)
	return args.Error(0)
}

func (m *MockClient) GetDeploymentDownload(ctx context.Context, functionID string, deploymentID string, downloadType api.DeploymentDownloadType) ([]byte, error) {
	args := m.Called(ctx, functionID, deploymentID, downloadType)
	v, _ := args.Get(0).([]byte)
	return v, args.Error(1)
}

func (m *MockClient) GetSite(ctx context.Context, siteID string) (*api.Site, error) {
	args := m.Called(ctx, siteID)
	v, _ := args.Get(0).(*api.Site)
	return v, args.Error(1)
}

func (m *MockClient) CreateSiteDeployment(ctx context.Context, params api.CreateSiteDeploymentParams) (*api.Deployment, error) {
	args := m.Called(ctx, params)
	v, _ := args.Get(0).(*api.Deployment)
	return v, args.Error(1)
}

func (m *MockClient) ListSiteDeployments(ctx context.Context, siteID string, queries []string, search string) (*api.DeploymentList, error) {
	args := m.Called(ctx, siteID, queries, search)
	v, _ := args.Get(0).(*api.DeploymentList)
	return v, args.Error(1)
}

func (m *MockClient) GetSiteDeployment(ctx context.Context, siteID string, deploymentID string) (*api.Deployment, error) {
	args := m.Called(ctx, siteID, deploymentID)
	v, _ := args.Get(0).(*api.Deployment)
	return v, args.Error(1)
}

func (m *MockClient) ListUsers(ctx context.Context, queries []string, search string) (*api.UserList, error) {
	args := m.Called(ctx, queries, search)
	v, _ := args.Get(0).(*api.UserList)
	return v, args.Error(1)
}

func (m *MockClient) GetUser(ctx context.Context, userID string) (*api.User, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*api.User)
	return v, args.Error(1)
}

func (m *MockClient) CreateUser(ctx context.Context, params api.CreateUserParams) (*api.User, error) {
	args := m.Called(ctx, params)
	v, _ := args.Get(0).(*api.User)
	return v, args.Error(1)
}

func (m *MockClient) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockClient) ListTeams(ctx context.Context, queries []string, search string) (*api.TeamList, error) {
	args := m.Called(ctx, queries, search)
	v, _ := args.Get(0).(*api.TeamList)
	return v, args.Error(1)
}

func (m *MockClient) GetTeam(ctx context.Context, teamID string) (*api.Team, error) {
	args := m.Called(ctx, teamID)
	v, _ := args.Get(0).(*api.Team)
	return v, args.Error(1)
}

func (m *MockClient) CreateTeam(ctx context.Context, teamID string, name string, roles []string) (*api.Team, error) {
	args := m.Called(ctx, teamID, name, roles)
	v, _ := args.Get(0).(*api.Team)
	return v, args.Error(1)
}

func (m *MockClient) DeleteTeam(ctx context.Context, teamID string) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

func (m *MockClient) ListDocuments(ctx context.Context, databaseID string, collectionID string, queries []string) (*api.DocumentList, error) {
	args := m.Called(ctx, databaseID, collectionID, queries)
	v, _ := args.Get(0).(*api.DocumentList)
	return v, args.Error(1)
}

func (m *MockClient) GetDocument(ctx context.Context, databaseID string, collectionID string, documentID string, queries []string) (*api.Document, error) {
	args := m.Called(ctx, databaseID, collectionID, documentID, queries)
	v, _ := args.Get(0).(*api.Document)
	return v, args.Error(1)
}

func (m *MockClient) CreateDocument(ctx context.Context, params api.CreateDocumentParams) (*api.Document, error) {
	args := m.Called(ctx, params)
	v, _ := args.Get(0).(*api.Document)
	return v, args.Error(1)
}

func (m *MockClient) DeleteDocument(ctx context.Context, databaseID string, collectionID string, documentID string) error {
	args := m.Called(ctx, databaseID, collectionID, documentID)
	return args.Error(0)
}

func (m *MockClient) CreateEmail(ctx context.Context, params api.CreateEmailParams) (*api.Message, error) {
	args := m.Called(ctx, params)
	v, _ := args.Get(0).(*api.Message)
	return v, args.Error(1)
}

func (m *MockClient) ListMessages(ctx context.Context, queries []string, search string) (*api.MessageList, error) {
	args := m.Called(ctx, queries, search)
	v, _ := args.Get(0).(*api.MessageList)
	return v, args.Error(1)
}

func (m *MockClient) GetMessage(ctx context.Context, messageID string) (*api.Message, error) {
	args := m.Called(ctx, messageID)
	v, _ := args.Get(0).(*api.Message)
	return v, args.Error(1)
}
