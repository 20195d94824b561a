package api

import "context"

type Client interface {
	// Storage
	GetBucket(ctx context.Context, bucketID string) (*Bucket, error)
	CreateFile(ctx context.Context, params CreateFileParams) (*File, error)
	GetFile(ctx context.Context, bucketID, fileID string) (*File, error)
	ListFiles(ctx context.Context, bucketID string, queries []string, search string) (*FileList, error)
	UpdateFile(ctx context.Context, params UpdateFileParams) (*File, error)
	DeleteFile(ctx context.Context, bucketID, fileID string) error
	GetFileDownload(ctx context.Context, bucketID, fileID string) ([]byte, error)

	// Functions
	ListFunctions(ctx context.Context, queries []string, search string) (*FunctionList, error)
	GetFunction(ctx context.Context, functionID string) (*Function, error)
	CreateDeployment(ctx context.Context, params CreateDeploymentParams) (*Deployment, error)
	ListDeployments(ctx context.Context, functionID string, queries []string, search string) (*DeploymentList, error)
	GetDeployment(ctx context.Context, functionID, deploymentID string) (*Deployment, error)
	DeleteDeployment(ctx context.Context, functionID, deploymentID string) error
	GetDeploymentDownload(ctx context.Context, functionID, deploymentID string, downloadType DeploymentDownloadType) ([]byte, error)

	// Sites
	GetSite(ctx context.Context, siteID string) (*Site, error)
	CreateSiteDeployment(ctx context.Context, params CreateSiteDeploymentParams) (*Deployment, error)
	ListSiteDeployments(ctx context.Context, siteID string, queries []string, search string) (*DeploymentList, error)
	GetSiteDeployment(ctx context.Context, siteID, deploymentID string) (*Deployment, error)

	// Users and teams
	ListUsers(ctx context.Context, queries []string, search string) (*UserList, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	DeleteUser(ctx context.Context, userID string) error
	ListTeams(ctx context.Context, queries []string, search string) (*TeamList, error)
	GetTeam(ctx context.Context, teamID string) (*Team, error)
	CreateTeam(ctx context.Context, teamID, name string, roles []string) (*Team, error)
	DeleteTeam(ctx context.Context, teamID string) error

	// Databases
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error)
	GetDocument(ctx context.Context, databaseID, collectionID, documentID string, queries []string) (*Document, error)
	CreateDocument(ctx context.Context, params CreateDocumentParams) (*Document, error)
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error

	// Messaging
	CreateEmail(ctx context.Context, params CreateEmailParams) (*Message, error)
	ListMessages(ctx context.Context, queries []string, search string) (*MessageList, error)
	GetMessage(ctx context.Context, messageID string) (*Message, error)
}
