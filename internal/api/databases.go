package api

import (
	"context"

	"github.com/cumulus-dev/cumulus/internal/transport"
)

func (c *client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error) {
	if err := requireAll(param{"databaseId", databaseID}, param{"collectionId", collectionID}); err != nil {
		return nil, err
	}
	var list DocumentList
	path := pathf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	if err := c.call(ctx, transport.MethodGet, path, listParams(queries, ""), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) GetDocument(ctx context.Context, databaseID, collectionID, documentID string, queries []string) (*Document, error) {
	if err := requireAll(param{"databaseId", databaseID}, param{"collectionId", collectionID}, param{"documentId", documentID}); err != nil {
		return nil, err
	}
	var doc Document
	path := pathf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	if err := c.call(ctx, transport.MethodGet, path, listParams(queries, ""), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *client) CreateDocument(ctx context.Context, params CreateDocumentParams) (*Document, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	var doc Document
	path := pathf("/databases/%s/collections/%s/documents", params.DatabaseID, params.CollectionID)
	err := c.call(ctx, transport.MethodPost, path, compact(map[string]any{
		"documentId":  params.DocumentID,
		"data":        params.Data,
		"permissions": params.Permissions,
	}), &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *client) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	if err := requireAll(param{"databaseId", databaseID}, param{"collectionId", collectionID}, param{"documentId", documentID}); err != nil {
		return err
	}
	return c.call(ctx, transport.MethodDelete, pathf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID), nil, nil)
}
