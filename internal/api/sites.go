package api

import (
	"context"
	"log/slog"

	"github.com/cumulus-dev/cumulus/internal/transport"
	"github.com/cumulus-dev/cumulus/internal/upload"
)

func (c *client) GetSite(ctx context.Context, siteID string) (*Site, error) {
	if err := requireAll(param{"siteId", siteID}); err != nil {
		return nil, err
	}
	var site Site
	if err := c.call(ctx, transport.MethodGet, pathf("/sites/%s", siteID), nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// CreateSiteDeployment uploads a code archive for a site.
func (c *client) CreateSiteDeployment(ctx context.Context, params CreateSiteDeploymentParams) (*Deployment, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	slog.Info("Creating site deployment",
		"siteId", params.SiteID,
		"size", params.Code.Size(),
		"activate", params.Activate,
	)

	var deployment Deployment
	err := c.upload(ctx, upload.Request{
		Method: transport.MethodPost,
		Path:   pathf("/sites/%s/deployments", params.SiteID),
		Params: compact(map[string]any{
			"activate":        params.Activate,
			"installCommand":  params.InstallCommand,
			"buildCommand":    params.BuildCommand,
			"outputDirectory": params.OutputDirectory,
		}),
		FileParam:  "code",
		Payload:    params.Code,
		UploadID:   params.UploadID,
		OnProgress: params.OnProgress,
	}, &deployment)
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (c *client) ListSiteDeployments(ctx context.Context, siteID string, queries []string, search string) (*DeploymentList, error) {
	if err := requireAll(param{"siteId", siteID}); err != nil {
		return nil, err
	}
	var list DeploymentList
	if err := c.call(ctx, transport.MethodGet, pathf("/sites/%s/deployments", siteID), listParams(queries, search), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) GetSiteDeployment(ctx context.Context, siteID, deploymentID string) (*Deployment, error) {
	if err := requireAll(param{"siteId", siteID}, param{"deploymentId", deploymentID}); err != nil {
		return nil, err
	}
	var deployment Deployment
	if err := c.call(ctx, transport.MethodGet, pathf("/sites/%s/deployments/%s", siteID, deploymentID), nil, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}
