package api

import (
	"context"
	"log/slog"

	"github.com/cumulus-dev/cumulus/internal/transport"
	"github.com/cumulus-dev/cumulus/internal/upload"
)

func (c *client) ListFunctions(ctx context.Context, queries []string, search string) (*FunctionList, error) {
	var list FunctionList
	if err := c.call(ctx, transport.MethodGet, "/functions", listParams(queries, search), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) GetFunction(ctx context.Context, functionID string) (*Function, error) {
	if err := requireAll(param{"functionId", functionID}); err != nil {
		return nil, err
	}
	var fn Function
	if err := c.call(ctx, transport.MethodGet, pathf("/functions/%s", functionID), nil, &fn); err != nil {
		return nil, err
	}
	return &fn, nil
}

// CreateDeployment uploads a code archive for a function.
func (c *client) CreateDeployment(ctx context.Context, params CreateDeploymentParams) (*Deployment, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	slog.Info("Creating function deployment",
		"functionId", params.FunctionID,
		"size", params.Code.Size(),
		"activate", params.Activate,
	)

	var deployment Deployment
	err := c.upload(ctx, upload.Request{
		Method: transport.MethodPost,
		Path:   pathf("/functions/%s/deployments", params.FunctionID),
		Params: compact(map[string]any{
			"activate":   params.Activate,
			"entrypoint": params.Entrypoint,
			"commands":   params.Commands,
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

func (c *client) ListDeployments(ctx context.Context, functionID string, queries []string, search string) (*DeploymentList, error) {
	if err := requireAll(param{"functionId", functionID}); err != nil {
		return nil, err
	}
	var list DeploymentList
	if err := c.call(ctx, transport.MethodGet, pathf("/functions/%s/deployments", functionID), listParams(queries, search), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) GetDeployment(ctx context.Context, functionID, deploymentID string) (*Deployment, error) {
	if err := requireAll(param{"functionId", functionID}, param{"deploymentId", deploymentID}); err != nil {
		return nil, err
	}
	var deployment Deployment
	if err := c.call(ctx, transport.MethodGet, pathf("/functions/%s/deployments/%s", functionID, deploymentID), nil, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (c *client) DeleteDeployment(ctx context.Context, functionID, deploymentID string) error {
	if err := requireAll(param{"functionId", functionID}, param{"deploymentId", deploymentID}); err != nil {
		return err
	}
	return c.call(ctx, transport.MethodDelete, pathf("/functions/%s/deployments/%s", functionID, deploymentID), nil, nil)
}

// GetDeploymentDownload returns the deployment's source archive or build output.
func (c *client) GetDeploymentDownload(ctx context.Context, functionID, deploymentID string, downloadType DeploymentDownloadType) ([]byte, error) {
	if err := requireAll(param{"functionId", functionID}, param{"deploymentId", deploymentID}); err != nil {
		return nil, err
	}
	params := map[string]any{}
	if downloadType != "" {
		params["type"] = downloadType
	}
	return c.raw(ctx, pathf("/functions/%s/deployments/%s/download", functionID, deploymentID), params)
}
